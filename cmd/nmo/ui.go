package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"numonce/internal/game"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// promptPassword reads without echo when stdin is a terminal, falling back to
// a plain prompt when it is not (pipes, tests).
func promptPassword(label string) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return promptRequired(label)
	}
	for {
		fmt.Printf("%s: ", label)
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		text := strings.TrimSpace(string(raw))
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptNumber(label string) (int, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if err := game.ValidateNumber(v); err != nil {
			printWarn(err.Error())
			continue
		}
		return v, nil
	}
}

func renderToday(status game.TodayStatus) {
	accent.Printf("Today (%s)\n", status.Date)
	if !status.Submitted {
		printInfo("No pick yet. Run `nmo pick` before midnight Eastern.")
		return
	}
	neutral.Printf("Your pick: %d\n", status.Number)
	if !status.Settled {
		printInfo("Not settled yet. Payouts land shortly after midnight Eastern.")
		return
	}
	success.Printf("Settled: %d players picked %d, payout %.2f\n",
		status.CountForNumber, status.Number, status.Payout)
}

func renderBoardPlain(board game.Leaderboard) {
	accent.Printf("Week of %s\n", board.WeekStart)
	if len(board.Rows) == 0 {
		printInfo("No settled results this week yet.")
		return
	}
	for _, row := range board.Rows {
		neutral.Printf("%3d  %-24s %10.2f\n", row.Rank, row.DisplayName, row.TotalPayout)
	}
}

var (
	boardBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))
	boardTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Padding(0, 1)
	boardHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

type boardModel struct {
	title string
	table table.Model
}

func (m boardModel) Init() tea.Cmd { return nil }

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	return boardTitleStyle.Render(m.title) + "\n" +
		boardBorderStyle.Render(m.table.View()) + "\n" +
		boardHelpStyle.Render("↑/↓ scroll · q quit") + "\n"
}

func runBoardUI(board game.Leaderboard) error {
	if len(board.Rows) == 0 {
		renderBoardPlain(board)
		return nil
	}

	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Player", Width: 26},
		{Title: "Week total", Width: 12},
	}
	rows := make([]table.Row, 0, len(board.Rows))
	for _, r := range board.Rows {
		rows = append(rows, table.Row{
			strconv.Itoa(r.Rank),
			r.DisplayName,
			fmt.Sprintf("%.2f", r.TotalPayout),
		})
	}

	height := len(rows)
	if height > 15 {
		height = 15
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(styles)

	m := boardModel{
		title: fmt.Sprintf("Numonce · week of %s", board.WeekStart),
		table: t,
	}
	_, err := tea.NewProgram(m).Run()
	return err
}
