package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	cl "numonce/internal/cli"
	"numonce/internal/config"
	"numonce/internal/game"
	"numonce/internal/syncq"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "nmo",
		Short:        "Numonce CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newSignupCmd(&apiBase),
		newLoginCmd(&apiBase),
		newLogoutCmd(),
		newPickCmd(&apiBase),
		newTodayCmd(&apiBase),
		newBoardCmd(&apiBase),
		newSyncCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newSignupCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create a Numonce account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptPassword("Password")
			if err != nil {
				return err
			}
			username, err := promptOptional("Username (optional)")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			session, err := client.Signup(ctx, email, password, username)
			if err != nil {
				return err
			}
			if strings.TrimSpace(session.AccessToken) == "" {
				printWarn("Signup created. Verify email, then run `nmo login`.")
				return nil
			}
			if err := cl.SaveSession(session); err != nil {
				return err
			}
			printSuccess("Signup complete. Session saved.")
			return nil
		},
	}
}

func newLoginCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login to Numonce",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptPassword("Password")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			session, err := client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(session); err != nil {
				return err
			}
			printSuccess("Login successful.")
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear local session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Logged out.")
			return nil
		},
	}
}

func newPickCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pick [number]",
		Short: "Submit today's number (1-100)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}

			var number int
			if len(args) == 1 {
				number, err = strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("not a number: %q", args[0])
				}
			} else {
				number, err = promptNumber("Number (1-100)")
				if err != nil {
					return err
				}
			}
			if err := game.ValidateNumber(number); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			sub, err := client.SubmitPick(ctx, sess.AccessToken, number)
			if err != nil {
				var apiErr *cl.APIError
				if errors.As(err, &apiErr) {
					return err
				}
				// Network trouble, not a rejection. Queue the pick for
				// replay with `nmo sync`.
				if qerr := syncq.Push(syncq.PendingPick{
					ID:       uuid.NewString(),
					Number:   number,
					PickedAt: time.Now().Format("2006-01-02"),
				}); qerr != nil {
					return qerr
				}
				printWarn(fmt.Sprintf("API unreachable (%v). Pick queued locally, run `nmo sync` later.", err))
				return nil
			}
			printSuccess(fmt.Sprintf("Locked in %d for %s.", sub.Number, sub.Date))
			return nil
		},
	}
}

func newTodayCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's pick and, once settled, its payout",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			status, err := client.Today(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			renderToday(status)
			return nil
		},
	}
}

func newBoardCmd(apiBase *string) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:     "board",
		Short:   "Show this week's leaderboard",
		Aliases: []string{"leaderboard", "lb"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			board, err := client.WeeklyLeaderboard(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			if plain {
				renderBoardPlain(board)
				return nil
			}
			return runBoardUI(board)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the board without the interactive view")
	return cmd
}

func newSyncCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay picks queued while offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			remaining := make([]syncq.PendingPick, 0, len(queue))
			replayed := 0
			for _, q := range queue {
				sub, err := client.SubmitPick(ctx, sess.AccessToken, q.Number)
				if err != nil {
					var apiErr *cl.APIError
					if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
						// A pick already landed for that day; the queued one
						// is stale and can be dropped.
						printWarn(fmt.Sprintf("Dropped queued pick %d: %v", q.Number, err))
						continue
					}
					remaining = append(remaining, q)
					printError(fmt.Sprintf("Sync failed for pick %d: %v", q.Number, err))
					continue
				}
				replayed++
				printSuccess(fmt.Sprintf("Replayed pick %d for %s.", sub.Number, sub.Date))
			}
			if err := syncq.Save(remaining); err != nil {
				return err
			}
			printInfo(fmt.Sprintf("Sync complete: replayed=%d remaining=%d", replayed, len(remaining)))
			return nil
		},
	}
}
