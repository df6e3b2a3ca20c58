package game

import "numonce/internal/calendar"

// Submission is one user's pick for one civil day. The ledger enforces at most
// one per (user, date); this package consumes that as a precondition.
type Submission struct {
	UserID string        `json:"user_id"`
	Date   calendar.Date `json:"submission_date"`
	Number int           `json:"chosen_number"`
}

// SettlementResult is one settled payout row. CountForNumber is how many
// submissions on Date share Number; Payout is Number/CountForNumber.
type SettlementResult struct {
	UserID         string        `json:"user_id"`
	Date           calendar.Date `json:"submission_date"`
	Number         int           `json:"chosen_number"`
	CountForNumber int           `json:"count_for_number"`
	Payout         float64       `json:"payout"`
}

// DailySettlement summarizes one successful settlement run.
type DailySettlement struct {
	Date        calendar.Date `json:"settled_date"`
	ResultCount int           `json:"result_count"`
	TotalPayout float64       `json:"total_payout"`
}

type LeaderboardRow struct {
	Rank        int     `json:"rank"`
	DisplayName string  `json:"display_name"`
	TotalPayout float64 `json:"total_payout"`
}

type Leaderboard struct {
	WeekStart calendar.Date    `json:"week_start"`
	Rows      []LeaderboardRow `json:"rows"`
}

// TodayStatus is what a logged-in user sees about the current civil day.
type TodayStatus struct {
	Date           calendar.Date `json:"today"`
	Submitted      bool          `json:"submitted"`
	Number         int           `json:"number,omitempty"`
	Settled        bool          `json:"settled"`
	Payout         float64       `json:"payout,omitempty"`
	CountForNumber int           `json:"count_for_number,omitempty"`
}
