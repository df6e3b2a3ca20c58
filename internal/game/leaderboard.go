package game

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// WeeklyLeaderboard sums settled payouts per user from the most recent Monday
// (in the game zone) through now and returns the top rows, capped and sorted
// by total payout descending. Users with nothing settled this week never
// appear. A storage read error fails the query; an unresolvable display name
// only degrades that row to a truncated user id.
func (s *Service) WeeklyLeaderboard(ctx context.Context, now time.Time) (Leaderboard, error) {
	weekStart := s.cal.WeekStart(now)
	out := Leaderboard{WeekStart: weekStart, Rows: []LeaderboardRow{}}

	results, err := s.results.ListResults(ctx, weekStart)
	if err != nil {
		return out, fmt.Errorf("list results since %s: %w", weekStart, err)
	}

	totals := make(map[string]float64)
	order := make([]string, 0)
	for _, r := range results {
		if _, seen := totals[r.UserID]; !seen {
			order = append(order, r.UserID)
		}
		totals[r.UserID] += r.Payout
	}
	if len(order) == 0 {
		return out, nil
	}

	// First-seen order plus a stable sort keeps tied totals in one consistent
	// order for the duration of this query.
	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})
	if len(order) > s.boardLimit {
		order = order[:s.boardLimit]
	}

	names, err := s.names.ResolveNames(ctx, order)
	if err != nil {
		s.log.Warn("name resolution failed, falling back to ids", "err", err)
		names = nil
	}

	rows := make([]LeaderboardRow, 0, len(order))
	for i, userID := range order {
		name := names[userID]
		if name == "" {
			name = FallbackName(userID)
		}
		rows = append(rows, LeaderboardRow{
			Rank:        i + 1,
			DisplayName: name,
			TotalPayout: totals[userID],
		})
	}
	out.Rows = rows
	return out, nil
}
