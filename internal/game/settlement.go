package game

import (
	"context"
	"fmt"
	"time"

	"numonce/internal/calendar"
)

// Settle runs the one-time settlement computation for a civil date.
//
// Settlement is idempotent by refusal: once a marker exists for the date, every
// later call fails with ErrAlreadySettled and nothing is recomputed. A day with
// no submissions fails with ErrNoSubmissions and writes nothing, marker
// included, so a retry later the same day can still succeed. Two concurrent
// calls may both pass the marker pre-check; the store's marker uniqueness
// constraint picks exactly one winner and the loser's computed rows are
// discarded.
func (s *Service) Settle(ctx context.Context, date calendar.Date) ([]SettlementResult, error) {
	settled, err := s.results.HasMarker(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("check marker for %s: %w", date, err)
	}
	if settled {
		return nil, ErrAlreadySettled
	}

	subs, err := s.ledger.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list submissions for %s: %w", date, err)
	}
	if len(subs) == 0 {
		return nil, ErrNoSubmissions
	}

	counts := make(map[int]int, len(subs))
	for _, sub := range subs {
		counts[sub.Number]++
	}

	rows := make([]SettlementResult, 0, len(subs))
	for _, sub := range subs {
		c := counts[sub.Number]
		rows = append(rows, SettlementResult{
			UserID:         sub.UserID,
			Date:           date,
			Number:         sub.Number,
			CountForNumber: c,
			Payout:         float64(sub.Number) / float64(c),
		})
	}

	if err := s.results.SaveSettlement(ctx, date, rows); err != nil {
		return nil, err
	}
	s.log.Info("settlement complete", "date", date.String(), "results", len(rows), "numbers", len(counts))
	return rows, nil
}

// RunDailySettlement settles the civil day `now` falls on. This is the entry
// point the admin endpoint uses when called before the day rolls over.
func (s *Service) RunDailySettlement(ctx context.Context, now time.Time) (DailySettlement, error) {
	date := s.cal.CivilDate(now)
	rows, err := s.Settle(ctx, date)
	if err != nil {
		return DailySettlement{Date: date}, err
	}
	return summarize(date, rows), nil
}

// SettleEndedDay settles the civil day before the one `now` falls on. The
// scheduler fires shortly after midnight on the game clock, so "yesterday"
// is the day whose picks just closed.
func (s *Service) SettleEndedDay(ctx context.Context, now time.Time) (DailySettlement, []SettlementResult, error) {
	date := s.cal.CivilDate(now).AddDays(-1)
	rows, err := s.Settle(ctx, date)
	if err != nil {
		return DailySettlement{Date: date}, nil, err
	}
	return summarize(date, rows), rows, nil
}

func summarize(date calendar.Date, rows []SettlementResult) DailySettlement {
	out := DailySettlement{Date: date, ResultCount: len(rows)}
	for _, r := range rows {
		out.TotalPayout += r.Payout
	}
	return out
}
