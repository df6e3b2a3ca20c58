// Package announce broadcasts settlement summaries to chat channels. Every
// announcer is best-effort: a failed announcement is logged by the caller and
// never affects the settlement itself.
package announce

import (
	"context"
	"fmt"

	"numonce/internal/game"
)

type Announcer interface {
	Announce(ctx context.Context, out game.DailySettlement, top []game.SettlementResult) error
	Close() error
}

// Summary renders the one-line message all channels share.
func Summary(out game.DailySettlement, top []game.SettlementResult) string {
	msg := fmt.Sprintf("numonce %s settled: %d players, %.2f paid out", out.Date, out.ResultCount, out.TotalPayout)
	if len(top) > 0 {
		best := top[0]
		for _, r := range top[1:] {
			if r.Payout > best.Payout {
				best = r
			}
		}
		msg += fmt.Sprintf(". Best pick: %d (shared by %d) paid %.2f", best.Number, best.CountForNumber, best.Payout)
	}
	return msg
}

// Multi fans an announcement out to every configured channel, collecting the
// first error but still attempting the rest.
type Multi []Announcer

func (m Multi) Announce(ctx context.Context, out game.DailySettlement, top []game.SettlementResult) error {
	var firstErr error
	for _, a := range m {
		if err := a.Announce(ctx, out, top); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) Close() error {
	var firstErr error
	for _, a := range m {
		if err := a.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
