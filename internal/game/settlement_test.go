package game

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"numonce/internal/calendar"
)

var testDay = calendar.NewDate(2025, time.June, 11)

func seedPicks(t *testing.T, f *fixture, picks map[string]int) {
	t.Helper()
	for user, n := range picks {
		if err := f.ledger.Insert(context.Background(), user, testDay, n); err != nil {
			t.Fatalf("seed %s: %v", user, err)
		}
	}
}

func TestSettleComputesSplitPayouts(t *testing.T) {
	f := newFixture(t)
	seedPicks(t, f, map[string]int{"alice": 7, "bob": 7, "carol": 42})

	rows, err := f.svc.Settle(context.Background(), testDay)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	byUser := make(map[string]SettlementResult)
	countSum := 0
	for _, r := range rows {
		byUser[r.UserID] = r
		countSum++
	}
	if countSum != 3 {
		t.Fatalf("one row per submission violated: %d", countSum)
	}

	checks := []struct {
		user   string
		count  int
		payout float64
	}{
		{"alice", 2, 3.5},
		{"bob", 2, 3.5},
		{"carol", 1, 42.0},
	}
	for _, c := range checks {
		r, ok := byUser[c.user]
		if !ok {
			t.Fatalf("missing row for %s", c.user)
		}
		if r.CountForNumber != c.count {
			t.Errorf("%s count = %d, want %d", c.user, r.CountForNumber, c.count)
		}
		if math.Abs(r.Payout-c.payout) > 1e-9 {
			t.Errorf("%s payout = %v, want %v", c.user, r.Payout, c.payout)
		}
		if got := float64(r.Number) / float64(r.CountForNumber); math.Abs(r.Payout-got) > 1e-9 {
			t.Errorf("%s payout is not number/count", c.user)
		}
	}
}

func TestSettleCountsSumToSubmissions(t *testing.T) {
	f := newFixture(t)
	picks := map[string]int{
		"u1": 10, "u2": 10, "u3": 10,
		"u4": 55, "u5": 55,
		"u6": 99,
	}
	seedPicks(t, f, picks)

	rows, err := f.svc.Settle(context.Background(), testDay)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	// Sum count_for_number over distinct numbers equals total submissions.
	perNumber := make(map[int]int)
	for _, r := range rows {
		perNumber[r.Number] = r.CountForNumber
	}
	sum := 0
	for _, c := range perNumber {
		sum += c
	}
	if sum != len(picks) {
		t.Fatalf("sum of counts = %d, want %d", sum, len(picks))
	}
}

func TestSettleTwiceRefusesWithoutDuplication(t *testing.T) {
	f := newFixture(t)
	seedPicks(t, f, map[string]int{"alice": 7, "bob": 7, "carol": 42})

	first, err := f.svc.Settle(context.Background(), testDay)
	if err != nil {
		t.Fatalf("first settle: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first settle rows = %d", len(first))
	}

	if _, err := f.svc.Settle(context.Background(), testDay); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("second settle err = %v, want ErrAlreadySettled", err)
	}

	stored, err := f.results.ListResults(context.Background(), testDay)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != len(first) {
		t.Fatalf("row set changed after second call: %d vs %d", len(stored), len(first))
	}
}

func TestSettleEmptyDayWritesNothing(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Settle(context.Background(), testDay); !errors.Is(err, ErrNoSubmissions) {
		t.Fatalf("err = %v, want ErrNoSubmissions", err)
	}
	settled, err := f.results.HasMarker(context.Background(), testDay)
	if err != nil {
		t.Fatalf("marker: %v", err)
	}
	if settled {
		t.Fatalf("empty day must not leave a marker")
	}
	if f.results.saveCalls != 0 {
		t.Fatalf("empty day must not reach the store")
	}

	// A retry after a late pick arrives succeeds.
	seedPicks(t, f, map[string]int{"dave": 13})
	rows, err := f.svc.Settle(context.Background(), testDay)
	if err != nil {
		t.Fatalf("retry settle: %v", err)
	}
	if len(rows) != 1 || rows[0].Payout != 13.0 {
		t.Fatalf("retry rows = %+v", rows)
	}
}

func TestSettleMarkerRaceLoserDiscardsRows(t *testing.T) {
	f := newFixture(t)
	seedPicks(t, f, map[string]int{"alice": 7, "bob": 7})

	// Simulate the race: mark the date settled after the pre-check would have
	// passed, as if a concurrent winner committed first. The store's claim
	// conflict must surface as ErrAlreadySettled with no extra rows.
	f.results.markers[testDay.String()] = true
	var winnerRows = []SettlementResult{{UserID: "alice", Date: testDay, Number: 7, CountForNumber: 2, Payout: 3.5}}
	f.results.rows = winnerRows

	err := f.results.SaveSettlement(context.Background(), testDay, []SettlementResult{
		{UserID: "bob", Date: testDay, Number: 7, CountForNumber: 2, Payout: 3.5},
	})
	if !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("claim conflict err = %v", err)
	}
	if len(f.results.rows) != len(winnerRows) {
		t.Fatalf("loser rows were persisted")
	}
}

func TestSettleSurfacesPartialSettlement(t *testing.T) {
	f := newFixture(t)
	f.results.failAfterRows = true
	seedPicks(t, f, map[string]int{"alice": 50})

	_, err := f.svc.Settle(context.Background(), testDay)
	if !errors.Is(err, ErrPartialSettlement) {
		t.Fatalf("err = %v, want ErrPartialSettlement", err)
	}
	if ErrKind(err) != "partial_settlement" {
		t.Fatalf("kind = %s", ErrKind(err))
	}
}

func TestRunDailySettlementUsesCivilDate(t *testing.T) {
	f := newFixture(t)

	// 2025-06-12 01:00 UTC is still June 11 in Eastern Time.
	now := time.Date(2025, time.June, 12, 1, 0, 0, 0, time.UTC)
	seedPicks(t, f, map[string]int{"alice": 20, "bob": 20})

	out, err := f.svc.RunDailySettlement(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Date != testDay {
		t.Fatalf("settled date = %s, want %s", out.Date, testDay)
	}
	if out.ResultCount != 2 {
		t.Fatalf("result count = %d", out.ResultCount)
	}
	if math.Abs(out.TotalPayout-20.0) > 1e-9 {
		t.Fatalf("total payout = %v, want 20", out.TotalPayout)
	}
}

func TestSettleEndedDayTargetsYesterday(t *testing.T) {
	f := newFixture(t)

	// 2025-06-12 05:30 UTC is 01:30 Eastern on June 12, just after the
	// scheduler fires; the day to settle is June 11.
	now := time.Date(2025, time.June, 12, 5, 30, 0, 0, time.UTC)
	seedPicks(t, f, map[string]int{"alice": 7, "bob": 7, "carol": 42})

	out, rows, err := f.svc.SettleEndedDay(context.Background(), now)
	if err != nil {
		t.Fatalf("settle ended day: %v", err)
	}
	if out.Date != testDay {
		t.Fatalf("settled date = %s, want %s", out.Date, testDay)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if math.Abs(out.TotalPayout-49.0) > 1e-9 {
		t.Fatalf("total payout = %v, want 49", out.TotalPayout)
	}
}
