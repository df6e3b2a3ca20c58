package calendar

import (
	"testing"
	"time"
)

func mustResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(DefaultZone)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	return r
}

func TestCivilDateCrossesMidnightEastern(t *testing.T) {
	r := mustResolver(t)

	// 03:30 UTC is still the previous evening in New York (EDT, UTC-4).
	instant := time.Date(2025, time.July, 10, 3, 30, 0, 0, time.UTC)
	got := r.CivilDate(instant)
	want := NewDate(2025, time.July, 9)
	if got != want {
		t.Fatalf("civil date = %s, want %s", got, want)
	}

	// Same wall instant in winter (EST, UTC-5) is also the previous day.
	instant = time.Date(2025, time.January, 10, 4, 30, 0, 0, time.UTC)
	got = r.CivilDate(instant)
	want = NewDate(2025, time.January, 9)
	if got != want {
		t.Fatalf("civil date = %s, want %s", got, want)
	}
}

func TestWeekStartIsAlwaysMonday(t *testing.T) {
	r := mustResolver(t)
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		instant := start.AddDate(0, 0, i).Add(7 * time.Hour)
		ws := r.WeekStart(instant)
		if ws.Weekday() != 1 {
			t.Fatalf("week start %s has weekday %d", ws, ws.Weekday())
		}
		if ws.After(r.CivilDate(instant)) {
			t.Fatalf("week start %s is after civil date %s", ws, r.CivilDate(instant))
		}
	}
}

func TestWeekStartIdempotent(t *testing.T) {
	r := mustResolver(t)
	for _, instant := range []time.Time{
		time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC),    // spring-forward day in ET
		time.Date(2025, time.November, 2, 12, 0, 0, 0, time.UTC), // fall-back day in ET
		time.Date(2025, time.June, 18, 2, 0, 0, 0, time.UTC),
	} {
		ws := r.WeekStart(instant)
		midnight := time.Date(ws.Year, ws.Month, ws.Day, 0, 0, 0, 0, r.Location())
		if again := r.WeekStart(midnight); again != ws {
			t.Fatalf("weekStart(weekStart(%v)) = %s, want %s", instant, again, ws)
		}
	}
}

func TestWeekStartAcrossDSTTransition(t *testing.T) {
	r := mustResolver(t)

	// US DST began 2025-03-09 (a Sunday). The whole week Mon 03-03 .. Sun 03-09
	// must resolve to Monday 03-03 even though the zone offset changes mid-week.
	want := NewDate(2025, time.March, 3)
	for day := 3; day <= 9; day++ {
		instant := time.Date(2025, time.March, day, 18, 0, 0, 0, r.Location())
		if got := r.WeekStart(instant); got != want {
			t.Fatalf("weekStart(March %d) = %s, want %s", day, got, want)
		}
	}

	// Monday after the transition starts a new week.
	after := time.Date(2025, time.March, 10, 1, 0, 0, 0, r.Location())
	if got := r.WeekStart(after); got != NewDate(2025, time.March, 10) {
		t.Fatalf("weekStart after transition = %s", got)
	}
}

func TestWeekStartUsesCivilWeekday(t *testing.T) {
	r := mustResolver(t)

	// 2025-06-16 02:00 UTC is Monday in UTC but still Sunday June 15 in ET,
	// so the week start must be the prior Monday, June 9.
	instant := time.Date(2025, time.June, 16, 2, 0, 0, 0, time.UTC)
	if got := r.WeekStart(instant); got != NewDate(2025, time.June, 9) {
		t.Fatalf("weekStart = %s, want 2025-06-09", got)
	}
}

func TestDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2025-02-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2025-02-01" {
		t.Fatalf("round trip got %s", d)
	}
	if _, err := ParseDate("02/01/2025"); err == nil {
		t.Fatalf("expected parse failure")
	}
}

func TestAddDaysNormalizes(t *testing.T) {
	d := NewDate(2024, time.March, 1).AddDays(-1)
	if d != NewDate(2024, time.February, 29) {
		t.Fatalf("leap-year rollback got %s", d)
	}
	if got := NewDate(2025, time.December, 29).AddDays(5); got != NewDate(2026, time.January, 3) {
		t.Fatalf("year rollover got %s", got)
	}
}

func TestNewResolverRejectsBadZone(t *testing.T) {
	if _, err := NewResolver("Mars/Olympus_Mons"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
