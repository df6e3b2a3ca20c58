package game

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"numonce/internal/calendar"
)

// In-memory implementations of the storage contracts, keyed the same way the
// Postgres tables are constrained.

type memLedger struct {
	mu   sync.Mutex
	subs map[string]Submission // key: userID + "|" + date
}

func newMemLedger() *memLedger {
	return &memLedger{subs: make(map[string]Submission)}
}

func ledgerKey(userID string, date calendar.Date) string {
	return userID + "|" + date.String()
}

func (m *memLedger) Insert(_ context.Context, userID string, date calendar.Date, number int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ledgerKey(userID, date)
	if _, ok := m.subs[key]; ok {
		return ErrAlreadyPicked
	}
	m.subs[key] = Submission{UserID: userID, Date: date, Number: number}
	return nil
}

func (m *memLedger) ListByDate(_ context.Context, date calendar.Date) ([]Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Submission
	for _, s := range m.subs {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memLedger) FindByUser(_ context.Context, userID string, date calendar.Date) (Submission, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[ledgerKey(userID, date)]
	return s, ok, nil
}

type memResults struct {
	mu      sync.Mutex
	markers map[string]bool
	rows    []SettlementResult

	// failAfterRows mimics a store without atomicity: rows land, the marker
	// write fails, and SaveSettlement reports ErrPartialSettlement.
	failAfterRows bool

	saveCalls int
}

func newMemResults() *memResults {
	return &memResults{markers: make(map[string]bool)}
}

func (m *memResults) HasMarker(_ context.Context, date calendar.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markers[date.String()], nil
}

func (m *memResults) SaveSettlement(_ context.Context, date calendar.Date, rows []SettlementResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.markers[date.String()] {
		return ErrAlreadySettled
	}
	if m.failAfterRows {
		m.rows = append(m.rows, rows...)
		return ErrPartialSettlement
	}
	m.markers[date.String()] = true
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memResults) ListResults(_ context.Context, minDate calendar.Date) ([]SettlementResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SettlementResult
	for _, r := range m.rows {
		if !r.Date.Before(minDate) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memResults) FindResult(_ context.Context, userID string, date calendar.Date) (SettlementResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.Date == date {
			return r, true, nil
		}
	}
	return SettlementResult{}, false, nil
}

type memNames struct {
	names map[string]string
	err   error
}

func (m *memNames) ResolveNames(_ context.Context, userIDs []string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]string)
	for _, id := range userIDs {
		if name, ok := m.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]string // userID -> username
}

func (m *memProfiles) EnsureProfile(_ context.Context, userID, _, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profiles == nil {
		m.profiles = make(map[string]string)
	}
	if _, ok := m.profiles[userID]; !ok {
		m.profiles[userID] = username
	}
	return nil
}

type fixture struct {
	svc     *Service
	ledger  *memLedger
	results *memResults
	names   *memNames
	cal     *calendar.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cal, err := calendar.NewResolver(calendar.DefaultZone)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	ledger := newMemLedger()
	results := newMemResults()
	names := &memNames{names: make(map[string]string)}
	svc := NewService(Deps{
		Ledger:   ledger,
		Results:  results,
		Names:    names,
		Profiles: &memProfiles{},
		Calendar: cal,
		Logger:   slog.New(slog.DiscardHandler),
	})
	return &fixture{svc: svc, ledger: ledger, results: results, names: names, cal: cal}
}
