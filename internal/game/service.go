// Package game holds the settlement and ranking engine. It is a pure
// computation layer: all state lives behind the narrow storage contracts below.
package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"numonce/internal/calendar"
)

// SubmissionLedger is the external store of raw daily picks. Insert must
// enforce at most one submission per (user, date) and return ErrAlreadyPicked
// on a duplicate.
type SubmissionLedger interface {
	Insert(ctx context.Context, userID string, date calendar.Date, number int) error
	ListByDate(ctx context.Context, date calendar.Date) ([]Submission, error)
	FindByUser(ctx context.Context, userID string, date calendar.Date) (Submission, bool, error)
}

// ResultsStore persists settled payouts and the per-date settlement marker.
// SaveSettlement must claim the marker through a uniqueness constraint before
// any result row becomes visible, and return ErrAlreadySettled on a claim
// conflict without writing rows; that constraint is the only mutual exclusion
// settlement relies on.
type ResultsStore interface {
	HasMarker(ctx context.Context, date calendar.Date) (bool, error)
	SaveSettlement(ctx context.Context, date calendar.Date, rows []SettlementResult) error
	ListResults(ctx context.Context, minDate calendar.Date) ([]SettlementResult, error)
	FindResult(ctx context.Context, userID string, date calendar.Date) (SettlementResult, bool, error)
}

// NameResolver maps opaque user ids to display names. The mapping may be
// partial; missing entries are not an error.
type NameResolver interface {
	ResolveNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// ProfileWriter upserts the display-name row for a user. Kept separate from
// NameResolver so the engine's read path stays read-only.
type ProfileWriter interface {
	EnsureProfile(ctx context.Context, userID, email, username string) error
}

type Service struct {
	ledger   SubmissionLedger
	results  ResultsStore
	names    NameResolver
	profiles ProfileWriter
	cal      *calendar.Resolver
	log      *slog.Logger

	boardLimit int
}

type Deps struct {
	Ledger   SubmissionLedger
	Results  ResultsStore
	Names    NameResolver
	Profiles ProfileWriter
	Calendar *calendar.Resolver
	Logger   *slog.Logger

	// BoardLimit overrides the weekly leaderboard cap; zero means the default.
	BoardLimit int
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	limit := d.BoardLimit
	if limit <= 0 {
		limit = LeaderboardLimit
	}
	return &Service{
		ledger:     d.Ledger,
		results:    d.Results,
		names:      d.Names,
		profiles:   d.Profiles,
		cal:        d.Calendar,
		log:        d.Logger,
		boardLimit: limit,
	}
}

func (s *Service) Calendar() *calendar.Resolver {
	return s.cal
}

// EnsurePlayer makes sure a profile row exists for the user, deriving a
// username from the email when none was given or the given one is unusable.
func (s *Service) EnsurePlayer(ctx context.Context, userID, email, username string) error {
	username = strings.TrimSpace(username)
	if username == "" || !usernameRE.MatchString(username) {
		username = usernameFromEmail(email)
	}
	return s.profiles.EnsureProfile(ctx, userID, email, username)
}

// Submit records the user's pick for the civil day `now` falls on. One pick
// per user per day is delegated to the ledger's uniqueness constraint.
func (s *Service) Submit(ctx context.Context, userID string, number int, now time.Time) (Submission, error) {
	if err := ValidateNumber(number); err != nil {
		return Submission{}, err
	}
	date := s.cal.CivilDate(now)
	if err := s.ledger.Insert(ctx, userID, date, number); err != nil {
		return Submission{}, err
	}
	s.log.Info("pick recorded", "user_id", userID, "date", date.String(), "number", number)
	return Submission{UserID: userID, Date: date, Number: number}, nil
}

// TodayStatus reports whether the user has picked today and, once the day has
// been settled, what they were paid.
func (s *Service) TodayStatus(ctx context.Context, userID string, now time.Time) (TodayStatus, error) {
	date := s.cal.CivilDate(now)
	out := TodayStatus{Date: date}

	sub, ok, err := s.ledger.FindByUser(ctx, userID, date)
	if err != nil {
		return out, err
	}
	if ok {
		out.Submitted = true
		out.Number = sub.Number
	}

	res, ok, err := s.results.FindResult(ctx, userID, date)
	if err != nil {
		return out, err
	}
	if ok {
		out.Settled = true
		out.Payout = res.Payout
		out.CountForNumber = res.CountForNumber
	}
	return out, nil
}

// ErrKind returns a short machine-readable kind for the sentinel errors this
// package produces, or "storage" for anything else.
func ErrKind(err error) string {
	switch {
	case errors.Is(err, ErrAlreadySettled):
		return "already_settled"
	case errors.Is(err, ErrNoSubmissions):
		return "no_submissions"
	case errors.Is(err, ErrAlreadyPicked):
		return "already_picked"
	case errors.Is(err, ErrInvalidNumber):
		return "invalid_number"
	case errors.Is(err, ErrPartialSettlement):
		return "partial_settlement"
	default:
		return "storage"
	}
}
