// Package store implements the game's storage contracts over Postgres.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"numonce/internal/calendar"
	"numonce/internal/game"
)

// Connect opens a pgx pool sized for the API and worker processes.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// Postgres backs all four contracts (submission ledger, results store, name
// resolver, profile writer) with one pool.
type Postgres struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

var (
	_ game.SubmissionLedger = (*Postgres)(nil)
	_ game.ResultsStore     = (*Postgres)(nil)
	_ game.NameResolver     = (*Postgres)(nil)
	_ game.ProfileWriter    = (*Postgres)(nil)
)

func (p *Postgres) Insert(ctx context.Context, userID string, date calendar.Date, number int) error {
	cmd, err := p.db.Exec(ctx, `
		INSERT INTO game.submissions (user_id, submission_date, chosen_number)
		VALUES ($1, $2::date, $3)
		ON CONFLICT (user_id, submission_date) DO NOTHING
	`, userID, date.String(), number)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return game.ErrAlreadyPicked
	}
	return nil
}

func (p *Postgres) ListByDate(ctx context.Context, date calendar.Date) ([]game.Submission, error) {
	rows, err := p.db.Query(ctx, `
		SELECT user_id, chosen_number
		FROM game.submissions
		WHERE submission_date = $1::date
	`, date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Submission
	for rows.Next() {
		s := game.Submission{Date: date}
		if err := rows.Scan(&s.UserID, &s.Number); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) FindByUser(ctx context.Context, userID string, date calendar.Date) (game.Submission, bool, error) {
	s := game.Submission{UserID: userID, Date: date}
	err := p.db.QueryRow(ctx, `
		SELECT chosen_number
		FROM game.submissions
		WHERE user_id = $1 AND submission_date = $2::date
	`, userID, date.String()).Scan(&s.Number)
	if err == pgx.ErrNoRows {
		return game.Submission{}, false, nil
	}
	if err != nil {
		return game.Submission{}, false, err
	}
	return s, true, nil
}

func (p *Postgres) HasMarker(ctx context.Context, date calendar.Date) (bool, error) {
	var settled bool
	err := p.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM game.daily_runs WHERE submission_date = $1::date
		)
	`, date.String()).Scan(&settled)
	return settled, err
}

// SaveSettlement persists the marker and all result rows in one transaction.
// The marker claim comes first: if another settlement already holds it, this
// attempt aborts before writing a single result row, so a raced loser discards
// its computation and no partial day can ever be observed.
func (p *Postgres) SaveSettlement(ctx context.Context, date calendar.Date, results []game.SettlementResult) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		INSERT INTO game.daily_runs (submission_date)
		VALUES ($1::date)
		ON CONFLICT (submission_date) DO NOTHING
	`, date.String())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return game.ErrAlreadySettled
	}

	for _, r := range results {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.daily_results (user_id, submission_date, chosen_number, count_for_number, payout)
			VALUES ($1, $2::date, $3, $4, $5)
		`, r.UserID, r.Date.String(), r.Number, r.CountForNumber, r.Payout); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) ListResults(ctx context.Context, minDate calendar.Date) ([]game.SettlementResult, error) {
	rows, err := p.db.Query(ctx, `
		SELECT user_id, submission_date::text, chosen_number, count_for_number, payout
		FROM game.daily_results
		WHERE submission_date >= $1::date
		ORDER BY submission_date, user_id
	`, minDate.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.SettlementResult
	for rows.Next() {
		var r game.SettlementResult
		var rawDate string
		if err := rows.Scan(&r.UserID, &rawDate, &r.Number, &r.CountForNumber, &r.Payout); err != nil {
			return nil, err
		}
		if r.Date, err = calendar.ParseDate(rawDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) FindResult(ctx context.Context, userID string, date calendar.Date) (game.SettlementResult, bool, error) {
	r := game.SettlementResult{UserID: userID, Date: date}
	err := p.db.QueryRow(ctx, `
		SELECT chosen_number, count_for_number, payout
		FROM game.daily_results
		WHERE user_id = $1 AND submission_date = $2::date
	`, userID, date.String()).Scan(&r.Number, &r.CountForNumber, &r.Payout)
	if err == pgx.ErrNoRows {
		return game.SettlementResult{}, false, nil
	}
	if err != nil {
		return game.SettlementResult{}, false, err
	}
	return r, true, nil
}

func (p *Postgres) ResolveNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}
	rows, err := p.db.Query(ctx, `
		SELECT user_id, username
		FROM users.profiles
		WHERE user_id = ANY($1)
	`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(userIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (p *Postgres) EnsureProfile(ctx context.Context, userID, email, username string) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO users.profiles (user_id, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, email, username)
	return err
}
