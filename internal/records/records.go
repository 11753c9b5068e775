// internal/records/records.go
//
// SQLite persistence for won rounds.
// Exposes:
//   - Insert:         record a won round (idempotent per round ID).
//   - ListByOwner:    recent wins for a user or an anonymous player.
//   - Leaderboard:    best wins of a UTC day (fewest guesses, then fastest).
//   - ClaimAnonymous: move guest wins to an account after signup/login.

package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robalobadob/gemini-guess/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Result is one won round.
type Result struct {
	RoundID     string
	UserID      string // empty for guests
	AnonymousID string // empty for account holders
	Secret      int
	History     []game.Entry
	StartedAt   time.Time
	FinishedAt  time.Time
}

// FromSnapshot builds a Result from a won round's snapshot.
func FromSnapshot(s game.Snapshot) (Result, error) {
	if s.Phase != game.PhaseWon || s.Secret == nil || s.FinishedAt == nil {
		return Result{}, fmt.Errorf("records: round %s is not won", s.ID)
	}
	return Result{
		RoundID:    s.ID,
		Secret:     *s.Secret,
		History:    s.History,
		StartedAt:  s.StartedAt,
		FinishedAt: *s.FinishedAt,
	}, nil
}

// Summary is a row of a player's round list.
type Summary struct {
	ID         string       `json:"id"`
	Secret     int          `json:"secret"`
	Guesses    int          `json:"guesses"`
	ElapsedMs  int64        `json:"elapsedMs"`
	History    []game.Entry `json:"history"`
	FinishedAt string       `json:"finishedAt"`
}

// LBRow is a leaderboard row.
type LBRow struct {
	Player    string `json:"player"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert stores r. Re-inserting the same round ID is a no-op.
func (s *Store) Insert(ctx context.Context, r Result) error {
	hist, err := json.Marshal(r.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds
            (id, user_id, anonymous_id, secret, guesses, elapsed_ms, history, started_at, finished_at, date)
        VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.RoundID, nullable(r.UserID), nullable(r.AnonymousID), r.Secret, len(r.History),
		r.FinishedAt.Sub(r.StartedAt).Milliseconds(), string(hist),
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
		DateKey(r.FinishedAt),
	)
	return err
}

// ListByOwner returns up to limit wins, newest first. Exactly one of userID
// and anonID is expected to be set.
func (s *Store) ListByOwner(ctx context.Context, userID, anonID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	col, arg := "user_id", userID
	if userID == "" {
		col, arg = "anonymous_id", anonID
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, secret, guesses, elapsed_ms, history, finished_at
        FROM rounds WHERE `+col+`=?
        ORDER BY finished_at DESC LIMIT ?`, arg, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var hist string
		if err := rows.Scan(&sm.ID, &sm.Secret, &sm.Guesses, &sm.ElapsedMs, &hist, &sm.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(hist), &sm.History); err != nil {
			return nil, fmt.Errorf("decode history %s: %w", sm.ID, err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

/**
 * Leaderboard fetches the best wins for a given date.
 *
 * - Ordered by guesses ASC, then elapsed time ASC, then created_at ASC.
 * - Guests are listed as "guest".
 * - Default limit is 20 if not specified.
 */
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT COALESCE(u.username, 'guest'), r.guesses, r.elapsed_ms
        FROM rounds r LEFT JOIN users u ON u.id = r.user_id
        WHERE r.date=?
        ORDER BY r.guesses ASC, r.elapsed_ms ASC, r.created_at ASC
        LIMIT ?`, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Player, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnonymous transfers guest wins to userID.
func (s *Store) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE rounds SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
