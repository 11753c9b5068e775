// internal/game/types.go
//
// Core type definitions for the number guessing round.
// Defines:
//   - Phase: coarse round state (not_started / playing / won).
//   - Entry: one (guess, hint) pair in the round's history.
//   - Hinter: the hint source consulted once per valid guess.
//   - Snapshot: read-only view of a round for callers outside this package.

package game

import (
	"context"
	"time"
)

const (
	MinGuess = 1
	MaxGuess = 100
)

// Phase is the lifecycle state of a round.
//   - "not_started": created but no secret drawn yet.
//   - "playing":     secret drawn, guesses accepted.
//   - "won":         latest guess matched the secret; terminal until Start.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhasePlaying    Phase = "playing"
	PhaseWon        Phase = "won"
)

// Entry is a single history row. Entries are appended in submission order
// and never mutated afterwards.
type Entry struct {
	Guess     int       `json:"guess"`
	Hint      string    `json:"hint"`
	CreatedAt time.Time `json:"createdAt"`
}

// Hinter produces the hint text for a guess. Implementations must always
// return usable text; failures are expected to be absorbed into a fallback.
type Hinter interface {
	Hint(ctx context.Context, secret, guess int, history []Entry) string
}

// HinterFunc adapts a plain function to Hinter.
type HinterFunc func(ctx context.Context, secret, guess int, history []Entry) string

func (f HinterFunc) Hint(ctx context.Context, secret, guess int, history []Entry) string {
	return f(ctx, secret, guess, history)
}

// Snapshot is a copy of the round state safe to hand to presentation code.
// Secret is only populated once the round is won.
type Snapshot struct {
	ID         string     `json:"id"`
	Phase      Phase      `json:"phase"`
	Attempts   int        `json:"attempts"`
	LastGuess  *int       `json:"lastGuess,omitempty"`
	Secret     *int       `json:"secret,omitempty"`
	History    []Entry    `json:"history"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Pending    bool       `json:"pending"`
}
