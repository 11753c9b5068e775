// internal/game/engine.go
//
// Round controller for a single "guess the number" playthrough.
// Responsibilities:
//   - Draw a secret in [1,100] when a round starts.
//   - Validate raw guesses before touching any state.
//   - Ask the Hinter for feedback and append exactly one history entry per valid guess.
//   - Track phase transitions: not_started → playing → won, and back to playing on Start.
//
// Notes:
//   - Only one guess may be in flight; a second submit while the hint call is
//     outstanding fails with ErrGuessPending.
//   - The hint call runs without holding the round lock so snapshots stay responsive.
package game

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidGuess   = errors.New("invalid guess")
	ErrNotPlaying     = errors.New("round not playing")
	ErrGuessPending   = errors.New("guess already pending")
	ErrRoundRestarted = errors.New("round restarted while guess was pending")
)

// SecretSource returns the secret for a new round. It must return a value in [MinGuess, MaxGuess].
type SecretSource func() int

// Option configures a Round.
type Option func(*Round)

// WithSecretSource replaces the crypto/rand draw, mostly for tests.
func WithSecretSource(src SecretSource) Option {
	return func(r *Round) { r.draw = src }
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Round) { r.now = now }
}

// Round owns the secret, the history and the phase of the current playthrough.
// It is safe for concurrent use.
type Round struct {
	mu         sync.Mutex
	hinter     Hinter
	draw       SecretSource
	now        func() time.Time
	id         string
	secret     int
	phase      Phase
	history    []Entry
	startedAt  time.Time
	finishedAt time.Time
	pending    bool
	generation uint64 // bumped by Start; detects restarts during a pending hint
}

// NewRound constructs a round in PhaseNotStarted. Call Start to draw a secret.
func NewRound(h Hinter, opts ...Option) *Round {
	r := &Round{
		hinter:  h,
		draw:    CryptoSecret,
		now:     time.Now,
		phase:   PhaseNotStarted,
		history: []Entry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start draws a fresh secret, clears history and moves to PhasePlaying.
// It can be called from any phase.
func (r *Round) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = uuid.NewString()
	r.secret = r.draw()
	r.history = []Entry{}
	r.phase = PhasePlaying
	r.startedAt = r.now()
	r.finishedAt = time.Time{}
	r.pending = false
	r.generation++
}

// SubmitGuess validates raw, asks the hinter for feedback and records the result.
//
// Errors:
//   - ErrInvalidGuess: raw is not an integer in [1,100]; nothing changes.
//   - ErrNotPlaying:   no round started, or the round is already won.
//   - ErrGuessPending: another SubmitGuess has not returned yet.
//   - ErrRoundRestarted: Start was called while the hint was being produced;
//     the stale hint is dropped.
func (r *Round) SubmitGuess(ctx context.Context, raw string) (Entry, error) {
	guess, err := ParseGuess(raw)
	if err != nil {
		return Entry{}, err
	}

	r.mu.Lock()
	if r.phase != PhasePlaying {
		r.mu.Unlock()
		return Entry{}, ErrNotPlaying
	}
	if r.pending {
		r.mu.Unlock()
		return Entry{}, ErrGuessPending
	}
	r.pending = true
	gen := r.generation
	secret := r.secret
	prior := append([]Entry(nil), r.history...)
	r.mu.Unlock()

	text := r.hinter.Hint(ctx, secret, guess, prior)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		return Entry{}, ErrRoundRestarted
	}
	r.pending = false

	e := Entry{Guess: guess, Hint: text, CreatedAt: r.now()}
	r.history = append(r.history, e)
	if guess == r.secret {
		r.phase = PhaseWon
		r.finishedAt = e.CreatedAt
	}
	return e, nil
}

// Phase reports the current phase.
func (r *Round) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// ID returns the identifier assigned by the last Start ("" before that).
func (r *Round) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// History returns a copy of the entries in submission order.
func (r *Round) History() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry{}, r.history...)
}

// Secret returns the secret and true once the round is won.
func (r *Round) Secret() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseWon {
		return 0, false
	}
	return r.secret, true
}

// Snapshot copies the observable state of the round.
func (r *Round) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		ID:        r.id,
		Phase:     r.phase,
		Attempts:  len(r.history),
		History:   append([]Entry{}, r.history...),
		StartedAt: r.startedAt,
		Pending:   r.pending,
	}
	if n := len(r.history); n > 0 {
		last := r.history[n-1].Guess
		s.LastGuess = &last
	}
	if r.phase == PhaseWon {
		secret := r.secret
		finished := r.finishedAt
		s.Secret = &secret
		s.FinishedAt = &finished
	}
	return s
}

// ParseGuess accepts a base-10 integer in [MinGuess, MaxGuess], ignoring
// surrounding whitespace.
func ParseGuess(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < MinGuess || n > MaxGuess {
		return 0, ErrInvalidGuess
	}
	return n, nil
}

// CryptoSecret draws uniformly from [MinGuess, MaxGuess] using crypto/rand.
func CryptoSecret() int {
	n, err := rand.Int(rand.Reader, big.NewInt(MaxGuess-MinGuess+1))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		return MinGuess
	}
	return int(n.Int64()) + MinGuess
}
