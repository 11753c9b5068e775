// internal/session/session.go
//
// A Session is one player's browser (or terminal) connection to the game:
// one credential gate plus the round it unlocks. The credential only ever
// lives here, in process memory.

package session

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/gemini-guess/internal/game"
)

// HinterFactory builds the hinter for a verified credential.
type HinterFactory func(apiKey string) game.Hinter

// Session couples a credential gate with the round it unlocks.
type Session struct {
	ID        string
	CreatedAt time.Time

	gate     *Gate
	newHint  HinterFactory
	roundOpt []game.Option

	mu       sync.Mutex
	round    *game.Round
	lastSeen time.Time
}

// New returns a session with a closed gate.
func New(id string, check Checker, hinter HinterFactory, opts ...game.Option) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		gate:      NewGate(check),
		newHint:   hinter,
		roundOpt:  opts,
		lastSeen:  now,
	}
}

// Unlock verifies key and, the first time the gate opens, starts a round.
func (s *Session) Unlock(ctx context.Context, key string) error {
	s.Touch()
	if err := s.gate.Verify(ctx, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		cred, _ := s.gate.Credential()
		s.round = game.NewRound(s.newHint(cred), s.roundOpt...)
		s.round.Start()
	}
	return nil
}

// Round returns the unlocked round or ErrGateClosed.
func (s *Session) Round() (*game.Round, error) {
	s.Touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		return nil, ErrGateClosed
	}
	return s.round, nil
}

// GateState reports the session's gate state.
func (s *Session) GateState() GateState { return s.gate.State() }

// Touch marks the session as recently used.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last interaction.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
