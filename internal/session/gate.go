// internal/session/gate.go
//
// Credential gate: the one-time check a player must pass before any round starts.
//
// States:
//   unverified ──(probe ok)──▶ verified (terminal for the session)
//   A failed probe leaves the gate unverified; callers may retry without limit.

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// GateState is the credential gate state.
type GateState string

const (
	GateUnverified GateState = "unverified"
	GateVerified   GateState = "verified"
)

var (
	ErrEmptyCredential    = errors.New("credential required")
	ErrCredentialRejected = errors.New("credential rejected")
	ErrGateClosed         = errors.New("credential not verified")
)

// Checker probes a credential; see hint.TestCredential.
type Checker func(ctx context.Context, key string) bool

// Gate holds the credential once it has been verified.
type Gate struct {
	mu    sync.Mutex
	check Checker
	state GateState
	key   string
}

// NewGate returns an unverified gate.
func NewGate(check Checker) *Gate {
	return &Gate{check: check, state: GateUnverified}
}

// Verify probes key and opens the gate on success. A blank key is rejected
// without calling the checker. Once verified, further calls return nil and
// keep the original credential.
func (g *Gate) Verify(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyCredential
	}
	g.mu.Lock()
	if g.state == GateVerified {
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	if !g.check(ctx, key) {
		return ErrCredentialRejected
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GateVerified {
		g.state, g.key = GateVerified, key
	}
	return nil
}

// State reports the current gate state.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Credential returns the verified key.
func (g *Gate) Credential() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.key, g.state == GateVerified
}
