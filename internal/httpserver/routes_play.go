// internal/httpserver/routes_play.go
//
// HTTP routes for the credential gate and the guessing round.
//   - POST   /session      → verify an API key; opens the gate and starts a round
//   - GET    /session      → gate state for the current browser
//   - DELETE /session      → forget the session (and its API key)
//   - GET    /round        → current round snapshot
//   - POST   /round/new    → start a fresh round
//   - POST   /round/guess  → submit a guess, returns the new history entry
//
// A browser is tied to its session by the guess_session cookie, a signed JWT
// holding only the session ID. Sessions live in the in-memory store.

package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemini-guess/internal/account"
	"github.com/robalobadob/gemini-guess/internal/game"
	"github.com/robalobadob/gemini-guess/internal/hint"
	"github.com/robalobadob/gemini-guess/internal/metrics"
	"github.com/robalobadob/gemini-guess/internal/records"
	"github.com/robalobadob/gemini-guess/internal/session"
	"github.com/robalobadob/gemini-guess/internal/store"
)

const sessionCookieName = "guess_session"

var errNoSession = errors.New("no session")

// statusFor maps domain errors to HTTP status + error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidGuess):
		return http.StatusBadRequest, "invalid_guess"
	case errors.Is(err, game.ErrNotPlaying):
		return http.StatusConflict, "not_playing"
	case errors.Is(err, game.ErrGuessPending):
		return http.StatusConflict, "guess_pending"
	case errors.Is(err, game.ErrRoundRestarted):
		return http.StatusConflict, "round_restarted"
	case errors.Is(err, session.ErrEmptyCredential):
		return http.StatusBadRequest, "credential_required"
	case errors.Is(err, session.ErrCredentialRejected):
		return http.StatusUnauthorized, "invalid_credential"
	case errors.Is(err, session.ErrGateClosed):
		return http.StatusForbidden, "gate_closed"
	case errors.Is(err, errNoSession):
		return http.StatusUnauthorized, "no_session"
	}
	return http.StatusInternalServerError, "server_error"
}

var errorMessages = map[string]string{
	"invalid_guess":       "Enter a whole number between 1 and 100.",
	"credential_required": "Please enter an API key.",
	"invalid_credential":  "The API key is invalid or the connection failed. Check the key and try again.",
	"gate_closed":         "Verify an API key before playing.",
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, errorMessages[code])
}

// ------------------------------ sessions -----------------------------------

// newSession builds an unverified session wired to the configured generator.
func (s *Server) newSession() *session.Session {
	gen := s.gen
	return session.New(account.GenID(),
		func(ctx context.Context, key string) bool { return hint.TestCredential(ctx, gen, key) },
		func(key string) game.Hinter { return hint.NewProvider(gen, key) },
		s.roundOpts...,
	)
}

// currentSession resolves the session cookie to a live session.
func (s *Server) currentSession(r *http.Request) (*session.Session, error) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return nil, errNoSession
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(c.Value, claims, s.keyFunc, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !t.Valid {
		return nil, errNoSession
	}
	sid, _ := claims["sid"].(string)
	sess, err := s.sessions.Get(r.Context(), sid)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Msg("load session")
		}
		return nil, errNoSession
	}
	return sess, nil
}

// ensureSession returns the current session or creates one and sets its cookie.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if sess, err := s.currentSession(r); err == nil {
		return sess, nil
	}
	sess := s.newSession()
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Len()))

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sess.ID,
		"iat": time.Now().Unix(),
	}).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	s.setCookie(w, sessionCookieName, tok, time.Time{})
	return sess, nil
}

// sessionRound resolves the current session's unlocked round.
func (s *Server) sessionRound(r *http.Request) (*session.Session, *game.Round, error) {
	sess, err := s.currentSession(r)
	if err != nil {
		return nil, nil, err
	}
	round, err := sess.Round()
	if err != nil {
		return sess, nil, err
	}
	return sess, round, nil
}

// ------------------------------ handlers -----------------------------------

type unlockReq struct {
	APIKey string `json:"apiKey"`
}

type sessionRes struct {
	Gate  session.GateState `json:"gate"`
	Round *game.Snapshot    `json:"round,omitempty"`
}

// handleUnlock runs the credential gate. The probe is detached from the
// request context so a client disconnect does not abort it half way.
func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req unlockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	sess, err := s.ensureSession(w, r)
	if err != nil {
		log.Error().Err(err).Msg("create session")
		writeError(w, http.StatusInternalServerError, "session_failed", "")
		return
	}
	if err := sess.Unlock(context.WithoutCancel(r.Context()), req.APIKey); err != nil {
		log.Info().Str("session", sess.ID).Err(err).Msg("credential gate stayed closed")
		writeDomainError(w, err)
		return
	}
	round, err := sess.Round()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	snap := round.Snapshot()
	writeJSON(w, http.StatusOK, sessionRes{Gate: sess.GateState(), Round: &snap})
}

// handleSessionState reports the gate state ("none" without a session).
func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.currentSession(r)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"gate": "none"})
		return
	}
	res := sessionRes{Gate: sess.GateState()}
	if round, err := sess.Round(); err == nil {
		snap := round.Snapshot()
		res.Round = &snap
	}
	writeJSON(w, http.StatusOK, res)
}

// handleEndSession drops the session and clears its cookie.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if sess, err := s.currentSession(r); err == nil {
		_ = s.sessions.Delete(r.Context(), sess.ID)
		metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	}
	s.clearCookie(w, sessionCookieName)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	_, round, err := s.sessionRound(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round.Snapshot())
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	sess, round, err := s.sessionRound(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	round.Start()
	log.Info().Str("session", sess.ID).Str("round", round.ID()).Msg("round started")
	writeJSON(w, http.StatusOK, round.Snapshot())
}

// guessReq accepts the guess either as a JSON string or a JSON number.
type guessReq struct {
	Guess json.RawMessage `json:"guess"`
}

func (g guessReq) raw() string {
	b := bytes.TrimSpace(g.Guess)
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err == nil {
			return s
		}
		return ""
	}
	return string(b)
}

type guessRes struct {
	Entry game.Entry    `json:"entry"`
	Round game.Snapshot `json:"round"`
}

// handleGuess validates and applies a guess, waits for the hint, and
// persists the round when it is won (best effort, non-fatal if it fails).
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	sess, round, err := s.sessionRound(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	entry, err := round.SubmitGuess(context.WithoutCancel(r.Context()), req.raw())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.GuessesTotal.Inc()

	snap := round.Snapshot()
	if snap.Phase == game.PhaseWon && snap.ID != "" && entry.Guess == *snap.Secret {
		metrics.RoundsWonTotal.Inc()
		s.persistWin(w, r, snap)
		log.Info().Str("session", sess.ID).Str("round", snap.ID).Int("guesses", snap.Attempts).Msg("round won")
	}
	writeJSON(w, http.StatusOK, guessRes{Entry: entry, Round: snap})
}

// persistWin stores a won round for the logged-in user or the anonymous cookie.
func (s *Server) persistWin(w http.ResponseWriter, r *http.Request, snap game.Snapshot) {
	res, err := records.FromSnapshot(snap)
	if err != nil {
		log.Warn().Err(err).Msg("build round record")
		return
	}
	if me := currentUser(r); me != nil {
		res.UserID = me.ID
	} else {
		res.AnonymousID = s.ensureAnonID(w, r)
	}
	if err := s.records.Insert(context.WithoutCancel(r.Context()), res); err != nil {
		log.Warn().Err(err).Str("round", res.RoundID).Msg("insert won round")
	}
}
