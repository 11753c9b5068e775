// internal/httpserver/server.go
//
// HTTP server wiring for the Gemini Guess backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, panic recovery, request IDs, timeouts on fast routes).
//   - Public endpoints: "/", "/health", "/metrics", "/leaderboard".
//   - Play endpoints: /session (credential gate), /round, /round/new, /round/guess.
//   - Auth + profile endpoints: /auth/*, /stats/me, /rounds/mine.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - /session and /round/guess are not wrapped in chimw.Timeout: the model call
//     is awaited to completion and detached from client cancellation.
//   - The player's API key stays inside the in-memory session; cookies only carry IDs.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemini-guess/internal/account"
	"github.com/robalobadob/gemini-guess/internal/config"
	"github.com/robalobadob/gemini-guess/internal/game"
	"github.com/robalobadob/gemini-guess/internal/hint"
	"github.com/robalobadob/gemini-guess/internal/records"
	"github.com/robalobadob/gemini-guess/internal/store"
)

// Options bundles the dependencies of a Server.
type Options struct {
	Config    config.Config
	Sessions  store.Store
	DB        *sql.DB
	Generator hint.Generator
	// RoundOptions are passed to every new round (tests inject a fixed secret here).
	RoundOptions []game.Option
}

// Server bundles router, session store, persistence and the hint generator.
type Server struct {
	r         *chi.Mux
	cfg       config.Config
	sessions  store.Store
	records   *records.Store
	accounts  *account.Store
	gen       hint.Generator
	roundOpts []game.Option
	http      *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		cfg:       opts.Config,
		sessions:  opts.Sessions,
		records:   records.NewStore(opts.DB),
		accounts:  account.NewStore(opts.DB),
		gen:       opts.Generator,
		roundOpts: opts.RoundOptions,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)   // one zerolog line per request
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS
	s.r.Use(s.withOptionalAuth())

	// --- diagnostics ---
	s.r.Get("/metrics", promhttp.Handler().ServeHTTP)

	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		// Outbound model calls: no handler timeout.
		r.Post("/session", s.handleUnlock)
		r.Post("/round/guess", s.handleGuess)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(10 * time.Second))

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"service":"gemini-guess","endpoints":["/health","POST /session","GET /round","POST /round/new","POST /round/guess","/auth/*"]}`))
			})
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"ok":true}`))
			})

			r.Get("/session", s.handleSessionState)
			r.Delete("/session", s.handleEndSession)
			r.Get("/round", s.handleRound)
			r.Post("/round/new", s.handleNewRound)

			s.mountRecords(r)
			s.mountAuthRoutes(r)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger emits a debug line per request with status and latency.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- helpers -----------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// apiError is the error body shape: {"error":"code","message":"..."}.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, apiError{Error: code, Message: msg})
}
