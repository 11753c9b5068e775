// internal/httpserver/routes_records.go
//
// Read-only views over persisted wins.
//   - GET /leaderboard?date=YYYY-MM-DD → best wins of the day (default today, UTC)
//   - GET /rounds/mine                  → recent wins of the user or anonymous player
//   - GET /stats/me                     → aggregate stats (requires auth)

package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemini-guess/internal/records"
)

func (s *Server) mountRecords(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/rounds/mine", s.handleMyRounds)
	r.With(s.requireAuth).Get("/stats/me", s.handleMyStats)
}

// lbRes is returned by /leaderboard.
type lbRes struct {
	Date string          `json:"date"`
	Top  []records.LBRow `json:"top"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = records.DateKey(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.records.Leaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}

// handleMyRounds lists wins for the logged-in user, or for the guest cookie.
// Guests without an anon cookie have no wins yet.
func (s *Server) handleMyRounds(w http.ResponseWriter, r *http.Request) {
	userID, anonID := "", ""
	if me := currentUser(r); me != nil {
		userID = me.ID
	} else if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		anonID = c.Value
	} else {
		writeJSON(w, http.StatusOK, []records.Summary{})
		return
	}
	rows, err := s.records.ListByOwner(r.Context(), userID, anonID, 50)
	if err != nil {
		log.Error().Err(err).Msg("list rounds")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	st, err := s.accounts.Stats(r.Context(), me.ID)
	if err != nil {
		log.Error().Err(err).Msg("stats")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           me.ID,
		"username":     me.Username,
		"wins":         st.Wins,
		"totalGuesses": st.TotalGuesses,
		"bestGuesses":  st.BestGuesses,
		"avgGuesses":   st.AvgGuesses,
	})
}
