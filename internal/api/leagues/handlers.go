// internal/api/leagues/handlers.go
package leagues

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtline/courtline/internal/api/apiutil"
	"github.com/courtline/courtline/internal/db"
	"github.com/courtline/courtline/internal/leagues"
	"github.com/courtline/courtline/internal/pairing"
)

var (
	database  *db.DB
	scheduler *pairing.Scheduler
)

func InitHandlers(d *db.DB, s *pairing.Scheduler) {
	database = d
	scheduler = s
}

type planRequest struct {
	SessionID            string             `json:"session_id"`
	StartDate            string             `json:"start_date"`
	EndDate              string             `json:"end_date"`
	MatchDurationMinutes int                `json:"match_duration_minutes"`
	Hours                []leagues.DayHours `json:"hours"`
}

type planResponse struct {
	SessionID string                   `json:"session_id"`
	Rounds    int                      `json:"rounds"`
	Matches   []leagues.ScheduledMatch `json:"matches"`
}

// HandlePlan places a session's full rotation schedule onto the club
// calendar: every generated match gets a court and a start time inside the
// configured operating hours.
func HandlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiutil.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	var req planRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.SessionID == "" {
		apiutil.WriteError(w, r, http.StatusBadRequest, "session_id is required", nil)
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "start_date must be YYYY-MM-DD", err)
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "end_date must be YYYY-MM-DD", err)
		return
	}
	if req.MatchDurationMinutes < 1 {
		apiutil.WriteError(w, r, http.StatusBadRequest, "match_duration_minutes must be positive", nil)
		return
	}

	session, err := database.GetSession(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apiutil.WriteError(w, r, http.StatusNotFound, "session not found", err)
			return
		}
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to load session", err)
		return
	}
	roster, err := database.SessionRoster(r.Context(), session.ID)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to load session roster", err)
		return
	}

	rounds, err := scheduler.CompleteSchedule(roster, pairing.Format(session.Format), session.MaxCourts)
	if err != nil {
		if errors.Is(err, pairing.ErrUnsupported) {
			apiutil.WriteError(w, r, http.StatusUnprocessableEntity, "scheduling not possible for this roster and format", err)
			return
		}
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to compute schedule", err)
		return
	}

	matches, err := leagues.PlanCalendar(rounds, startDate, endDate, session.MaxCourts, req.Hours,
		time.Duration(req.MatchDurationMinutes)*time.Minute)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusUnprocessableEntity, "failed to plan calendar", err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("session_id", session.ID).
		Int("rounds", len(rounds)).
		Int("matches", len(matches)).
		Msg("League calendar planned")

	_ = apiutil.WriteJSON(w, http.StatusOK, planResponse{
		SessionID: session.ID,
		Rounds:    len(rounds),
		Matches:   matches,
	})
}

// HandleStandings returns the session's box-league table from recorded
// results.
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		apiutil.WriteError(w, r, http.StatusBadRequest, "session_id is required", nil)
		return
	}
	if _, err := database.GetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apiutil.WriteError(w, r, http.StatusNotFound, "session not found", err)
			return
		}
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to load session", err)
		return
	}

	matches, err := database.ListSessionMatches(r.Context(), sessionID)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to load matches", err)
		return
	}

	players, err := database.ListPlayers(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to load players", err)
		return
	}
	names := make(map[string]string, len(players))
	for _, player := range players {
		names[player.ID] = player.Name
	}

	standings, err := leagues.CalculateStandings(matches, names)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusUnprocessableEntity, "failed to calculate standings", err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, standings)
}
