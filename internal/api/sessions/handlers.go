// internal/api/sessions/handlers.go
package sessions

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/courtline/courtline/internal/api/apiutil"
	"github.com/courtline/courtline/internal/db"
	"github.com/courtline/courtline/internal/pairing"
)

var (
	database         *db.DB
	scheduler        *pairing.Scheduler
	defaultMaxCourts int
)

func InitHandlers(d *db.DB, s *pairing.Scheduler, defaultCourts int) {
	database = d
	scheduler = s
	defaultMaxCourts = defaultCourts
}

type SessionView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Format       string   `json:"format"`
	MaxCourts    int      `json:"max_courts"`
	Status       string   `json:"status"`
	Roster       []string `json:"roster,omitempty"`
	UniqueRounds int      `json:"unique_rounds"`
}

type MatchView struct {
	ID     int64    `json:"id,omitempty"`
	Court  int      `json:"court"`
	SideA  []string `json:"side_a"`
	SideB  []string `json:"side_b"`
	ScoreA *int     `json:"score_a,omitempty"`
	ScoreB *int     `json:"score_b,omitempty"`
}

type RoundView struct {
	Number  int         `json:"number"`
	Matches []MatchView `json:"matches"`
	Resting []string    `json:"resting"`
}

type ScheduleView struct {
	SessionID    string      `json:"session_id"`
	Supported    bool        `json:"supported"`
	UniqueRounds int         `json:"unique_rounds"`
	Rounds       []RoundView `json:"rounds"`
}

type createSessionRequest struct {
	Name      string   `json:"name"`
	Format    string   `json:"format"`
	MaxCourts int      `json:"max_courts,omitempty"`
	Players   []string `json:"players"`
}

type resultRequest struct {
	MatchID int64 `json:"match_id"`
	ScoreA  int   `json:"score_a"`
	ScoreB  int   `json:"score_b"`
}

// HandleSessions serves the session collection: GET lists, POST creates.
func HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		handleList(w, r)
	case http.MethodPost:
		handleCreate(w, r)
	default:
		apiutil.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func handleList(w http.ResponseWriter, r *http.Request) {
	sessions, err := database.ListSessions(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to list sessions", err)
		return
	}

	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		roster, err := database.SessionRoster(r.Context(), session.ID)
		if err != nil {
			apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to load session roster", err)
			return
		}
		views = append(views, toView(session, roster))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, views)
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		apiutil.WriteError(w, r, http.StatusBadRequest, "name is required", apiutil.FieldError{Field: "name", Reason: "is required"})
		return
	}
	format := pairing.Format(req.Format)
	if !format.Valid() {
		apiutil.WriteError(w, r, http.StatusBadRequest, "format must be singles or doubles", apiutil.FieldError{Field: "format", Reason: "must be singles or doubles"})
		return
	}
	if len(req.Players) < 2 {
		apiutil.WriteError(w, r, http.StatusBadRequest, "at least two players are required", apiutil.FieldError{Field: "players", Reason: "needs at least two entries"})
		return
	}
	if hasDuplicates(req.Players) {
		apiutil.WriteError(w, r, http.StatusBadRequest, "roster contains duplicate players", apiutil.FieldError{Field: "players", Reason: "contains duplicates"})
		return
	}
	if req.MaxCourts == 0 {
		req.MaxCourts = defaultMaxCourts
	}
	if req.MaxCourts < 1 {
		apiutil.WriteError(w, r, http.StatusBadRequest, "max courts must be positive", apiutil.FieldError{Field: "max_courts", Reason: "must be positive"})
		return
	}

	session := db.Session{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Format:    string(format),
		MaxCourts: req.MaxCourts,
		Status:    db.SessionActive,
	}
	if err := database.CreateSession(r.Context(), session, req.Players); err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to create session", err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("session_id", session.ID).
		Str("format", session.Format).
		Int("roster_size", len(req.Players)).
		Int("max_courts", session.MaxCourts).
		Msg("Session created")

	_ = apiutil.WriteJSON(w, http.StatusCreated, toView(session, req.Players))
}

// HandleSchedule returns the session's full rotation schedule as computed by
// the pairing engine, without persisting anything. Unsupported roster/format
// combinations come back with supported=false and no rounds.
func HandleSchedule(w http.ResponseWriter, r *http.Request) {
	session, roster, ok := loadSession(w, r)
	if !ok {
		return
	}

	rounds, err := scheduler.CompleteSchedule(roster, pairing.Format(session.Format), session.MaxCourts)
	if err != nil && !errors.Is(err, pairing.ErrUnsupported) {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to compute schedule", err)
		return
	}

	view := ScheduleView{
		SessionID:    session.ID,
		Supported:    len(rounds) > 0,
		UniqueRounds: pairing.MaxUniqueRounds(len(roster), pairing.Format(session.Format)),
		Rounds:       make([]RoundView, 0, len(rounds)),
	}
	for _, round := range rounds {
		view.Rounds = append(view.Rounds, roundToView(round))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, view)
}

// HandleNextRound generates, persists and returns the session's next round.
// The round number is the count of persisted rounds plus one; once the unique
// schedule is exhausted the rotation repeats.
func HandleNextRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiutil.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	session, roster, ok := loadSession(w, r)
	if !ok {
		return
	}
	if session.Status != db.SessionActive {
		apiutil.WriteError(w, r, http.StatusConflict, "session is not active", nil)
		return
	}

	played, err := database.CountRounds(r.Context(), session.ID)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to count rounds", err)
		return
	}
	number := played + 1

	round, err := scheduler.Round(roster, pairing.Format(session.Format), number, session.MaxCourts)
	if err != nil {
		if errors.Is(err, pairing.ErrUnsupported) {
			apiutil.WriteError(w, r, http.StatusUnprocessableEntity, "scheduling not possible for this roster and format", err)
			return
		}
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to generate round", err)
		return
	}

	matches := make([]db.SessionMatch, 0, len(round.Matches))
	for court, match := range round.Matches {
		matches = append(matches, db.SessionMatch{
			Court: court + 1,
			SideA: match.SideA,
			SideB: match.SideB,
		})
	}
	if _, err := database.InsertRound(r.Context(), session.ID, number, round.Resting, matches); err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to persist round", err)
		return
	}
	if err := database.TouchSession(r.Context(), session.ID); err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to update session", err)
		return
	}

	stored, storedMatches, err := database.GetRound(r.Context(), session.ID, number)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to reload round", err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("session_id", session.ID).
		Int("round_number", number).
		Int("matches", len(storedMatches)).
		Int("resting", len(stored.Resting)).
		Msg("Round generated")

	_ = apiutil.WriteJSON(w, http.StatusCreated, storedRoundToView(stored, storedMatches))
}

// HandleRound returns a previously persisted round by number.
func HandleRound(w http.ResponseWriter, r *http.Request) {
	session, _, ok := loadSession(w, r)
	if !ok {
		return
	}
	number, err := strconv.Atoi(r.URL.Query().Get("number"))
	if err != nil || number < 1 {
		apiutil.WriteError(w, r, http.StatusBadRequest, "number must be a positive integer", err)
		return
	}

	round, matches, err := database.GetRound(r.Context(), session.ID, number)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apiutil.WriteError(w, r, http.StatusNotFound, "round not found", err)
			return
		}
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to load round", err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, storedRoundToView(round, matches))
}

// HandleResult records a match score.
func HandleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiutil.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.MatchID <= 0 {
		apiutil.WriteError(w, r, http.StatusBadRequest, "match_id is required", nil)
		return
	}
	if req.ScoreA < 0 || req.ScoreB < 0 {
		apiutil.WriteError(w, r, http.StatusBadRequest, "scores must be non-negative", nil)
		return
	}

	if err := database.RecordMatchResult(r.Context(), req.MatchID, req.ScoreA, req.ScoreB); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apiutil.WriteError(w, r, http.StatusNotFound, "match not found", err)
			return
		}
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to record result", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReset starts a new scheduling cycle for a session: persisted rounds
// are dropped and the cached schedule is forgotten so the next round request
// re-randomizes the rotation.
func HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiutil.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	session, roster, ok := loadSession(w, r)
	if !ok {
		return
	}

	if err := database.DeleteSessionRounds(r.Context(), session.ID); err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to reset session", err)
		return
	}
	scheduler.Forget(roster, pairing.Format(session.Format), session.MaxCourts)

	log.Ctx(r.Context()).Info().
		Str("session_id", session.ID).
		Msg("Session schedule reset")

	w.WriteHeader(http.StatusNoContent)
}

// HandleComplete closes a session and forgets its cached schedule.
func HandleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiutil.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	session, roster, ok := loadSession(w, r)
	if !ok {
		return
	}

	if err := database.CompleteSession(r.Context(), session.ID); err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to complete session", err)
		return
	}
	scheduler.Forget(roster, pairing.Format(session.Format), session.MaxCourts)
	w.WriteHeader(http.StatusNoContent)
}

func loadSession(w http.ResponseWriter, r *http.Request) (db.Session, []string, bool) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		apiutil.WriteError(w, r, http.StatusBadRequest, "session_id is required", nil)
		return db.Session{}, nil, false
	}
	session, err := database.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apiutil.WriteError(w, r, http.StatusNotFound, "session not found", err)
			return db.Session{}, nil, false
		}
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to load session", err)
		return db.Session{}, nil, false
	}
	roster, err := database.SessionRoster(r.Context(), session.ID)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusInternalServerError, "failed to load session roster", err)
		return db.Session{}, nil, false
	}
	return session, roster, true
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

func toView(session db.Session, roster []string) SessionView {
	return SessionView{
		ID:           session.ID,
		Name:         session.Name,
		Format:       session.Format,
		MaxCourts:    session.MaxCourts,
		Status:       session.Status,
		Roster:       roster,
		UniqueRounds: pairing.MaxUniqueRounds(len(roster), pairing.Format(session.Format)),
	}
}

func roundToView(round pairing.Round) RoundView {
	view := RoundView{
		Number:  round.Number,
		Matches: make([]MatchView, 0, len(round.Matches)),
		Resting: round.Resting,
	}
	for court, match := range round.Matches {
		view.Matches = append(view.Matches, MatchView{
			Court: court + 1,
			SideA: match.SideA,
			SideB: match.SideB,
		})
	}
	return view
}

func storedRoundToView(round db.SessionRound, matches []db.SessionMatch) RoundView {
	view := RoundView{
		Number:  round.Number,
		Matches: make([]MatchView, 0, len(matches)),
		Resting: round.Resting,
	}
	for _, match := range matches {
		matchView := MatchView{
			ID:    match.ID,
			Court: match.Court,
			SideA: match.SideA,
			SideB: match.SideB,
		}
		if match.ScoreA.Valid {
			score := int(match.ScoreA.Int64)
			matchView.ScoreA = &score
		}
		if match.ScoreB.Valid {
			score := int(match.ScoreB.Int64)
			matchView.ScoreB = &score
		}
		view.Matches = append(view.Matches, matchView)
	}
	return view
}
