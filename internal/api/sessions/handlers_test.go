package sessions

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/courtline/courtline/internal/db"
	"github.com/courtline/courtline/internal/pairing"
	"github.com/courtline/courtline/internal/testutil"
)

func setupSessionTest(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)
	ctx := context.Background()
	for i := 1; i <= 8; i++ {
		player := db.Player{
			ID:   fmt.Sprintf("player-%02d", i),
			Name: fmt.Sprintf("Player %d", i),
		}
		if err := database.CreatePlayer(ctx, player); err != nil {
			t.Fatalf("seed player: %v", err)
		}
	}

	engine := pairing.New(pairing.WithRand(rand.New(rand.NewSource(42))))
	InitHandlers(database, engine, 4)
	return database
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func createTestSession(t *testing.T, format string, players []string, maxCourts int) SessionView {
	t.Helper()

	rec := postJSON(t, HandleSessions, "/api/v1/sessions", map[string]any{
		"name":       "Test Session",
		"format":     format,
		"max_courts": maxCourts,
		"players":    players,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[SessionView](t, rec)
}

func playerIDs(n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, fmt.Sprintf("player-%02d", i))
	}
	return ids
}

func TestCreateSessionValidation(t *testing.T) {
	setupSessionTest(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{
			"format": "doubles", "players": playerIDs(4),
		}},
		{"bad format", map[string]any{
			"name": "S", "format": "triples", "players": playerIDs(4),
		}},
		{"too few players", map[string]any{
			"name": "S", "format": "singles", "players": playerIDs(1),
		}},
		{"duplicate players", map[string]any{
			"name": "S", "format": "singles", "players": []string{"player-01", "player-01"},
		}},
		{"negative courts", map[string]any{
			"name": "S", "format": "singles", "max_courts": -1, "players": playerIDs(2),
		}},
		{"unknown field", map[string]any{
			"name": "S", "format": "singles", "players": playerIDs(2), "extra": true,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, HandleSessions, "/api/v1/sessions", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateSessionDefaultsCourts(t *testing.T) {
	setupSessionTest(t)

	view := createTestSession(t, "doubles", playerIDs(8), 0)
	if view.MaxCourts != 4 {
		t.Errorf("expected default max courts 4, got %d", view.MaxCourts)
	}
	if view.UniqueRounds != 7 {
		t.Errorf("expected 7 unique rounds for 8-player doubles, got %d", view.UniqueRounds)
	}
}

func TestScheduleEndpoint(t *testing.T) {
	setupSessionTest(t)
	view := createTestSession(t, "doubles", playerIDs(8), 2)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/schedule?session_id="+view.ID, nil)
	rec := httptest.NewRecorder()
	HandleSchedule(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule: status %d, body %s", rec.Code, rec.Body.String())
	}

	schedule := decodeBody[ScheduleView](t, rec)
	if !schedule.Supported {
		t.Fatal("8-player doubles should be supported")
	}
	if schedule.UniqueRounds != 7 || len(schedule.Rounds) != 7 {
		t.Fatalf("expected 7 rounds, got unique_rounds=%d len=%d", schedule.UniqueRounds, len(schedule.Rounds))
	}
	for _, round := range schedule.Rounds {
		if len(round.Matches) != 2 {
			t.Errorf("round %d: expected 2 matches on 2 courts, got %d", round.Number, len(round.Matches))
		}
	}
}

func TestScheduleEndpointUnsupportedRoster(t *testing.T) {
	setupSessionTest(t)
	view := createTestSession(t, "doubles", playerIDs(6), 2)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/schedule?session_id="+view.ID, nil)
	rec := httptest.NewRecorder()
	HandleSchedule(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule: status %d, body %s", rec.Code, rec.Body.String())
	}

	schedule := decodeBody[ScheduleView](t, rec)
	if schedule.Supported {
		t.Error("6-player doubles should be unsupported")
	}
	if len(schedule.Rounds) != 0 {
		t.Errorf("expected no rounds, got %d", len(schedule.Rounds))
	}
}

func TestNextRoundPersistsAndRepeats(t *testing.T) {
	setupSessionTest(t)
	view := createTestSession(t, "singles", playerIDs(4), 2)

	var first RoundView
	for i := 1; i <= 3; i++ {
		rec := postJSON(t, HandleNextRound, "/api/v1/sessions/rounds/next?session_id="+view.ID, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("next round %d: status %d, body %s", i, rec.Code, rec.Body.String())
		}
		round := decodeBody[RoundView](t, rec)
		if round.Number != i {
			t.Errorf("expected round number %d, got %d", i, round.Number)
		}
		if len(round.Matches) != 2 {
			t.Errorf("round %d: expected 2 matches, got %d", i, len(round.Matches))
		}
		if i == 1 {
			first = round
		}
	}

	// The persisted round is retrievable and matches what was returned.
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/sessions/rounds?session_id=%s&number=1", view.ID), nil)
	rec := httptest.NewRecorder()
	HandleRound(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get round: status %d, body %s", rec.Code, rec.Body.String())
	}
	stored := decodeBody[RoundView](t, rec)
	if !reflect.DeepEqual(stored, first) {
		t.Errorf("stored round differs from generated round:\n%+v\n%+v", stored, first)
	}

	// 4-player singles has 3 unique rounds; the fourth repeats the first's
	// pairings.
	rec = postJSON(t, HandleNextRound, "/api/v1/sessions/rounds/next?session_id="+view.ID, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("round 4: status %d, body %s", rec.Code, rec.Body.String())
	}
	fourth := decodeBody[RoundView](t, rec)
	if fourth.Number != 4 {
		t.Errorf("expected round number 4, got %d", fourth.Number)
	}
	for i := range fourth.Matches {
		if !reflect.DeepEqual(fourth.Matches[i].SideA, first.Matches[i].SideA) ||
			!reflect.DeepEqual(fourth.Matches[i].SideB, first.Matches[i].SideB) {
			t.Errorf("round 4 match %d should repeat round 1: %+v vs %+v",
				i, fourth.Matches[i], first.Matches[i])
		}
	}
}

func TestNextRoundUnsupportedRoster(t *testing.T) {
	setupSessionTest(t)
	view := createTestSession(t, "doubles", playerIDs(6), 2)

	rec := postJSON(t, HandleNextRound, "/api/v1/sessions/rounds/next?session_id="+view.ID, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unsupported roster, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRecordResult(t *testing.T) {
	setupSessionTest(t)
	view := createTestSession(t, "singles", playerIDs(2), 1)

	rec := postJSON(t, HandleNextRound, "/api/v1/sessions/rounds/next?session_id="+view.ID, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("next round: status %d, body %s", rec.Code, rec.Body.String())
	}
	round := decodeBody[RoundView](t, rec)
	matchID := round.Matches[0].ID

	rec = postJSON(t, HandleResult, "/api/v1/sessions/results", map[string]any{
		"match_id": matchID,
		"score_a":  11,
		"score_b":  7,
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("record result: status %d, body %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/sessions/rounds?session_id=%s&number=1", view.ID), nil)
	getRec := httptest.NewRecorder()
	HandleRound(getRec, req)
	stored := decodeBody[RoundView](t, getRec)
	if stored.Matches[0].ScoreA == nil || *stored.Matches[0].ScoreA != 11 {
		t.Errorf("expected recorded score_a 11, got %+v", stored.Matches[0])
	}

	rec = postJSON(t, HandleResult, "/api/v1/sessions/results", map[string]any{
		"match_id": matchID + 999,
		"score_a":  1,
		"score_b":  2,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown match, got %d", rec.Code)
	}
}

func TestResetClearsRoundsAndRerandomizes(t *testing.T) {
	database := setupSessionTest(t)
	view := createTestSession(t, "doubles", playerIDs(8), 4)

	rec := postJSON(t, HandleNextRound, "/api/v1/sessions/rounds/next?session_id="+view.ID, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("next round: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, HandleReset, "/api/v1/sessions/reset?session_id="+view.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reset: status %d, body %s", rec.Code, rec.Body.String())
	}

	count, err := database.CountRounds(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("count rounds: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rounds after reset, got %d", count)
	}

	// A fresh cycle starts back at round one.
	rec = postJSON(t, HandleNextRound, "/api/v1/sessions/rounds/next?session_id="+view.ID, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("next round after reset: status %d, body %s", rec.Code, rec.Body.String())
	}
	round := decodeBody[RoundView](t, rec)
	if round.Number != 1 {
		t.Errorf("expected round 1 after reset, got %d", round.Number)
	}
}

func TestCompleteSessionBlocksNewRounds(t *testing.T) {
	setupSessionTest(t)
	view := createTestSession(t, "singles", playerIDs(4), 2)

	rec := postJSON(t, HandleComplete, "/api/v1/sessions/complete?session_id="+view.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("complete: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, HandleNextRound, "/api/v1/sessions/rounds/next?session_id="+view.ID, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for completed session, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSessionNotFound(t *testing.T) {
	setupSessionTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/schedule?session_id=missing", nil)
	rec := httptest.NewRecorder()
	HandleSchedule(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
