package leagues

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/courtline/courtline/internal/db"
)

func score(value int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(value), Valid: true}
}

func TestCalculateStandingsSingles(t *testing.T) {
	matches := []db.SessionMatch{
		{ID: 1, SideA: []string{"alice"}, SideB: []string{"bob"}, ScoreA: score(11), ScoreB: score(5)},
		{ID: 2, SideA: []string{"carol"}, SideB: []string{"alice"}, ScoreA: score(11), ScoreB: score(9)},
		{ID: 3, SideA: []string{"bob"}, SideB: []string{"carol"}, ScoreA: score(7), ScoreB: score(11)},
	}

	standings, err := CalculateStandings(matches, nil)
	if err != nil {
		t.Fatalf("calculate standings: %v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(standings))
	}

	if standings[0].PlayerID != "carol" || standings[0].Wins != 2 {
		t.Errorf("expected carol on top with 2 wins, got %+v", standings[0])
	}
	if standings[1].PlayerID != "alice" || standings[1].Wins != 1 || standings[1].Losses != 1 {
		t.Errorf("expected alice second at 1-1, got %+v", standings[1])
	}
	if standings[2].PlayerID != "bob" || standings[2].Losses != 2 {
		t.Errorf("expected bob last with 2 losses, got %+v", standings[2])
	}

	if standings[1].PointsFor != 20 || standings[1].PointsAgainst != 16 || standings[1].PointDifferential != 4 {
		t.Errorf("unexpected points for alice: %+v", standings[1])
	}
}

func TestCalculateStandingsDoublesCreditsEachPlayer(t *testing.T) {
	matches := []db.SessionMatch{
		{ID: 1, SideA: []string{"a", "b"}, SideB: []string{"c", "d"}, ScoreA: score(11), ScoreB: score(8)},
	}

	standings, err := CalculateStandings(matches, nil)
	if err != nil {
		t.Fatalf("calculate standings: %v", err)
	}
	if len(standings) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(standings))
	}
	for _, row := range standings[:2] {
		if row.Wins != 1 || row.PointsFor != 11 || row.PointsAgainst != 8 {
			t.Errorf("winning side row not credited: %+v", row)
		}
	}
	for _, row := range standings[2:] {
		if row.Losses != 1 || row.PointsFor != 8 {
			t.Errorf("losing side row not credited: %+v", row)
		}
	}
}

func TestCalculateStandingsHeadToHeadTiebreaker(t *testing.T) {
	// alice and bob both finish 2-1. bob's blowout wins give him the far
	// better point differential, but alice beat him directly.
	matches := []db.SessionMatch{
		{ID: 1, SideA: []string{"alice"}, SideB: []string{"bob"}, ScoreA: score(11), ScoreB: score(9)},
		{ID: 2, SideA: []string{"bob"}, SideB: []string{"carol"}, ScoreA: score(11), ScoreB: score(0)},
		{ID: 3, SideA: []string{"bob"}, SideB: []string{"dave"}, ScoreA: score(11), ScoreB: score(0)},
		{ID: 4, SideA: []string{"alice"}, SideB: []string{"eve"}, ScoreA: score(11), ScoreB: score(10)},
		{ID: 5, SideA: []string{"carol"}, SideB: []string{"alice"}, ScoreA: score(11), ScoreB: score(0)},
	}

	standings, err := CalculateStandings(matches, nil)
	if err != nil {
		t.Fatalf("calculate standings: %v", err)
	}
	if standings[0].PlayerID != "alice" || standings[1].PlayerID != "bob" {
		t.Errorf("expected head-to-head to rank alice over bob, got %s then %s",
			standings[0].PlayerID, standings[1].PlayerID)
	}
	if standings[1].PointDifferential <= standings[0].PointDifferential {
		t.Errorf("test setup should give bob the better differential: alice %d, bob %d",
			standings[0].PointDifferential, standings[1].PointDifferential)
	}
}

func TestCalculateStandingsSkipsUnscoredMatches(t *testing.T) {
	matches := []db.SessionMatch{
		{ID: 1, SideA: []string{"alice"}, SideB: []string{"bob"}},
	}

	standings, err := CalculateStandings(matches, map[string]string{"alice": "Alice"})
	if err != nil {
		t.Fatalf("calculate standings: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("expected roster rows for unscored match, got %d", len(standings))
	}
	for _, row := range standings {
		if row.MatchesPlayed != 0 || row.Wins != 0 || row.Losses != 0 {
			t.Errorf("unscored match should not count: %+v", row)
		}
	}
	if standings[0].Name != "Alice" {
		t.Errorf("expected display name from map, got %+v", standings[0])
	}
}

func TestCalculateStandingsRejectsTies(t *testing.T) {
	matches := []db.SessionMatch{
		{ID: 7, SideA: []string{"alice"}, SideB: []string{"bob"}, ScoreA: score(10), ScoreB: score(10)},
	}

	_, err := CalculateStandings(matches, nil)
	if err == nil {
		t.Fatal("expected error for tied match")
	}
	if !strings.Contains(err.Error(), "tied") {
		t.Errorf("unexpected error: %v", err)
	}
}
