package leagues

import (
	"fmt"
	"sort"

	"github.com/courtline/courtline/internal/db"
)

// PlayerStanding is one row of a box-league table. Doubles results credit
// every player on the winning side individually.
type PlayerStanding struct {
	PlayerID          string `json:"player_id"`
	Name              string `json:"name,omitempty"`
	MatchesPlayed     int    `json:"matches_played"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	PointsFor         int    `json:"points_for"`
	PointsAgainst     int    `json:"points_against"`
	PointDifferential int    `json:"point_differential"`
}

type playerStats struct {
	PlayerStanding
	headToHeadWins      map[string]int
	headToHeadPointDiff map[string]int
}

// CalculateStandings builds the standings table from a session's persisted
// matches. Matches without recorded scores are skipped; tied scores are
// rejected. The names map is optional and only fills the display name.
func CalculateStandings(matches []db.SessionMatch, names map[string]string) ([]PlayerStanding, error) {
	players := make(map[string]*playerStats)

	entry := func(playerID string) *playerStats {
		stats, ok := players[playerID]
		if !ok {
			stats = &playerStats{
				PlayerStanding: PlayerStanding{
					PlayerID: playerID,
					Name:     names[playerID],
				},
				headToHeadWins:      make(map[string]int),
				headToHeadPointDiff: make(map[string]int),
			}
			players[playerID] = stats
		}
		return stats
	}

	for _, match := range matches {
		// Register roster presence even before any result comes in.
		for _, playerID := range append(append([]string{}, match.SideA...), match.SideB...) {
			entry(playerID)
		}

		if !match.ScoreA.Valid || !match.ScoreB.Valid {
			continue
		}
		scoreA := int(match.ScoreA.Int64)
		scoreB := int(match.ScoreB.Int64)
		if scoreA == scoreB {
			return nil, fmt.Errorf("match %d is tied; ties are not supported", match.ID)
		}

		creditSide(entry, match.SideA, match.SideB, scoreA, scoreB)
		creditSide(entry, match.SideB, match.SideA, scoreB, scoreA)
	}

	ordered := make([]*playerStats, 0, len(players))
	for _, stats := range players {
		ordered = append(ordered, stats)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Wins != ordered[j].Wins {
			return ordered[i].Wins > ordered[j].Wins
		}
		return sortName(ordered[i]) < sortName(ordered[j])
	})

	sortStandingsByTiebreakers(ordered)

	standings := make([]PlayerStanding, 0, len(ordered))
	for _, stats := range ordered {
		standings = append(standings, stats.PlayerStanding)
	}
	return standings, nil
}

func creditSide(entry func(string) *playerStats, side, opponents []string, scoreFor, scoreAgainst int) {
	for _, playerID := range side {
		stats := entry(playerID)
		stats.MatchesPlayed++
		stats.PointsFor += scoreFor
		stats.PointsAgainst += scoreAgainst
		stats.PointDifferential = stats.PointsFor - stats.PointsAgainst

		if scoreFor > scoreAgainst {
			stats.Wins++
			for _, opponentID := range opponents {
				stats.headToHeadWins[opponentID]++
			}
		} else {
			stats.Losses++
		}
		for _, opponentID := range opponents {
			stats.headToHeadPointDiff[opponentID] += scoreFor - scoreAgainst
		}
	}
}

func sortName(stats *playerStats) string {
	if stats.Name != "" {
		return stats.Name
	}
	return stats.PlayerID
}

func sortStandingsByTiebreakers(ordered []*playerStats) {
	if len(ordered) < 2 {
		return
	}

	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].Wins == ordered[start].Wins {
			end++
		}

		if end-start > 1 {
			group := ordered[start:end]
			groupSet := make(map[string]struct{}, len(group))
			for _, stats := range group {
				groupSet[stats.PlayerID] = struct{}{}
			}

			sort.SliceStable(group, func(i, j int) bool {
				headToHeadWinsI := headToHeadWins(group[i], groupSet)
				headToHeadWinsJ := headToHeadWins(group[j], groupSet)
				if headToHeadWinsI != headToHeadWinsJ {
					return headToHeadWinsI > headToHeadWinsJ
				}
				if group[i].PointDifferential != group[j].PointDifferential {
					return group[i].PointDifferential > group[j].PointDifferential
				}
				headToHeadDiffI := headToHeadPointDiff(group[i], groupSet)
				headToHeadDiffJ := headToHeadPointDiff(group[j], groupSet)
				if headToHeadDiffI != headToHeadDiffJ {
					return headToHeadDiffI > headToHeadDiffJ
				}
				return sortName(group[i]) < sortName(group[j])
			})
		}

		start = end
	}
}

func headToHeadWins(stats *playerStats, group map[string]struct{}) int {
	total := 0
	for opponentID, wins := range stats.headToHeadWins {
		if _, ok := group[opponentID]; ok {
			total += wins
		}
	}
	return total
}

func headToHeadPointDiff(stats *playerStats, group map[string]struct{}) int {
	total := 0
	for opponentID, diff := range stats.headToHeadPointDiff {
		if _, ok := group[opponentID]; ok {
			total += diff
		}
	}
	return total
}
