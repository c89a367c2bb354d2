// Package pairing generates rotation schedules for club play: doubles and
// singles rounds over a fixed roster in which partnerships (doubles) and
// match-ups (singles) are spread as evenly as possible before any repeat.
//
// All generators work on abstract integer positions; a roster is mapped onto
// positions once per schedule with a Fisher-Yates shuffle, so repeated lookups
// against the same roster, format, and court count see a stable schedule.
package pairing

import "errors"

// Format selects the match shape a schedule is built for.
type Format string

const (
	FormatSingles Format = "singles"
	FormatDoubles Format = "doubles"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatSingles || f == FormatDoubles
}

// ErrUnsupported is returned when no schedule exists for a roster/format
// combination: doubles with a roster size that is not a positive multiple of
// four, singles with fewer than two players, an unknown format, or a
// non-positive court count. The accompanying schedule value is empty but
// usable, so callers that only check for emptiness can ignore the error.
var ErrUnsupported = errors.New("pairing: unsupported roster/format combination")

// Match is a single scheduled game. Each side holds one player identifier for
// singles and two for doubles. Identifiers are opaque to the scheduler.
type Match struct {
	SideA []string `json:"side_a"`
	SideB []string `json:"side_b"`
}

// Players returns every identifier appearing in the match.
func (m Match) Players() []string {
	out := make([]string, 0, len(m.SideA)+len(m.SideB))
	out = append(out, m.SideA...)
	out = append(out, m.SideB...)
	return out
}

// Round is one set of simultaneous matches plus the players sitting out.
// Number is 1-based and refers to the round's position within its schedule.
type Round struct {
	Number  int      `json:"number"`
	Matches []Match  `json:"matches"`
	Resting []string `json:"resting"`
}

// MaxUniqueRounds reports how many rounds a schedule can run before
// partnerships (doubles) or match-ups (singles) begin to repeat. The value is
// advisory: for doubles rosters beyond the tabulated sizes the generic n-1
// figure is an upper bound, not a guarantee (the large-roster generator is a
// heuristic).
func MaxUniqueRounds(playerCount int, format Format) int {
	switch format {
	case FormatSingles:
		if playerCount < 2 {
			return 0
		}
		if playerCount%2 == 0 {
			return playerCount - 1
		}
		// Odd rosters get a synthetic bye, so every player also rests once.
		return playerCount
	case FormatDoubles:
		if playerCount < 4 || playerCount%4 != 0 {
			return 0
		}
		switch playerCount {
		case 4:
			return 3
		case 8:
			return 7
		case 12:
			return 11
		case 16:
			return 15
		}
		return playerCount - 1
	}
	return 0
}
