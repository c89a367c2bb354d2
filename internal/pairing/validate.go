package pairing

import "fmt"

// ValidateSchedule checks the structural guarantees of a generated schedule:
// no player appears twice within a round, doubles partnerships are unique
// across the whole schedule, and singles opponent pairs are unique across the
// whole schedule. It reports the first violation found. Generation does not
// call this; it exists for tests and for callers that want to audit the
// heuristic large-roster doubles output before trusting it.
func ValidateSchedule(rounds []Round, format Format) error {
	partnered := make(map[[2]string]int)
	opposed := make(map[[2]string]int)

	for _, round := range rounds {
		seen := make(map[string]bool)
		for _, match := range round.Matches {
			for _, player := range match.Players() {
				if seen[player] {
					return fmt.Errorf("round %d: player %q scheduled twice", round.Number, player)
				}
				seen[player] = true
			}

			if format == FormatDoubles {
				for _, side := range [][]string{match.SideA, match.SideB} {
					if len(side) != 2 {
						return fmt.Errorf("round %d: doubles side has %d players", round.Number, len(side))
					}
					key := pairKey(side[0], side[1])
					partnered[key]++
					if partnered[key] > 1 {
						return fmt.Errorf("round %d: %q and %q partnered twice", round.Number, side[0], side[1])
					}
				}
				continue
			}

			if len(match.SideA) != 1 || len(match.SideB) != 1 {
				return fmt.Errorf("round %d: singles match has team sides", round.Number)
			}
			key := pairKey(match.SideA[0], match.SideB[0])
			opposed[key]++
			if opposed[key] > 1 {
				return fmt.Errorf("round %d: %q and %q matched twice", round.Number, match.SideA[0], match.SideB[0])
			}
		}

		for _, resting := range round.Resting {
			if seen[resting] {
				return fmt.Errorf("round %d: player %q is both playing and resting", round.Number, resting)
			}
		}
	}
	return nil
}
