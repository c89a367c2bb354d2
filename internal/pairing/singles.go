package pairing

// byePosition marks the synthetic opponent added to odd singles rosters.
// Matches against it are filtered out; its "opponent" rests that round.
const byePosition = -1

// singlesRounds builds the untruncated singles round-robin over n positions
// using the circle method: position 0 stays fixed while the rest rotate, and
// each round pairs the rotating list symmetrically from its two ends inward.
// Odd rosters get a synthetic bye position whose matches are dropped.
// Returns nil for n < 2.
func singlesRounds(n int) [][]positionMatch {
	if n < 2 {
		return nil
	}

	rotating := make([]int, 0, n)
	for i := 1; i < n; i++ {
		rotating = append(rotating, i)
	}
	if n%2 == 1 {
		rotating = append(rotating, byePosition)
	}

	roundCount := len(rotating)
	rounds := make([][]positionMatch, 0, roundCount)
	for round := 0; round < roundCount; round++ {
		matches := make([]positionMatch, 0, (len(rotating)+1)/2)
		appendSinglesMatch(&matches, 0, rotating[0])
		for i := 1; i <= (len(rotating)-1)/2; i++ {
			appendSinglesMatch(&matches, rotating[i], rotating[len(rotating)-i])
		}
		rounds = append(rounds, matches)

		// Rotate: last element moves to the front.
		last := rotating[len(rotating)-1]
		copy(rotating[1:], rotating[:len(rotating)-1])
		rotating[0] = last
	}
	return rounds
}

func appendSinglesMatch(matches *[]positionMatch, a, b int) {
	if a == byePosition || b == byePosition {
		return
	}
	*matches = append(*matches, positionMatch{sideA: []int{a}, sideB: []int{b}})
}
