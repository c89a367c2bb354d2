package pairing

// positionMatch pairs abstract roster positions before players are mapped in.
type positionMatch struct {
	sideA []int
	sideB []int
}

// generalDoublesRoundCap bounds the rotation heuristic for large rosters.
const generalDoublesRoundCap = 14

// doublesRounds builds the untruncated doubles schedule over n positions.
// It returns nil unless n is a positive multiple of four.
func doublesRounds(n, rotationOffset int) [][]positionMatch {
	switch {
	case n < 4 || n%4 != 0:
		return nil
	case n == 4:
		return doublesFour()
	case n == 8:
		return doublesEight()
	}
	return doublesRotation(n, rotationOffset)
}

// doublesFour enumerates the three ways to split four positions into two
// teams. Every pair partners exactly once and opposes twice; this is the
// complete, minimal rotation.
func doublesFour() [][]positionMatch {
	return [][]positionMatch{
		{{sideA: []int{0, 1}, sideB: []int{2, 3}}},
		{{sideA: []int{0, 2}, sideB: []int{1, 3}}},
		{{sideA: []int{0, 3}, sideB: []int{1, 2}}},
	}
}

// doublesEightTable is a fixed seven-round design over eight positions, two
// matches per round. Its sixteen partnerships per column-pair cover all 28
// unordered pairs exactly once (a one-factorization of K8 grouped into
// matches), so no two players partner twice before the schedule repeats.
var doublesEightTable = [7][2][2][2]int{
	{{{7, 0}, {1, 6}}, {{2, 5}, {3, 4}}},
	{{{7, 1}, {2, 0}}, {{3, 6}, {4, 5}}},
	{{{7, 2}, {3, 1}}, {{4, 0}, {5, 6}}},
	{{{7, 3}, {4, 2}}, {{5, 1}, {6, 0}}},
	{{{7, 4}, {5, 3}}, {{6, 2}, {0, 1}}},
	{{{7, 5}, {6, 4}}, {{0, 3}, {1, 2}}},
	{{{7, 6}, {0, 5}}, {{1, 4}, {2, 3}}},
}

func doublesEight() [][]positionMatch {
	rounds := make([][]positionMatch, 0, len(doublesEightTable))
	for _, row := range doublesEightTable {
		rounds = append(rounds, []positionMatch{
			{sideA: []int{row[0][0][0], row[0][0][1]}, sideB: []int{row[0][1][0], row[0][1][1]}},
			{sideA: []int{row[1][0][0], row[1][0][1]}, sideB: []int{row[1][1][0], row[1][1][1]}},
		})
	}
	return rounds
}

// doublesRotation handles rosters of twelve or more (multiples of four) where
// no closed-form design is tabulated. Each round rotates the position list by
// (round + rotationOffset) mod n and slices it into consecutive groups of
// four, first two against next two. This spreads partnerships but does not
// guarantee the exhaust-before-repeat property; rounds are capped at
// min(n-1, 14).
func doublesRotation(n, rotationOffset int) [][]positionMatch {
	roundCount := n - 1
	if roundCount > generalDoublesRoundCap {
		roundCount = generalDoublesRoundCap
	}

	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}

	rounds := make([][]positionMatch, 0, roundCount)
	for round := 0; round < roundCount; round++ {
		shift := (round + rotationOffset) % n
		if shift < 0 {
			shift += n
		}
		rotated := make([]int, 0, n)
		rotated = append(rotated, positions[shift:]...)
		rotated = append(rotated, positions[:shift]...)

		matches := make([]positionMatch, 0, n/4)
		for start := 0; start+4 <= n; start += 4 {
			group := rotated[start : start+4]
			matches = append(matches, positionMatch{
				sideA: []int{group[0], group[1]},
				sideB: []int{group[2], group[3]},
			})
		}
		rounds = append(rounds, matches)
	}
	return rounds
}
