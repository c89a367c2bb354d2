package pairing

import "math/rand"

// shuffledCopy returns a Fisher-Yates shuffled copy of roster using rnd.
// The input slice is never modified.
func shuffledCopy(rnd *rand.Rand, roster []string) []string {
	out := make([]string, len(roster))
	copy(out, roster)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// pairKey normalizes an unordered player pair into a map key.
func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
