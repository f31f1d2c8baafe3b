package timezone

import "unicode"

const (
	// Threshold is the highest score a label may have to count as a match.
	Threshold = 0.5
	// proximity is how many characters into a label a match may start before
	// the start position alone costs a full error ratio.
	proximity = 100
)

// matchScore finds the best approximate occurrence of pattern inside text.
// The score is edits/len(pattern) plus a small penalty for starting late in the
// text; 0 is a perfect prefix match. Occurrences shorter than the pattern are ignored.
func matchScore(pattern, text []rune) (float64, bool) {
	m, n := len(pattern), len(text)
	if m == 0 || n < m {
		return 0, false
	}

	// cost[i] = edits to align pattern[:i] with a text substring ending at the
	// current column; from[i] = where that substring starts.
	prevCost := make([]int, m+1)
	prevFrom := make([]int, m+1)
	curCost := make([]int, m+1)
	curFrom := make([]int, m+1)
	for i := range prevCost {
		prevCost[i] = i
	}

	best, found := 0.0, false
	for j := 1; j <= n; j++ {
		curCost[0], curFrom[0] = 0, j
		for i := 1; i <= m; i++ {
			c, f := prevCost[i-1], prevFrom[i-1]
			if pattern[i-1] != text[j-1] {
				c++
			}
			if v := prevCost[i] + 1; v < c || (v == c && prevFrom[i] < f) {
				c, f = v, prevFrom[i]
			}
			if v := curCost[i-1] + 1; v < c {
				c, f = v, curFrom[i-1]
			}
			curCost[i], curFrom[i] = c, f
		}

		if j-curFrom[m] >= m {
			score := float64(curCost[m])/float64(m) + float64(curFrom[m])/proximity
			if score <= Threshold && (!found || score < best) {
				best, found = score, true
			}
		}
		prevCost, curCost = curCost, prevCost
		prevFrom, curFrom = curFrom, prevFrom
	}
	return best, found
}

func fold(s string) []rune {
	out := []rune(s)
	for i, r := range out {
		out[i] = unicode.ToLower(r)
	}
	return out
}
