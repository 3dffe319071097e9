package match

// Score computes the normalized similarity between two strings as a
// percentage in [0, 100], based on rune-level edit distance:
//
//	(1 - distance/max(len(a), len(b))) * 100
//
// Two empty strings score 100. The function is pure and symmetric.
func Score(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 100
	}
	dist := editDistance(ra, rb)
	return (1 - float64(dist)/float64(maxLen)) * 100
}

// editDistance is the classic Levenshtein distance with unit costs,
// computed with two rolling rows so space stays O(min(len)).
func editDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
