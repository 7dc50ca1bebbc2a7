package diagnostic

// distance computes the Levenshtein edit distance between a and b.
// Ported from the teacher's diagnostic/levenshtein.go, used by the
// resolver to propose "did you mean" suggestions for undefined variable
// and class names (SPEC_FULL.md §4.H expansion).
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Suggest returns the candidate closest to name by edit distance, or ""
// if no candidate is within a plausible typo distance (at most a third of
// name's length, minimum 1).
func Suggest(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	threshold := len(name) / 3
	if threshold < 1 {
		threshold = 1
	}

	best := ""
	bestDist := threshold + 1
	for _, c := range candidates {
		d := distance(name, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	if bestDist > threshold {
		return ""
	}
	return best
}
