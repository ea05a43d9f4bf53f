package forgeterm

import (
	"sort"
	"strings"
)

// maxSuggestionDistance is the largest edit distance still offered as a suggestion.
const maxSuggestionDistance = 2

// LevenshteinDistance returns the exact edit distance between a and b with
// unit cost for insertion, deletion and substitution.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
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

// Suggest returns the known names within edit distance 2 of attempted, or
// related to it by substring containment, closest first. An empty result
// means the caller should point at help.
func Suggest(attempted string, known []string) []string {
	type candidate struct {
		name     string
		distance int
	}

	var matches []candidate
	for _, name := range known {
		if name == attempted {
			continue
		}
		d := LevenshteinDistance(attempted, name)
		if d <= maxSuggestionDistance || strings.Contains(name, attempted) || strings.Contains(attempted, name) {
			matches = append(matches, candidate{name: name, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].name < matches[j].name
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
