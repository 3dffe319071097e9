package match

import (
	"sort"
	"strings"

	"github.com/hiroyagi/yakumemo/internal/models"
)

// DefaultThreshold is the minimum similarity (percent) a memory entry must
// reach to count as a match.
const DefaultThreshold = 70.0

// Match pairs a memory entry with its similarity to the queried text.
type Match struct {
	Pair  models.TranslationPair `json:"pair"`
	Score float64                `json:"score"`
}

// Rank scores text against every source in corpus and returns the entries
// at or above threshold, ordered by descending score. Entries with equal
// scores keep their corpus order, which callers rely on for display.
//
// An empty (or whitespace-only) text returns nil without scoring anything.
func Rank(text string, corpus []models.TranslationPair, threshold float64) []Match {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var matches []Match
	for _, pair := range corpus {
		score := Score(text, pair.SourceText)
		if score >= threshold {
			matches = append(matches, Match{Pair: pair, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
