// Package suggest finds the closest known word for a mistyped one.
package suggest

import (
	"sort"

	"github.com/agext/levenshtein"
)

// MinScore is the minimum similarity of a suggestion.
const MinScore = 0.5

type suggestion struct {
	text  string
	score float64
}

// Closest returns the candidate most similar to given,
// or false if none reaches MinScore.
func Closest(given string, candidates []string) (string, bool) {
	s := Rank(given, candidates)
	if len(s) == 0 {
		return "", false
	}
	return s[0], true
}

// Rank returns the candidates reaching MinScore, most similar first.
func Rank(given string, candidates []string) []string {
	var result []suggestion
	for _, text := range candidates {
		score := Score(given, text)
		if score < MinScore {
			continue
		}
		result = append(result, suggestion{text: text, score: score})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].score > result[j].score
	})
	texts := make([]string, len(result))
	for i, s := range result {
		texts[i] = s.text
	}
	return texts
}

// Score returns the similarity of given and suggestion in [0, 1].
func Score(given, suggestion string) float64 {
	return levenshtein.Similarity(given, suggestion, nil)
}
