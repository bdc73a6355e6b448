// Package ranking orders suggestions for display. Ranking never changes
// what is stored: the store keeps insertion order.
package ranking

import (
	"cmp"
	"slices"

	"github.com/sakif/samewave/internal/model"
)

// Rank returns a copy of suggestions sorted by votes, highest first. Ties
// keep their input order.
func Rank(suggestions []model.Suggestion) []model.Suggestion {
	out := slices.Clone(suggestions)
	if out == nil {
		out = []model.Suggestion{}
	}
	slices.SortStableFunc(out, func(a, b model.Suggestion) int {
		return cmp.Compare(b.Votes, a.Votes)
	})
	return out
}

// ForThread keeps the suggestions of one thread and ranks them.
func ForThread(suggestions []model.Suggestion, threadID string) []model.Suggestion {
	var filtered []model.Suggestion
	for _, s := range suggestions {
		if s.ThreadID == threadID {
			filtered = append(filtered, s)
		}
	}
	return Rank(filtered)
}
