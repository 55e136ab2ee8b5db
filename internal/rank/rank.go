// Package rank aggregates per-channel similarity scores and orders scholars.
package rank

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidK is returned when the requested result size is not positive.
var ErrInvalidK = errors.New("k must be a positive integer")

// Entry is one scholar with its scores. Total is filled by Aggregate.
type Entry struct {
	ScholarID string
	Scores    Scores
	Total     float64
}

// Aggregate sets Total on each entry using w.
func Aggregate(entries []Entry, w Weights) {
	for i := range entries {
		entries[i].Total = w.Total(entries[i].Scores)
	}
}

// Rank orders entries by Total descending, breaking ties by scholar id
// ascending, and returns the first k. Fewer than k entries are all returned.
// The input slice is left untouched.
func Rank(entries []Entry, k int) ([]Entry, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, compare)

	if k < len(sorted) {
		sorted = sorted[:k]
	}
	return sorted, nil
}

func compare(a, b Entry) int {
	switch {
	case a.Total > b.Total:
		return -1
	case a.Total < b.Total:
		return 1
	}
	return strings.Compare(a.ScholarID, b.ScholarID)
}

// IDs returns the scholar ids of entries in order.
func IDs(entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ScholarID)
	}
	return ids
}
