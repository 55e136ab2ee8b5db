// Package suggest completes partial proposal titles typed by a user.
package suggest

import (
	"slices"
	"strings"

	"github.com/spigell/scholar-matcher/internal/dataset"
)

// suffixDepth is how many leading title words may be skipped when matching
// a prefix, so "coral reef" also finds "Dynamics of Coral Reef ...".
const suffixDepth = 3

type Suggestion struct {
	Title      string         `json:"title"`
	ProposalID string         `json:"pid"`
	Agency     dataset.Agency `json:"agency"`
}

type entry struct {
	key string
	s   Suggestion
}

// Index is immutable after Build.
type Index struct {
	entries []entry
	titles  []entry
}

// Build indexes every title and its suffixes that drop up to three leading
// words.
func Build(sets map[dataset.Agency]*dataset.Proposals) *Index {
	agencies := make([]dataset.Agency, 0, len(sets))
	for a := range sets {
		agencies = append(agencies, a)
	}
	slices.Sort(agencies)

	idx := &Index{}
	seen := map[string]struct{}{}
	for _, a := range agencies {
		for _, p := range sets[a].Items {
			words := strings.Fields(strings.ToLower(p.Title))
			if len(words) == 0 {
				continue
			}
			s := Suggestion{Title: p.Title, ProposalID: p.ID, Agency: a}
			idx.titles = append(idx.titles, entry{key: strings.Join(words, " "), s: s})
			for skip := 0; skip <= suffixDepth && skip < len(words); skip++ {
				key := strings.Join(words[skip:], " ")
				// The first proposal claiming a suffix keeps it.
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				idx.entries = append(idx.entries, entry{key: key, s: s})
			}
		}
	}

	slices.SortStableFunc(idx.entries, func(a, b entry) int {
		return strings.Compare(a.key, b.key)
	})
	return idx
}

// Search returns up to size suggestions: prefix matches on titles and their
// suffixes first, then titles containing the query anywhere. Each proposal
// appears once.
func (idx *Index) Search(query string, size int) []Suggestion {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	out := make([]Suggestion, 0)
	if q == "" || size <= 0 {
		return out
	}

	picked := map[string]struct{}{}
	add := func(s Suggestion) bool {
		id := string(s.Agency) + "/" + strings.ToLower(s.ProposalID)
		if _, dup := picked[id]; dup {
			return len(out) < size
		}
		picked[id] = struct{}{}
		out = append(out, s)
		return len(out) < size
	}

	start, _ := slices.BinarySearchFunc(idx.entries, q, func(e entry, target string) int {
		return strings.Compare(e.key, target)
	})
	for _, e := range idx.entries[start:] {
		if !strings.HasPrefix(e.key, q) {
			break
		}
		if !add(e.s) {
			return out
		}
	}

	for _, e := range idx.titles {
		if strings.Contains(e.key, q) {
			if !add(e.s) {
				return out
			}
		}
	}
	return out
}

// Len reports the number of indexed keys.
func (idx *Index) Len() int { return len(idx.entries) }
