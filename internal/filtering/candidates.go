package filtering

import (
	"strings"

	"github.com/spigell/scholar-matcher/internal/dataset"
)

// Candidate is a scholar eligible for scoring. Features is nil when the
// analytical dataset has no row for the scholar.
type Candidate struct {
	ID       string
	Scholar  *dataset.Scholar
	Features *dataset.ProfileFeatures
}

// Candidates is the ordered scoring pool.
type Candidates struct {
	Items []*Candidate
}

// NewCandidates joins scholars with their analytical rows in scholar file
// order. A repeated scholar id keeps only its first row.
func NewCandidates(scholars *dataset.Scholars, store *dataset.FeatureStore) *Candidates {
	c := &Candidates{Items: make([]*Candidate, 0, scholars.Len())}
	seen := make(map[string]struct{}, scholars.Len())
	for _, sc := range scholars.Items {
		if _, dup := seen[sc.UserID]; dup {
			continue
		}
		seen[sc.UserID] = struct{}{}

		cand := &Candidate{ID: sc.UserID, Scholar: sc}
		if store != nil {
			if pf, ok := store.Get(sc.UserID); ok {
				cand.Features = &pf
			}
		}
		c.Items = append(c.Items, cand)
	}
	return c
}

func (c *Candidates) Len() int { return len(c.Items) }

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, cand := range c.Items {
		ids = append(ids, cand.ID)
	}
	return ids
}

// Exclude drops every candidate matching drop and returns their ids.
// Order of the remaining candidates is preserved.
func (c *Candidates) Exclude(drop func(*Candidate) bool) []string {
	var excluded []string
	kept := c.Items[:0]
	for _, cand := range c.Items {
		if drop(cand) {
			excluded = append(excluded, cand.ID)
			continue
		}
		kept = append(kept, cand)
	}
	c.Items = kept
	return excluded
}

func (c *Candidate) Netid() string {
	if c.Scholar == nil {
		return ""
	}
	return strings.TrimSpace(c.Scholar.Netid)
}
