// Package proposal turns a proposal's sections into keyword token lists.
package proposal

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/keywords"
	"github.com/spigell/scholar-matcher/internal/rank"
	"github.com/spigell/scholar-matcher/internal/textnorm"
)

// Features are the keyword tokens of the three proposal sections.
type Features struct {
	Description []string `json:"description"`
	Title       []string `json:"title"`
	Department  []string `json:"department"`
}

// Field returns the tokens of section f.
func (f Features) Field(field rank.Field) []string {
	switch field {
	case rank.Description:
		return f.Description
	case rank.Title:
		return f.Title
	case rank.Department:
		return f.Department
	default:
		return nil
	}
}

// Empty reports whether no section produced a token.
func (f Features) Empty() bool {
	return len(f.Description)+len(f.Title)+len(f.Department) == 0
}

// Extract runs ex over the description, title and department with topK as
// the keyword budget. Keywords become tokens as described by Tokens, with
// lem being the lemmatizer the profile channels were built with.
func Extract(ctx context.Context, p *dataset.Proposal, ex keywords.Extractor, topK int, lem textnorm.Lemmatizer) (Features, error) {
	var out Features
	sections := []struct {
		name string
		text string
		dst  *[]string
	}{
		{name: "description", text: p.Description, dst: &out.Description},
		{name: "title", text: p.Title, dst: &out.Title},
		{name: "department", text: p.Department, dst: &out.Department},
	}

	for _, s := range sections {
		kws, err := keywords.ExtractKeywords(ctx, ex, s.text, topK)
		if err != nil {
			return Features{}, fmt.Errorf("extracting %s keywords of proposal %q: %w", s.name, p.ID, err)
		}
		*s.dst = Tokens(kws, lem)
	}
	return out, nil
}

// Tokens splits keyword phrases into lowercase words, lemmatizes them with
// lem and keeps those longer than three characters. Order and duplicates are
// preserved: the result is a bag for counter cosine. A nil lem keeps surface
// forms.
func Tokens(phrases []string, lem textnorm.Lemmatizer) []string {
	if lem == nil {
		lem = textnorm.NopLemmatizer{}
	}
	out := make([]string, 0, len(phrases))
	for _, ph := range phrases {
		for _, w := range strings.Fields(strings.ToLower(ph)) {
			w = lem.Lemma(w)
			if len(w) > keywords.MinKeywordLength {
				out = append(out, w)
			}
		}
	}
	return out
}
