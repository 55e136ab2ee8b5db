package keywords

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/spigell/scholar-matcher/internal/textnorm"
)

// posExtractor keeps nouns, proper nouns and adjectives in text order.
// It does not rank, so topN is ignored.
type posExtractor struct {
	norm *textnorm.Normalizer
}

func (e *posExtractor) Algorithm() Algorithm { return Spacy }

func (e *posExtractor) Extract(ctx context.Context, text string, _ int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tagging text: %w", err)
	}

	out := make([]string, 0)
	for _, tok := range doc.Tokens() {
		if !contentTag(tok.Tag) {
			continue
		}
		for _, word := range textnorm.Split(tok.Text) {
			if e.norm.IsStopword(word) || isNumeric(word) {
				continue
			}
			out = append(out, e.norm.Lemma(word))
		}
	}
	return out, nil
}

// contentTag matches Penn Treebank noun (NN, NNS, NNP, NNPS) and adjective
// (JJ, JJR, JJS) tags.
func contentTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") || strings.HasPrefix(tag, "JJ")
}

func isNumeric(word string) bool {
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return word != ""
}
