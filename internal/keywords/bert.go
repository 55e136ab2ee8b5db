package keywords

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/scholar-matcher/internal/ai"
	"github.com/spigell/scholar-matcher/internal/textnorm"
)

// maxBertCandidates bounds the number of n-grams sent for embedding.
const maxBertCandidates = 300

// bertExtractor ranks candidate n-grams by the cosine similarity of their
// embedding to the embedding of the whole text.
type bertExtractor struct {
	norm     *textnorm.Normalizer
	embedder ai.Embedder
	ngram    int
	logger   *zap.Logger
}

func (e *bertExtractor) Algorithm() Algorithm { return Bert }

func (e *bertExtractor) Extract(ctx context.Context, text string, topN int) ([]string, error) {
	cands := e.candidates(text)
	if len(cands) == 0 {
		return []string{}, nil
	}
	if len(cands) > maxBertCandidates {
		e.logger.Debug("truncating embedding candidates",
			zap.Int("candidates", len(cands)),
			zap.Int("limit", maxBertCandidates),
		)
		cands = cands[:maxBertCandidates]
	}

	inputs := append([]string{text}, cands...)
	vectors, err := e.embedder.Embed(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("embedding candidates: %w", err)
	}
	if len(vectors) != len(inputs) {
		return nil, errors.New("embedding provider returned a mismatched number of vectors")
	}

	type scored struct {
		phrase string
		sim    float64
	}
	doc := vectors[0]
	ranked := make([]scored, len(cands))
	for i, c := range cands {
		ranked[i] = scored{phrase: c, sim: vectorCosine(doc, vectors[i+1])}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.sim > b.sim:
			return -1
		case a.sim < b.sim:
			return 1
		default:
			return 0
		}
	})

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.phrase
	}
	return truncate(out, topN), nil
}

// candidates builds unique stopword-free n-grams in order of first occurrence.
func (e *bertExtractor) candidates(text string) []string {
	words := make([]string, 0)
	for _, w := range textnorm.Split(text) {
		if e.norm.IsStopword(w) || len(w) < 2 {
			words = append(words, "")
			continue
		}
		words = append(words, w)
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := 0; i+e.ngram <= len(words); i++ {
		gram := words[i : i+e.ngram]
		if slices.Contains(gram, "") {
			continue
		}
		phrase := strings.Join(gram, " ")
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
	}
	return out
}

func vectorCosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
