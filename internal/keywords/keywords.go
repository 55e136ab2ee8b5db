// Package keywords extracts ranked keyword candidates from free text using
// interchangeable algorithms.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/scholar-matcher/internal/ai"
	"github.com/spigell/scholar-matcher/internal/textnorm"
)

// ErrUnknownAlgorithm is returned for algorithm names that are not registered.
var ErrUnknownAlgorithm = errors.New("unknown keyword algorithm")

// MinKeywordLength drops keywords of three characters or fewer.
const MinKeywordLength = 3

// Algorithm selects a keyword extraction strategy.
type Algorithm int

const (
	Spacy Algorithm = iota
	Rake
	Yake
	Bert
	Gensim
)

var algorithmNames = map[Algorithm]string{
	Spacy:  "Spacy",
	Rake:   "Rake",
	Yake:   "Yake",
	Bert:   "Bert",
	Gensim: "Gensim",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Algorithms lists every registered algorithm.
func Algorithms() []Algorithm {
	return []Algorithm{Spacy, Rake, Yake, Bert, Gensim}
}

// ParseAlgorithm resolves a case-insensitive algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for alg, n := range algorithmNames {
		if strings.ToLower(n) == key {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Extractor returns keyword candidates for a text, best first where the
// algorithm ranks them. Scores are not comparable across algorithms.
type Extractor interface {
	Algorithm() Algorithm
	Extract(ctx context.Context, text string, topN int) ([]string, error)
}

// Deps are shared resources handed to extractors.
type Deps struct {
	Normalizer *textnorm.Normalizer
	Embedder   ai.Embedder
	// NGram is the candidate length for Yake and Bert. Defaults to 1.
	NGram  int
	Logger *zap.Logger
}

// New builds the extractor for alg.
func New(alg Algorithm, deps Deps) (Extractor, error) {
	if deps.Normalizer == nil {
		deps.Normalizer = textnorm.New(textnorm.Options{MinTokenLength: textnorm.DefaultMinTokenLength})
	}
	if deps.NGram <= 0 {
		deps.NGram = 1
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	switch alg {
	case Spacy:
		return &posExtractor{norm: deps.Normalizer}, nil
	case Rake:
		return &rakeExtractor{norm: deps.Normalizer}, nil
	case Yake:
		return &yakeExtractor{norm: deps.Normalizer, ngram: deps.NGram}, nil
	case Bert:
		if deps.Embedder == nil {
			return nil, errors.New("bert keyword extraction requires an embedding provider (configure ai.gemini)")
		}
		return &bertExtractor{norm: deps.Normalizer, embedder: deps.Embedder, ngram: deps.NGram, logger: deps.Logger}, nil
	case Gensim:
		return &textRankExtractor{norm: deps.Normalizer}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
}

// ExtractKeywords runs ex and keeps keywords longer than MinKeywordLength.
func ExtractKeywords(ctx context.Context, ex Extractor, text string, topN int) ([]string, error) {
	if textnorm.IsMissing(text) {
		return []string{}, nil
	}

	raw, err := ex.Extract(ctx, text, topN)
	if err != nil {
		return nil, fmt.Errorf("%s keyword extraction: %w", ex.Algorithm(), err)
	}

	out := make([]string, 0, len(raw))
	for _, kw := range raw {
		kw = strings.TrimSpace(kw)
		if len(kw) > MinKeywordLength {
			out = append(out, kw)
		}
	}
	return out, nil
}

func truncate(items []string, topN int) []string {
	if topN > 0 && len(items) > topN {
		return items[:topN]
	}
	return items
}
