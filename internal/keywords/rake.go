package keywords

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/spigell/scholar-matcher/internal/textnorm"
)

var phraseDelimiters = regexp.MustCompile(`[,.;:?!()\[\]{}"'\n\r\t|/]+`)

// rakeExtractor implements Rapid Automatic Keyword Extraction. Candidate
// phrases are runs of words between stopwords and punctuation; a word scores
// degree/frequency and a phrase scores the sum of its words.
type rakeExtractor struct {
	norm *textnorm.Normalizer
}

func (e *rakeExtractor) Algorithm() Algorithm { return Rake }

func (e *rakeExtractor) Extract(ctx context.Context, text string, _ int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	phrases := rakePhrases(text, e.norm)

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, ph := range phrases {
		for _, w := range ph {
			freq[w]++
			degree[w] += len(ph)
		}
	}

	type candidate struct {
		phrase string
		score  float64
	}
	seen := make(map[string]struct{}, len(phrases))
	cands := make([]candidate, 0, len(phrases))
	for _, ph := range phrases {
		key := strings.Join(ph, " ")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		var score float64
		for _, w := range ph {
			score += float64(degree[w]) / float64(freq[w])
		}
		cands = append(cands, candidate{phrase: key, score: score})
	}

	// Stable on first occurrence for equal scores.
	slices.SortStableFunc(cands, func(a, b candidate) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.phrase
	}
	return out, nil
}

// rakePhrases splits text at punctuation, stopwords and numbers.
func rakePhrases(text string, norm *textnorm.Normalizer) [][]string {
	var phrases [][]string
	for _, chunk := range phraseDelimiters.Split(text, -1) {
		var cur []string
		flush := func() {
			if len(cur) > 0 {
				phrases = append(phrases, cur)
				cur = nil
			}
		}
		for _, w := range textnorm.Split(chunk) {
			if norm.IsStopword(w) || isNumeric(w) {
				flush()
				continue
			}
			cur = append(cur, w)
		}
		flush()
	}
	return phrases
}
