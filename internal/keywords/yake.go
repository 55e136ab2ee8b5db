package keywords

import (
	"context"
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/spigell/scholar-matcher/internal/textnorm"
)

var sentenceDelimiters = regexp.MustCompile(`[.!?;\n\r]+`)

// yakeExtractor is a statistical, corpus-free scorer in the style of YAKE.
// Lower scores are better.
type yakeExtractor struct {
	norm  *textnorm.Normalizer
	ngram int
}

func (e *yakeExtractor) Algorithm() Algorithm { return Yake }

type yakeTerm struct {
	tf        float64
	upper     float64
	acronym   float64
	sentences map[int]struct{}
	positions []int
	left      map[string]int
	right     map[string]int
	score     float64
}

type yakeToken struct {
	raw  string
	word string
	stop bool
}

func (e *yakeExtractor) Extract(ctx context.Context, text string, topN int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sentences := e.tokenize(text)
	terms := make(map[string]*yakeTerm)
	term := func(w string) *yakeTerm {
		t, ok := terms[w]
		if !ok {
			t = &yakeTerm{
				sentences: map[int]struct{}{},
				left:      map[string]int{},
				right:     map[string]int{},
			}
			terms[w] = t
		}
		return t
	}

	for si, sent := range sentences {
		for i, tok := range sent {
			if tok.stop {
				continue
			}
			t := term(tok.word)
			t.tf++
			t.sentences[si] = struct{}{}
			t.positions = append(t.positions, si)
			if isAcronym(tok.raw) {
				t.acronym++
			} else if i > 0 && startsUpper(tok.raw) {
				t.upper++
			}
			if i > 0 && !sent[i-1].stop {
				t.left[sent[i-1].word]++
			}
			if i+1 < len(sent) && !sent[i+1].stop {
				t.right[sent[i+1].word]++
			}
		}
	}
	if len(terms) == 0 {
		return []string{}, nil
	}

	var meanTF, maxTF float64
	for _, t := range terms {
		meanTF += t.tf
		maxTF = math.Max(maxTF, t.tf)
	}
	meanTF /= float64(len(terms))
	var variance float64
	for _, t := range terms {
		variance += (t.tf - meanTF) * (t.tf - meanTF)
	}
	stdTF := math.Sqrt(variance / float64(len(terms)))
	nSent := float64(len(sentences))

	for _, t := range terms {
		tCase := math.Max(t.upper, t.acronym) / (1 + math.Log(t.tf))
		tPos := math.Log(math.Log(3 + median(t.positions)))
		tFNorm := t.tf / (meanTF + stdTF)
		tRel := 1 + (dispersion(t.left)+dispersion(t.right))*t.tf/maxTF
		tSent := float64(len(t.sentences)) / nSent
		t.score = tRel * tPos / (tCase + tFNorm/tRel + tSent/tRel)
	}

	type candidate struct {
		phrase string
		key    string
		score  float64
	}
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, sent := range sentences {
		for n := 1; n <= e.ngram; n++ {
			for i := 0; i+n <= len(sent); i++ {
				gram := sent[i : i+n]
				if gram[0].stop || gram[n-1].stop {
					continue
				}
				words := make([]string, n)
				for j, tok := range gram {
					words[j] = tok.word
				}
				phrase := strings.Join(words, " ")
				if counts[phrase] == 0 {
					order = append(order, phrase)
				}
				counts[phrase]++
			}
		}
	}

	cands := make([]candidate, 0, len(order))
	for _, phrase := range order {
		words := strings.Fields(phrase)
		prod, sum := 1.0, 0.0
		for _, w := range words {
			t, ok := terms[w]
			if !ok {
				continue
			}
			prod *= t.score
			sum += t.score
		}
		score := prod / (float64(counts[phrase]) * (1 + sum))
		lemmas := make([]string, len(words))
		for i, w := range words {
			lemmas[i] = e.norm.Lemma(w)
		}
		cands = append(cands, candidate{phrase: phrase, key: strings.Join(lemmas, " "), score: score})
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		switch {
		case a.score < b.score:
			return -1
		case a.score > b.score:
			return 1
		default:
			return 0
		}
	})

	seen := make(map[string]struct{}, len(cands))
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		if _, dup := seen[c.key]; dup {
			continue
		}
		seen[c.key] = struct{}{}
		out = append(out, c.phrase)
	}
	return truncate(out, topN), nil
}

// tokenize keeps the raw casing next to the folded word so casing features
// survive normalization.
func (e *yakeExtractor) tokenize(text string) [][]yakeToken {
	var out [][]yakeToken
	for _, chunk := range sentenceDelimiters.Split(text, -1) {
		var sent []yakeToken
		for _, raw := range strings.FieldsFunc(chunk, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			words := textnorm.Split(raw)
			if len(words) == 0 {
				continue
			}
			w := words[0]
			stop := e.norm.IsStopword(w) || isNumeric(w) || len(w) < 2
			sent = append(sent, yakeToken{raw: raw, word: w, stop: stop})
		}
		if len(sent) > 0 {
			out = append(out, sent)
		}
	}
	return out
}

func isAcronym(raw string) bool {
	letters := 0
	for _, r := range raw {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}

func startsUpper(raw string) bool {
	for _, r := range raw {
		return unicode.IsUpper(r)
	}
	return false
}

func median(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := slices.Clone(xs)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return float64(s[mid])
	}
	return float64(s[mid-1]+s[mid]) / 2
}

func dispersion(neighbours map[string]int) float64 {
	total := 0
	for _, c := range neighbours {
		total += c
	}
	if total == 0 {
		return 0
	}
	return float64(len(neighbours)) / float64(total)
}
