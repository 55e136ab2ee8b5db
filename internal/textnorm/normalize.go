// Package textnorm turns free text into comparable word tokens.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinTokenLength drops tokens of three characters or fewer.
const DefaultMinTokenLength = 3

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Options configures a Normalizer.
type Options struct {
	MinTokenLength int
	Lemmatizer     Lemmatizer
	ExtraStopwords []string
}

// Normalizer is immutable after New and safe for concurrent use.
type Normalizer struct {
	minTokenLength int
	lemmatizer     Lemmatizer
	extra          map[string]struct{}
}

func New(opts Options) *Normalizer {
	lem := opts.Lemmatizer
	if lem == nil {
		lem = NopLemmatizer{}
	}

	extra := make(map[string]struct{}, len(opts.ExtraStopwords))
	for _, w := range opts.ExtraStopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			extra[w] = struct{}{}
		}
	}

	minLen := opts.MinTokenLength
	if minLen < 0 {
		minLen = 0
	}

	return &Normalizer{
		minTokenLength: minLen,
		lemmatizer:     lem,
		extra:          extra,
	}
}

// MinTokenLength reports the configured length threshold.
func (n *Normalizer) MinTokenLength() int { return n.minTokenLength }

// Normalize tokenizes text with the configured minimum token length.
func (n *Normalizer) Normalize(text string) []string {
	return n.NormalizeWithMin(text, n.minTokenLength)
}

// NormalizeWithMin lowercases, strips everything outside [a-z0-9], drops
// stopwords and tokens with len <= minTokenLength, then lemmatizes. Token
// order and duplicates are preserved. Missing input yields an empty slice.
func (n *Normalizer) NormalizeWithMin(text string, minTokenLength int) []string {
	tokens := Split(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if n.IsStopword(tok) {
			continue
		}
		if len(tok) <= minTokenLength {
			continue
		}
		out = append(out, n.Lemma(tok))
	}
	return out
}

// IsStopword reports whether a lowercase token is an english or configured stopword.
func (n *Normalizer) IsStopword(word string) bool {
	if english.IsStopWord(word) {
		return true
	}
	_, ok := n.extra[word]
	return ok
}

func (n *Normalizer) Lemma(word string) string {
	return n.lemmatizer.Lemma(word)
}

// Split performs the first three normalization steps only: lowercase,
// replace non-alphanumerics with spaces and split.
func Split(text string) []string {
	if IsMissing(text) {
		return []string{}
	}
	folded, _, err := transform.String(foldAccents, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !isASCIIAlnum(r)
	})
}

// IsMissing treats blank cells and pandas-style NaN markers as absent text.
func IsMissing(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || strings.EqualFold(t, "nan")
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
