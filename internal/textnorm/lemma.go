package textnorm

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/kljensen/snowball/english"
)

const (
	LemmatizerDictionary = "dictionary"
	LemmatizerStem       = "stem"
	LemmatizerNone       = "none"
)

// Lemmatizer reduces a lowercase token to its base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// NewLemmatizer returns the lemmatizer registered under kind.
// An empty kind selects the dictionary lemmatizer.
func NewLemmatizer(kind string) (Lemmatizer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", LemmatizerDictionary:
		return NewDictionaryLemmatizer()
	case LemmatizerStem:
		return StemLemmatizer{}, nil
	case LemmatizerNone:
		return NopLemmatizer{}, nil
	default:
		return nil, fmt.Errorf("unknown lemmatizer %q (expected %s, %s or %s)", kind, LemmatizerDictionary, LemmatizerStem, LemmatizerNone)
	}
}

// DictionaryLemmatizer maps inflected forms to dictionary headwords.
type DictionaryLemmatizer struct {
	lem *golem.Lemmatizer
}

func NewDictionaryLemmatizer() (*DictionaryLemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("loading english lemma dictionary: %w", err)
	}
	return &DictionaryLemmatizer{lem: lem}, nil
}

func (d *DictionaryLemmatizer) Lemma(word string) string {
	if d == nil || d.lem == nil {
		return word
	}
	lemma := strings.ToLower(d.lem.Lemma(word))
	if lemma == "" {
		return word
	}
	return lemma
}

// StemLemmatizer uses the snowball english stemmer. It is more aggressive
// than the dictionary but needs no data files.
type StemLemmatizer struct{}

func (StemLemmatizer) Lemma(word string) string {
	stem := english.Stem(word, false)
	if stem == "" {
		return word
	}
	return stem
}

type NopLemmatizer struct{}

func (NopLemmatizer) Lemma(word string) string { return word }
