package proposal

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/keywords"
	"github.com/spigell/scholar-matcher/internal/rank"
	"github.com/spigell/scholar-matcher/internal/textnorm"
)

type fixedExtractor struct {
	byText map[string][]string
	err    error
	topN   []int
}

func (f *fixedExtractor) Algorithm() keywords.Algorithm { return keywords.Rake }

func (f *fixedExtractor) Extract(_ context.Context, text string, topN int) ([]string, error) {
	f.topN = append(f.topN, topN)
	if f.err != nil {
		return nil, f.err
	}
	return f.byText[text], nil
}

func TestExtract(t *testing.T) {
	ex := &fixedExtractor{byText: map[string][]string{
		"desc":  {"Coral Reef ecology", "sea", "ocean"},
		"title": {"marine"},
	}}
	p := &dataset.Proposal{ID: "PD-1", Description: "desc", Title: "title", Department: "nan"}

	got, err := Extract(context.Background(), p, ex, 7, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"coral", "reef", "ecology", "ocean"}; !slices.Equal(got.Field(rank.Description), want) {
		t.Fatalf("expected %v, got %v", want, got.Description)
	}
	if want := []string{"marine"}; !slices.Equal(got.Field(rank.Title), want) {
		t.Fatalf("expected %v, got %v", want, got.Title)
	}
	if len(got.Field(rank.Department)) != 0 {
		t.Fatalf("expected empty department, got %v", got.Department)
	}
	for _, n := range ex.topN {
		if n != 7 {
			t.Fatalf("expected topK to be forwarded, got %v", ex.topN)
		}
	}
	if got.Empty() {
		t.Fatalf("expected non-empty features")
	}
}

func TestExtractWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	ex := &fixedExtractor{err: boom}
	p := &dataset.Proposal{ID: "PD-1", Description: "text"}

	if _, err := Extract(context.Background(), p, ex, 5, nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

// lemmas maps inflected forms to the headwords a profile channel holds.
type lemmas map[string]string

func (l lemmas) Lemma(word string) string {
	if lemma, ok := l[word]; ok {
		return lemma
	}
	return word
}

var plurals = lemmas{"reefs": "reef", "ecosystems": "ecosystem", "urchins": "urchin"}

func TestTokensLemmatizePlurals(t *testing.T) {
	tests := []struct {
		name    string
		phrases []string
		lem     textnorm.Lemmatizer
		want    []string
	}{
		{name: "plural phrases", phrases: []string{"Coral reefs", "marine ecosystems"}, lem: plurals, want: []string{"coral", "reef", "marine", "ecosystem"}},
		{name: "already lemmatized", phrases: []string{"coral reef"}, lem: plurals, want: []string{"coral", "reef"}},
		{name: "duplicates kept", phrases: []string{"reefs", "reef"}, lem: plurals, want: []string{"reef", "reef"}},
		{name: "short words dropped", phrases: []string{"sea urchins"}, lem: plurals, want: []string{"urchin"}},
		{name: "nil keeps surface forms", phrases: []string{"coral reefs"}, want: []string{"coral", "reefs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokens(tt.phrases, tt.lem); !slices.Equal(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractLemmatizesLikeProfiles(t *testing.T) {
	ex := &fixedExtractor{byText: map[string][]string{
		"desc": {"coral reefs", "marine ecosystems"},
	}}
	p := &dataset.Proposal{ID: "PD-9", Description: "desc"}

	got, err := Extract(context.Background(), p, ex, 5, plurals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"coral", "reef", "marine", "ecosystem"}; !slices.Equal(got.Description, want) {
		t.Fatalf("expected %v, got %v", want, got.Description)
	}
}
