package features

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/keywords"
	"github.com/spigell/scholar-matcher/internal/textnorm"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestBuild(t *testing.T) {
	norm := textnorm.New(textnorm.Options{MinTokenLength: 3, Lemmatizer: textnorm.NopLemmatizer{}})
	rake, err := keywords.New(keywords.Rake, keywords.Deps{Normalizer: norm})
	if err != nil {
		t.Fatalf("extractor: %v", err)
	}

	scholars := dataset.NewScholars([]*dataset.Scholar{
		{
			UserID:        "1",
			Netid:         "ab1",
			Keywords:      "Marine Biology||Coral Reefs",
			Overview:      "I study oceans.",
			Organizations: "Texas A&M University Department of Oceanography",
		},
		{UserID: "2", Netid: "cd2", Keywords: "nan"},
	})
	pubs := []dataset.Publication{
		{UserID: "1", Title: "Old paper title", Date: date("2010-01-01")},
		{UserID: "1", Title: "Coral reef decline", Keywords: "['Coral Reefs', 'ocean acidification']", Date: date("2021-01-01")},
		{UserID: "1", Title: "Ocean warming", Keywords: "heat; coral reefs", Date: date("2019-01-01")},
	}

	b := NewBuilder(norm, rake, Options{TopPublications: 2, UniversityStopwords: []string{"Texas", "University"}, Workers: 2})
	rows, err := b.Build(context.Background(), scholars, pubs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	checks := map[string][2]string{
		"Keywords":     {first.Keywords, "marine biology coral reefs"},
		"Overview":     {first.Overview, "study oceans"},
		"Organization": {first.Organization, "department oceanography"},
		"pub_title":    {first.PubTitle, "coral reef decline ocean warming"},
		"pub_keyword":  {first.PubKeyword, "coral reefs ocean acidification heat"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Fatalf("%s: expected %q, got %q", name, c[1], c[0])
		}
	}

	second := rows[1]
	if second.UserID != "2" || second.Keywords != "" || second.PubTitle != "" || second.PubKeyword != "" {
		t.Fatalf("unexpected row for scholar without data: %+v", second)
	}
}

func TestParseKeywordList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: `['Coral Reefs', "ocean's heat"]`, want: []string{"Coral Reefs", "ocean's heat"}},
		{in: `['it\'s']`, want: []string{"it's"}},
		{in: "a || b", want: []string{"a", "b"}},
		{in: "a; b;", want: []string{"a", "b"}},
		{in: "a, b", want: []string{"a", "b"}},
		{in: "[]", want: nil},
		{in: "NaN", want: nil},
	}
	for _, tt := range tests {
		if got := ParseKeywordList(tt.in); !slices.Equal(got, tt.want) {
			t.Fatalf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "analytical.csv")
	rows := []dataset.ProfileFeatures{{UserID: "1", Keywords: "ocean"}}

	if err := WriteFile(context.Background(), path, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store, rowErrs, err := dataset.LoadFeatures(path)
	if err != nil || len(rowErrs) != 0 {
		t.Fatalf("reload: %v %v", err, rowErrs)
	}
	if pf, ok := store.Get("1"); !ok || pf.Keywords != "ocean" {
		t.Fatalf("unexpected reloaded row: %+v", pf)
	}
}

func TestWriteFileRespectsLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytical.csv")
	held := flock.New(path + ".lock")
	if err := held.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := WriteFile(ctx, path, nil); err == nil {
		t.Fatalf("expected error while the lock is held")
	}
}
