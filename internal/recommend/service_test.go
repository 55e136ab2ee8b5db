package recommend

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/filtering"
	"github.com/spigell/scholar-matcher/internal/keywords"
	"github.com/spigell/scholar-matcher/internal/rank"
	"github.com/spigell/scholar-matcher/internal/store"
	"github.com/spigell/scholar-matcher/internal/textnorm"
)

func testData() Data {
	scholars := dataset.NewScholars([]*dataset.Scholar{
		{UserID: "A", Netid: "mar1", Name: "Marine Scholar", Keywords: `"marine", 'biology'`, NPublications: 12},
		{UserID: "B", Netid: "qua2", Name: "Quantum Scholar", NPublications: 3},
		{UserID: "C", Netid: "nof3", Name: "No Features"},
	})
	features := dataset.NewFeatureStore([]dataset.ProfileFeatures{
		{UserID: "A", Keywords: "marine biology ocean", Overview: "ocean ecology", PubTitle: "marine ocean"},
		{UserID: "B", Keywords: "quantum computing physics", Overview: "qubit"},
	})
	proposals := dataset.NewProposals(dataset.NSF, []*dataset.Proposal{
		{ID: "PD-1", Title: "Ocean Ecology", Department: "Marine Sciences", Description: "Marine biology of the ocean."},
		{ID: "PD-2", Title: "Tiny", Description: "the of and"},
	})
	return Data{
		Scholars:  scholars,
		Features:  features,
		Proposals: map[dataset.Agency]*dataset.Proposals{dataset.NSF: proposals},
	}
}

func testFactory() ExtractorFactory {
	norm := textnorm.New(textnorm.Options{MinTokenLength: 3, Lemmatizer: textnorm.NopLemmatizer{}})
	return func(alg keywords.Algorithm) (keywords.Extractor, error) {
		return keywords.New(alg, keywords.Deps{Normalizer: norm})
	}
}

func TestRecommendRanksRelevantScholarFirst(t *testing.T) {
	svc := NewService(testData(), testFactory(), Options{Workers: 2})

	res, err := svc.Recommend(context.Background(), Request{Agency: dataset.NSF, ProposalID: "pd-1", K: 1, Algorithm: keywords.Rake})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(res.Recommendations))
	}

	top := res.Recommendations[0]
	if top.UserID != "A" || top.Name != "Marine Scholar" {
		t.Fatalf("expected scholar A first, got %+v", top)
	}
	if top.Score <= 0 {
		t.Fatalf("expected a positive score, got %v", top.Score)
	}
	if top.Keywords != "marine, biology" {
		t.Fatalf("expected quotes stripped, got %q", top.Keywords)
	}
	if len(top.Scores) != rank.NumScores {
		t.Fatalf("expected %d score columns, got %d", rank.NumScores, len(top.Scores))
	}
	if res.RunID == "" || res.Cached {
		t.Fatalf("unexpected run metadata: %+v", res)
	}
	if !slices.Equal(res.Features.Description, []string{"marine", "biology", "ocean"}) {
		t.Fatalf("unexpected proposal keywords: %v", res.Features.Description)
	}
}

func TestRecommendSkipsScholarsWithoutFeatures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(testData(), testFactory(), Options{Logger: zap.New(core)})

	res, err := svc.Recommend(context.Background(), Request{Agency: dataset.NSF, ProposalID: "PD-1", K: 10, Algorithm: keywords.Rake})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := make([]string, 0, len(res.Recommendations))
	for _, r := range res.Recommendations {
		ids = append(ids, r.UserID)
	}
	if want := []string{"A", "B"}; !slices.Equal(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	if res.Recommendations[1].Score != 0 {
		t.Fatalf("expected zero score for unrelated scholar, got %v", res.Recommendations[1].Score)
	}
	if logs.FilterMessage("skipping scholars without analytical features").Len() != 1 {
		t.Fatalf("expected a warning about scholar C")
	}
}

func TestRecommendTieBreakAndEmptyKeywords(t *testing.T) {
	svc := NewService(testData(), testFactory(), Options{})

	res, err := svc.Recommend(context.Background(), Request{Agency: dataset.NSF, ProposalID: "PD-2", Algorithm: keywords.Rake})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.K != DefaultK {
		t.Fatalf("expected default K, got %d", res.K)
	}
	if len(res.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(res.Recommendations))
	}
	for _, r := range res.Recommendations {
		if r.Score != 0 {
			t.Fatalf("expected zero scores, got %v", r.Score)
		}
	}
	if res.Recommendations[0].UserID != "A" || res.Recommendations[1].UserID != "B" {
		t.Fatalf("expected ties ordered by id, got %+v", res.Recommendations)
	}
}

func TestRecommendErrors(t *testing.T) {
	svc := NewService(testData(), testFactory(), Options{})
	ctx := context.Background()

	if _, err := svc.Recommend(ctx, Request{Agency: dataset.NSF, ProposalID: "missing", K: 1}); !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Recommend(ctx, Request{Agency: dataset.NIH, ProposalID: "PD-1", K: 1}); !errors.Is(err, dataset.ErrUnknownAgency) {
		t.Fatalf("expected ErrUnknownAgency, got %v", err)
	}
	if _, err := svc.Recommend(ctx, Request{Agency: dataset.NSF, ProposalID: "PD-1", K: -1}); !errors.Is(err, rank.ErrInvalidK) {
		t.Fatalf("expected ErrInvalidK, got %v", err)
	}
	if _, err := svc.Recommend(ctx, Request{Agency: dataset.NSF, ProposalID: "PD-1", K: 1, Algorithm: keywords.Algorithm(99)}); !errors.Is(err, keywords.ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := svc.Recommend(cancelled, Request{Agency: dataset.NSF, ProposalID: "PD-1", K: 1, Algorithm: keywords.Rake}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRecommendUsesCache(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer db.Close()

	svc := NewService(testData(), testFactory(), Options{Cache: db})
	req := Request{Agency: dataset.NSF, ProposalID: "PD-1", K: 2, Algorithm: keywords.Rake}

	first, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first.Cached || !second.Cached {
		t.Fatalf("expected second call to be served from cache")
	}
	if first.RunID != second.RunID {
		t.Fatalf("expected cached run id %q, got %q", first.RunID, second.RunID)
	}
	if len(second.Recommendations) != len(first.Recommendations) || second.Recommendations[0].UserID != "A" {
		t.Fatalf("unexpected cached recommendations: %+v", second.Recommendations)
	}

	req.NoCache = true
	third, err := svc.Recommend(context.Background(), req)
	if err != nil || third.Cached {
		t.Fatalf("expected fresh computation with NoCache, got %+v (%v)", third, err)
	}
}

func TestRecommendMarineScholarOverQuantumScholar(t *testing.T) {
	text := "Research on marine biodiversity conservation"
	data := Data{
		Scholars: dataset.NewScholars([]*dataset.Scholar{
			{UserID: "A", Name: "Marine Scholar"},
			{UserID: "B", Name: "Quantum Scholar"},
		}),
		Features: dataset.NewFeatureStore([]dataset.ProfileFeatures{
			{UserID: "A", Keywords: "marine biodiversity ocean conservation"},
			{UserID: "B", Keywords: "quantum computing algorithms"},
		}),
		Proposals: map[dataset.Agency]*dataset.Proposals{
			dataset.NSF: dataset.NewProposals(dataset.NSF, []*dataset.Proposal{
				{ID: "MB-1", Title: text, Description: text},
			}),
		},
	}

	for _, alg := range []keywords.Algorithm{keywords.Spacy, keywords.Rake} {
		t.Run(alg.String(), func(t *testing.T) {
			svc := NewService(data, testFactory(), Options{Workers: 2})

			all, err := svc.Recommend(context.Background(), Request{Agency: dataset.NSF, ProposalID: "MB-1", K: 2, Algorithm: alg})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(all.Recommendations) != 2 {
				t.Fatalf("expected both scholars, got %+v", all.Recommendations)
			}
			a, b := all.Recommendations[0], all.Recommendations[1]
			if a.UserID != "A" || b.UserID != "B" {
				t.Fatalf("expected A before B, got %s, %s", a.UserID, b.UserID)
			}
			if a.Score <= b.Score {
				t.Fatalf("expected A's total %v to exceed B's %v", a.Score, b.Score)
			}

			top, err := svc.Recommend(context.Background(), Request{Agency: dataset.NSF, ProposalID: "MB-1", K: 1, Algorithm: alg})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(top.Recommendations) != 1 || top.Recommendations[0].UserID != "A" {
				t.Fatalf("expected only A at K=1, got %+v", top.Recommendations)
			}
		})
	}
}

type pluralLemmas map[string]string

func (l pluralLemmas) Lemma(word string) string {
	if lemma, ok := l[word]; ok {
		return lemma
	}
	return word
}

func TestRecommendLemmatizesProposalKeywords(t *testing.T) {
	data := Data{
		Scholars: dataset.NewScholars([]*dataset.Scholar{{UserID: "A"}}),
		Features: dataset.NewFeatureStore([]dataset.ProfileFeatures{
			{UserID: "A", Keywords: "coral reef marine ecosystem"},
		}),
		Proposals: map[dataset.Agency]*dataset.Proposals{
			dataset.NSF: dataset.NewProposals(dataset.NSF, []*dataset.Proposal{
				{ID: "CR-1", Description: "Coral reefs and marine ecosystems"},
			}),
		},
	}
	svc := NewService(data, testFactory(), Options{
		Lemmatizer: pluralLemmas{"reefs": "reef", "ecosystems": "ecosystem"},
	})

	res, err := svc.Recommend(context.Background(), Request{Agency: dataset.NSF, ProposalID: "CR-1", K: 1, Algorithm: keywords.Rake})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	desc := slices.Clone(res.Features.Description)
	slices.Sort(desc)
	if want := []string{"coral", "ecosystem", "marine", "reef"}; !slices.Equal(desc, want) {
		t.Fatalf("expected lemmatized keywords %v, got %v", want, res.Features.Description)
	}
	got := res.Recommendations[0].Scores[rank.ColumnName(rank.Keywords, rank.Description)]
	if math.Abs(got-100) > 1e-9 {
		t.Fatalf("expected a full match against the lemmatized channel, got %v", got)
	}
}

func TestRecommendCacheHonoursExcludeFile(t *testing.T) {
	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer db.Close()

	excludePath := filepath.Join(dir, "excluded.json")
	svc := NewService(testData(), testFactory(), Options{
		Cache:        db,
		FilterConfig: &filtering.Config{ExcludeFile: excludePath},
	})
	req := Request{Agency: dataset.NSF, ProposalID: "PD-1", K: 1, Algorithm: keywords.Rake}

	first, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.Recommendations[0].UserID != "A" {
		t.Fatalf("expected A first, got %+v", first.Recommendations)
	}

	excluded := &filtering.ExcludedScholars{Items: []*filtering.ExcludedScholar{{UserID: "A", ProposalID: "PD-1"}}}
	if err := excluded.ToFile(excludePath); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	second, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.Cached {
		t.Fatalf("expected a fresh computation after the exclude file changed")
	}
	if second.Recommendations[0].UserID != "B" {
		t.Fatalf("expected excluded scholar A to be dropped, got %+v", second.Recommendations)
	}

	third, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	if !third.Cached || third.Recommendations[0].UserID != "B" {
		t.Fatalf("expected the filtered result to be cached, got cached=%v %+v", third.Cached, third.Recommendations)
	}
}

func TestRecommendCacheKeyedByWeights(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer db.Close()

	req := Request{Agency: dataset.NSF, ProposalID: "PD-1", K: 2, Algorithm: keywords.Rake}
	if _, err := NewService(testData(), testFactory(), Options{Cache: db}).Recommend(context.Background(), req); err != nil {
		t.Fatalf("first call: %v", err)
	}

	weights := rank.DefaultWeights()
	weights[rank.Keywords] = 0
	res, err := NewService(testData(), testFactory(), Options{Cache: db, Weights: weights}).Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if res.Cached {
		t.Fatalf("expected different weights to miss the cache")
	}
}
