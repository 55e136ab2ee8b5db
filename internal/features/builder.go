// Package features builds the analytical dataset: the five pre-tokenized
// profile channels of every scholar, computed offline from the scholars and
// publications datasets.
package features

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/keywords"
	"github.com/spigell/scholar-matcher/internal/proposal"
	"github.com/spigell/scholar-matcher/internal/textnorm"
)

const DefaultTopPublications = 5

type Options struct {
	// TopPublications is how many of the most recent titles feed pub_title.
	TopPublications int
	// UniversityStopwords are removed from the Organization channel.
	UniversityStopwords []string
	Workers             int
	Logger              *zap.Logger
}

type Builder struct {
	norm    *textnorm.Normalizer
	titles  keywords.Extractor
	opts    Options
	orgStop map[string]struct{}
}

// NewBuilder uses titles to pull keywords out of publication titles.
func NewBuilder(norm *textnorm.Normalizer, titles keywords.Extractor, opts Options) *Builder {
	if opts.TopPublications <= 0 {
		opts.TopPublications = DefaultTopPublications
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	orgStop := make(map[string]struct{}, len(opts.UniversityStopwords))
	for _, w := range opts.UniversityStopwords {
		for _, tok := range textnorm.Split(w) {
			orgStop[tok] = struct{}{}
			orgStop[norm.Lemma(tok)] = struct{}{}
		}
	}

	return &Builder{norm: norm, titles: titles, opts: opts, orgStop: orgStop}
}

// Build returns one row per scholar in scholar file order. Scholars without
// publications get empty publication channels.
func (b *Builder) Build(ctx context.Context, scholars *dataset.Scholars, pubs []dataset.Publication) ([]dataset.ProfileFeatures, error) {
	byUser := make(map[string][]dataset.Publication)
	for _, p := range pubs {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}
	for id := range byUser {
		slices.SortStableFunc(byUser[id], func(a, b dataset.Publication) int {
			return b.Date.Compare(a.Date)
		})
	}

	rows := make([]dataset.ProfileFeatures, scholars.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for i, sc := range scholars.Items {
		g.Go(func() error {
			row, err := b.buildOne(gctx, sc, byUser[sc.UserID])
			if err != nil {
				return fmt.Errorf("scholar %s: %w", sc.UserID, err)
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.opts.Logger.Info("analytical dataset built",
		zap.Int("scholars", len(rows)),
		zap.Int("publications", len(pubs)),
	)
	return rows, nil
}

func (b *Builder) buildOne(ctx context.Context, sc *dataset.Scholar, pubs []dataset.Publication) (dataset.ProfileFeatures, error) {
	row := dataset.ProfileFeatures{
		UserID:   sc.UserID,
		Netid:    sc.Netid,
		Email:    sc.Email,
		Keywords: strings.Join(b.norm.Normalize(strings.ReplaceAll(sc.Keywords, "||", " ")), " "),
		Overview: strings.Join(b.norm.Normalize(sc.Overview), " "),
	}

	var org []string
	for _, tok := range b.norm.Normalize(sc.Organizations) {
		if _, stop := b.orgStop[tok]; !stop {
			org = append(org, tok)
		}
	}
	row.Organization = strings.Join(org, " ")

	if len(pubs) == 0 {
		return row, nil
	}

	top := pubs[:min(len(pubs), b.opts.TopPublications)]
	titles := make([]string, 0, len(top))
	for _, p := range top {
		if !textnorm.IsMissing(p.Title) {
			titles = append(titles, p.Title)
		}
	}
	titleKeys, err := keywords.ExtractKeywords(ctx, b.titles, strings.Join(titles, " "), b.opts.TopPublications)
	if err != nil {
		return row, err
	}
	row.PubTitle = strings.Join(unique(proposal.Tokens(titleKeys, b.norm)), " ")

	var words []string
	for _, p := range pubs {
		for _, kw := range ParseKeywordList(p.Keywords) {
			words = append(words, proposal.Tokens([]string{kw}, b.norm)...)
		}
	}
	row.PubKeyword = strings.Join(unique(words), " ")

	return row, nil
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
