// Package recommend runs the scholar recommendation pipeline for one
// proposal: extract proposal keywords, filter candidates, score every
// scholar channel against every proposal section, aggregate and rank.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/filtering"
	"github.com/spigell/scholar-matcher/internal/keywords"
	"github.com/spigell/scholar-matcher/internal/logger"
	"github.com/spigell/scholar-matcher/internal/proposal"
	"github.com/spigell/scholar-matcher/internal/rank"
	"github.com/spigell/scholar-matcher/internal/similarity"
	"github.com/spigell/scholar-matcher/internal/store"
	"github.com/spigell/scholar-matcher/internal/textnorm"
	"github.com/spigell/scholar-matcher/internal/utils"
)

const (
	DefaultK           = 20
	DefaultTaskTimeout = 30 * time.Second
)

// Request selects the proposal and the shape of the answer.
type Request struct {
	Agency     dataset.Agency
	ProposalID string
	// K is the number of scholars to return. Zero selects the default.
	K         int
	Algorithm keywords.Algorithm
	// Workers bounds scoring concurrency. Zero selects the service default.
	Workers int
	// NoCache skips both cache lookup and store.
	NoCache bool
}

// Data is the read-only input loaded once per process.
type Data struct {
	Scholars  *dataset.Scholars
	Features  *dataset.FeatureStore
	Proposals map[dataset.Agency]*dataset.Proposals
}

// Cache persists serialized results.
type Cache interface {
	Get(ctx context.Context, key store.Key) (store.Entry, bool, error)
	Put(ctx context.Context, key store.Key, payload []byte) (string, error)
}

// ExtractorFactory returns the keyword extractor for an algorithm.
type ExtractorFactory func(keywords.Algorithm) (keywords.Extractor, error)

type Options struct {
	Workers      int
	TaskTimeout  time.Duration
	Weights      rank.Weights
	Filters      func() []filtering.Filter
	FilterConfig *filtering.Config
	Cache        Cache
	// Lemmatizer must be the one the analytical dataset was built with so
	// proposal words compare against profile channels. Nil keeps surface forms.
	Lemmatizer textnorm.Lemmatizer
	Logger     *zap.Logger
}

type Service struct {
	data       Data
	extractors ExtractorFactory
	opts       Options
}

func NewService(data Data, extractors ExtractorFactory, opts Options) *Service {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = DefaultTaskTimeout
	}
	if opts.Weights == (rank.Weights{}) {
		opts.Weights = rank.DefaultWeights()
	}
	if opts.Filters == nil {
		opts.Filters = filtering.Default
	}
	if opts.FilterConfig == nil {
		opts.FilterConfig = &filtering.Config{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{data: data, extractors: extractors, opts: opts}
}

// Recommend returns up to K scholars for the requested proposal.
func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	if req.K == 0 {
		req.K = DefaultK
	}
	if req.K < 0 {
		return nil, fmt.Errorf("%w: got %d", rank.ErrInvalidK, req.K)
	}
	workers := req.Workers
	if workers <= 0 {
		workers = s.opts.Workers
	}

	log := logger.WithRequestFields(s.opts.Logger, string(req.Agency), req.ProposalID, req.Algorithm.String())

	proposals, ok := s.data.Proposals[req.Agency]
	if !ok || proposals == nil {
		return nil, fmt.Errorf("%w: %q has no proposals dataset", dataset.ErrUnknownAgency, req.Agency)
	}
	p, err := proposals.Find(req.ProposalID)
	if err != nil {
		return nil, err
	}
	log.Debug("proposal found",
		zap.String("title", p.Title),
		zap.String("description", utils.TruncateForLog(p.Description, 200)),
	)

	filters := s.opts.Filters()
	fingerprint, err := s.fingerprint(filters)
	if err != nil {
		return nil, err
	}
	key := store.Key{
		Agency:      string(req.Agency),
		ProposalID:  p.ID,
		K:           req.K,
		Algorithm:   req.Algorithm.String(),
		Fingerprint: fingerprint,
	}
	if cached := s.fromCache(ctx, log, key, req.NoCache); cached != nil {
		return cached, nil
	}

	ex, err := s.extractors(req.Algorithm)
	if err != nil {
		return nil, err
	}
	feats, err := proposal.Extract(ctx, p, ex, req.K, s.opts.Lemmatizer)
	if err != nil {
		return nil, err
	}
	if feats.Empty() {
		log.Warn("proposal produced no keywords; every score will be zero")
	}

	candidates := filtering.NewCandidates(s.data.Scholars, s.data.Features)
	candidates, err = filtering.Run(ctx, s.opts.FilterConfig, filtering.Deps{Logger: log}, filters, candidates)
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}

	entries, err := s.score(ctx, log, candidates, feats, workers)
	if err != nil {
		return nil, err
	}
	rank.Aggregate(entries, s.opts.Weights)
	top, err := rank.Rank(entries, req.K)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Agency:          req.Agency,
		ProposalID:      p.ID,
		ProposalTitle:   p.Title,
		K:               req.K,
		Algorithm:       req.Algorithm.String(),
		Features:        feats,
		Recommendations: make([]Recommendation, 0, len(top)),
	}
	for _, e := range top {
		sc, _ := s.data.Scholars.Get(e.ScholarID)
		res.Recommendations = append(res.Recommendations, newRecommendation(sc, e))
	}

	res.RunID = s.toCache(ctx, log, key, res, req.NoCache)
	log.Info("recommendation completed",
		zap.String(logger.FieldRunID, res.RunID),
		zap.Int("scored", len(entries)),
		zap.Int("returned", len(res.Recommendations)),
	)
	return res, nil
}

type scored struct {
	entry rank.Entry
	ok    bool
}

// score fans scholars out to a bounded pool. Each task has its own deadline
// and writes only its own slot; a task that misses its deadline drops that
// scholar. Cancelling ctx aborts the whole request.
func (s *Service) score(ctx context.Context, log *zap.Logger, candidates *filtering.Candidates, feats proposal.Features, workers int) ([]rank.Entry, error) {
	var fieldCounters [rank.NumFields]similarity.Counter
	for _, f := range rank.Fields() {
		fieldCounters[f] = similarity.NewCounter(feats.Field(f))
	}

	results := make([]scored, candidates.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, cand := range candidates.Items {
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(gctx, s.opts.TaskTimeout)
			defer cancel()

			scores, err := scoreScholar(tctx, cand.Features, fieldCounters)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn("skipping scholar",
					zap.String(logger.FieldScholar, cand.ID),
					zap.Error(err),
				)
				return nil
			}
			results[i] = scored{entry: rank.Entry{ScholarID: cand.ID, Scores: scores}, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring scholars: %w", err)
	}

	entries := make([]rank.Entry, 0, len(results))
	for _, r := range results {
		if r.ok {
			entries = append(entries, r.entry)
		}
	}
	return entries, nil
}

func scoreScholar(ctx context.Context, pf *dataset.ProfileFeatures, fields [rank.NumFields]similarity.Counter) (rank.Scores, error) {
	var scores rank.Scores
	if pf == nil {
		return scores, errors.New("no analytical features")
	}
	for _, c := range rank.Channels() {
		if err := ctx.Err(); err != nil {
			return scores, err
		}
		channel := similarity.NewCounter(strings.Fields(pf.Channel(c)))
		for _, f := range rank.Fields() {
			scores.Set(c, f, channel.Score(fields[f]))
		}
	}
	return scores, nil
}

// fingerprint ties a cached result to the candidate filters, the exclude
// file contents and the channel weights it was ranked under.
func (s *Service) fingerprint(filters []filtering.Filter) (string, error) {
	fp, err := filtering.Fingerprint(s.opts.FilterConfig, filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s;weights=%v", fp, s.opts.Weights), nil
}

func (s *Service) fromCache(ctx context.Context, log *zap.Logger, key store.Key, skip bool) *Result {
	if s.opts.Cache == nil || skip {
		return nil
	}
	entry, ok, err := s.opts.Cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache lookup failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var res Result
	if err := json.Unmarshal(entry.Payload, &res); err != nil {
		log.Warn("ignoring unreadable cache entry", zap.Error(err))
		return nil
	}
	res.RunID = entry.RunID
	res.Cached = true
	log.Info("serving cached recommendation", zap.String(logger.FieldRunID, entry.RunID))
	return &res
}

func (s *Service) toCache(ctx context.Context, log *zap.Logger, key store.Key, res *Result, skip bool) string {
	if s.opts.Cache == nil || skip {
		return uuid.NewString()
	}
	payload, err := json.Marshal(res)
	if err != nil {
		log.Warn("encoding result for cache", zap.Error(err))
		return uuid.NewString()
	}
	runID, err := s.opts.Cache.Put(ctx, key, payload)
	if err != nil {
		log.Warn("caching result", zap.Error(err))
		return uuid.NewString()
	}
	return runID
}
