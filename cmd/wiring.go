package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/scholar-matcher/internal/ai"
	"github.com/spigell/scholar-matcher/internal/ai/gemini"
	"github.com/spigell/scholar-matcher/internal/config"
	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/keywords"
	"github.com/spigell/scholar-matcher/internal/logger"
	"github.com/spigell/scholar-matcher/internal/recommend"
	"github.com/spigell/scholar-matcher/internal/secrets"
	"github.com/spigell/scholar-matcher/internal/textnorm"
)

// bootstrap builds the logger and a validated config. Any failure ends the
// process.
func bootstrap() (*config.Config, *zap.Logger) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err), zap.String("file", viper.ConfigFileUsed()))
	}

	logger.Info("starting the scholar-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(cfg, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return cfg, logger
}

func newNormalizer(cfg *config.Config) (*textnorm.Normalizer, error) {
	lem, err := textnorm.NewLemmatizer(cfg.Normalizer.Lemmatizer)
	if err != nil {
		return nil, err
	}
	return textnorm.New(textnorm.Options{
		MinTokenLength: cfg.Normalizer.MinTokenLength,
		Lemmatizer:     lem,
		ExtraStopwords: cfg.Normalizer.ExtraStopwords,
	}), nil
}

// newExtractorFactory creates the embedding client only when the Bert
// strategy is requested.
func newExtractorFactory(ctx context.Context, cfg *config.Config, norm *textnorm.Normalizer, logger *zap.Logger) recommend.ExtractorFactory {
	return func(alg keywords.Algorithm) (keywords.Extractor, error) {
		deps := keywords.Deps{Normalizer: norm, Logger: logger}
		if alg == keywords.Bert {
			embedder, err := newEmbedder(ctx, cfg.AI.Gemini, logger)
			if err != nil {
				return nil, err
			}
			deps.Embedder = embedder
		}
		return keywords.New(alg, deps)
	}
}

func newEmbedder(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (ai.Embedder, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or %s)", err, config.EnvGeminiAPIKeyFile)
	}

	return gemini.NewEmbedder(ctx, apiKey, cfg.Model, logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Model),
	))
}

func logRowErrors(logger *zap.Logger, rowErrs []dataset.RowError) {
	for _, re := range rowErrs {
		logger.Warn("skipping malformed row",
			zap.String("path", re.Path),
			zap.Int("line", re.Line),
			zap.Error(re.Err),
		)
	}
}

func loadScholars(cfg *config.Config, logger *zap.Logger) (*dataset.Scholars, error) {
	path := cfg.Data.Path(cfg.Data.ScholarsDataset)
	scholars, rowErrs, err := dataset.LoadScholars(path)
	if err != nil {
		return nil, err
	}
	logRowErrors(logger, rowErrs)
	logger.Info("scholars loaded", zap.Int("count", scholars.Len()), zap.String("path", path))
	return scholars, nil
}

func loadFeatures(cfg *config.Config, logger *zap.Logger) (*dataset.FeatureStore, error) {
	path := cfg.Data.Path(cfg.Data.AnalyticalDataset)
	store, rowErrs, err := dataset.LoadFeatures(path)
	if err != nil {
		return nil, err
	}
	logRowErrors(logger, rowErrs)
	logger.Info("analytical features loaded", zap.Int("count", store.Len()), zap.String("path", path))
	return store, nil
}

// loadProposals loads the datasets of the given agencies, or of every
// configured agency when none are given.
func loadProposals(cfg *config.Config, logger *zap.Logger, only ...dataset.Agency) (map[dataset.Agency]*dataset.Proposals, error) {
	files, err := cfg.Data.AgencyFiles()
	if err != nil {
		return nil, err
	}
	if len(only) > 0 {
		selected := make(map[dataset.Agency]string, len(only))
		for _, a := range only {
			path, ok := files[a]
			if !ok {
				return nil, fmt.Errorf("%w: %s is not configured under data.agencies", dataset.ErrUnknownAgency, a)
			}
			selected[a] = path
		}
		files = selected
	}

	out := make(map[dataset.Agency]*dataset.Proposals, len(files))
	for agency, path := range files {
		proposals, err := dataset.LoadProposals(agency, path)
		if err != nil {
			return nil, err
		}
		logger.Info("proposals loaded",
			zap.String("agency", string(agency)),
			zap.Int("count", proposals.Len()),
		)
		out[agency] = proposals
	}
	return out, nil
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if strings.TrimSpace(path) == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
