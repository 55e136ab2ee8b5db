package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/features"
	"github.com/spigell/scholar-matcher/internal/keywords"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Build the analytical dataset from the scholars and publications datasets",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, logger := bootstrap()
		ctx := cmd.Context()

		// --n-cores and --generator are shared keys with recommend, so the
		// flags are read here rather than bound.
		if cmd.Flags().Changed("n-cores") {
			cfg.CPUCount, _ = cmd.Flags().GetInt("n-cores")
		}
		if cmd.Flags().Changed("generator") {
			cfg.Generator, _ = cmd.Flags().GetString("generator")
		}

		alg, err := keywords.ParseAlgorithm(cfg.Generator)
		if err != nil {
			logger.Fatal("parsing the generator", zap.Error(err))
		}
		norm, err := newNormalizer(cfg)
		if err != nil {
			logger.Fatal("creating the normalizer", zap.Error(err))
		}
		titles, err := newExtractorFactory(ctx, cfg, norm, logger)(alg)
		if err != nil {
			logger.Fatal("creating the keyword extractor", zap.Error(err))
		}

		scholars, err := loadScholars(cfg, logger)
		if err != nil {
			logger.Fatal("loading data", zap.Error(err))
		}

		pubPath := cfg.Data.Path(cfg.Data.PublicationDataset)
		pubs, rowErrs, err := dataset.LoadPublications(pubPath)
		if err != nil {
			logger.Fatal("loading data", zap.Error(err))
		}
		logRowErrors(logger, rowErrs)
		logger.Info("publications loaded", zap.Int("count", len(pubs)), zap.String("path", pubPath))

		builder := features.NewBuilder(norm, titles, features.Options{
			TopPublications:     cfg.Features.TopPublications,
			UniversityStopwords: cfg.Features.UniversityStopwords,
			Workers:             cfg.CPUCount,
			Logger:              logger,
		})
		rows, err := builder.Build(ctx, scholars, pubs)
		if err != nil {
			logger.Fatal("building features", zap.Error(err))
		}

		out := cfg.Data.Path(cfg.Data.AnalyticalDataset)
		if err := features.WriteFile(ctx, out, rows); err != nil {
			logger.Fatal("writing the analytical dataset", zap.Error(err))
		}
		logger.Info("analytical dataset written", zap.String("filename", out), zap.Int("count", len(rows)))
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().Int("n-cores", 0, "number of workers (default is cpu-count)")
	featuresCmd.Flags().String("generator", keywords.Spacy.String(), "keyword extraction algorithm for publication titles")
}
