package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/scholar-matcher/internal/config"
	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/filtering"
	"github.com/spigell/scholar-matcher/internal/keywords"
	"github.com/spigell/scholar-matcher/internal/output"
	"github.com/spigell/scholar-matcher/internal/recommend"
	"github.com/spigell/scholar-matcher/internal/store"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the top-K scholars for a funding proposal",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, logger := bootstrap()

		agency, err := cmd.Flags().GetString("agency")
		if err != nil {
			logger.Fatal("reading flags", zap.Error(err))
		}
		opts := recommendOptions{
			agency:     agency,
			proposalID: viper.GetString("proposal-id"),
		}
		opts.format, _ = cmd.Flags().GetString("output")
		opts.outputFile, _ = cmd.Flags().GetString("output-file")
		opts.noCache, _ = cmd.Flags().GetBool("no-cache")
		opts.appendExclude, _ = cmd.Flags().GetBool("append-exclude")

		if err := runRecommend(cmd.Context(), cfg, logger, opts); err != nil {
			logger.Fatal("recommendation failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().String("agency", "", "funding agency of the proposal (nsf or nih)")
	recommendCmd.Flags().String("proposal-id", "", "proposal id (opportunity number)")
	recommendCmd.Flags().Int("top-k", recommend.DefaultK, "number of scholars to return")
	recommendCmd.Flags().String("generator", keywords.Spacy.String(), "keyword extraction algorithm: Spacy, Rake, Yake, Bert or Gensim")
	recommendCmd.Flags().Int("n-cores", 0, "number of scoring workers (default is cpu-count)")
	recommendCmd.Flags().StringP("output", "o", output.FormatTable, "output format: table or json")
	recommendCmd.Flags().String("output-file", "", "write the result to a file instead of stdout")
	recommendCmd.Flags().Bool("no-cache", false, "neither read nor store cached results")
	recommendCmd.Flags().Bool("append-exclude", false, "append the recommended scholars to exclude-file")
	recommendCmd.MarkFlagRequired("agency")

	viper.BindPFlag("proposal-id", recommendCmd.Flags().Lookup("proposal-id"))
	viper.BindPFlag("top-k", recommendCmd.Flags().Lookup("top-k"))
	viper.BindPFlag("generator", recommendCmd.Flags().Lookup("generator"))
	viper.BindPFlag("cpu-count", recommendCmd.Flags().Lookup("n-cores"))
}

type recommendOptions struct {
	agency        string
	proposalID    string
	format        string
	outputFile    string
	noCache       bool
	appendExclude bool
}

func runRecommend(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts recommendOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	agency, err := dataset.ParseAgency(opts.agency)
	if err != nil {
		return err
	}
	if opts.proposalID == "" {
		return fmt.Errorf("%w: proposal id is empty (use --proposal-id or proposal-id in config)", dataset.ErrNotFound)
	}
	alg, err := keywords.ParseAlgorithm(cfg.Generator)
	if err != nil {
		return err
	}

	norm, err := newNormalizer(cfg)
	if err != nil {
		return fmt.Errorf("creating the normalizer: %w", err)
	}
	scholars, err := loadScholars(cfg, logger)
	if err != nil {
		return err
	}
	features, err := loadFeatures(cfg, logger)
	if err != nil {
		return err
	}
	proposals, err := loadProposals(cfg, logger, agency)
	if err != nil {
		return err
	}

	svcOpts := recommend.Options{
		Workers:      cfg.CPUCount,
		TaskTimeout:  cfg.TaskTimeout,
		Weights:      cfg.ChannelWeights(),
		FilterConfig: cfg.FilterConfig(),
		Lemmatizer:   norm,
		Logger:       logger,
	}
	if cfg.Cache.Enabled && !opts.noCache {
		db, err := store.Open(cfg.CachePath())
		if err != nil {
			return err
		}
		defer db.Close()
		svcOpts.Cache = db
	}

	svc := recommend.NewService(recommend.Data{
		Scholars:  scholars,
		Features:  features,
		Proposals: proposals,
	}, newExtractorFactory(ctx, cfg, norm, logger), svcOpts)

	res, err := svc.Recommend(ctx, recommend.Request{
		Agency:     agency,
		ProposalID: opts.proposalID,
		K:          cfg.TopK,
		Algorithm:  alg,
		NoCache:    opts.noCache,
	})
	if err != nil {
		return err
	}

	w, err := openOutput(opts.outputFile)
	if err != nil {
		return err
	}
	if err := output.Output(w, opts.format, res); err != nil {
		w.Close()
		return fmt.Errorf("writing the result: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	if opts.outputFile != "" {
		logger.Info("result written", zap.String("filename", opts.outputFile))
	}

	if opts.appendExclude {
		return appendToExcludeFile(cfg.ExcludeFile, res, logger)
	}
	return nil
}

func appendToExcludeFile(path string, res *recommend.Result, logger *zap.Logger) error {
	if path == "" {
		return fmt.Errorf("--append-exclude needs exclude-file to be configured")
	}

	excluded, err := filtering.ReadExcludeFile(path)
	if err != nil {
		if !isNotExist(err) {
			return fmt.Errorf("reading exclude file %q: %w", path, err)
		}
		excluded = &filtering.ExcludedScholars{}
	}

	now := time.Now().UTC()
	fresh := &filtering.ExcludedScholars{}
	for _, r := range res.Recommendations {
		fresh.Items = append(fresh.Items, &filtering.ExcludedScholar{
			UserID:     r.UserID,
			Netid:      r.Netid,
			ProposalID: res.ProposalID,
			ExcludedAt: now,
		})
	}
	excluded.Append(fresh)

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("writing exclude file %q: %w", path, err)
	}
	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", len(fresh.Items)))
	return nil
}
