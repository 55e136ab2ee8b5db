package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scholar-matcher/internal/output"
	"github.com/spigell/scholar-matcher/internal/suggest"
)

const PromptCancel = "cancel"

var suggestCmd = &cobra.Command{
	Use:   "suggest <query...>",
	Short: "Find proposals by title and optionally recommend scholars for one of them",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := bootstrap()

		size, _ := cmd.Flags().GetInt("size")
		selectOne, _ := cmd.Flags().GetBool("select")
		format, _ := cmd.Flags().GetString("output")

		proposals, err := loadProposals(cfg, logger)
		if err != nil {
			logger.Fatal("loading data", zap.Error(err))
		}

		index := suggest.Build(proposals)
		query := strings.Join(args, " ")
		found := index.Search(query, size)
		logger.Debug("suggestions", zap.String("query", query), zap.Int("indexed", index.Len()), zap.Int("found", len(found)))

		if len(found) == 0 {
			logger.Info("exiting", zap.String("reason", "no proposal titles match the query"))
			return
		}

		if !selectOne {
			if err := output.Output(os.Stdout, format, found); err != nil {
				logger.Fatal("writing suggestions", zap.Error(err))
			}
			return
		}

		chosen, err := selectSuggestion(found)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if chosen == nil {
			logger.Info("exiting", zap.String("reason", "selection cancelled"))
			return
		}

		noCache, _ := cmd.Flags().GetBool("no-cache")
		err = runRecommend(cmd.Context(), cfg, logger, recommendOptions{
			agency:     string(chosen.Agency),
			proposalID: chosen.ProposalID,
			format:     format,
			noCache:    noCache,
		})
		if err != nil {
			logger.Fatal("recommendation failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().Int("size", 10, "maximum number of suggestions")
	suggestCmd.Flags().Bool("select", false, "pick a suggestion interactively and recommend scholars for it")
	suggestCmd.Flags().StringP("output", "o", output.FormatTable, "output format: table or json")
	suggestCmd.Flags().Bool("no-cache", false, "neither read nor store cached results when recommending")
}

// selectSuggestion returns nil when the user picks cancel.
func selectSuggestion(items []suggest.Suggestion) (*suggest.Suggestion, error) {
	labels := make([]string, 0, len(items)+1)
	for _, s := range items {
		labels = append(labels, fmt.Sprintf("[%s] %s (%s)", s.Agency, s.Title, s.ProposalID))
	}

	prompt := promptui.Select{
		Label: "Choose a proposal and press ENTER",
		Items: append(labels, PromptCancel),
		Size:  len(labels) + 1,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	if idx >= len(items) {
		return nil, nil
	}
	return &items[idx], nil
}
