package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scholar-matcher/internal/filtering"
	"github.com/spigell/scholar-matcher/internal/output"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show the candidate filters applied before scoring",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, logger := bootstrap()
		format, _ := cmd.Flags().GetString("output")

		steps := filtering.Default()
		fc := cfg.FilterConfig()
		for _, step := range steps {
			if err := step.Validate(fc); err != nil {
				logger.Warn("filter config is invalid", zap.String("name", step.Name()), zap.Error(err))
			}
		}

		if err := output.Output(os.Stdout, format, filtering.Describe(steps)); err != nil {
			logger.Fatal("writing filters", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)

	filtersCmd.Flags().StringP("output", "o", output.FormatTable, "output format: table or json")
}
