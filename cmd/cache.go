package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scholar-matcher/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached recommendation results",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached recommendation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, logger := bootstrap()

		path := cfg.CachePath()
		db, err := store.Open(path)
		if err != nil {
			logger.Fatal("opening the cache", zap.Error(err))
		}
		defer db.Close()

		removed, err := db.Clear(cmd.Context())
		if err != nil {
			logger.Fatal("clearing the cache", zap.Error(err))
		}
		logger.Info("cache cleared", zap.String("path", path), zap.Int64("removed", removed))
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
