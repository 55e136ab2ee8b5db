package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/scholar-matcher/internal/config"
)

const (
	app = "scholar-matcher"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scholar-matcher recommends faculty scholars for NSF and NIH funding proposals",
		// Usage on every runtime error hides the actual message.
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", config.EnvGeminiAPIKeyFile); err != nil {
		log.Fatalf("binding %s environment variable: %v", config.EnvGeminiAPIKeyFile, err)
	}

	config.SetDefaults(viper.GetViper())
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scholar-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the data commands. Help, completion and version
	// work without it.
	if !needsConfig() {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func needsConfig() bool {
	for _, c := range []*cobra.Command{recommendCmd, featuresCmd, suggestCmd, cacheClearCmd, filtersCmd} {
		if c.CalledAs() != "" {
			return true
		}
	}
	return false
}

func getConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}
