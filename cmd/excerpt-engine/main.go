// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the excerpt-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tibschol/excerpt-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds access tokens loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// resolveToken picks a token by precedence: explicit flag value, process
// environment, then the .secrets/ directory.
func resolveToken(flagValue, envName, secretKey string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return loadedSecrets[secretKey]
}

// rootCmd is the base command for the excerpt-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "excerpt-engine",
	Short: "Maintain the TibSchol excerpt corpus from TEI transcriptions",
	Long: `excerpt-engine keeps data/excerpts.csv in step with the TEI-curation
transcription repository. It syncs the companion repository, extracts
annotated excerpt segments from the TEI XML files, publishes the CSV when
it changed, and maintains a full-text search index over the corpus.

Each stage is a subcommand: sync, extract, commit, and index. The run
command chains the pipeline end to end, and schedule repeats it on a cron
expression.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env entries become process env before token resolution.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./excerpt-engine.yaml or ~/.config/excerpt-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("excerpt-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "excerpt-engine"))
		}
	}

	viper.SetEnvPrefix("EXCERPT_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// flagOrConfig returns the flag value when set on the command line, the
// viper key when configured, and the flag's default otherwise.
func flagOrConfig(cmd *cobra.Command, flag, key string) string {
	v, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
