// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-supervisor CLI. The serve
// command runs the HTTP service; research, queries, and export work against
// the same cache from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-supervisor/internal/secrets"
	"github.com/pdiddy/research-supervisor/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	secretsDir = ".secrets/"
	dotEnvFile = ".env"
)

var (
	// cfg is the resolved configuration, set in PersistentPreRunE.
	cfg types.Config

	// logger is built from cfg.Log in PersistentPreRunE.
	logger = zap.NewNop()
)

// rootCmd is the base command for the research-supervisor CLI.
var rootCmd = &cobra.Command{
	Use:   "research-supervisor",
	Short: "Research assistant that chains model calls with scholarly search",
	Long: `research-supervisor answers a free-text research task with a fixed
pipeline: hypotheses, web research, analysis, reasoning, evaluation, summary,
and conclusion. Results are cached in a local SQLite database keyed by task.

Run "serve" for the HTTP service, or "research" for a single task.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			c.Log.Level = "debug"
		}

		l, err := newLogger(c.Log)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		if used := secrets.Fill(&c, s); len(used) > 0 {
			logger.Info("loaded secrets", zap.Strings("keys", used))
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-supervisor.yaml or ~/.config/research-supervisor/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the cache database (default \"data\")")
	_ = viper.BindPFlag("cache.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	if err := secrets.LoadDotEnv(dotEnvFile); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-supervisor")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-supervisor"))
		}
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
