// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-supervisor/internal/cache"
	"github.com/pdiddy/research-supervisor/internal/llm"
	"github.com/pdiddy/research-supervisor/internal/metrics"
	"github.com/pdiddy/research-supervisor/internal/pipeline"
	"github.com/pdiddy/research-supervisor/internal/search"
	"github.com/pdiddy/research-supervisor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Serve starts the HTTP service:

  POST /supervisor    {"task": "..."} returns the research report
  GET  /past_queries  lists cached tasks
  GET  /              homepage
  GET  /healthz       liveness probe
  GET  /metrics       Prometheus metrics

Missing credentials do not stop the service; completions report the missing
token and web research comes back empty.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default \":5000\")")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.New()
	srv := server.New(cfg.Server, newOrchestrator(store, m), store, m, logger)

	logger.Info("starting research supervisor",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("db", cfg.Cache.Path()),
		zap.String("model", cfg.LLM.Model),
	)
	return srv.Start(ctx)
}

// newOrchestrator wires the model and search clients from cfg to store.
func newOrchestrator(store *cache.Store, m *metrics.Metrics) *pipeline.Orchestrator {
	if cfg.LLM.APIKey == "" {
		logger.Warn("HF_TOKEN is not set; completions will report the missing credential")
	}
	if cfg.Search.APIKey == "" {
		logger.Warn("SERPAPI_KEY is not set; web research will be empty")
	}
	return pipeline.New(
		llm.NewClient(cfg.LLM, logger),
		search.NewScholar(cfg.Search, logger),
		store,
		m,
		logger,
	)
}
