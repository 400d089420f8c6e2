package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"llm-quorum/internal/config"
	"llm-quorum/internal/council"
	"llm-quorum/internal/openrouter"
	"llm-quorum/internal/server"
	"llm-quorum/internal/storage"
	"llm-quorum/internal/webfetch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quorum HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		logger := slog.Default()

		gateway := openrouter.NewClient(cfg.OpenRouter.BaseURL, cfg.OpenRouter.APIKey, logger)

		pipeline, err := council.NewPipeline(gateway, council.PipelineOptions{
			Roster:       cfg.Council.Models,
			Chairman:     cfg.Council.Chairman,
			QueryTimeout: cfg.OpenRouter.QueryTimeout,
			Logger:       logger,
		})
		if err != nil {
			return fmt.Errorf("build pipeline: %w", err)
		}

		summarizer := council.NewSummarizer(gateway, cfg.Council.TitleModel, cfg.OpenRouter.TitleTimeout, logger)
		store := storage.NewStore(cfg.Storage.DataDir, cfg.Storage.ListCacheTTL)
		fetcher := webfetch.NewFetcher()

		srv := server.New(cfg.Server, store, pipeline, summarizer, fetcher, logger)

		logger.Info("council configured",
			"roster", cfg.Council.Models,
			"chairman", cfg.Council.Chairman,
			"title_model", cfg.Council.TitleModel,
		)

		return srv.Run()
	},
}
