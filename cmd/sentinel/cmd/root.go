// Package cmd provides the CLI commands for sentinel.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sentinel-rag/sentinel/internal/config"
	"github.com/sentinel-rag/sentinel/internal/core"
	"github.com/sentinel-rag/sentinel/internal/embed"
	"github.com/sentinel-rag/sentinel/internal/lifecycle"
	"github.com/sentinel-rag/sentinel/internal/logging"
	"github.com/sentinel-rag/sentinel/internal/search"
	"github.com/sentinel-rag/sentinel/pkg/version"
)

var (
	debugMode  bool
	offline    bool
	configDir  string
	loggingOff func()
)

// NewRootCmd creates the root command for the sentinel CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Hybrid document retrieval core for subject-scoped knowledge bases",
		Long: `sentinel ingests PDFs into per-subject indices and answers hybrid
BM25 + semantic search queries over them.

It runs entirely locally against Ollama for embeddings and reranking.`,
		Version:           version.Version,
		PersistentPreRunE: setupLogging,
	}
	cmd.SetVersionTemplate("sentinel version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.sentinel/logs/")
	cmd.PersistentFlags().BoolVar(&offline, "offline", false, "Use static embeddings instead of Ollama")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory containing sentinel.yaml (defaults to the current directory)")

	cmd.AddCommand(newProcessCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(*cobra.Command, []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	} else {
		logCfg.WriteToStderr = false
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	loggingOff = cleanup
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if loggingOff != nil {
		loggingOff()
	}
	return err
}

// buildContext loads configuration and constructs a core.Context wired to
// either Ollama or static embeddings, depending on --offline.
func buildContext(ctx context.Context) (*core.Context, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var embedder core.Embedder
	var reranker search.Reranker

	if offline {
		embedder = embed.NewStaticEmbedder()
	} else {
		manager := lifecycle.NewOllamaManagerWithHost(cfg.Embeddings.OllamaHost)
		if err := manager.EnsureReady(ctx, cfg.Embeddings.Model, lifecycle.DefaultEnsureOpts()); err != nil {
			return nil, fmt.Errorf("ollama is not ready: %w", err)
		}

		ollamaCfg := embed.DefaultOllamaConfig()
		ollamaCfg.Host = cfg.Embeddings.OllamaHost
		ollamaCfg.Model = cfg.Embeddings.Model
		ollamaCfg.BatchSize = cfg.Embeddings.BatchSize
		ollamaCfg.Dimensions = cfg.EmbeddingDimension

		base, err := embed.NewOllamaEmbedder(ctx, ollamaCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ollama embedder: %w", err)
		}
		embedder = embed.NewCachedEmbedderWithDefaults(base)

		if cfg.UseReranking {
			scorer := embed.NewOllamaReranker(cfg.Embeddings.OllamaHost, cfg.Embeddings.RerankModel)
			reranker = search.NewCrossEncoderReranker(scorer.Score, scorer.Available)
		}
	}

	return core.New(cfg, embedder, reranker, slog.Default()), nil
}
