package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lavoz-media/centralita/internal/api"
	"github.com/lavoz-media/centralita/internal/callstore"
	"github.com/lavoz-media/centralita/internal/config"
	"github.com/lavoz-media/centralita/internal/embed"
	"github.com/lavoz-media/centralita/internal/events"
	"github.com/lavoz-media/centralita/internal/llm"
	"github.com/lavoz-media/centralita/internal/pipeline"
	"github.com/lavoz-media/centralita/internal/prompt"
	"github.com/lavoz-media/centralita/internal/reindex"
	"github.com/lavoz-media/centralita/internal/separator"
	"github.com/lavoz-media/centralita/internal/similarity"
	"github.com/lavoz-media/centralita/internal/vecindex"
)

func main() {
	reindexMode := flag.Bool("reindex", false, "replay all stored call records through the similarity engine and exit")
	dryRun := flag.Bool("dry-run", false, "with -reindex, list records without processing them")
	flag.Parse()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("centralita starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Separation prompt
	tpl, err := prompt.Load(cfg.PromptPath)
	if err != nil {
		slog.Error("failed to load separation prompt", "path", cfg.PromptPath, "error", err)
		os.Exit(1)
	}

	// Call record store
	store, err := callstore.New(filepath.Join(cfg.DataDir, "calls"))
	if err != nil {
		slog.Error("failed to open call store", "error", err)
		os.Exit(1)
	}

	// Vector index
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	index, err := vecindex.NewPGIndex(ctx, cfg.DatabaseURL, cfg.EmbeddingDimensions)
	if err != nil {
		slog.Error("failed to connect to vector index", "error", err)
		os.Exit(1)
	}
	defer index.Close()
	slog.Info("vector index ready", "dimensions", cfg.EmbeddingDimensions)

	// Embedding provider
	embedder, err := embed.NewProvider(cfg)
	if err != nil {
		slog.Error("failed to build embedding provider", "error", err)
		os.Exit(1)
	}
	slog.Info("embedding provider ready", "provider", cfg.EmbeddingProvider, "model", cfg.EmbeddingModel)

	// Similarity engine
	engine := similarity.New(index, embedder, store, cfg.DuplicateThreshold, cfg.RelatedThreshold, slog.Default())
	engine.SetVectorDir(filepath.Join(cfg.DataDir, "vectors"))

	if *reindexMode {
		runner := reindex.NewRunner(store, engine, *dryRun, slog.Default())
		sum, err := runner.Run(ctx)
		if err != nil {
			slog.Error("reindex failed", "error", err)
			os.Exit(1)
		}
		slog.Info("reindex finished", "scanned", sum.Scanned, "uploaded", sum.Uploaded, "duplicates", sum.Duplicates)
		return
	}

	// Chat completion + separation pipeline
	completer := llm.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel)
	sep := separator.New(completer, tpl, slog.Default())
	pipe := pipeline.New(sep, slog.Default())
	slog.Info("separation pipeline ready", "model", cfg.ChatModel)

	// Progress sink is optional; the pipeline runs fine without NATS.
	var sink events.Sink = events.Discard
	if cfg.NatsURL != "" {
		pub, err := events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		sink = pub
		slog.Info("NATS progress publisher ready", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, progress events disabled")
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, pipe, engine, store, sink)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("centralita ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("centralita stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
