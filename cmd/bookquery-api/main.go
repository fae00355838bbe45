package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bookquery/bookquery/internal/api"
	"github.com/bookquery/bookquery/internal/api/uistatic"
	"github.com/bookquery/bookquery/internal/archive"
	"github.com/bookquery/bookquery/internal/config"
	"github.com/bookquery/bookquery/internal/embedding"
	"github.com/bookquery/bookquery/internal/fewshot"
	"github.com/bookquery/bookquery/internal/nl2sql"
	"github.com/bookquery/bookquery/internal/observability"
	"github.com/bookquery/bookquery/internal/query/sqldb"
	"github.com/bookquery/bookquery/internal/retriever"
	"github.com/bookquery/bookquery/internal/session"
	s3store "github.com/bookquery/bookquery/internal/storage/s3"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", slog.Any("error", err))
	}

	cfg, err := config.LoadFromEnv("bookquery-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStartup()

	embedder, err := embedding.New(cfg)
	if err != nil {
		logger.Error("failed to initialize embedder", slog.Any("error", err))
		os.Exit(1)
	}
	selector, err := retriever.New(startupCtx, embedder, fewshot.Corpus(), cfg.Retriever.K)
	if err != nil {
		logger.Error("failed to build example index", slog.Any("error", err))
		os.Exit(1)
	}

	chatModel, err := nl2sql.NewOpenAIChatModel(nl2sql.OpenAIConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize chat model", slog.Any("error", err))
		os.Exit(1)
	}
	generator, err := nl2sql.NewGenerator(selector, chatModel, nl2sql.GeneratorConfig{
		SystemPrompt: cfg.AI.SystemPrompt,
		ReadOnly:     cfg.Query.ReadOnly,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize query generator", slog.Any("error", err))
		os.Exit(1)
	}

	executorConfig, err := sqldb.ConfigFrom(cfg)
	if err != nil {
		logger.Error("invalid database config", slog.Any("error", err))
		os.Exit(1)
	}
	executor, err := sqldb.NewExecutor(executorConfig, logger)
	if err != nil {
		logger.Error("failed to initialize query executor", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger:          logger,
		QueryTranslator: generator,
		QueryEngine:     executor,
		Sessions:        session.NewStore(session.StoreConfig{
			HistorySize: cfg.Session.HistorySize,
			MaxSessions: cfg.Session.MaxSessions,
			IdleTTL:     cfg.Session.IdleTTL,
		}),
		SampleQuestions: fewshot.SampleQuestions(),
		UI:              uistatic.Handler(),
		Readiness: api.CombineReadinessChecks(
			api.CheckAIConfig(cfg),
			api.CheckObjectStoreConfig(cfg),
			executor.HealthCheck,
		),
		DependencyTimeout: 2 * time.Second,
	}
	if cfg.Archive.Enabled {
		objectStore, err := s3store.New(startupCtx, cfg.ObjectStore)
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		runArchive, err := archive.New(objectStore, logger)
		if err != nil {
			logger.Error("failed to initialize run archive", slog.Any("error", err))
			os.Exit(1)
		}
		deps.Archive = runArchive
	}
	cancelStartup()

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("driver", cfg.Database.Driver),
			slog.String("model", chatModel.Name()),
			slog.Int("examples", len(fewshot.Corpus())),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
