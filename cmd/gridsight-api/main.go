package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gridsight/gridsight/internal/analysis"
	"github.com/gridsight/gridsight/internal/api"
	"github.com/gridsight/gridsight/internal/api/uistatic"
	"github.com/gridsight/gridsight/internal/config"
	"github.com/gridsight/gridsight/internal/llm"
	"github.com/gridsight/gridsight/internal/observability"
)

func main() {
	// A missing .env is fine; the process environment still applies.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", slog.Any("error", err))
	}

	cfg, err := config.LoadFromEnv("gridsight-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	generator, closer, err := newGenerator(context.Background(), cfg.AI)
	if err != nil {
		logger.Error("failed to initialize text generator", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	invoker, err := llm.NewInvoker(generator, llm.InvokerConfig{
		Provider: cfg.AI.Provider,
		Model:    cfg.AI.Model,
		Timeout:  cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize model invoker", slog.Any("error", err))
		os.Exit(1)
	}
	service, err := analysis.NewService(invoker, analysis.Options{
		SampleRows:       cfg.Table.SampleRows,
		CategoricalLimit: cfg.Table.CategoricalLimit,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize analysis service", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger:            logger,
		Analyzer:          service,
		UI:                uistatic.Handler(),
		Readiness:         api.CombineReadinessChecks(api.CheckAnalyzer(service)),
		DependencyTimeout: time.Second,
	}

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
			slog.String("provider", invoker.Provider()),
			slog.String("model", invoker.Model()),
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

func newGenerator(ctx context.Context, cfg config.AIConfig) (llm.Generator, io.Closer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		generator, err := llm.NewOpenAIGenerator(llm.OpenAIConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return generator, closeFunc(func() error { return nil }), nil
	default:
		generator, err := llm.NewGeminiGenerator(ctx, llm.GeminiConfig{
			APIKey:      cfg.APIKey,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, nil, err
		}
		return generator, generator, nil
	}
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
