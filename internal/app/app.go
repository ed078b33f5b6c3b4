// Package app wires the URL shortener and the log collector services together
// and runs them until their context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shorturls/internal/adapter/logrelay"
	"github.com/vadimbarashkov/shorturls/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/shorturls/internal/config"
	"github.com/vadimbarashkov/shorturls/internal/metrics"
	"github.com/vadimbarashkov/shorturls/internal/usecase"
	"golang.org/x/sync/errgroup"

	shortenerhttp "github.com/vadimbarashkov/shorturls/internal/adapter/delivery/http"
	collectorhttp "github.com/vadimbarashkov/shorturls/internal/adapter/delivery/http/collector"
)

const (
	shortenerName = "url-shortener"
	collectorName = "log-collector"
)

// Run starts the URL shortener service.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	m := metrics.New()
	logger := NewLogger(shortenerName, cfg)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.LogRelay.URL != "" {
		relay := logrelay.New(
			cfg.LogRelay.URL,
			logrelay.WithService(cfg.LogRelay.Service),
			logrelay.WithTimeout(cfg.LogRelay.Timeout),
			logrelay.WithQueueSize(cfg.LogRelay.QueueSize),
			logrelay.WithWorkers(cfg.LogRelay.Workers),
			logrelay.WithLogger(logger.Logger),
			logrelay.WithMetrics(m),
		)

		logger.Logger = slog.New(logrelay.NewHandler(logger.Logger.Handler(), relay, cfg.LogRelay.Package))

		g.Go(func() error {
			return relay.Run(ctx)
		})
	}

	handler := NewShortenerHandler(logger, cfg, m)

	logger.Info("url shortener microservice starting",
		slog.String("stack", "server-startup"),
		slog.String("package", "backend"),
		slog.String("addr", cfg.HTTPServer.Addr()),
		slog.String("base_url", cfg.BaseURL),
	)

	g.Go(func() error {
		if err := serve(ctx, cfg.Env, cfg.HTTPServer, handler); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})

	return g.Wait()
}

// RunCollector starts the log collector service.
func RunCollector(ctx context.Context, cfg *config.Config) error {
	const op = "app.RunCollector"

	m := metrics.New()
	logger := NewLogger(collectorName, cfg)

	handler := NewCollectorHandler(logger, cfg, m)

	logger.Info("log collector starting", slog.String("addr", cfg.Collector.Addr()))

	if err := serve(ctx, cfg.Env, cfg.Collector.HTTPServer, handler); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func NewLogger(name string, cfg *config.Config) *httplog.Logger {
	return httplog.NewLogger(name, httplog.Options{
		JSON:     cfg.Log.JSON,
		LogLevel: cfg.Log.SlogLevel(),
		Concise:  cfg.Log.Concise,
		Tags: map[string]string{
			"env": cfg.Env,
		},
	})
}

// NewShortenerHandler builds the URL shortener API over fresh in-memory stores.
func NewShortenerHandler(logger *httplog.Logger, cfg *config.Config, m *metrics.Metrics, opts ...usecase.Option) http.Handler {
	urlRepo := memory.NewURLRepository()
	clickRepo := memory.NewClickRepository()

	opts = append([]usecase.Option{
		usecase.WithShortCodeLength(cfg.ShortCodeLength),
		usecase.WithDefaultValidity(cfg.DefaultValidity),
	}, opts...)

	urlUseCase := usecase.New(urlRepo, clickRepo, opts...)

	return shortenerhttp.NewRouter(logger, cfg.BaseURL, urlUseCase, m)
}

// NewCollectorHandler builds the log collector API over a fresh in-memory store.
func NewCollectorHandler(logger *httplog.Logger, cfg *config.Config, m *metrics.Metrics, opts ...usecase.LogOption) http.Handler {
	opts = append([]usecase.LogOption{usecase.WithDefaultLimit(cfg.Collector.DefaultLimit)}, opts...)

	logUseCase := usecase.NewLogUseCase(memory.NewLogRepository(), opts...)

	return collectorhttp.NewRouter(logger, logUseCase, m)
}

func serve(ctx context.Context, env string, cfg config.HTTPServer, handler http.Handler) error {
	server := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        handler,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error occurred: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		return nil
	})

	return g.Wait()
}
