// Package main runs the product catalog: the JSON API and the HTML pages in one HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/abgdnv/gocatalog/internal/app"
	"github.com/abgdnv/gocatalog/internal/client"
	"github.com/abgdnv/gocatalog/internal/config"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/pkg/bootstrap"
	"github.com/abgdnv/gocatalog/pkg/config/configloader"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/nats"
	"github.com/abgdnv/gocatalog/pkg/server"
	"github.com/abgdnv/gocatalog/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalog"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, prepares the product document, telemetry and event publishing,
// and serves HTTP (and pprof, if enabled) until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName, config.Defaults())
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	productStore := store.NewJSONStore(cfg.Storage.Path())
	created, err := productStore.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize product storage: %w", err)
	}
	if created {
		logger.Info("Created initial products data file", slog.String("path", productStore.Path()))
	} else {
		logger.Info("Using existing products data file", slog.String("path", productStore.Path()))
	}

	telemetry.SetupPropagation()
	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		meterProvider, handler, err := telemetry.NewMeterProvider(serviceName, prometheus.NewRegistry())
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer func() {
			if err := meterProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Failed to shutdown meter provider", slog.Any("error", err))
			}
		}()
		metricsHandler = handler
	}

	publisher, closePublisher, err := setupPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	httpServer, err := setupServer(productStore, publisher, metricsHandler, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up HTTP server: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Telemetry.Traces.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry.Traces)
		if err != nil {
			logger.Error("error creating tracer provider", slog.Any("error", err))
			return err
		}
		// gracefully shutdown tracer provider
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down tracer provider")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shutdown tracer provider: %w", err)
			}
			return nil
		})
	}

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		pprofServer := server.NewPprofServer(cfg.PProf.Addr)
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupPublisher connects to JetStream when events are enabled. The returned func releases the connection.
func setupPublisher(ctx context.Context, cfg *config.Config) (messaging.Publisher, func(), error) {
	if !cfg.Nats.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}
	natsConn, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create NATS connection: %w", err)
	}
	js, err := nats.NewJetStreamContext(natsConn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}
	if err := nats.EnsureStream(ctx, js, cfg.Nats.Stream); err != nil {
		natsConn.Close()
		return nil, nil, err
	}
	slog.Info("Publishing product events", slog.String("stream", cfg.Nats.Stream))
	return nats.NewNatsPublisher(js), func() {
		if err := natsConn.Drain(); err != nil {
			slog.Error("Failed to drain NATS connection", slog.Any("error", err))
		}
	}, nil
}

// setupServer wires the store, the API client used by the pages and the router into one HTTP server.
func setupServer(productStore store.ProductStore, publisher messaging.Publisher, metricsHandler http.Handler, logger *slog.Logger, cfg *config.Config) (*http.Server, error) {
	apiClient := client.New(cfg.APIBaseURL(), cfg.Client)
	deps := app.SetupDependencies(productStore, apiClient, publisher, logger)
	if metricsHandler != nil {
		deps.MetricsHandler = metricsHandler
		deps.MetricsPath = cfg.Telemetry.Metrics.Path
	}
	return app.SetupHttpServer(deps, cfg)
}
