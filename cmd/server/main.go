package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/atmledger/internal/adapter/http"
	"github.com/iho/atmledger/internal/adapter/http/handler"
	"github.com/iho/atmledger/internal/bootstrap"
	"github.com/iho/atmledger/internal/infrastructure/config"
	"github.com/iho/atmledger/internal/infrastructure/logger"
	"github.com/iho/atmledger/internal/infrastructure/metrics"
	"github.com/iho/atmledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(logger.Config{Format: "console", Output: os.Stderr})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

// serve starts the report API, runs the ingestion once and keeps serving
// the result until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	src, err := bootstrap.OpenSources(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegistry(registry)

	publisher := bootstrap.NewPublisher(cfg, log)
	defer publisher.Close()

	reportHandler := handler.NewReportHandler(usecase.DefaultCurrency)
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ReportHandler:  reportHandler,
		HealthHandler:  handler.NewHealthHandler(reportHandler.Ready, src.Checks),
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:         log,
	})

	server := &http.Server{
		Addr:         resolveListenAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	if err := bootstrap.PrepareSources(ctx, cfg, src, log); err != nil {
		shutdown(server, cfg, log)
		return err
	}

	stopTimer := logger.StartTimer(log, "run")
	result, err := bootstrap.NewRunUseCase(cfg, src, m, publisher, log).Run(ctx)
	if err != nil {
		shutdown(server, cfg, log)
		return err
	}
	stopTimer()
	reportHandler.SetResult(result)

	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			return err
		}
	}

	shutdown(server, cfg, log)
	return nil
}

func shutdown(server *http.Server, cfg *config.Config, log zerolog.Logger) {
	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}

// resolveListenAddr turns a bare port into a listen address.
func resolveListenAddr(port string) string {
	if port == "" {
		port = "8080"
	}
	if _, _, err := net.SplitHostPort(port); err == nil {
		return port
	}
	return net.JoinHostPort("", port)
}
