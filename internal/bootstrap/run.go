package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/talentwire/autoapply/config"
	"golang.org/x/sync/errgroup"
)

const shutdownWaitTimeout = 15 * time.Second

// ServiceOrchestrationConfig groups everything needed to run the enabled
// services until shutdown.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var httpServer *http.Server
	if cfg.Config.IsHTTPServerEnabled() {
		httpServer = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
	}

	if cfg.Config.IsPollerEnabled() && cfg.Config.Poller.StartOnBoot {
		cfg.Services.Poller.Start()
		logger.Info("poller started")
	}

	waitForShutdownSignal(ctx, logger)
	cancel()

	return gracefulStop(cfg, httpServer, logger)
}

// waitForShutdownSignal blocks until SIGINT or SIGTERM arrives.
func waitForShutdownSignal(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}
}

// gracefulStop stops the poll loop and drains in-flight HTTP requests in
// parallel, then closes the metrics sink.
func gracefulStop(cfg *ServiceOrchestrationConfig, httpServer *http.Server, logger *slog.Logger) error {
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()

	var g errgroup.Group

	if poller := cfg.Services.Poller; poller != nil && poller.IsRunning() {
		g.Go(func() error {
			if err := poller.StopAndWait(stopCtx); err != nil {
				logger.Error("poller did not stop cleanly", "error", err)
				return err
			}
			logger.Info("poller stopped")
			return nil
		})
	}

	if httpServer != nil {
		g.Go(func() error {
			if err := ShutdownHTTPServer(ShutdownConfig{
				Context: stopCtx,
				Server:  httpServer,
				Timeout: cfg.Config.HTTP.ShutdownTimeout,
				Logger:  logger,
			}); err != nil {
				logger.Error("http shutdown failed", "error", err)
				return err
			}
			return nil
		})
	}

	err := g.Wait()

	if sink := cfg.Services.Observability.MetricsSink; sink != nil {
		if cerr := sink.Close(); cerr != nil {
			logger.Error("close metrics sink failed", "error", cerr)
		}
	}

	return err
}
