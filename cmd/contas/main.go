package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"contas/internal/advice"
	"contas/internal/amqp"
	"contas/internal/cli"
	apphttp "contas/internal/http"
	"contas/internal/log"
	"contas/internal/session"
	"contas/internal/state"
)

func main() {
	cfg, logger := cli.Bootstrap()

	logger.Info("Starting contas server", "port", cfg.Port, "backend", cfg.DataBackend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opened := cli.OpenStore(ctx, cfg, logger)
	defer func() {
		if err := opened.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	// Optional sync pipeline: publish a state-changed event after every
	// mutation so the worker re-mirrors the snapshot.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		amqpClient = client
		defer amqpClient.Close()
		logger.Info("Sync pipeline enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	// The container fires one notifier per mutation; fan it out to the
	// report cache and the sync pipeline. The server is built after the
	// container, so cache invalidation goes through this indirection.
	var (
		revision   atomic.Int64
		invalidate atomic.Pointer[func()]
	)
	notify := func() {
		if fn := invalidate.Load(); fn != nil {
			(*fn)()
		}
		if amqpClient != nil {
			rev := revision.Add(1)
			go func() {
				pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := amqpClient.PublishStateChanged(pubCtx, rev); err != nil {
					logger.Error("Failed to publish state change", "error", err, "revision", rev)
				}
			}()
		}
	}

	container := state.NewContainer(opened.Store, log.ForComponent(logger, log.ComponentState),
		state.WithChangeNotifier(notify))
	if err := container.Hydrate(ctx); err != nil {
		logger.Error("Failed to hydrate state", "error", err)
		os.Exit(1)
	}

	sessions := session.New(cfg.JWTSecret, cfg.AppPIN, cfg.SessionTTL)
	if sessions.Enabled() {
		logger.Info("PIN authentication enabled", "session_ttl", cfg.SessionTTL)
	}

	opts := []apphttp.Option{
		apphttp.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		apphttp.WithReportCacheTTL(cfg.ReportCacheTTL),
	}
	if cfg.OllamaURL != "" {
		opts = append(opts, apphttp.WithAdvisor(advice.NewClient(cfg.OllamaURL, cfg.OllamaModel)))
		logger.Info("Advice endpoint enabled", "model", cfg.OllamaModel)
	}
	srv := apphttp.NewServer(container, sessions, log.ForComponent(logger, log.ComponentHTTP), opts...)
	flushReports := srv.InvalidateReportCache
	invalidate.Store(&flushReports)

	httpServer := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        srv,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Materialize due recurring templates at startup and then on a timer, so
	// fixed charges land without user interaction.
	g.Go(func() error {
		materialize := func() {
			added, err := container.Materialize(ctx)
			if err != nil {
				logger.Error("Materialization failed", "error", err)
				return
			}
			if len(added) > 0 {
				logger.Info("Materialized recurring transactions", "count", len(added))
			}
		}
		materialize()

		ticker := time.NewTicker(cfg.MaterializeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				materialize()
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := container.Close(closeCtx); err != nil {
		logger.Error("Failed to flush state on shutdown", "error", err)
	}
	logger.Info("Server stopped gracefully")
}
