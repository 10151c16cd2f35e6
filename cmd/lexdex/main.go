package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/bootstrap"
	"github.com/kailas-cloud/lexdex/internal/config"
	logpkg "github.com/kailas-cloud/lexdex/internal/logger"
	"github.com/kailas-cloud/lexdex/internal/metrics"
	chiTransport "github.com/kailas-cloud/lexdex/internal/transport/chi"
	"github.com/kailas-cloud/lexdex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/lexdex/internal/usecase/health"
	usageuc "github.com/kailas-cloud/lexdex/internal/usecase/usage"
	"github.com/kailas-cloud/lexdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, logpkg.WithLevel(cfg.Logging.Level), logpkg.WithComponent("lexdex"))
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lexdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("vendor", cfg.Vendor),
		zap.String("selection", cfg.Ranking.Selection),
		zap.String("artifact_driver", cfg.Artifact.Driver),
		zap.String("corpus_driver", cfg.Corpus.Driver),
		zap.String("policy_channel", cfg.Policy.Channel),
	)

	// Register domain metrics explicitly (no init())
	metrics.Register()

	ctx := context.Background()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
	}

	src, err := bootstrap.OpenCorpus(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open corpus", zap.Error(err))
	}
	defer func() { _ = src.Close() }()

	artifacts, err := bootstrap.NewArtifacts(cfg, store, logger)
	if err != nil {
		logger.Fatal("Failed to create artifact repository", zap.Error(err))
	}

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, src, artifacts, store, logger)
	if err != nil {
		logger.Fatal("Failed to assemble pipeline", zap.Error(err))
	}

	if err := pipeline.Catalog.Start(ctx); err != nil {
		logger.Fatal("Failed to publish initial index", zap.Error(err))
	}

	if cfg.Artifact.ReloadSchedule != "" {
		sched, err := catalog.NewScheduler(
			pipeline.Catalog,
			cfg.Artifact.ReloadSchedule,
			time.Duration(cfg.Artifact.ReloadTimeoutSec)*time.Second,
			logger,
		)
		if err != nil {
			logger.Fatal("Invalid reload schedule", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
		logger.Info("Index reload scheduled", zap.String("schedule", cfg.Artifact.ReloadSchedule))
	}

	// Pass nil interface (not a nil *Store) when no database is configured.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pipeline.Catalog, pinger, pipeline.Policy)

	// Same rule for the budget: nil interface when no budget is configured.
	var budgetReader usageuc.BudgetReader
	if pipeline.Budget != nil {
		budgetReader = pipeline.Budget
	}
	usageSvc := usageuc.New(cfg.Policy.Channel, budgetReader)

	server := chiTransport.NewServer(
		pipeline.Admission,
		pipeline.Ranking,
		pipeline.Catalog,
		healthSvc,
		usageSvc,
		cfg.HTTP.MaxSearchLimit,
		logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
