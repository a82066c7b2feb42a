package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gitgud/citywatch/config"
	"github.com/gitgud/citywatch/internal/cascade"
	"github.com/gitgud/citywatch/internal/checksum"
	"github.com/gitgud/citywatch/internal/db"
	api "github.com/gitgud/citywatch/internal/http/rest"
	"github.com/gitgud/citywatch/internal/vote"
	"go.uber.org/zap"
)

const allowConnectionsAfterShutdown = 1 * time.Second

func main() {
	cfg := config.New()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Panicln("failed to build logger", "error", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	database, err := db.New(cfg.Dsn)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(context.Background()); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	checksums := checksum.NewPgChecksums(database.Pool())
	recalc := checksum.NewRecalculator(checksums, checksums, logger)
	dispatcher := cascade.NewDispatcher(recalc, logger, cfg.CascadeWorkers, cfg.CascadeQueueSize)

	aggregator := vote.NewAggregator(
		vote.NewPgStore(database),
		logger,
		cfg.VoteTxMaxRetries,
		cfg.VoteTxRetryBackoff,
	)

	a := &api.API{
		Config:    cfg,
		Logger:    logger,
		Database:  database,
		DB:        database.Pool(),
		Votes:     aggregator,
		Checksums: checksums,
		Events:    dispatcher,
	}

	go dispatcher.Run()
	go func() {
		logger.Info("server running", zap.Int("port", cfg.Port))
		if err := a.Serve(); err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-stopChan

	logger.Info("request to shutdown server, draining connections", zap.Duration("grace", allowConnectionsAfterShutdown))
	time.Sleep(allowConnectionsAfterShutdown)

	if err := a.Shutdown(); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	dispatcher.Stop()
	database.Close()
	logger.Info("shutdown complete")
}
