package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	httpadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/kafka"
	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/pipeline"
	"github.com/couchcryptid/climate-risk-engine/internal/risk"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	registry := model.NewRegistry(model.Config{
		Samples:       cfg.TrainingSamples,
		Seed:          cfg.ModelSeed,
		TestFraction:  cfg.TestFraction,
		MaxIterations: cfg.MaxIterations,
		L2Penalty:     cfg.L2Penalty,
		Parallelism:   cfg.TrainingParallelism,
	}, logger)
	svc := risk.NewService(registry, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Serve health and metrics while the first model trains; /readyz and the
	// API answer 503 until it is live.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var (
		wg          sync.WaitGroup
		trainFailed bool
	)
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer

	if _, err := svc.Train(); err != nil {
		logger.Error("initial training failed", "error", err)
		trainFailed = true
		stop()
	} else if cfg.PipelineEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(svc), writer, logger, metrics, cfg.BatchSize)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("streaming pipeline disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	wg.Wait()
	svc.Wait()
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if trainFailed {
		os.Exit(1)
	}
}
