package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/credit-audit/internal/async"
	"github.com/joseph-ayodele/credit-audit/internal/bootstrap"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/ingest"
	"github.com/joseph-ayodele/credit-audit/internal/pipeline"
	repo "github.com/joseph-ayodele/credit-audit/internal/repository"
	"github.com/joseph-ayodele/credit-audit/internal/storage"
)

const healthInterval = 30 * time.Second

func main() {
	cfg := common.LoadConfig()
	logger := bootstrap.Logger(os.Stdout, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if len(cfg.Watch.Roots) == 0 {
		logger.Error("WATCH_DIRS env var is required")
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := store.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	extraction, analysis, err := bootstrap.Pipelines(cfg, logger)
	if err != nil {
		logger.Error("failed to build pipelines", "error", err)
		os.Exit(1)
	}
	notifier, err := bootstrap.Notifier(cfg.Notify, logger)
	if err != nil {
		logger.Error("failed to build notifier", "error", err)
		os.Exit(1)
	}
	opts := bootstrap.ExtractOptions(cfg.OCR)
	processor := pipeline.NewProcessor(storage.NewLocalSource("", logger), extraction, analysis, store, logger,
		pipeline.WithJobTracker(store),
		pipeline.WithSkipProcessed(store),
		pipeline.WithNotifier(notifier),
		pipeline.WithExtractOptions(opts),
	)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
	)
	ingestor := ingest.NewIngestor(queue, logger)

	paths, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Watch.Roots,
		InitialScan: cfg.Watch.InitialScan,
		Debounce:    cfg.Watch.Debounce,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	go func() {
		for p := range paths {
			if _, err := ingestor.IngestPath(ctx, p); err != nil {
				logger.Warn("ingest failed", "path", p, "error", err)
			}
		}
	}()
	go func() {
		for err := range watchErrs {
			logger.Warn("watcher error", "error", err)
		}
	}()

	// gRPC server: health and reflection only.
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	go watchDatabase(ctx, store, healthServer, logger)

	logger.Info("creditd listening", "addr", addr, "watch", cfg.Watch.Roots)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.ProcessTimeout)
	defer cancel()
	queue.Shutdown(drainCtx)
	grpcServer.GracefulStop()
}

// watchDatabase flips the overall health status with the database ping.
func watchDatabase(ctx context.Context, store *repo.Store, hs *health.Server, logger *slog.Logger) {
	t := time.NewTicker(healthInterval)
	defer t.Stop()
	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		err := store.HealthCheck(ctx, 5*time.Second)
		switch {
		case err != nil && serving:
			logger.Warn("database unhealthy", "error", err)
			hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			serving = false
		case err == nil && !serving:
			logger.Info("database healthy again")
			hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
			serving = true
		}
	}
}
