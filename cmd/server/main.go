package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/wealthflow-reports/internal/adapter/grpc"
	"github.com/simaogato/wealthflow-reports/internal/adapter/httpapi"
	"github.com/simaogato/wealthflow-reports/internal/adapter/repository/cached"
	"github.com/simaogato/wealthflow-reports/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-reports/internal/cache"
	"github.com/simaogato/wealthflow-reports/internal/config"
	"github.com/simaogato/wealthflow-reports/internal/domain"
	"github.com/simaogato/wealthflow-reports/internal/logging"
	"github.com/simaogato/wealthflow-reports/internal/scheduler"
	"github.com/simaogato/wealthflow-reports/internal/usecase/debt"
	"github.com/simaogato/wealthflow-reports/internal/usecase/report"
	"github.com/simaogato/wealthflow-reports/internal/usecase/seeder"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a TOML config file")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	// 2. Setup Database
	db, err := connect(cfg.Database.ConnectionString(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	// 3. Initialize Repositories (Postgres)
	categoryRepo := postgres.NewCategoryRepository(db)
	debtRepo := postgres.NewDebtRepository(db)
	var snapshotRepo domain.SnapshotRepository = postgres.NewSnapshotRepository(db)
	var snapshotStore *cached.SnapshotRepository
	if ttl := cfg.Cache.SnapshotTTLDuration(); ttl > 0 {
		snapshotStore = cached.NewSnapshotRepository(snapshotRepo, ttl)
		snapshotRepo = snapshotStore
	}

	created, err := seeder.NewCategorySeeder(categoryRepo).Seed(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to seed asset categories")
	}
	logger.Info().Int("created", created).Msg("asset categories seeded")

	// 4. Initialize Services (Use Cases)
	reportCache, err := cache.NewReportCache(cfg.Cache.Capacity)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create report cache")
	}
	reportService := report.NewReportService(reportCache)
	debtService := debt.NewDebtService(debtRepo)

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(cfg.Server.APIToken),
		),
	)
	grpcadapter.RegisterReportServiceServer(grpcServer, grpcadapter.NewServer(reportService, debtService, snapshotRepo))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Server.GRPCAddr).Msg("failed to listen")
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal().Err(err).Msg("failed to serve gRPC server")
		}
	}()

	// 6. Start admin HTTP server
	var httpServer *http.Server
	if cfg.Server.HTTPAddr != "" {
		handler := &httpapi.Handler{ReportService: reportService}
		if snapshotStore != nil {
			handler.Snapshots = snapshotStore
		}
		httpServer = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           httpapi.NewRouter(handler, cfg.Server.APIToken, cfg.Server.AllowedOrigins, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", cfg.Server.HTTPAddr).Msg("admin HTTP server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("failed to serve admin HTTP server")
			}
		}()
	}

	// 7. Schedule cache clearing
	var clearer *cron.Cron
	if cfg.Cache.ClearSchedule != "" {
		job := &scheduler.CacheClearJob{Reports: reportService, Logger: logger}
		if snapshotStore != nil {
			job.Snapshots = snapshotStore
		}
		clearer, err = scheduler.New(cfg.Cache.ClearSchedule, job)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to schedule cache clear")
		}
		clearer.Start()
		logger.Info().Str("schedule", cfg.Cache.ClearSchedule).Msg("cache clear scheduled")
	}

	// Graceful shutdown
	waitForShutdown(logger, grpcServer, httpServer, clearer)
}

// connect opens the database, retrying while Postgres starts up
func connect(connString string, logger *log.Logger) (*postgres.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := postgres.NewDB(connString)
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt).Msg("database not ready")
		time.Sleep(connectDelay)
	}
	return nil, lastErr
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(logger *log.Logger, grpcServer *grpclib.Server, httpServer *http.Server, clearer *cron.Cron) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	if clearer != nil {
		<-clearer.Stop().Done()
	}

	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("admin HTTP server shutdown failed")
		}
	}

	grpcServer.GracefulStop()
	logger.Info().Msg("gRPC server stopped")
}
