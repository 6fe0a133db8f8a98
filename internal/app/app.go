package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "github.com/godilite/feedback-server/api/v1"
	"github.com/godilite/feedback-server/internal/config"
	"github.com/godilite/feedback-server/internal/draft"
	handler "github.com/godilite/feedback-server/internal/grpc"
	"github.com/godilite/feedback-server/internal/httpapi"
	"github.com/godilite/feedback-server/internal/metrics"
	"github.com/godilite/feedback-server/internal/repository"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/godilite/feedback-server/internal/submission"
	"github.com/godilite/feedback-server/pkg/cache"
	dbbuilder "github.com/godilite/feedback-server/pkg/database"
	grpcsrv "github.com/godilite/feedback-server/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DataSource()),
		dbbuilder.WithBootstrap(repository.Schema...),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithPassword(cfg.RedisPassword),
		cache.WithDB(cfg.RedisDB),
		cache.WithPrefix(cfg.RedisPrefix),
	)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	m := metrics.NewManager(metrics.WithRuntimeCollectors())

	ratingRepo := repository.NewRatingRepository(dbPool)
	catalogRepo := repository.NewCatalogRepository(dbPool)

	dashboardService := service.NewDashboardService(ratingRepo, catalogRepo, logger)
	catalogService := service.NewCatalogService(catalogRepo, logger)
	dispatcher := submission.NewDispatcher(ratingRepo, logger,
		submission.WithRecorder(m),
		submission.WithResetDelay(cfg.DraftResetDelay),
	)
	sessions := draft.NewManager(cacheClient, logger, draft.WithTTL(cfg.DraftTTL))

	grpcHandlers := handler.NewGRPCHandlers(sessions, dispatcher, catalogService, dashboardService, cacheClient, logger,
		handler.WithCacheTTL(cfg.DashboardCacheTTL),
		handler.WithRecorder(m),
		handler.WithFallbackCriteria(cfg.FallbackCriteria),
	)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRateLimit(cfg.GRPCRateLimit, cfg.GRPCRateBurst, m.RateLimited),
	)
	if err != nil {
		cacheClient.Close()
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s grpc.ServiceRegistrar) {
		pb.RegisterFeedbackServer(s, grpcHandlers)
	})

	httpHandler := httpapi.NewHandler(dashboardService, m.Registry(), map[string]httpapi.Check{
		"database": dbPool.PingContext,
		"cache":    cacheClient.Ping,
	}, logger)

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		grpcServer: grpcServer,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpHandler.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("application starting")

	a.grpcServer.Start()

	httpErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
		close(httpErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-httpErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	a.logger.Info("application shutting down")
	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("grpc shutdown error", zap.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}
	_ = a.logger.Sync()
}
