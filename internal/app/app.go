package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	"github.com/artci/feedback-api/internal/config"
	handler "github.com/artci/feedback-api/internal/grpc"
	"github.com/artci/feedback-api/internal/metrics"
	"github.com/artci/feedback-api/internal/rest"
	"github.com/artci/feedback-api/internal/service"
	"github.com/artci/feedback-api/internal/uploads"
	"github.com/artci/feedback-api/pkg/cache"
	grpcsrv "github.com/artci/feedback-api/pkg/grpc/server"
)

const (
	shutdownTimeout = 10 * time.Second
	uploadWindow    = time.Minute
)

type App struct {
	logger     *zap.Logger
	store      *Store
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *rest.Server
	httpAddr   string
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	metrics.Init()

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		logger:   logger,
		store:    store,
		httpAddr: fmt.Sprintf(":%d", cfg.HTTPPort),
	}
	if err := a.build(ctx, cfg); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, cfg *config.Config) error {
	logger := a.logger

	analyticsService := service.NewAnalyticsService(a.store.Repository, logger,
		service.WithStoreTimeout(cfg.StoreTimeout))
	feedbackService := service.NewFeedbackService(a.store.Repository, logger,
		service.WithFeedbackStoreTimeout(cfg.StoreTimeout))

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		return fmt.Errorf("upload backend init failed: %w", err)
	}
	logger.Info("Upload backend initialized", zap.String("backend", uploader.Backend()))

	httpOpts := []rest.Option{
		rest.WithLogger(logger),
		rest.WithStaticDir(cfg.StaticDir),
	}
	if local, ok := uploader.(*uploads.LocalStore); ok {
		httpOpts = append(httpOpts, rest.WithUploadDir(local.Dir()))
	}

	if cfg.RedisAddr != "" {
		a.cache, err = cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
		)
		if err != nil {
			return fmt.Errorf("cache init failed: %w", err)
		}
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
		limiter := cache.NewFixedWindow(a.cache, "ratelimit:upload", cfg.UploadRateLimit, uploadWindow)
		httpOpts = append(httpOpts, rest.WithUploadLimiter(limiter))
	}

	httpHandlers := rest.NewHandlers(analyticsService, feedbackService, uploader, logger)
	a.httpServer = rest.New(httpHandlers, httpOpts...)

	grpcHandlers := handler.NewGRPCHandlers(analyticsService, feedbackService, logger)

	a.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithUnaryInterceptors(grpcsrv.MetricsInterceptor(func(method string, code codes.Code) {
			metrics.GRPCRequests.WithLabelValues(method, code.String()).Inc()
		})),
	)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	a.grpcServer.Register(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterFeedbackAnalyticsServer(s, grpcHandlers)
	})
	return nil
}

func newUploader(ctx context.Context, cfg *config.Config) (uploads.Uploader, error) {
	switch cfg.UploadBackend {
	case "s3":
		store, err := uploads.NewS3StoreFromEnv(ctx, cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "local", "":
		store, err := uploads.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
	}
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	if err := a.httpServer.Start(a.httpAddr); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	a.grpcServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := errors.Join(
		a.httpServer.Shutdown(ctx),
		a.grpcServer.Shutdown(ctx),
	)
	a.close()

	if err != nil {
		a.logger.Warn("shutdown completed with errors", zap.Error(err))
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}

func (a *App) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}
