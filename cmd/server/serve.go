package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/cache"
	"github.com/marketdev/internal/config"
	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/handler"
	"github.com/marketdev/internal/logging"
	"github.com/marketdev/internal/maintenance"
	"github.com/marketdev/internal/middleware"
	"github.com/marketdev/internal/render"
	"github.com/marketdev/internal/router"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	renderCacheTTL  = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
	limiterIdle     = 10 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the storefront and editor HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync() //nolint:errcheck
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		logger.Error("failed to initialize database", zap.Error(err))
		return err
	}
	if err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		logger.Error("failed to ensure admin user", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs := maintenance.New(logger)
	renderCache, closeCache, err := openRenderCache(ctx, cfg, logger, jobs)
	if err != nil {
		return err
	}
	defer closeCache()

	pipeline := render.NewPipeline(logger.Named("render"), render.WithCache(renderCache, renderCacheTTL))
	api := handler.NewAPI(db.DB, handler.Options{
		UploadDir:    cfg.UploadDir,
		UploadURL:    cfg.UploadURLPath,
		RootDomain:   cfg.RootDomain,
		SaveDelay:    cfg.SaveDebounce,
		PreviewDelay: cfg.PreviewDebounce,
		Features:     render.NewFeatures(cfg.Features...),
		Pipeline:     pipeline,
		Logger:       logger,
	})

	limiter := middleware.NewRateLimiter(cfg.PreviewRateLimit, cfg.PreviewRateLimit*2, logger)
	if err := jobs.Every("@every 1m", "rate-limiter-sweep", func() int { return limiter.Sweep(limiterIdle) }); err != nil {
		return err
	}

	// 设置并运行 Gin 服务器
	r, err := router.SetupRouter(api, router.Config{
		SessionSecret:  cfg.SessionSecret,
		UploadDir:      cfg.UploadDir,
		UploadURLPath:  cfg.UploadURLPath,
		Logger:         logger,
		PreviewLimiter: limiter,
	})
	if err != nil {
		logger.Error("failed to set up router", zap.Error(err))
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	jobs.Start()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		api.CloseLiveSessions()
		if err := jobs.Stop(shutdownCtx); err != nil {
			logger.Warn("maintenance jobs did not stop in time", zap.Error(err))
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	return nil
}

// openRenderCache 配置了 REDIS_URL 时使用 Redis，否则退回进程内缓存并定期清理。
func openRenderCache(ctx context.Context, cfg config.AppConfig, logger *zap.Logger, jobs *maintenance.Scheduler) (render.Cache, func(), error) {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, "marketdev")
		if err != nil {
			logger.Error("failed to connect to redis", zap.Error(err))
			return nil, nil, err
		}
		logger.Info("render cache: redis")
		return rc, func() { _ = rc.Close() }, nil
	}

	mem := cache.NewMemory()
	if err := jobs.Every("@every 5m", "render-cache-sweep", mem.Sweep); err != nil {
		return nil, nil, err
	}
	logger.Info("render cache: memory")
	return mem, func() {}, nil
}
