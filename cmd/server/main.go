package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schedule-viewer/config"
	"schedule-viewer/internal/api/handler"
	"schedule-viewer/internal/api/router"
	"schedule-viewer/internal/apiclient"
	"schedule-viewer/internal/cache"
	"schedule-viewer/internal/service"
	applogger "schedule-viewer/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("LICHHOC_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
	)

	// 3. 缓存存储（不可用时回退到内存）
	stores := openStore(cfg, logger)
	defer stores.Close()

	scheduleCache := cache.New(stores.Store, logger, cache.WithTTL(cfg.Cache.TTL))
	scheduleCache.Init(context.Background())

	// 4. 上游客户端
	client := apiclient.NewClient(&cfg.Upstream, logger)

	// 5. 依赖注入: Store → Service → Handler
	svc := service.NewService(stores.Store, scheduleCache, client, cfg.Upstream.Location(), logger)
	h := handler.NewHandler(svc, logger)

	// 6. 初始化路由
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(cfg, h, stores.Redis, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	// 关闭时先取消 baseCtx，让 SSE 长连接随之结束
	baseCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     engine,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
		ReadTimeout: 15 * time.Second,
		// 不设置 WriteTimeout：SSE 为长连接
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	stopStreams()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}
