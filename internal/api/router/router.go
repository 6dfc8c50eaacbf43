package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schedule-viewer/config"
	"schedule-viewer/internal/api/handler"
	"schedule-viewer/internal/api/middleware"
	"schedule-viewer/pkg/redis"
)

// maxBodyBytes 本服务只有查询类接口，请求体上限 64KB
const maxBodyBytes = 64 << 10

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流中间件降级放行
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		// 避免把 nil *redis.Client 包装成非 nil 接口
		var limiter middleware.RateLimiter
		if rdb != nil {
			limiter = rdb
		}
		v1.Use(middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger))
	}
	{
		// 课表模块
		students := v1.Group("/students/:id")
		{
			students.GET("/schedule", h.Schedule.GetSchedule)
			students.GET("/schedule/stream", h.Schedule.StreamStatus)
			students.GET("/schedule/export", h.Export.ExportSchedule)
		}

		// 查询历史
		history := v1.Group("/history")
		{
			history.GET("", h.History.ListHistory)
			history.DELETE("/:id", h.History.DeleteHistory)
		}
	}

	return r
}
