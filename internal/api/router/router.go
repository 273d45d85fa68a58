package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"washman/backend/config"
	"washman/backend/internal/api/handler"
	"washman/backend/internal/api/middleware"
)

// 请求体上限 1MB
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时重新排班接口不限流
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.Limiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rl := cfg.Scheduler.RateLimit
	reassignLimit := middleware.RateLimit(limiter, rl.Requests, rl.Window, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 排班分配模块
		assign := v1.Group("/schedule/assign")
		{
			assign.POST("/:weekOffset", reassignLimit, h.Assignment.AssignWeek)
			assign.GET("/current", h.Assignment.GetCurrent)
			assign.POST("/manual", h.Assignment.CreateManual)
			assign.PUT("/update-task", h.Assignment.UpdateTask)
			assign.DELETE("/task/:taskId", h.Assignment.DeleteTask)
			assign.POST("/task/:taskId/complete", h.Assignment.CompleteTask)
			assign.DELETE("", h.Assignment.ClearSchedule)
			assign.POST("/sync-new-customers", reassignLimit, h.Assignment.SyncNewCustomers)

			// 导出
			assign.GET("/export", h.Export.ExportSchedule)
			assign.GET("/workers/:workerId/calendar.ics", h.Export.WorkerCalendar)
		}

		// 洗车套餐规则模块
		rules := v1.Group("/wash-rules")
		{
			rules.GET("", h.WashRule.ListRules)
			rules.PUT("/:name", h.WashRule.UpsertRule)
		}
	}

	return r
}
