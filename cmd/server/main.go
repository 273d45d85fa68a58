package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"washman/backend/config"
	"washman/backend/internal/api/handler"
	"washman/backend/internal/api/middleware"
	"washman/backend/internal/api/router"
	"washman/backend/internal/cache"
	"washman/backend/internal/jobs"
	"washman/backend/internal/repository"
	"washman/backend/internal/service"
	"washman/backend/pkg/database"
	applogger "washman/backend/pkg/logger"
	"washman/backend/pkg/redis"
)

func main() {
	// 1. 加载配置（WASHMAN_CONFIG 指定配置文件路径，缺省按目录查找）
	cfg, err := config.Load(os.Getenv("WASHMAN_CONFIG"))
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
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("timezone", cfg.Scheduler.Timezone),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 缓存与限流：Redis 不可用时退化为进程内缓存，且不限流
	var (
		rdb     *redis.Client
		store   cache.Cache
		limiter middleware.Limiter
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，使用进程内缓存", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		store = cache.NewRedisCache(rdb)
		limiter = rdb
	} else {
		store = cache.NewMemoryCache(time.Now)
	}

	// 5. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(&cfg.Scheduler, repo, store, logger)
	h := handler.NewHandler(svc)

	// 6. 定时自动排班
	var autoAssign *jobs.AutoAssigner
	if cfg.Scheduler.AutoAssign.Enabled {
		autoAssign = jobs.NewAutoAssigner(&cfg.Scheduler, svc.Assignment, logger)
		if err := autoAssign.Start(); err != nil {
			logger.Fatal("自动排班任务启动失败", zap.Error(err))
		}
	}

	// 7. 初始化路由
	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(cfg, h, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	if autoAssign != nil {
		autoAssign.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
