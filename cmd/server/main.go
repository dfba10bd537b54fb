package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/config"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/api/handler"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/api/router"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/scheduler"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/database"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/jwt"
	applogger "github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/logger"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("TRACKER_CONFIG"))
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

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		logger.Fatal("加载服务器时区失败", zap.Error(err))
	}

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", loc.String()),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（失败时降级运行：黑名单、限流、任务锁不可用）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，降级运行", zap.Error(err))
		rdb = nil
	}

	// 5. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	opts := service.Options{Location: loc, SweepLock: cfg.Scheduler.LockTTL}
	var tokens service.TokenBlacklist
	if rdb != nil {
		tokens = rdb
		opts.SweepLocker = rdb
	}
	svc := service.NewService(repo, jwtMgr, tokens, opts, logger)
	h := handler.NewHandler(svc)

	// 6. 定时对账任务
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(&cfg.Scheduler, loc, svc.Reconcile, logger)
		if err != nil {
			logger.Fatal("初始化调度器失败", zap.Error(err))
		}
		sched.Start()
	}

	// 7. 启动 HTTP 服务器（优雅关闭）
	engine := router.Setup(cfg, h, jwtMgr, rdb, svc.Auth, logger)
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	if sched != nil {
		sched.Stop(ctx)
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
