package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/config"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/api/handler"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/api/middleware"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/jwt"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时（Redis 不可用）黑名单与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, sessions middleware.SessionChecker, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// nil 指针不能直接装入接口，否则中间件的 nil 判断失效
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}
	limit := middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", limit, h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, sessions, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.GET("/settings", h.Settings.Get)

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/duty-in", limit, h.Attendance.DutyIn)
				attendance.POST("/duty-out", limit, h.Attendance.DutyOut)
				attendance.GET("/today", h.Attendance.Today)
				attendance.GET("/monthly", h.Attendance.Monthly)
			}

			// 休息模块
			breaks := authorized.Group("/breaks")
			{
				breaks.POST("", limit, h.Break.Start)
				breaks.POST("/:id/end", limit, h.Break.End)
				breaks.GET("/today", h.Break.Today)
			}

			// 休息日模块
			restDays := authorized.Group("/rest-days")
			{
				restDays.GET("", h.RestDay.Get)
				restDays.POST("", limit, h.RestDay.Select)
				restDays.GET("/available", h.RestDay.Available)
				restDays.GET("/calendar.ics", h.RestDay.Calendar)
				restDays.POST("/emergency-off", limit, h.RestDay.RequestEmergencyOff)
			}

			// 报表模块
			reports := authorized.Group("/reports")
			{
				reports.GET("/attendance", h.Report.Attendance)
				reports.GET("/monthly", h.Report.Monthly)
				reports.GET("/daily", h.Report.Daily)
			}

			// 组长模块（团队归属由 Service 层校验）
			leader := authorized.Group("/leader")
			leader.Use(middleware.RoleAuth(model.RoleTeamLeader, model.RoleAdmin))
			{
				leader.GET("/members", h.Leader.Members)
				leader.GET("/attendance", h.Leader.Attendance)
				leader.PATCH("/attendance/:id", h.Leader.EditAttendance)
				leader.POST("/employees/:id/unlock", h.Leader.Unlock)
				leader.POST("/emergency-off/approve", h.Leader.ApproveEmergencyOff)
				leader.GET("/pending", h.Leader.PendingApprovals)
				leader.GET("/logs", h.Leader.ActionLogs)
				leader.GET("/export", h.Leader.Export)
			}

			// 管理模块
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth(model.RoleAdmin))
			{
				admin.PUT("/settings", h.Settings.Update)
				admin.POST("/sweeps/:name/run", h.Sweep.Run)
				admin.GET("/sweeps/runs", h.Sweep.ListRuns)
			}
		}
	}

	return r
}
