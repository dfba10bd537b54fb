package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// healthPath 探活请求只在 Debug 级别记录
const healthPath = "/health"

// Logger 访问日志中间件
// 附带 request_id 及认证后写入上下文的 user_id、role、device_id；
// 423 单独记录，便于排查被锁定账号的请求。
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		for _, key := range []string{requestIDKey, "user_id", "role", "device_id"} {
			if v := c.GetString(key); v != "" {
				fields = append(fields, zap.String(key, v))
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("请求处理失败", fields...)
		case status == http.StatusLocked:
			logger.Warn("账号锁定拦截", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("客户端错误", fields...)
		case c.Request.URL.Path == healthPath:
			logger.Debug("探活", fields...)
		default:
			logger.Info("请求完成", fields...)
		}
	}
}
