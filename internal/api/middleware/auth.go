package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/jwt"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

// TokenBlacklist 已注销 Token 查询（Redis 实现）
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// SessionChecker 校验 Token 绑定的设备是否仍是用户当前登录设备
type SessionChecker interface {
	CheckSession(ctx context.Context, userID, deviceID string) error
}

// lockReasoner 由账号锁定错误实现
type lockReasoner interface {
	LockReason() string
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 拒绝已注销的 Token、已被新设备登录顶替的会话以及被锁定的账号（423，附锁定原因）。
// blacklist 为 nil 或 Redis 出错时跳过黑名单检查。
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist, sessions SessionChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
			if err != nil {
				logger.Warn("黑名单查询失败，跳过检查", zap.Error(err))
			} else if revoked {
				response.Unauthorized(c, 10002, "token has been revoked")
				c.Abort()
				return
			}
		}

		if sessions != nil {
			if err := sessions.CheckSession(ctx, claims.UserID, claims.DeviceID); err != nil {
				var locked lockReasoner
				if errors.As(err, &locked) {
					logger.Info("已锁定账号的请求被拒绝",
						zap.String("user_id", claims.UserID),
						zap.String("lock_reason", locked.LockReason()),
						zap.String("path", c.FullPath()),
					)
					response.LockedWithReason(c, 10007, "your account is locked, please contact your team leader", locked.LockReason())
				} else {
					response.Unauthorized(c, 10006, "session ended, you are logged in from another device")
				}
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("team_id", claims.TeamID)
		c.Set("device_id", claims.DeviceID)
		c.Set("token_jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "unauthenticated")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "permission denied")
		c.Abort()
	}
}
