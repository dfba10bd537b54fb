package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

// 上下文键，由 JWTAuth 中间件写入
const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxDeviceID = "device_id"
	ctxTokenJTI = "token_jti"
	ctxTokenExp = "token_exp"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxUserID)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxRole)
}

// MustGetDeviceID 从 Gin 上下文中安全提取当前 Token 绑定的设备 ID。
func MustGetDeviceID(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxDeviceID)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	return s, true
}

// tokenMeta 提取 Token 的 jti 与过期时间，缺失时返回零值
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(ctxTokenJTI)
	var exp time.Time
	if v, ok := c.Get(ctxTokenExp); ok {
		exp, _ = v.(time.Time)
	}
	return jti, exp
}
