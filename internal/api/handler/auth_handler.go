package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录，新设备会顶替旧设备的会话
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	deviceID, ok := MustGetDeviceID(c)
	if !ok {
		return
	}
	jti, exp := tokenMeta(c)

	if err := h.authSvc.Logout(c.Request.Context(), userID, deviceID, jti, exp); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// Me 获取当前用户
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, err.Error())
	case errors.Is(err, service.ErrAccountLocked):
		response.Locked(c, 11002, err.Error())
	case errors.Is(err, service.ErrAccountInactive):
		response.Forbidden(c, 11003, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11004, err.Error())
	default:
		response.InternalError(c)
	}
}
