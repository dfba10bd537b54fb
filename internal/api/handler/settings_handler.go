package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

// SettingsHandler 系统设置 HTTP 处理器
type SettingsHandler struct {
	settingsSvc service.SettingsService
}

// NewSettingsHandler 创建 SettingsHandler
func NewSettingsHandler(settingsSvc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

// Get 获取当前设置
// GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	result, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 部分更新设置（管理员）
// PUT /api/v1/admin/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.settingsSvc.Update(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *SettingsHandler) handleSettingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSettings):
		response.BadRequest(c, 17001, err.Error())
	default:
		response.InternalError(c)
	}
}
