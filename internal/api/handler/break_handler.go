package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

// BreakHandler 休息模块 HTTP 处理器
type BreakHandler struct {
	breakSvc service.BreakService
}

// NewBreakHandler 创建 BreakHandler
func NewBreakHandler(breakSvc service.BreakService) *BreakHandler {
	return &BreakHandler{breakSvc: breakSvc}
}

// Start 开始休息
// POST /api/v1/breaks
func (h *BreakHandler) Start(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.StartBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.breakSvc.StartBreak(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleBreakError(c, err)
		return
	}

	response.Created(c, result)
}

// End 结束休息；超出每日上限时结果中带 warning
// POST /api/v1/breaks/:id/end
func (h *BreakHandler) End(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.EndBreakRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "invalid request parameters")
			return
		}
	}

	result, err := h.breakSvc.EndBreak(c.Request.Context(), userID, c.Param("id"), req.IsOffline)
	if err != nil {
		h.handleBreakError(c, err)
		return
	}

	response.OK(c, result)
}

// Today 今日休息汇总
// GET /api/v1/breaks/today
func (h *BreakHandler) Today(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.breakSvc.TodayBreaks(c.Request.Context(), userID)
	if err != nil {
		h.handleBreakError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *BreakHandler) handleBreakError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotDutiedIn):
		response.Conflict(c, 13001, err.Error())
	case errors.Is(err, service.ErrAlreadyDutiedOut):
		response.Conflict(c, 13002, err.Error())
	case errors.Is(err, service.ErrBreakAlreadyActive):
		response.Conflict(c, 13003, err.Error())
	case errors.Is(err, service.ErrBreakAlreadyEnded):
		response.Conflict(c, 13004, err.Error())
	case errors.Is(err, service.ErrBreakNotFound), errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 13005, err.Error())
	case errors.Is(err, service.ErrBreakNotOwned):
		response.Forbidden(c, 13006, err.Error())
	default:
		response.InternalError(c)
	}
}
