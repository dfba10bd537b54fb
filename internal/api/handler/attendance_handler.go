package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// bindMark 读取可选的 is_offline 标记；空请求体视为在线
func bindMark(c *gin.Context) (dto.MarkRequest, bool) {
	var req dto.MarkRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return req, false
	}
	return req, true
}

// DutyIn 签到
// POST /api/v1/attendance/duty-in
func (h *AttendanceHandler) DutyIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	deviceID, ok := MustGetDeviceID(c)
	if !ok {
		return
	}
	req, ok := bindMark(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.DutyIn(c.Request.Context(), userID, deviceID, req.IsOffline)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, result)
}

// DutyOut 签退
// POST /api/v1/attendance/duty-out
func (h *AttendanceHandler) DutyOut(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	deviceID, ok := MustGetDeviceID(c)
	if !ok {
		return
	}
	req, ok := bindMark(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.DutyOut(c.Request.Context(), userID, deviceID, req.IsOffline)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Today 今日考勤
// GET /api/v1/attendance/today
func (h *AttendanceHandler) Today(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.Today(c.Request.Context(), userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Monthly 月度考勤
// GET /api/v1/attendance/monthly?month=2025-06
func (h *AttendanceHandler) Monthly(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.attendanceSvc.Monthly(c.Request.Context(), userID, q.Month)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMonth), errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 12001, err.Error())
	case errors.Is(err, service.ErrAlreadyMarked):
		response.Conflict(c, 12002, err.Error())
	case errors.Is(err, service.ErrNoDutyIn):
		response.Conflict(c, 12003, err.Error())
	case errors.Is(err, service.ErrRestDayConflict):
		response.Unprocessable(c, 12004, err.Error())
	case errors.Is(err, service.ErrTooEarly):
		response.Unprocessable(c, 12005, err.Error())
	case errors.Is(err, service.ErrDeadlinePassedLocked):
		response.Locked(c, 12006, err.Error())
	case errors.Is(err, service.ErrAccountLocked):
		response.Locked(c, 12007, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12008, err.Error())
	default:
		response.InternalError(c)
	}
}
