package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
	pkgerrors "github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/errors"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaderHandler 组长模块 HTTP 处理器
type LeaderHandler struct {
	leaderSvc  service.LeaderService
	restDaySvc service.RestDayService
	reportSvc  service.ReportService
}

// NewLeaderHandler 创建 LeaderHandler
func NewLeaderHandler(leaderSvc service.LeaderService, restDaySvc service.RestDayService, reportSvc service.ReportService) *LeaderHandler {
	return &LeaderHandler{leaderSvc: leaderSvc, restDaySvc: restDaySvc, reportSvc: reportSvc}
}

// Members 团队成员
// GET /api/v1/leader/members
func (h *LeaderHandler) Members(c *gin.Context) {
	leaderID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.leaderSvc.TeamMembers(c.Request.Context(), leaderID)
	if err != nil {
		h.handleLeaderError(c, err)
		return
	}

	response.OK(c, result)
}

// Attendance 团队某日考勤，date 缺省为今天
// GET /api/v1/leader/attendance?date=2025-06-10
func (h *LeaderHandler) Attendance(c *gin.Context) {
	leaderID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.leaderSvc.TeamAttendance(c.Request.Context(), leaderID, q.Date)
	if err != nil {
		h.handleLeaderError(c, err)
		return
	}

	response.OK(c, result)
}

// Unlock 解锁员工账号
// POST /api/v1/leader/employees/:id/unlock
func (h *LeaderHandler) Unlock(c *gin.Context) {
	leaderID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "reason is required")
		return
	}

	result, err := h.leaderSvc.UnlockEmployee(c.Request.Context(), leaderID, c.Param("id"), req.Reason)
	if err != nil {
		h.handleLeaderError(c, err)
		return
	}

	response.OK(c, result)
}

// EditAttendance 修改考勤记录
// PATCH /api/v1/leader/attendance/:id
func (h *LeaderHandler) EditAttendance(c *gin.Context) {
	leaderID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.EditAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.leaderSvc.EditAttendance(c.Request.Context(), leaderID, c.Param("id"), &req)
	if err != nil {
		h.handleLeaderError(c, err)
		return
	}

	response.OK(c, result)
}

// ApproveEmergencyOff 批准紧急休假
// POST /api/v1/leader/emergency-off/approve
func (h *LeaderHandler) ApproveEmergencyOff(c *gin.Context) {
	leaderID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ApproveEmergencyOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.restDaySvc.ApproveEmergencyOff(c.Request.Context(), leaderID, &req)
	if err != nil {
		handleRestDayError(c, err)
		return
	}

	response.OK(c, result)
}

// PendingApprovals 待处理事项：被锁定成员与未批准的紧急休假
// GET /api/v1/leader/pending
func (h *LeaderHandler) PendingApprovals(c *gin.Context) {
	leaderID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.leaderSvc.PendingApprovals(c.Request.Context(), leaderID)
	if err != nil {
		h.handleLeaderError(c, err)
		return
	}

	response.OK(c, result)
}

// ActionLogs 组长操作日志
// GET /api/v1/leader/logs?limit=50
func (h *LeaderHandler) ActionLogs(c *gin.Context) {
	leaderID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	limit := 50
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 200 {
			response.BadRequest(c, 10001, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	result, err := h.leaderSvc.ActionLogs(c.Request.Context(), leaderID, limit)
	if err != nil {
		h.handleLeaderError(c, err)
		return
	}

	response.OK(c, result)
}

// Export 导出团队月度考勤 Excel
// GET /api/v1/leader/export?month=2025-06
func (h *LeaderHandler) Export(c *gin.Context) {
	leaderID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	buf, filename, err := h.reportSvc.ExportTeamMonthly(c.Request.Context(), leaderID, q.Month)
	if err != nil {
		h.handleLeaderError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxMime, buf.Bytes())
}

func (h *LeaderHandler) handleLeaderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrNoChanges),
		errors.Is(err, service.ErrInvalidEdit):
		response.BadRequest(c, 15001, err.Error())
	case errors.Is(err, service.ErrNotLeader), errors.Is(err, service.ErrNotTeamLeader):
		response.Forbidden(c, 15002, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 15003, err.Error())
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 15004, err.Error())
	case errors.Is(err, service.ErrNotLocked):
		response.Conflict(c, 15005, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15006, err.Error())
	default:
		response.InternalError(c)
	}
}
