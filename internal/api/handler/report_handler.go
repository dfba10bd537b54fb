package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

// ReportHandler 报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Attendance 区间考勤报表
// GET /api/v1/reports/attendance?from=2025-06-01&to=2025-06-30
func (h *ReportHandler) Attendance(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "from and to are required (YYYY-MM-DD)")
		return
	}

	result, err := h.reportSvc.AttendanceReport(c.Request.Context(), userID, q.From, q.To)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// Monthly 月度报表
// GET /api/v1/reports/monthly?month=2025-06
func (h *ReportHandler) Monthly(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.reportSvc.MonthlyReport(c.Request.Context(), userID, q.Month)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// Daily 日报表
// GET /api/v1/reports/daily?date=2025-06-10
func (h *ReportHandler) Daily(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.reportSvc.DailyReport(c.Request.Context(), userID, q.Date)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, 16001, err.Error())
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 16002, err.Error())
	default:
		response.InternalError(c)
	}
}
