package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

// RestDayHandler 休息日模块 HTTP 处理器
type RestDayHandler struct {
	restDaySvc service.RestDayService
}

// NewRestDayHandler 创建 RestDayHandler
func NewRestDayHandler(restDaySvc service.RestDayService) *RestDayHandler {
	return &RestDayHandler{restDaySvc: restDaySvc}
}

// Select 选择（或整体替换）月度休息日
// POST /api/v1/rest-days
func (h *RestDayHandler) Select(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.SelectRestDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.restDaySvc.SelectRestDays(c.Request.Context(), userID, &req)
	if err != nil {
		handleRestDayError(c, err)
		return
	}

	response.OK(c, result)
}

// RequestEmergencyOff 申请紧急休假
// POST /api/v1/rest-days/emergency-off
func (h *RestDayHandler) RequestEmergencyOff(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.EmergencyOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.restDaySvc.RequestEmergencyOff(c.Request.Context(), userID, &req)
	if err != nil {
		handleRestDayError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 查询月度休息日
// GET /api/v1/rest-days?month=2025-06
func (h *RestDayHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.restDaySvc.GetRestDays(c.Request.Context(), userID, q.Month)
	if err != nil {
		handleRestDayError(c, err)
		return
	}

	response.OK(c, result)
}

// Available 查询团队内仍有名额的日期
// GET /api/v1/rest-days/available?month=2025-06
func (h *RestDayHandler) Available(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.restDaySvc.AvailableDates(c.Request.Context(), userID, q.Month)
	if err != nil {
		handleRestDayError(c, err)
		return
	}

	response.OK(c, result)
}

// Calendar 下载月度休息日 iCalendar
// GET /api/v1/rest-days/calendar.ics?month=2025-06
func (h *RestDayHandler) Calendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	data, filename, err := h.restDaySvc.ExportCalendar(c.Request.Context(), userID, q.Month)
	if err != nil {
		handleRestDayError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// handleRestDayError 休息日与紧急休假错误映射，组长审批接口共用
func handleRestDayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrDateNotInMonth),
		errors.Is(err, service.ErrDuplicateDate):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, service.ErrNoTeam):
		response.Conflict(c, 14002, err.Error())
	case errors.Is(err, service.ErrTooManyDays):
		response.Unprocessable(c, 14003, err.Error())
	case errors.Is(err, service.ErrDateFullyBooked):
		response.Unprocessable(c, 14004, err.Error())
	case errors.Is(err, service.ErrEmergencyOffExists):
		response.Conflict(c, 14005, err.Error())
	case errors.Is(err, service.ErrEmergencyOffNotFound):
		response.NotFound(c, 14006, err.Error())
	case errors.Is(err, service.ErrNotTeamLeader), errors.Is(err, service.ErrNotLeader):
		response.Forbidden(c, 14007, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 14008, err.Error())
	default:
		response.InternalError(c)
	}
}
