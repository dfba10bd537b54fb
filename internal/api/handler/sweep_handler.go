package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/response"
)

// SweepHandler 对账任务管理 HTTP 处理器
type SweepHandler struct {
	reconcileSvc service.ReconcileService
}

// NewSweepHandler 创建 SweepHandler
func NewSweepHandler(reconcileSvc service.ReconcileService) *SweepHandler {
	return &SweepHandler{reconcileSvc: reconcileSvc}
}

// Run 手动触发一次对账任务，结果与定时触发一样记录为 SweepRun
// POST /api/v1/admin/sweeps/:name/run
func (h *SweepHandler) Run(c *gin.Context) {
	result, err := h.reconcileSvc.Run(c.Request.Context(), c.Param("name"))
	if err != nil {
		// 任务失败时 SweepRun 已记录 failed，一并返回给管理员
		if result != nil {
			response.ErrorWithDetails(c, http.StatusInternalServerError, 18002, "sweep failed", err.Error())
			return
		}
		h.handleSweepError(c, err)
		return
	}

	response.OK(c, result)
}

// ListRuns 最近的任务运行记录
// GET /api/v1/admin/sweeps/runs?name=auto_close
func (h *SweepHandler) ListRuns(c *gin.Context) {
	result, err := h.reconcileSvc.RecentRuns(c.Request.Context(), c.Query("name"), 50)
	if err != nil {
		h.handleSweepError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *SweepHandler) handleSweepError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownSweep):
		response.NotFound(c, 18001, err.Error())
	default:
		response.InternalError(c)
	}
}
