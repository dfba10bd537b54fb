package handler

import "github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Attendance *AttendanceHandler
	Break      *BreakHandler
	RestDay    *RestDayHandler
	Leader     *LeaderHandler
	Settings   *SettingsHandler
	Report     *ReportHandler
	Sweep      *SweepHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Break:      NewBreakHandler(svc.Break),
		RestDay:    NewRestDayHandler(svc.RestDay),
		Leader:     NewLeaderHandler(svc.Leader, svc.RestDay, svc.Report),
		Settings:   NewSettingsHandler(svc.Settings),
		Report:     NewReportHandler(svc.Report),
		Sweep:      NewSweepHandler(svc.Reconcile),
	}
}
