package dto

// ── 休息模块 DTO ──

// StartBreakRequest 开始休息请求
type StartBreakRequest struct {
	AttendanceID string `json:"attendance_id" binding:"required"`
	BreakType    string `json:"break_type"    binding:"required,oneof=lunch toilet cooking personal other"`
	IsOffline    bool   `json:"is_offline"`
}

// EndBreakRequest 结束休息请求
type EndBreakRequest struct {
	IsOffline bool `json:"is_offline"`
}

// BreakResponse 休息记录
type BreakResponse struct {
	ID              string `json:"id"`
	AttendanceID    string `json:"attendance_id"`
	Date            string `json:"date"`
	BreakType       string `json:"break_type"`
	BreakOut        string `json:"break_out"`
	BreakIn         string `json:"break_in,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        bool   `json:"is_active"`
	IsOffline       bool   `json:"is_offline"`
}

// StartBreakResult 开始休息结果
type StartBreakResult struct {
	Message string        `json:"message"`
	Break   BreakResponse `json:"break"`
}

// EndBreakResult 结束休息结果
type EndBreakResult struct {
	Message         string        `json:"message"`
	Break           BreakResponse `json:"break"`
	DurationMinutes int           `json:"duration_minutes"`
	TotalBreakToday int           `json:"total_break_today"`
	Warning         string        `json:"warning,omitempty"`
}

// BreakSummary 当日休息汇总
type BreakSummary struct {
	Breaks           []BreakResponse `json:"breaks"`
	TotalMinutes     int             `json:"total_minutes"`
	MaxMinutes       int             `json:"max_minutes"`
	RemainingMinutes int             `json:"remaining_minutes"`
	LimitExceeded    bool            `json:"limit_exceeded"`
}
