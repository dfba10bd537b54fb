package dto

// ── 报表模块 DTO ──

// AttendanceStats 考勤统计
type AttendanceStats struct {
	TotalDays           int    `json:"total_days"`
	PresentDays         int    `json:"present_days"`
	AbsentDays          int    `json:"absent_days"`
	LateDays            int    `json:"late_days"`
	TotalWorkingMinutes int    `json:"total_working_minutes"`
	TotalLateMinutes    int    `json:"total_late_minutes"`
	AverageWorkingHours string `json:"average_working_hours"`
}

// BreakTypeStats 按类型的休息统计
type BreakTypeStats struct {
	Count        int `json:"count"`
	TotalMinutes int `json:"total_minutes"`
}

// BreakStats 休息统计
type BreakStats struct {
	Count          int                       `json:"count"`
	TotalMinutes   int                       `json:"total_minutes"`
	AverageMinutes string                    `json:"average_minutes"`
	ByType         map[string]BreakTypeStats `json:"by_type"`
}

// RestDayStats 休息日统计
type RestDayStats struct {
	SelectedDays      int `json:"selected_days"`
	ApprovedEmergency int `json:"approved_emergency"`
	PendingEmergency  int `json:"pending_emergency"`
}

// AttendanceReportResponse 区间考勤报表
type AttendanceReportResponse struct {
	From    string               `json:"from"`
	To      string               `json:"to"`
	Records []AttendanceResponse `json:"records"`
	Stats   AttendanceStats      `json:"stats"`
}

// MonthlyReportResponse 月度报表
type MonthlyReportResponse struct {
	Month           string               `json:"month"`
	Records         []AttendanceResponse `json:"records"`
	AttendanceStats AttendanceStats      `json:"attendance_stats"`
	BreakStats      BreakStats           `json:"break_stats"`
	RestDayStats    RestDayStats         `json:"rest_day_stats"`
}

// DailyReportResponse 日报
type DailyReportResponse struct {
	Date       string              `json:"date"`
	Attendance *AttendanceResponse `json:"attendance"`
	Breaks     []BreakResponse     `json:"breaks"`
}
