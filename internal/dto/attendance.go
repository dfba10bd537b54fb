package dto

// ── 考勤模块 DTO ──

// MarkRequest 签到/签退请求
type MarkRequest struct {
	IsOffline bool `json:"is_offline"`
}

// DutyInResponse 签到信息
type DutyInResponse struct {
	Time        string  `json:"time"`
	IsLate      bool    `json:"is_late"`
	LateMinutes int     `json:"late_minutes"`
	Device      *string `json:"device,omitempty"`
	IsOffline   bool    `json:"is_offline"`
}

// DutyOutResponse 签退信息
type DutyOutResponse struct {
	Time               string  `json:"time"`
	IsLate             bool    `json:"is_late"`
	LateMinutes        int     `json:"late_minutes"`
	Device             *string `json:"device,omitempty"`
	AutoClosedBySystem bool    `json:"auto_closed_by_system"`
	IsOffline          bool    `json:"is_offline"`
}

// AttendanceResponse 考勤记录
type AttendanceResponse struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Date           string           `json:"date"`
	DutyIn         *DutyInResponse  `json:"duty_in"`
	DutyOut        *DutyOutResponse `json:"duty_out"`
	WorkingMinutes int              `json:"working_minutes"`
	WorkingHours   string           `json:"working_hours"`
	Status         string           `json:"status"`
	IsLocked       bool             `json:"is_locked"`
	LockReason     *string          `json:"lock_reason,omitempty"`
	EditedBy       *string          `json:"edited_by,omitempty"`
	EditReason     *string          `json:"edit_reason,omitempty"`
	EditedAt       string           `json:"edited_at,omitempty"`
}

// DutyInResult 签到结果
type DutyInResult struct {
	Message    string             `json:"message"`
	Attendance AttendanceResponse `json:"attendance"`
}

// DutyOutResult 签退结果
type DutyOutResult struct {
	Message      string             `json:"message"`
	Attendance   AttendanceResponse `json:"attendance"`
	WorkingHours string             `json:"working_hours"`
}

// TodayAttendanceResponse 今日考勤
type TodayAttendanceResponse struct {
	Date       string              `json:"date"`
	Attendance *AttendanceResponse `json:"attendance"`
	IsRestDay  bool                `json:"is_rest_day"`
	Breaks     BreakSummary        `json:"breaks"`
}

// MonthlyAttendanceResponse 月度考勤
type MonthlyAttendanceResponse struct {
	Month   string               `json:"month"`
	Records []AttendanceResponse `json:"records"`
}
