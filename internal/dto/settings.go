package dto

// ── 系统设置模块 DTO ──

// UpdateSettingsRequest 更新系统设置请求（部分更新）
type UpdateSettingsRequest struct {
	JobStartTime              *string `json:"job_start_time"                  binding:"omitempty,len=5"`
	JobEndTime                *string `json:"job_end_time"                    binding:"omitempty,len=5"`
	GraceMinutes              *int    `json:"grace_minutes"                   binding:"omitempty,min=0,max=30"`
	EarlyDutyInMaxMinutes     *int    `json:"early_duty_in_max_minutes"       binding:"omitempty,min=0,max=60"`
	LateDutyOutMaxMinutes     *int    `json:"late_duty_out_max_minutes"       binding:"omitempty,min=0,max=60"`
	MaxBreakMinutesPerDay     *int    `json:"max_break_minutes_per_day"       binding:"omitempty,min=30,max=120"`
	RestDaysPerMonth          *int    `json:"rest_days_per_month"             binding:"omitempty,min=0,max=10"`
	MaxRestDaysPerDatePerTeam *int    `json:"max_rest_days_per_date_per_team" binding:"omitempty,min=1,max=10"`
	AutoAbsentAfterHours      *int    `json:"auto_absent_after_hours"         binding:"omitempty,min=1,max=8"`
}

// SettingsResponse 系统设置响应
type SettingsResponse struct {
	JobStartTime              string `json:"job_start_time"`
	JobEndTime                string `json:"job_end_time"`
	GraceMinutes              int    `json:"grace_minutes"`
	EarlyDutyInMaxMinutes     int    `json:"early_duty_in_max_minutes"`
	LateDutyOutMaxMinutes     int    `json:"late_duty_out_max_minutes"`
	MaxBreakMinutesPerDay     int    `json:"max_break_minutes_per_day"`
	RestDaysPerMonth          int    `json:"rest_days_per_month"`
	MaxRestDaysPerDatePerTeam int    `json:"max_rest_days_per_date_per_team"`
	AutoAbsentAfterHours      int    `json:"auto_absent_after_hours"`
	UpdatedAt                 string `json:"updated_at"`
}
