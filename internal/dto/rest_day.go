package dto

// ── 休息日模块 DTO ──

// SelectRestDaysRequest 选择月度休息日请求（整体替换）
type SelectRestDaysRequest struct {
	Month string   `json:"month" binding:"required,len=7"`
	Dates []string `json:"dates" binding:"required"`
}

// EmergencyOffRequest 紧急休假申请
type EmergencyOffRequest struct {
	Date   string `json:"date"   binding:"required,len=10"`
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ApproveEmergencyOffRequest 组长审批紧急休假
type ApproveEmergencyOffRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Month      string `json:"month"       binding:"required,len=7"`
	Date       string `json:"date"        binding:"required,len=10"`
}

// EmergencyOffResponse 紧急休假
type EmergencyOffResponse struct {
	Date       string  `json:"date"`
	Reason     string  `json:"reason"`
	ApprovedBy *string `json:"approved_by"`
	ApprovedAt string  `json:"approved_at,omitempty"`
}

// RestDayResponse 月度休息日
type RestDayResponse struct {
	UserID            string                 `json:"user_id"`
	Month             string                 `json:"month"`
	SelectedDates     []string               `json:"selected_dates"`
	EmergencyOffDates []EmergencyOffResponse `json:"emergency_off_dates"`
}

// RestDayResult 休息日变更结果
type RestDayResult struct {
	Message  string          `json:"message"`
	Schedule RestDayResponse `json:"schedule"`
}

// AvailableDatesResponse 月度可选日期
type AvailableDatesResponse struct {
	Month            string         `json:"month"`
	AvailableDates   []string       `json:"available_dates"`
	FullyBookedDates []string       `json:"fully_booked_dates"`
	DateCount        map[string]int `json:"date_count"`
	MaxPerDate       int            `json:"max_per_date"`
	RestDaysPerMonth int            `json:"rest_days_per_month"`
}
