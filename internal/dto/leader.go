package dto

import "time"

// ── 组长模块 DTO ──

// UnlockRequest 解锁员工请求
type UnlockRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// EditAttendanceRequest 修改考勤请求
type EditAttendanceRequest struct {
	DutyInTime  *time.Time `json:"duty_in_time"`
	DutyOutTime *time.Time `json:"duty_out_time"`
	Status      *string    `json:"status"  binding:"omitempty,oneof=present absent rest_day emergency_off"`
	Reason      string     `json:"reason"  binding:"required,min=1,max=500"`
}

// TeamMembersResponse 团队成员
type TeamMembersResponse struct {
	TeamIDs []string       `json:"team_ids"`
	Members []UserResponse `json:"members"`
}

// TeamAttendanceEntry 成员某日考勤
type TeamAttendanceEntry struct {
	Member     UserResponse        `json:"member"`
	Attendance *AttendanceResponse `json:"attendance"`
}

// TeamAttendanceResponse 团队某日考勤
type TeamAttendanceResponse struct {
	Date    string                `json:"date"`
	Entries []TeamAttendanceEntry `json:"entries"`
}

// PendingEmergencyOff 待审批紧急休假
type PendingEmergencyOff struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Month        string `json:"month"`
	Date         string `json:"date"`
	Reason       string `json:"reason"`
}

// PendingApprovalsResponse 待处理事项
type PendingApprovalsResponse struct {
	LockedEmployees      []UserResponse        `json:"locked_employees"`
	PendingEmergencyOffs []PendingEmergencyOff `json:"pending_emergency_offs"`
}

// ActionLogResponse 组长操作日志
type ActionLogResponse struct {
	ID           string `json:"id"`
	TargetUserID string `json:"target_user_id"`
	Action       string `json:"action"`
	Details      string `json:"details"`
	Reason       string `json:"reason"`
	CreatedAt    string `json:"created_at"`
}

// LeaderActionResult 组长操作结果
type LeaderActionResult struct {
	Message    string              `json:"message"`
	Employee   *UserResponse       `json:"employee,omitempty"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
	Schedule   *RestDayResponse    `json:"schedule,omitempty"`
}
