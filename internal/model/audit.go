package model

import "time"

// 组长操作类型
const (
	ActionUnlockEmployee      = "unlock_employee"
	ActionEditAttendance      = "edit_attendance"
	ActionApproveEmergencyOff = "approve_emergency_off"
)

// LeaderActionLog 组长操作审计日志 — 对应 leader_action_logs（纯审计，只追加）
type LeaderActionLog struct {
	LogID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	LeaderID     string    `gorm:"type:uuid;not null"                             json:"leader_id"`
	TargetUserID string    `gorm:"type:uuid;not null"                             json:"target_user_id"`
	Action       string    `gorm:"type:varchar(40);not null"                      json:"action"`
	Details      string    `gorm:"type:text;not null;default:''"                  json:"details"`
	Reason       string    `gorm:"type:varchar(500);not null"                     json:"reason"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (LeaderActionLog) TableName() string { return "leader_action_logs" }

// 登录历史动作
const (
	LoginActionLogin       = "login"
	LoginActionLogout      = "logout"
	LoginActionForceLogout = "force_logout"
)

// LoginHistory 登录历史 — 对应 login_histories
type LoginHistory struct {
	LoginHistoryID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"login_history_id"`
	UserID         string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Action         string    `gorm:"type:varchar(20);not null"                      json:"action"`
	DeviceID       string    `gorm:"type:varchar(64);not null"                      json:"device_id"`
	DeviceInfo     *string   `gorm:"type:varchar(255)"                              json:"device_info,omitempty"`
	IPAddress      *string   `gorm:"type:varchar(64)"                               json:"ip_address,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (LoginHistory) TableName() string { return "login_histories" }

// 对账任务运行状态
const (
	SweepStatusRunning   = "running"
	SweepStatusCompleted = "completed"
	SweepStatusFailed    = "failed"
	SweepStatusSkipped   = "skipped"
)

// SweepRun 对账任务运行记录 — 对应 sweep_runs
type SweepRun struct {
	SweepRunID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"sweep_run_id"`
	Name       string     `gorm:"type:varchar(40);not null"                      json:"name"`
	RunDate    string     `gorm:"type:varchar(10);not null"                      json:"run_date"`
	Status     string     `gorm:"type:varchar(20);not null"                      json:"status"`
	Affected   int        `gorm:"not null;default:0"                             json:"affected"`
	Error      *string    `gorm:"type:text"                                      json:"error,omitempty"`
	StartedAt  time.Time  `gorm:"not null"                                       json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// TableName 指定表名
func (SweepRun) TableName() string { return "sweep_runs" }
