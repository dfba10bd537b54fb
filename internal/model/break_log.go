package model

import "time"

// 休息类型
const (
	BreakTypeLunch    = "lunch"
	BreakTypeToilet   = "toilet"
	BreakTypeCooking  = "cooking"
	BreakTypePersonal = "personal"
	BreakTypeOther    = "other"
)

// BreakLog 休息记录表 — 对应 break_logs
// 同一 (user_id, date) 至多一条 is_active=true（部分唯一索引 uq_break_logs_active）
type BreakLog struct {
	BreakID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"break_id"`
	UserID          string     `gorm:"type:uuid;not null"                             json:"user_id"`
	AttendanceID    string     `gorm:"type:uuid;not null"                             json:"attendance_id"`
	Date            string     `gorm:"type:varchar(10);not null"                      json:"date"`
	BreakType       string     `gorm:"type:varchar(20);not null"                      json:"break_type"`
	BreakOut        time.Time  `gorm:"not null"                                       json:"break_out"` // 开始
	BreakIn         *time.Time `json:"break_in,omitempty"`                                             // 结束
	DurationMinutes int        `gorm:"not null;default:0"                             json:"duration_minutes"`
	IsOffline       bool       `gorm:"not null;default:false"                         json:"is_offline"`
	IsActive        bool       `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (BreakLog) TableName() string { return "break_logs" }
