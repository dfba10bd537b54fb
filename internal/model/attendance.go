package model

import "time"

// 考勤状态
const (
	AttendanceStatusPresent      = "present"
	AttendanceStatusAbsent       = "absent"
	AttendanceStatusRestDay      = "rest_day"
	AttendanceStatusEmergencyOff = "emergency_off"
)

// DeviceSystem 系统自动签退时记录的设备标识
const DeviceSystem = "system"

// DutyInMark 上班签到信息
type DutyInMark struct {
	Time        *time.Time `json:"time"`
	IsLate      bool       `gorm:"not null;default:false" json:"is_late"`
	LateMinutes int        `gorm:"not null;default:0"     json:"late_minutes"`
	Device      *string    `gorm:"type:varchar(64)"       json:"device,omitempty"`
	IsOffline   bool       `gorm:"not null;default:false" json:"is_offline"`
}

// DutyOutMark 下班签退信息
type DutyOutMark struct {
	Time               *time.Time `json:"time"`
	IsLate             bool       `gorm:"not null;default:false"                      json:"is_late"`
	LateMinutes        int        `gorm:"not null;default:0"                          json:"late_minutes"`
	Device             *string    `gorm:"type:varchar(64)"                            json:"device,omitempty"`
	AutoClosedBySystem bool       `gorm:"column:auto_closed;not null;default:false"   json:"auto_closed_by_system"`
	IsOffline          bool       `gorm:"not null;default:false"                      json:"is_offline"`
}

// Attendance 考勤记录表 — 对应 attendances，(user_id, date) 唯一
// 只追加不删除：由签到、签退、组长修改与对账任务推进状态
type Attendance struct {
	AttendanceID   string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	UserID         string      `gorm:"type:uuid;not null"                             json:"user_id"`
	Date           string      `gorm:"type:varchar(10);not null"                      json:"date"` // YYYY-MM-DD
	DutyIn         DutyInMark  `gorm:"embedded;embeddedPrefix:duty_in_"               json:"duty_in"`
	DutyOut        DutyOutMark `gorm:"embedded;embeddedPrefix:duty_out_"              json:"duty_out"`
	WorkingMinutes int         `gorm:"not null;default:0"                             json:"working_minutes"`
	Status         string      `gorm:"type:varchar(20);not null;default:'present'"    json:"status"`
	IsLocked       bool        `gorm:"not null;default:false"                         json:"is_locked"`
	LockReason     *string     `gorm:"type:varchar(255)"                              json:"lock_reason,omitempty"`
	EditedBy       *string     `gorm:"type:uuid"                                      json:"edited_by,omitempty"`
	EditReason     *string     `gorm:"type:varchar(500)"                              json:"edit_reason,omitempty"`
	EditedAt       *time.Time  `json:"edited_at,omitempty"`
	VersionedModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }

// HasDutyIn 是否已签到
func (a *Attendance) HasDutyIn() bool { return a.DutyIn.Time != nil }

// HasDutyOut 是否已签退
func (a *Attendance) HasDutyOut() bool { return a.DutyOut.Time != nil }

// IsOpen 已签到但未签退
func (a *Attendance) IsOpen() bool { return a.HasDutyIn() && !a.HasDutyOut() }
