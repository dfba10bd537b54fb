package model

import "time"

// 用户角色
const (
	RoleAdmin      = "admin"
	RoleTeamLeader = "team_leader"
	RoleEmployee   = "employee"
)

// 账号状态
const (
	UserStatusActive   = "active"
	UserStatusLocked   = "locked"
	UserStatusInactive = "inactive"
)

// LockReasonMissedDutyOut 错过下班签退截止时间的锁定原因
const LockReasonMissedDutyOut = "Missed duty out deadline"

// User 用户表 — 对应 users
type User struct {
	UserID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email            string     `gorm:"type:varchar(255);not null;uniqueIndex"          json:"email"`
	PasswordHash     string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Name             string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Role             string     `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"`
	TeamID           *string    `gorm:"type:uuid"                                      json:"team_id,omitempty"`
	DeviceID         *string    `gorm:"type:varchar(64)"                               json:"-"` // 当前登录设备
	Status           string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	LockReason       *string    `gorm:"type:varchar(255)"                              json:"lock_reason,omitempty"`
	UnlockApprovedBy *string    `gorm:"type:uuid"                                      json:"unlock_approved_by,omitempty"`
	UnlockApprovedAt *time.Time `json:"unlock_approved_at,omitempty"`
	BaseModel

	// 关联
	Team *Team `gorm:"foreignKey:TeamID;references:TeamID" json:"team,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsLocked 账号是否处于锁定状态
func (u *User) IsLocked() bool { return u.Status == UserStatusLocked }
