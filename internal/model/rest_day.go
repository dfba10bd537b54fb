package model

import "time"

// RestDay 月度休息日表 — 对应 rest_days，(user_id, month) 唯一
type RestDay struct {
	RestDayID     string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rest_day_id"`
	UserID        string         `gorm:"type:uuid;not null"                             json:"user_id"`
	TeamID        string         `gorm:"type:uuid;not null"                             json:"team_id"`
	Month         string         `gorm:"type:varchar(7);not null"                       json:"month"` // YYYY-MM
	SelectedDates StringArray    `gorm:"type:text[];not null;default:'{}'"              json:"selected_dates"`
	EmergencyOffs []EmergencyOff `gorm:"foreignKey:RestDayID;references:RestDayID"      json:"emergency_off_dates"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (RestDay) TableName() string { return "rest_days" }

// HasEmergencyOff 是否存在该日期的紧急休假申请（不论是否已批准）
func (r *RestDay) HasEmergencyOff(date string) bool {
	for _, off := range r.EmergencyOffs {
		if off.Date == date {
			return true
		}
	}
	return false
}

// EmergencyOff 紧急休假申请 — 对应 emergency_offs，(rest_day_id, date) 唯一
// ApprovedBy 为空表示待审批；审批只发生一次
type EmergencyOff struct {
	EmergencyOffID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"emergency_off_id"`
	RestDayID      string     `gorm:"type:uuid;not null"                             json:"rest_day_id"`
	Date           string     `gorm:"type:varchar(10);not null"                      json:"date"`
	Reason         string     `gorm:"type:varchar(500);not null"                     json:"reason"`
	ApprovedBy     *string    `gorm:"type:uuid"                                      json:"approved_by"`
	ApprovedAt     *time.Time `json:"approved_at"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (EmergencyOff) TableName() string { return "emergency_offs" }

// IsApproved 是否已批准
func (e *EmergencyOff) IsApproved() bool { return e.ApprovedBy != nil }
