package model

// SystemSettings 考勤策略配置 — 对应 system_settings（单行强类型）
// 所有策略计算都读取调用时刻的最新快照，不保留历史版本
type SystemSettings struct {
	Singleton                 bool   `gorm:"primaryKey;default:true"                json:"-"`
	JobStartTime              string `gorm:"type:varchar(5);not null;default:'09:00'" json:"job_start_time"` // HH:mm
	JobEndTime                string `gorm:"type:varchar(5);not null;default:'17:00'" json:"job_end_time"`   // HH:mm
	GraceMinutes              int    `gorm:"not null;default:10"                    json:"grace_minutes"`
	EarlyDutyInMaxMinutes     int    `gorm:"not null;default:30"                    json:"early_duty_in_max_minutes"`
	LateDutyOutMaxMinutes     int    `gorm:"not null;default:30"                    json:"late_duty_out_max_minutes"`
	MaxBreakMinutesPerDay     int    `gorm:"not null;default:60"                    json:"max_break_minutes_per_day"`
	RestDaysPerMonth          int    `gorm:"not null;default:4"                     json:"rest_days_per_month"`
	MaxRestDaysPerDatePerTeam int    `gorm:"not null;default:4"                     json:"max_rest_days_per_date_per_team"`
	AutoAbsentAfterHours      int    `gorm:"not null;default:3"                     json:"auto_absent_after_hours"`
	BaseModel
}

// TableName 指定表名
func (SystemSettings) TableName() string { return "system_settings" }

// DefaultSystemSettings 首次读取且无记录时写入的默认值
func DefaultSystemSettings() *SystemSettings {
	return &SystemSettings{
		Singleton:                 true,
		JobStartTime:              "09:00",
		JobEndTime:                "17:00",
		GraceMinutes:              10,
		EarlyDutyInMaxMinutes:     30,
		LateDutyOutMaxMinutes:     30,
		MaxBreakMinutesPerDay:     60,
		RestDaysPerMonth:          4,
		MaxRestDaysPerDatePerTeam: 4,
		AutoAbsentAfterHours:      3,
	}
}
