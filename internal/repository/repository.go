package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Settings     SettingsRepository
	User         UserRepository
	Team         TeamRepository
	Attendance   AttendanceRepository
	BreakLog     BreakLogRepository
	RestDay      RestDayRepository
	ActionLog    ActionLogRepository
	LoginHistory LoginHistoryRepository
	SweepRun     SweepRunRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Settings:     NewSettingsRepo(db),
		User:         NewUserRepo(db),
		Team:         NewTeamRepo(db),
		Attendance:   NewAttendanceRepo(db),
		BreakLog:     NewBreakLogRepo(db),
		RestDay:      NewRestDayRepo(db),
		ActionLog:    NewActionLogRepo(db),
		LoginHistory: NewLoginHistoryRepo(db),
		SweepRun:     NewSweepRunRepo(db),
	}
}

// BeginTx 开启事务
// 聚合未持有数据库连接时（单元测试注入 mock 仓储）返回 nil，调用方按 tx != nil 判断
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
