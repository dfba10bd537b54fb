package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
)

// ────────────────────── LeaderActionLog ──────────────────────

// ActionLogRepository 组长操作日志数据访问接口
type ActionLogRepository interface {
	Create(ctx context.Context, log *model.LeaderActionLog) error
	ListByLeader(ctx context.Context, leaderID string, limit int) ([]model.LeaderActionLog, error)
}

type actionLogRepo struct {
	db *gorm.DB
}

// NewActionLogRepo 创建 ActionLogRepository 实例
func NewActionLogRepo(db *gorm.DB) ActionLogRepository {
	return &actionLogRepo{db: db}
}

func (r *actionLogRepo) Create(ctx context.Context, log *model.LeaderActionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *actionLogRepo) ListByLeader(ctx context.Context, leaderID string, limit int) ([]model.LeaderActionLog, error) {
	var list []model.LeaderActionLog
	err := r.db.WithContext(ctx).
		Where("leader_id = ?", leaderID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ────────────────────── LoginHistory ──────────────────────

// LoginHistoryRepository 登录历史数据访问接口
type LoginHistoryRepository interface {
	Create(ctx context.Context, h *model.LoginHistory) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.LoginHistory, error)
}

type loginHistoryRepo struct {
	db *gorm.DB
}

// NewLoginHistoryRepo 创建 LoginHistoryRepository 实例
func NewLoginHistoryRepo(db *gorm.DB) LoginHistoryRepository {
	return &loginHistoryRepo{db: db}
}

func (r *loginHistoryRepo) Create(ctx context.Context, h *model.LoginHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *loginHistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.LoginHistory, error) {
	var list []model.LoginHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ────────────────────── SweepRun ──────────────────────

// SweepRunRepository 对账任务运行记录数据访问接口
type SweepRunRepository interface {
	Create(ctx context.Context, run *model.SweepRun) error
	Update(ctx context.Context, run *model.SweepRun) error
	ListRecent(ctx context.Context, name string, limit int) ([]model.SweepRun, error)
}

type sweepRunRepo struct {
	db *gorm.DB
}

// NewSweepRunRepo 创建 SweepRunRepository 实例
func NewSweepRunRepo(db *gorm.DB) SweepRunRepository {
	return &sweepRunRepo{db: db}
}

func (r *sweepRunRepo) Create(ctx context.Context, run *model.SweepRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *sweepRunRepo) Update(ctx context.Context, run *model.SweepRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// ListRecent name 为空时返回所有任务
func (r *sweepRunRepo) ListRecent(ctx context.Context, name string, limit int) ([]model.SweepRun, error) {
	var list []model.SweepRun
	db := r.db.WithContext(ctx)
	if name != "" {
		db = db.Where("name = ?", name)
	}
	err := db.Order("started_at DESC").Limit(limit).Find(&list).Error
	return list, err
}
