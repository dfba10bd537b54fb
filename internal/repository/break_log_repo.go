package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
)

// BreakLogRepository 休息记录数据访问接口
type BreakLogRepository interface {
	// Create 部分唯一索引 uq_break_logs_active 冲突时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, b *model.BreakLog) error
	GetByID(ctx context.Context, id string) (*model.BreakLog, error)
	GetActiveByAttendance(ctx context.Context, attendanceID string) (*model.BreakLog, error)
	// Close 仅关闭仍处于活动状态的休息，返回是否命中
	Close(ctx context.Context, b *model.BreakLog) (bool, error)
	ListByUserDate(ctx context.Context, userID, date string) ([]model.BreakLog, error)
	ListByUserRange(ctx context.Context, userID, from, to string) ([]model.BreakLog, error)
	SumClosedMinutes(ctx context.Context, userID, date string) (int, error)
}

type breakLogRepo struct {
	db *gorm.DB
}

// NewBreakLogRepo 创建 BreakLogRepository 实例
func NewBreakLogRepo(db *gorm.DB) BreakLogRepository {
	return &breakLogRepo{db: db}
}

func (r *breakLogRepo) Create(ctx context.Context, b *model.BreakLog) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *breakLogRepo) GetByID(ctx context.Context, id string) (*model.BreakLog, error) {
	var b model.BreakLog
	err := r.db.WithContext(ctx).Where("break_id = ?", id).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *breakLogRepo) GetActiveByAttendance(ctx context.Context, attendanceID string) (*model.BreakLog, error) {
	var b model.BreakLog
	err := r.db.WithContext(ctx).
		Where("attendance_id = ? AND is_active", attendanceID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *breakLogRepo) Close(ctx context.Context, b *model.BreakLog) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.BreakLog{}).
		Where("break_id = ? AND is_active", b.BreakID).
		Updates(map[string]interface{}{
			"break_in":         b.BreakIn,
			"duration_minutes": b.DurationMinutes,
			"is_offline":       b.IsOffline,
			"is_active":        false,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *breakLogRepo) ListByUserDate(ctx context.Context, userID, date string) ([]model.BreakLog, error) {
	var list []model.BreakLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("break_out DESC").
		Find(&list).Error
	return list, err
}

func (r *breakLogRepo) ListByUserRange(ctx context.Context, userID, from, to string) ([]model.BreakLog, error) {
	var list []model.BreakLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("break_out DESC").
		Find(&list).Error
	return list, err
}

// SumClosedMinutes 当日已结束休息的分钟合计，进行中的休息不计入
func (r *breakLogRepo) SumClosedMinutes(ctx context.Context, userID, date string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&model.BreakLog{}).
		Select("COALESCE(SUM(duration_minutes), 0)").
		Where("user_id = ? AND date = ? AND NOT is_active", userID, date).
		Scan(&total).Error
	return total, err
}
