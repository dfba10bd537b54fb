package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
)

// SettingsRepository 系统设置数据访问接口
type SettingsRepository interface {
	Get(ctx context.Context) (*model.SystemSettings, error)
	CreateIfMissing(ctx context.Context, s *model.SystemSettings) error
	Update(ctx context.Context, s *model.SystemSettings) error
}

type settingsRepo struct {
	db *gorm.DB
}

// NewSettingsRepo 创建 SettingsRepository 实例
func NewSettingsRepo(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*model.SystemSettings, error) {
	var s model.SystemSettings
	err := r.db.WithContext(ctx).Where("singleton = ?", true).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateIfMissing 单行表，并发首次读取时只有一条写入生效
func (r *settingsRepo) CreateIfMissing(ctx context.Context, s *model.SystemSettings) error {
	s.Singleton = true
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(s).Error
}

func (r *settingsRepo) Update(ctx context.Context, s *model.SystemSettings) error {
	s.Singleton = true
	return r.db.WithContext(ctx).Save(s).Error
}
