package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListByTeam(ctx context.Context, teamID string) ([]model.User, error)
	ListLockedByTeam(ctx context.Context, teamID string) ([]model.User, error)
	ListActiveEmployees(ctx context.Context) ([]model.User, error)
	// Lock 将 active 用户置为 locked（inactive 保持不变），返回是否发生变更
	Lock(ctx context.Context, userID, reason string) (bool, error)
	// Unlock 将 locked 用户恢复为 active，返回是否发生变更
	Unlock(ctx context.Context, userID, approverID string, at time.Time) (bool, error)
	SetDevice(ctx context.Context, userID string, deviceID *string) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Team").Save(user).Error
}

func (r *userRepo) ListByTeam(ctx context.Context, teamID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListLockedByTeam(ctx context.Context, teamID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND status = ?", teamID, model.UserStatusLocked).
		Order("updated_at DESC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListActiveEmployees(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", model.RoleEmployee, model.UserStatusActive).
		Find(&users).Error
	return users, err
}

func (r *userRepo) Lock(ctx context.Context, userID, reason string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND status = ?", userID, model.UserStatusActive).
		Updates(map[string]interface{}{
			"status":      model.UserStatusLocked,
			"lock_reason": reason,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepo) Unlock(ctx context.Context, userID, approverID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND status = ?", userID, model.UserStatusLocked).
		Updates(map[string]interface{}{
			"status":             model.UserStatusActive,
			"lock_reason":        nil,
			"unlock_approved_by": approverID,
			"unlock_approved_at": at,
			"updated_by":         approverID,
			"updated_at":         at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepo) SetDevice(ctx context.Context, userID string, deviceID *string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("device_id", deviceID).Error
}
