package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
)

// TeamRepository 团队数据访问接口
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	AddLeader(ctx context.Context, teamID, userID string) error
	IsLeader(ctx context.Context, teamID, userID string) (bool, error)
	ListLedTeamIDs(ctx context.Context, userID string) ([]string, error)
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo 创建 TeamRepository 实例
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Omit("Leaders").Create(team).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Preload("Leaders").
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) AddLeader(ctx context.Context, teamID, userID string) error {
	return r.db.WithContext(ctx).Create(&model.TeamLeader{TeamID: teamID, UserID: userID}).Error
}

func (r *teamRepo) IsLeader(ctx context.Context, teamID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TeamLeader{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *teamRepo) ListLedTeamIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.TeamLeader{}).
		Where("user_id = ?", userID).
		Order("team_id").
		Pluck("team_id", &ids).Error
	return ids, err
}
