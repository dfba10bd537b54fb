package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
)

// RestDayRepository 月度休息日数据访问接口
type RestDayRepository interface {
	GetByUserMonth(ctx context.Context, userID, month string) (*model.RestDay, error)
	// UpsertSelection 以 (user_id, month) 为键插入或整体替换 selected_dates
	UpsertSelection(ctx context.Context, rd *model.RestDay) error
	// EnsureForMonth 不存在则创建空记录，返回当前记录
	EnsureForMonth(ctx context.Context, userID, teamID, month string) (*model.RestDay, error)
	// CountDateInTeam 团队内除 excludeUserID 外已选择该日期的成员数
	CountDateInTeam(ctx context.Context, teamID, month, date, excludeUserID string) (int64, error)
	ListByTeamMonth(ctx context.Context, teamID, month string) ([]model.RestDay, error)
	// ListRestUserIDs 指定日期处于休息日（已选日期或紧急休假，不论是否批准）的用户
	ListRestUserIDs(ctx context.Context, month, date string) ([]string, error)

	// CreateEmergencyOff (rest_day_id, date) 冲突时返回 gorm.ErrDuplicatedKey
	CreateEmergencyOff(ctx context.Context, off *model.EmergencyOff) error
	// ApproveEmergencyOff 仅批准待审批的申请，返回是否命中
	ApproveEmergencyOff(ctx context.Context, restDayID, date, approverID string, at time.Time) (bool, error)
}

type restDayRepo struct {
	db *gorm.DB
}

// NewRestDayRepo 创建 RestDayRepository 实例
func NewRestDayRepo(db *gorm.DB) RestDayRepository {
	return &restDayRepo{db: db}
}

func (r *restDayRepo) GetByUserMonth(ctx context.Context, userID, month string) (*model.RestDay, error) {
	var rd model.RestDay
	err := r.db.WithContext(ctx).
		Preload("EmergencyOffs", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Where("user_id = ? AND month = ?", userID, month).
		First(&rd).Error
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *restDayRepo) UpsertSelection(ctx context.Context, rd *model.RestDay) error {
	return r.db.WithContext(ctx).
		Omit("EmergencyOffs", "User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"selected_dates", "team_id", "updated_at"}),
		}).
		Create(rd).Error
}

func (r *restDayRepo) EnsureForMonth(ctx context.Context, userID, teamID, month string) (*model.RestDay, error) {
	rd := model.RestDay{
		UserID:        userID,
		TeamID:        teamID,
		Month:         month,
		SelectedDates: model.StringArray{},
	}
	err := r.db.WithContext(ctx).
		Omit("EmergencyOffs", "User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
			DoNothing: true,
		}).
		Create(&rd).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserMonth(ctx, userID, month)
}

func (r *restDayRepo) CountDateInTeam(ctx context.Context, teamID, month, date, excludeUserID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RestDay{}).
		Where("team_id = ? AND month = ? AND ? = ANY(selected_dates) AND user_id <> ?", teamID, month, date, excludeUserID).
		Count(&count).Error
	return count, err
}

func (r *restDayRepo) ListByTeamMonth(ctx context.Context, teamID, month string) ([]model.RestDay, error) {
	var list []model.RestDay
	err := r.db.WithContext(ctx).
		Preload("EmergencyOffs", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Preload("User").
		Where("team_id = ? AND month = ?", teamID, month).
		Find(&list).Error
	return list, err
}

func (r *restDayRepo) ListRestUserIDs(ctx context.Context, month, date string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT rd.user_id FROM rest_days rd
		WHERE rd.month = ? AND ? = ANY(rd.selected_dates)
		UNION
		SELECT rd.user_id FROM rest_days rd
		JOIN emergency_offs eo ON eo.rest_day_id = rd.rest_day_id
		WHERE rd.month = ? AND eo.date = ?`,
		month, date, month, date).
		Scan(&ids).Error
	return ids, err
}

func (r *restDayRepo) CreateEmergencyOff(ctx context.Context, off *model.EmergencyOff) error {
	return r.db.WithContext(ctx).Create(off).Error
}

func (r *restDayRepo) ApproveEmergencyOff(ctx context.Context, restDayID, date, approverID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.EmergencyOff{}).
		Where("rest_day_id = ? AND date = ? AND approved_by IS NULL", restDayID, date).
		Updates(map[string]interface{}{
			"approved_by": approverID,
			"approved_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
