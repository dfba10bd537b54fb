package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	pkgerrors "github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/errors"
)

// AttendanceRepository 考勤记录数据访问接口
//
// 状态推进使用带谓词的条件更新（duty_in_time IS NULL / duty_out_time IS NULL），
// 返回 bool 表示是否命中；未命中说明记录已被其他请求或对账任务推进。
type AttendanceRepository interface {
	Create(ctx context.Context, a *model.Attendance) error
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	GetByUserDate(ctx context.Context, userID, date string) (*model.Attendance, error)
	MarkDutyIn(ctx context.Context, a *model.Attendance) (bool, error)
	MarkDutyOut(ctx context.Context, a *model.Attendance) (bool, error)
	LockOpen(ctx context.Context, userID, date, reason string) error
	AutoClose(ctx context.Context, id string, at time.Time, workingMinutes int) (bool, error)
	UpsertAbsent(ctx context.Context, userID, date string) (bool, error)
	UpdateWithVersion(ctx context.Context, a *model.Attendance) error
	ListOpenByDate(ctx context.Context, date string) ([]model.Attendance, error)
	ListDutyInUserIDs(ctx context.Context, date string) ([]string, error)
	ListByUserRange(ctx context.Context, userID, from, to string) ([]model.Attendance, error)
	ListByUsersRange(ctx context.Context, userIDs []string, from, to string) ([]model.Attendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// Create 唯一约束 (user_id, date) 冲突时返回 gorm.ErrDuplicatedKey
func (r *attendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).Omit("User").Create(a).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("attendance_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) GetByUserDate(ctx context.Context, userID, date string) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// MarkDutyIn 在已存在但未签到的记录（例如已被标记缺勤）上写入签到
func (r *attendanceRepo) MarkDutyIn(ctx context.Context, a *model.Attendance) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("attendance_id = ? AND duty_in_time IS NULL", a.AttendanceID).
		Updates(map[string]interface{}{
			"duty_in_time":         a.DutyIn.Time,
			"duty_in_is_late":      a.DutyIn.IsLate,
			"duty_in_late_minutes": a.DutyIn.LateMinutes,
			"duty_in_device":       a.DutyIn.Device,
			"duty_in_is_offline":   a.DutyIn.IsOffline,
			"status":               a.Status,
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *attendanceRepo) MarkDutyOut(ctx context.Context, a *model.Attendance) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("attendance_id = ? AND duty_in_time IS NOT NULL AND duty_out_time IS NULL", a.AttendanceID).
		Updates(map[string]interface{}{
			"duty_out_time":         a.DutyOut.Time,
			"duty_out_is_late":      a.DutyOut.IsLate,
			"duty_out_late_minutes": a.DutyOut.LateMinutes,
			"duty_out_device":       a.DutyOut.Device,
			"duty_out_is_offline":   a.DutyOut.IsOffline,
			"working_minutes":       a.WorkingMinutes,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// LockOpen 标记未签退记录为锁定，不关闭记录
func (r *attendanceRepo) LockOpen(ctx context.Context, userID, date, reason string) error {
	return r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("user_id = ? AND date = ? AND duty_out_time IS NULL", userID, date).
		Updates(map[string]interface{}{
			"is_locked":   true,
			"lock_reason": reason,
			"updated_at":  time.Now(),
		}).Error
}

func (r *attendanceRepo) AutoClose(ctx context.Context, id string, at time.Time, workingMinutes int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("attendance_id = ? AND duty_in_time IS NOT NULL AND duty_out_time IS NULL", id).
		Updates(map[string]interface{}{
			"duty_out_time":         at,
			"duty_out_is_late":      false,
			"duty_out_late_minutes": 0,
			"duty_out_device":       model.DeviceSystem,
			"duty_out_auto_closed":  true,
			"working_minutes":       workingMinutes,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpsertAbsent 以 (user_id, date) 为键的条件插入或更新：
// 不存在则插入缺勤记录；存在但未签到且尚未标记缺勤时改为缺勤；其余情况不变。
func (r *attendanceRepo) UpsertAbsent(ctx context.Context, userID, date string) (bool, error) {
	a := model.Attendance{
		UserID: userID,
		Date:   date,
		Status: model.AttendanceStatusAbsent,
	}
	result := r.db.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"status": model.AttendanceStatusAbsent, "working_minutes": 0}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "attendances.duty_in_time IS NULL AND attendances.status <> ?", Vars: []interface{}{model.AttendanceStatusAbsent}},
			}},
		}).
		Create(&a)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateWithVersion 组长修改，带乐观锁
func (r *attendanceRepo) UpdateWithVersion(ctx context.Context, a *model.Attendance) error {
	oldVersion := a.Version
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("attendance_id = ? AND version = ?", a.AttendanceID, oldVersion).
		Updates(map[string]interface{}{
			"duty_in_time":    a.DutyIn.Time,
			"duty_out_time":   a.DutyOut.Time,
			"status":          a.Status,
			"working_minutes": a.WorkingMinutes,
			"edited_by":       a.EditedBy,
			"edit_reason":     a.EditReason,
			"edited_at":       a.EditedAt,
			"updated_by":      a.UpdatedBy,
			"updated_at":      time.Now(),
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version = oldVersion + 1
	return nil
}

func (r *attendanceRepo) ListOpenByDate(ctx context.Context, date string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Where("date = ? AND duty_in_time IS NOT NULL AND duty_out_time IS NULL", date).
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) ListDutyInUserIDs(ctx context.Context, date string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("date = ? AND duty_in_time IS NOT NULL", date).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *attendanceRepo) ListByUserRange(ctx context.Context, userID, from, to string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date DESC").
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) ListByUsersRange(ctx context.Context, userIDs []string, from, to string) ([]model.Attendance, error) {
	var list []model.Attendance
	if len(userIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND date BETWEEN ? AND ?", userIDs, from, to).
		Order("date ASC").
		Find(&list).Error
	return list, err
}
