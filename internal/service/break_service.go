package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
)

// ── 休息模块业务错误 ──

var (
	ErrNotDutiedIn        = errors.New("you must duty in before taking a break")
	ErrAlreadyDutiedOut   = errors.New("you have already marked duty out")
	ErrBreakAlreadyActive = errors.New("you already have an active break, please end it first")
	ErrBreakNotFound      = errors.New("break not found")
	ErrBreakNotOwned      = errors.New("break does not belong to you")
	ErrBreakAlreadyEnded  = errors.New("break is already ended")
)

// BreakService 休息业务接口
type BreakService interface {
	StartBreak(ctx context.Context, userID string, req *dto.StartBreakRequest) (*dto.StartBreakResult, error)
	// EndBreak 超出每日休息上限只返回提示，不阻止结束
	EndBreak(ctx context.Context, userID, breakID string, isOffline bool) (*dto.EndBreakResult, error)
	TodayBreaks(ctx context.Context, userID string) (*dto.BreakSummary, error)
	// DailyTotal 当日已结束休息的分钟合计
	DailyTotal(ctx context.Context, userID, date string) (int, error)
}

type breakService struct {
	repo     *repository.Repository
	settings SettingsService
	tl       timeline
	logger   *zap.Logger
}

// NewBreakService 创建 BreakService 实例
func NewBreakService(repo *repository.Repository, settings SettingsService, tl timeline, logger *zap.Logger) BreakService {
	return &breakService{repo: repo, settings: settings, tl: tl, logger: logger}
}

// ────────────────────── StartBreak ──────────────────────

func (s *breakService) StartBreak(ctx context.Context, userID string, req *dto.StartBreakRequest) (*dto.StartBreakResult, error) {
	attendance, err := s.repo.Attendance.GetByID(ctx, req.AttendanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("查询考勤记录失败", zap.String("attendance_id", req.AttendanceID), zap.Error(err))
		return nil, err
	}
	if attendance.UserID != userID {
		return nil, ErrAttendanceNotFound
	}
	if !attendance.HasDutyIn() {
		return nil, ErrNotDutiedIn
	}
	if attendance.HasDutyOut() {
		return nil, ErrAlreadyDutiedOut
	}

	active, err := s.repo.BreakLog.GetActiveByAttendance(ctx, attendance.AttendanceID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询进行中休息失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if active != nil {
		return nil, ErrBreakAlreadyActive
	}

	now := s.tl.Now()
	entry := &model.BreakLog{
		UserID:       userID,
		AttendanceID: attendance.AttendanceID,
		Date:         attendance.Date,
		BreakType:    req.BreakType,
		BreakOut:     now,
		IsOffline:    req.IsOffline,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.BreakLog.Create(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBreakAlreadyActive
		}
		s.logger.Error("创建休息记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.StartBreakResult{
		Message: fmt.Sprintf("%s break started", req.BreakType),
		Break:   s.tl.toBreakResponse(entry),
	}, nil
}

// ────────────────────── EndBreak ──────────────────────

func (s *breakService) EndBreak(ctx context.Context, userID, breakID string, isOffline bool) (*dto.EndBreakResult, error) {
	entry, err := s.repo.BreakLog.GetByID(ctx, breakID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBreakNotFound
		}
		s.logger.Error("查询休息记录失败", zap.String("break_id", breakID), zap.Error(err))
		return nil, err
	}
	if entry.UserID != userID {
		return nil, ErrBreakNotOwned
	}
	if !entry.IsActive {
		return nil, ErrBreakAlreadyEnded
	}

	now := s.tl.Now()
	entry.BreakIn = &now
	entry.DurationMinutes = max(0, int(now.Sub(entry.BreakOut).Minutes()))
	entry.IsOffline = isOffline
	ok, err := s.repo.BreakLog.Close(ctx, entry)
	if err != nil {
		s.logger.Error("结束休息失败", zap.String("break_id", breakID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrBreakAlreadyEnded
	}
	entry.IsActive = false

	total, err := s.DailyTotal(ctx, userID, entry.Date)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.EndBreakResult{
		Message:         "Break ended successfully",
		Break:           s.tl.toBreakResponse(entry),
		DurationMinutes: entry.DurationMinutes,
		TotalBreakToday: total,
	}
	if total > settings.MaxBreakMinutesPerDay {
		result.Warning = fmt.Sprintf("You have exceeded your daily break limit of %d minutes. Total: %d minutes",
			settings.MaxBreakMinutesPerDay, total)
	}
	return result, nil
}

// ────────────────────── Queries ──────────────────────

func (s *breakService) DailyTotal(ctx context.Context, userID, date string) (int, error) {
	total, err := s.repo.BreakLog.SumClosedMinutes(ctx, userID, date)
	if err != nil {
		s.logger.Error("统计休息时长失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return total, nil
}

func (s *breakService) TodayBreaks(ctx context.Context, userID string) (*dto.BreakSummary, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.BreakLog.ListByUserDate(ctx, userID, s.tl.Today())
	if err != nil {
		s.logger.Error("查询休息记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	summary := summarizeBreaks(s.tl, list, settings.MaxBreakMinutesPerDay)
	return &summary, nil
}

// summarizeBreaks 汇总当日休息；进行中的休息不计入合计
func summarizeBreaks(tl timeline, list []model.BreakLog, maxMinutes int) dto.BreakSummary {
	total := 0
	for _, b := range list {
		if !b.IsActive {
			total += b.DurationMinutes
		}
	}
	return dto.BreakSummary{
		Breaks:           tl.toBreakList(list),
		TotalMinutes:     total,
		MaxMinutes:       maxMinutes,
		RemainingMinutes: max(0, maxMinutes-total),
		LimitExceeded:    total > maxMinutes,
	}
}
