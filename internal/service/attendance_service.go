package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/policy"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrAlreadyMarked        = errors.New("attendance already marked")
	ErrNoDutyIn             = errors.New("you have not marked duty in yet")
	ErrRestDayConflict      = errors.New("you have a rest day today, cannot duty in")
	ErrAccountLocked        = errors.New("your account is locked, please contact your team leader")
	ErrTooEarly             = errors.New("too early to duty in")
	ErrDeadlinePassedLocked = errors.New("duty out deadline passed, your account has been locked, contact your team leader")
	ErrAttendanceNotFound   = errors.New("attendance record not found")
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	DutyIn(ctx context.Context, userID, deviceID string, isOffline bool) (*dto.DutyInResult, error)
	// DutyOut 超过签退截止时间时锁定账号并返回 ErrDeadlinePassedLocked，锁定在返回错误前已持久化
	DutyOut(ctx context.Context, userID, deviceID string, isOffline bool) (*dto.DutyOutResult, error)
	Today(ctx context.Context, userID string) (*dto.TodayAttendanceResponse, error)
	Monthly(ctx context.Context, userID, month string) (*dto.MonthlyAttendanceResponse, error)
}

type attendanceService struct {
	repo     *repository.Repository
	settings SettingsService
	restDays RestDayService
	tl       timeline
	logger   *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(
	repo *repository.Repository,
	settings SettingsService,
	restDays RestDayService,
	tl timeline,
	logger *zap.Logger,
) AttendanceService {
	return &attendanceService{
		repo:     repo,
		settings: settings,
		restDays: restDays,
		tl:       tl,
		logger:   logger,
	}
}

// ────────────────────── DutyIn ──────────────────────

func (s *attendanceService) DutyIn(ctx context.Context, userID, deviceID string, isOffline bool) (*dto.DutyInResult, error) {
	now := s.tl.Now()
	today := s.tl.Today()

	resting, err := s.restDays.IsRestDay(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if resting {
		return nil, ErrRestDayConflict
	}

	user, err := getUser(ctx, s.repo, s.logger, userID)
	if err != nil {
		return nil, err
	}
	if user.IsLocked() {
		return nil, lockedError(user)
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	window := settings.WindowOn(now)
	if !policy.IsWithinEarlyWindow(now, window.Start, settings.EarlyDutyInMaxMinutes) {
		return nil, fmt.Errorf("%w: you can only duty in %d minutes before job start time (%s)",
			ErrTooEarly, settings.EarlyDutyInMaxMinutes, settings.JobStart)
	}

	existing, err := s.repo.Attendance.GetByUserDate(ctx, userID, today)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询考勤记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if existing != nil && existing.HasDutyIn() {
		return nil, fmt.Errorf("%w: you have already marked duty in for today", ErrAlreadyMarked)
	}

	late := policy.ComputeDutyInLateness(now, window.Start, settings.GraceMinutes)
	mark := model.DutyInMark{
		Time:        &now,
		IsLate:      late.IsLate,
		LateMinutes: late.Minutes,
		Device:      &deviceID,
		IsOffline:   isOffline,
	}

	var record *model.Attendance
	if existing != nil {
		// 已被对账任务标记为缺勤等无签到记录：条件更新，未命中说明并发签到已先写入
		existing.DutyIn = mark
		existing.Status = model.AttendanceStatusPresent
		ok, err := s.repo.Attendance.MarkDutyIn(ctx, existing)
		if err != nil {
			s.logger.Error("写入签到失败", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: you have already marked duty in for today", ErrAlreadyMarked)
		}
		record = existing
	} else {
		record = &model.Attendance{
			UserID: userID,
			Date:   today,
			DutyIn: mark,
			Status: model.AttendanceStatusPresent,
		}
		if err := s.repo.Attendance.Create(ctx, record); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: you have already marked duty in for today", ErrAlreadyMarked)
			}
			s.logger.Error("创建考勤记录失败", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
	}

	message := "Duty in marked successfully."
	if late.IsLate {
		message = fmt.Sprintf("Duty in marked. You are %d minutes late.", late.Minutes)
	}
	return &dto.DutyInResult{
		Message:    message,
		Attendance: s.tl.toAttendanceResponse(record),
	}, nil
}

// ────────────────────── DutyOut ──────────────────────

func (s *attendanceService) DutyOut(ctx context.Context, userID, deviceID string, isOffline bool) (*dto.DutyOutResult, error) {
	now := s.tl.Now()
	today := s.tl.Today()

	record, err := s.repo.Attendance.GetByUserDate(ctx, userID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDutyIn
		}
		s.logger.Error("查询考勤记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if !record.HasDutyIn() {
		return nil, ErrNoDutyIn
	}
	if record.HasDutyOut() {
		return nil, fmt.Errorf("%w: you have already marked duty out for today", ErrAlreadyMarked)
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	window := settings.WindowOn(now)

	if policy.IsBeyondDutyOutDeadline(now, window.End, settings.LateDutyOutMaxMinutes) {
		if err := s.lockForMissedDeadline(ctx, userID, today); err != nil {
			return nil, err
		}
		return nil, ErrDeadlinePassedLocked
	}

	late := policy.ComputeDutyOutLateness(now, window.End)
	record.DutyOut = model.DutyOutMark{
		Time:        &now,
		IsLate:      late.IsLate,
		LateMinutes: late.Minutes,
		Device:      &deviceID,
		IsOffline:   isOffline,
	}
	record.WorkingMinutes = policy.ComputeWorkingMinutes(window.Start, window.End, now)

	ok, err := s.repo.Attendance.MarkDutyOut(ctx, record)
	if err != nil {
		s.logger.Error("写入签退失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: you have already marked duty out for today", ErrAlreadyMarked)
	}

	return &dto.DutyOutResult{
		Message:      "Duty out marked successfully.",
		Attendance:   s.tl.toAttendanceResponse(record),
		WorkingHours: policy.WorkingHours(record.WorkingMinutes),
	}, nil
}

// lockForMissedDeadline 锁定账号并标记当日未签退记录，不关闭记录
func (s *attendanceService) lockForMissedDeadline(ctx context.Context, userID, date string) error {
	err := withTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if _, err := txRepo.User.Lock(ctx, userID, model.LockReasonMissedDutyOut); err != nil {
			return err
		}
		return txRepo.Attendance.LockOpen(ctx, userID, date, model.LockReasonMissedDutyOut)
	})
	if err != nil {
		s.logger.Error("锁定账号失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	s.logger.Warn("签退超时，账号已锁定", zap.String("user_id", userID), zap.String("date", date))
	return nil
}

// ────────────────────── Queries ──────────────────────

func (s *attendanceService) Today(ctx context.Context, userID string) (*dto.TodayAttendanceResponse, error) {
	today := s.tl.Today()
	resp := &dto.TodayAttendanceResponse{Date: today}

	record, err := s.repo.Attendance.GetByUserDate(ctx, userID, today)
	switch {
	case err == nil:
		a := s.tl.toAttendanceResponse(record)
		resp.Attendance = &a
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询考勤记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resting, err := s.restDays.IsRestDay(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	resp.IsRestDay = resting

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	breaks, err := s.repo.BreakLog.ListByUserDate(ctx, userID, today)
	if err != nil {
		s.logger.Error("查询休息记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	resp.Breaks = summarizeBreaks(s.tl, breaks, settings.MaxBreakMinutesPerDay)
	return resp, nil
}

func (s *attendanceService) Monthly(ctx context.Context, userID, month string) (*dto.MonthlyAttendanceResponse, error) {
	from, to, err := policy.MonthRange(month)
	if err != nil {
		return nil, ErrInvalidMonth
	}
	list, err := s.repo.Attendance.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("查询月度考勤失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.MonthlyAttendanceResponse{
		Month:   month,
		Records: s.tl.toAttendanceList(list),
	}, nil
}
