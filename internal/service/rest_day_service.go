package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/policy"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
)

// ── 休息日模块业务错误 ──

var (
	ErrTooManyDays          = errors.New("too many rest days selected")
	ErrDateFullyBooked      = errors.New("date fully booked")
	ErrDateNotInMonth       = errors.New("date does not belong to the selected month")
	ErrDuplicateDate        = errors.New("date selected more than once")
	ErrEmergencyOffExists   = errors.New("emergency off already requested for this date")
	ErrEmergencyOffNotFound = errors.New("emergency off request not found or already approved")
)

// RestDayService 月度休息日业务接口
type RestDayService interface {
	SelectRestDays(ctx context.Context, userID string, req *dto.SelectRestDaysRequest) (*dto.RestDayResult, error)
	RequestEmergencyOff(ctx context.Context, userID string, req *dto.EmergencyOffRequest) (*dto.RestDayResult, error)
	ApproveEmergencyOff(ctx context.Context, leaderID string, req *dto.ApproveEmergencyOffRequest) (*dto.RestDayResult, error)
	GetRestDays(ctx context.Context, userID, month string) (*dto.RestDayResponse, error)
	AvailableDates(ctx context.Context, userID, month string) (*dto.AvailableDatesResponse, error)
	// IsRestDay 日期在已选休息日中，或存在该日的紧急休假申请（不论是否已批准）
	IsRestDay(ctx context.Context, userID, date string) (bool, error)
	// ExportCalendar 导出月度休息日为 iCalendar，返回内容与建议文件名
	ExportCalendar(ctx context.Context, userID, month string) ([]byte, string, error)
}

type restDayService struct {
	repo     *repository.Repository
	settings SettingsService
	tl       timeline
	logger   *zap.Logger
}

// NewRestDayService 创建 RestDayService 实例
func NewRestDayService(repo *repository.Repository, settings SettingsService, tl timeline, logger *zap.Logger) RestDayService {
	return &restDayService{repo: repo, settings: settings, tl: tl, logger: logger}
}

// ────────────────────── SelectRestDays ──────────────────────

func (s *restDayService) SelectRestDays(ctx context.Context, userID string, req *dto.SelectRestDaysRequest) (*dto.RestDayResult, error) {
	if _, err := policy.ParseMonth(req.Month, s.tl.loc); err != nil {
		return nil, ErrInvalidMonth
	}
	dates, err := normalizeDates(req.Month, req.Dates)
	if err != nil {
		return nil, err
	}

	user, err := getUser(ctx, s.repo, s.logger, userID)
	if err != nil {
		return nil, err
	}
	if user.TeamID == nil {
		return nil, fmt.Errorf("%w to select rest days", ErrNoTeam)
	}
	teamID := *user.TeamID

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) > settings.RestDaysPerMonth {
		return nil, fmt.Errorf("%w: you can only select %d rest days per month", ErrTooManyDays, settings.RestDaysPerMonth)
	}

	// 逐日检查团队容量；各日期独立检查，不跨日期加锁
	for _, date := range dates {
		count, err := s.repo.RestDay.CountDateInTeam(ctx, teamID, req.Month, date, userID)
		if err != nil {
			s.logger.Error("统计团队休息日失败", zap.String("date", date), zap.Error(err))
			return nil, err
		}
		if int(count) >= settings.MaxRestDaysPerDatePerTeam {
			return nil, fmt.Errorf("%w: the date %s is fully booked. Maximum %d employees can take rest on the same day",
				ErrDateFullyBooked, date, settings.MaxRestDaysPerDatePerTeam)
		}
	}

	rd := &model.RestDay{
		UserID:        userID,
		TeamID:        teamID,
		Month:         req.Month,
		SelectedDates: dates,
		UpdatedAt:     s.tl.Now(),
	}
	if err := s.repo.RestDay.UpsertSelection(ctx, rd); err != nil {
		s.logger.Error("保存休息日失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	saved, err := s.repo.RestDay.GetByUserMonth(ctx, userID, req.Month)
	if err != nil {
		s.logger.Error("查询休息日失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.RestDayResult{
		Message:  "Rest days selected successfully",
		Schedule: s.tl.toRestDayResponse(saved),
	}, nil
}

// normalizeDates 校验日期格式、所属月份与重复，返回升序结果
func normalizeDates(month string, dates []string) (model.StringArray, error) {
	seen := make(map[string]bool, len(dates))
	result := make(model.StringArray, 0, len(dates))
	for _, d := range dates {
		m, err := policy.MonthOfDate(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
		if m != month {
			return nil, fmt.Errorf("%w: %s", ErrDateNotInMonth, d)
		}
		if seen[d] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, d)
		}
		seen[d] = true
		result = append(result, d)
	}
	sort.Strings(result)
	return result, nil
}

// ────────────────────── Emergency off ──────────────────────

func (s *restDayService) RequestEmergencyOff(ctx context.Context, userID string, req *dto.EmergencyOffRequest) (*dto.RestDayResult, error) {
	month, err := policy.MonthOfDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	user, err := getUser(ctx, s.repo, s.logger, userID)
	if err != nil {
		return nil, err
	}
	if user.TeamID == nil {
		return nil, ErrNoTeam
	}

	rd, err := s.repo.RestDay.EnsureForMonth(ctx, userID, *user.TeamID, month)
	if err != nil {
		s.logger.Error("初始化月度休息日失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if rd.HasEmergencyOff(req.Date) {
		return nil, ErrEmergencyOffExists
	}

	off := &model.EmergencyOff{
		RestDayID: rd.RestDayID,
		Date:      req.Date,
		Reason:    req.Reason,
		CreatedAt: s.tl.Now(),
	}
	if err := s.repo.RestDay.CreateEmergencyOff(ctx, off); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmergencyOffExists
		}
		s.logger.Error("创建紧急休假失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	saved, err := s.repo.RestDay.GetByUserMonth(ctx, userID, month)
	if err != nil {
		s.logger.Error("查询休息日失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.RestDayResult{
		Message:  "Emergency off request submitted. Waiting for team leader approval.",
		Schedule: s.tl.toRestDayResponse(saved),
	}, nil
}

func (s *restDayService) ApproveEmergencyOff(ctx context.Context, leaderID string, req *dto.ApproveEmergencyOffRequest) (*dto.RestDayResult, error) {
	if _, err := policy.ParseMonth(req.Month, s.tl.loc); err != nil {
		return nil, ErrInvalidMonth
	}
	if _, err := policy.MonthOfDate(req.Date); err != nil {
		return nil, ErrInvalidDate
	}

	employee, err := getUser(ctx, s.repo, s.logger, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := checkTeamLeader(ctx, s.repo, s.logger, leaderID, employee); err != nil {
		return nil, err
	}

	rd, err := s.repo.RestDay.GetByUserMonth(ctx, employee.UserID, req.Month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmergencyOffNotFound
		}
		s.logger.Error("查询休息日失败", zap.String("user_id", employee.UserID), zap.Error(err))
		return nil, err
	}

	now := s.tl.Now()
	err = withTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		ok, err := txRepo.RestDay.ApproveEmergencyOff(ctx, rd.RestDayID, req.Date, leaderID, now)
		if err != nil {
			s.logger.Error("审批紧急休假失败", zap.Error(err))
			return err
		}
		if !ok {
			return ErrEmergencyOffNotFound
		}
		return txRepo.ActionLog.Create(ctx, &model.LeaderActionLog{
			LeaderID:     leaderID,
			TargetUserID: employee.UserID,
			Action:       model.ActionApproveEmergencyOff,
			Details:      fmt.Sprintf("Approved emergency off for %s on %s", employee.Name, req.Date),
			Reason:       "Emergency off approved",
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.RestDay.GetByUserMonth(ctx, employee.UserID, req.Month)
	if err != nil {
		s.logger.Error("查询休息日失败", zap.String("user_id", employee.UserID), zap.Error(err))
		return nil, err
	}
	return &dto.RestDayResult{
		Message:  "Emergency off approved successfully",
		Schedule: s.tl.toRestDayResponse(saved),
	}, nil
}

// ────────────────────── Queries ──────────────────────

func (s *restDayService) GetRestDays(ctx context.Context, userID, month string) (*dto.RestDayResponse, error) {
	if _, err := policy.ParseMonth(month, s.tl.loc); err != nil {
		return nil, ErrInvalidMonth
	}
	rd, err := s.repo.RestDay.GetByUserMonth(ctx, userID, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.RestDayResponse{
				UserID:            userID,
				Month:             month,
				SelectedDates:     []string{},
				EmergencyOffDates: []dto.EmergencyOffResponse{},
			}, nil
		}
		s.logger.Error("查询休息日失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	resp := s.tl.toRestDayResponse(rd)
	return &resp, nil
}

func (s *restDayService) AvailableDates(ctx context.Context, userID, month string) (*dto.AvailableDatesResponse, error) {
	all, err := policy.DatesInMonth(month)
	if err != nil {
		return nil, ErrInvalidMonth
	}

	user, err := getUser(ctx, s.repo, s.logger, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.AvailableDatesResponse{
		Month:            month,
		AvailableDates:   []string{},
		FullyBookedDates: []string{},
		DateCount:        map[string]int{},
		MaxPerDate:       settings.MaxRestDaysPerDatePerTeam,
		RestDaysPerMonth: settings.RestDaysPerMonth,
	}
	if user.TeamID == nil {
		return resp, nil
	}

	schedules, err := s.repo.RestDay.ListByTeamMonth(ctx, *user.TeamID, month)
	if err != nil {
		s.logger.Error("查询团队休息日失败", zap.String("team_id", *user.TeamID), zap.Error(err))
		return nil, err
	}
	for _, rd := range schedules {
		for _, d := range rd.SelectedDates {
			resp.DateCount[d]++
		}
	}
	for _, d := range all {
		if resp.DateCount[d] >= settings.MaxRestDaysPerDatePerTeam {
			resp.FullyBookedDates = append(resp.FullyBookedDates, d)
		} else {
			resp.AvailableDates = append(resp.AvailableDates, d)
		}
	}
	return resp, nil
}

func (s *restDayService) IsRestDay(ctx context.Context, userID, date string) (bool, error) {
	month, err := policy.MonthOfDate(date)
	if err != nil {
		return false, ErrInvalidDate
	}
	rd, err := s.repo.RestDay.GetByUserMonth(ctx, userID, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		s.logger.Error("查询休息日失败", zap.String("user_id", userID), zap.Error(err))
		return false, err
	}
	return rd.SelectedDates.Contains(date) || rd.HasEmergencyOff(date), nil
}

// ────────────────────── ExportCalendar ──────────────────────

func (s *restDayService) ExportCalendar(ctx context.Context, userID, month string) ([]byte, string, error) {
	schedule, err := s.GetRestDays(ctx, userID, month)
	if err != nil {
		return nil, "", err
	}

	now := s.tl.Now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Employee Tracker//Rest Days//EN")
	cal.SetXWRCalName(fmt.Sprintf("Rest days %s", month))
	cal.SetXWRTimezone(s.tl.loc.String())

	addDay := func(uid, date, summary, description string) error {
		day, err := s.tl.Day(date)
		if err != nil {
			return err
		}
		event := cal.AddEvent(uid)
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(summary)
		if description != "" {
			event.SetDescription(description)
		}
		return nil
	}

	for _, d := range schedule.SelectedDates {
		if err := addDay(fmt.Sprintf("rest-%s-%s@employee-tracker", userID, d), d, "Rest day", ""); err != nil {
			return nil, "", err
		}
	}
	for _, off := range schedule.EmergencyOffDates {
		summary := "Emergency off (pending)"
		if off.ApprovedBy != nil {
			summary = "Emergency off"
		}
		if err := addDay(fmt.Sprintf("emergency-%s-%s@employee-tracker", userID, off.Date), off.Date, summary, off.Reason); err != nil {
			return nil, "", err
		}
	}

	filename := fmt.Sprintf("rest-days-%s.ics", month)
	return []byte(cal.Serialize()), filename, nil
}
