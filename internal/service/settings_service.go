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

// ── 系统设置模块业务错误 ──

var (
	ErrInvalidSettings = errors.New("invalid settings")
)

// SettingsService 系统设置业务接口
type SettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest, callerID string) (*dto.SettingsResponse, error)
	// Snapshot 读取当前设置快照；每次策略操作都重新读取
	Snapshot(ctx context.Context) (policy.Settings, error)
}

type settingsService struct {
	repo   *repository.Repository
	tl     timeline
	logger *zap.Logger
}

// NewSettingsService 创建 SettingsService 实例
func NewSettingsService(repo *repository.Repository, tl timeline, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, tl: tl, logger: logger}
}

// load 读取设置，不存在时写入默认值
func (s *settingsService) load(ctx context.Context) (*model.SystemSettings, error) {
	cfg, err := s.repo.Settings.Get(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询系统设置失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Settings.CreateIfMissing(ctx, model.DefaultSystemSettings()); err != nil {
		s.logger.Error("初始化系统设置失败", zap.Error(err))
		return nil, err
	}
	cfg, err = s.repo.Settings.Get(ctx)
	if err != nil {
		s.logger.Error("查询系统设置失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("系统设置已初始化为默认值")
	return cfg, nil
}

// ────────────────────── Snapshot ──────────────────────

func (s *settingsService) Snapshot(ctx context.Context) (policy.Settings, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return policy.Settings{}, err
	}
	snap, err := policy.FromModel(cfg)
	if err != nil {
		s.logger.Error("系统设置格式损坏", zap.Error(err))
		return policy.Settings{}, err
	}
	return snap, nil
}

// ────────────────────── Get ──────────────────────

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponse(cfg), nil
}

// ────────────────────── Update ──────────────────────

func (s *settingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest, callerID string) (*dto.SettingsResponse, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if req.JobStartTime != nil {
		cfg.JobStartTime = *req.JobStartTime
	}
	if req.JobEndTime != nil {
		cfg.JobEndTime = *req.JobEndTime
	}
	if req.GraceMinutes != nil {
		cfg.GraceMinutes = *req.GraceMinutes
	}
	if req.EarlyDutyInMaxMinutes != nil {
		cfg.EarlyDutyInMaxMinutes = *req.EarlyDutyInMaxMinutes
	}
	if req.LateDutyOutMaxMinutes != nil {
		cfg.LateDutyOutMaxMinutes = *req.LateDutyOutMaxMinutes
	}
	if req.MaxBreakMinutesPerDay != nil {
		cfg.MaxBreakMinutesPerDay = *req.MaxBreakMinutesPerDay
	}
	if req.RestDaysPerMonth != nil {
		cfg.RestDaysPerMonth = *req.RestDaysPerMonth
	}
	if req.MaxRestDaysPerDatePerTeam != nil {
		cfg.MaxRestDaysPerDatePerTeam = *req.MaxRestDaysPerDatePerTeam
	}
	if req.AutoAbsentAfterHours != nil {
		cfg.AutoAbsentAfterHours = *req.AutoAbsentAfterHours
	}

	if err := validateSettings(cfg); err != nil {
		return nil, err
	}

	cfg.UpdatedBy = &callerID
	cfg.UpdatedAt = s.tl.Now()
	if err := s.repo.Settings.Update(ctx, cfg); err != nil {
		s.logger.Error("更新系统设置失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("系统设置已更新", zap.String("updated_by", callerID))
	return s.toResponse(cfg), nil
}

// settingRange 整数设置项的取值范围
type settingRange struct {
	name     string
	value    int
	min, max int
}

func validateSettings(cfg *model.SystemSettings) error {
	start, err := policy.ParseClock(cfg.JobStartTime)
	if err != nil {
		return fmt.Errorf("%w: job_start_time must be in HH:mm format", ErrInvalidSettings)
	}
	end, err := policy.ParseClock(cfg.JobEndTime)
	if err != nil {
		return fmt.Errorf("%w: job_end_time must be in HH:mm format", ErrInvalidSettings)
	}
	if start >= end {
		return fmt.Errorf("%w: job_start_time must be before job_end_time", ErrInvalidSettings)
	}

	ranges := []settingRange{
		{"grace_minutes", cfg.GraceMinutes, 0, 30},
		{"early_duty_in_max_minutes", cfg.EarlyDutyInMaxMinutes, 0, 60},
		{"late_duty_out_max_minutes", cfg.LateDutyOutMaxMinutes, 0, 60},
		{"max_break_minutes_per_day", cfg.MaxBreakMinutesPerDay, 30, 120},
		{"rest_days_per_month", cfg.RestDaysPerMonth, 0, 10},
		{"max_rest_days_per_date_per_team", cfg.MaxRestDaysPerDatePerTeam, 1, 10},
		{"auto_absent_after_hours", cfg.AutoAbsentAfterHours, 1, 8},
	}
	for _, r := range ranges {
		if r.value < r.min || r.value > r.max {
			return fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidSettings, r.name, r.min, r.max)
		}
	}
	return nil
}

func (s *settingsService) toResponse(cfg *model.SystemSettings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		JobStartTime:              cfg.JobStartTime,
		JobEndTime:                cfg.JobEndTime,
		GraceMinutes:              cfg.GraceMinutes,
		EarlyDutyInMaxMinutes:     cfg.EarlyDutyInMaxMinutes,
		LateDutyOutMaxMinutes:     cfg.LateDutyOutMaxMinutes,
		MaxBreakMinutesPerDay:     cfg.MaxBreakMinutesPerDay,
		RestDaysPerMonth:          cfg.RestDaysPerMonth,
		MaxRestDaysPerDatePerTeam: cfg.MaxRestDaysPerDatePerTeam,
		AutoAbsentAfterHours:      cfg.AutoAbsentAfterHours,
		UpdatedAt:                 s.tl.format(&cfg.UpdatedAt),
	}
}
