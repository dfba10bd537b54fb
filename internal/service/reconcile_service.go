package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/policy"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
)

// 对账任务名称
const (
	SweepAutoClose  = "auto_close"
	SweepMarkAbsent = "mark_absent"
	SweepLockMissed = "lock_missed_duty_out"
)

// SweepNames 所有对账任务
var SweepNames = []string{SweepAutoClose, SweepMarkAbsent, SweepLockMissed}

// ── 对账模块业务错误 ──

var (
	ErrUnknownSweep = errors.New("unknown sweep")
)

// SweepLocker 跨进程的任务互斥锁（由 Redis 实现）
type SweepLocker interface {
	AcquireLock(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// ReconcileService 定时对账业务接口
//
// 三个任务相互独立且幂等：选择谓词（未签退、未签到）把已被其他请求推进的记录排除在外，
// 中途失败时已提交的修改保留，其余记录留给下一次调度。
// 锁定任务不会关闭考勤记录，自动签退任务也不检查锁定状态，两者各自运行。
type ReconcileService interface {
	// AutoClose 关闭当日所有未签退记录，按整日计工时
	AutoClose(ctx context.Context, now time.Time) (int, error)
	// MarkAbsent 上班后 autoAbsentAfterHours 小时起，为未签到且非休息日的在职员工写入缺勤
	MarkAbsent(ctx context.Context, now time.Time) (int, error)
	// LockMissedDutyOut 签退截止后，锁定仍未签退的员工账号
	LockMissedDutyOut(ctx context.Context, now time.Time) (int, error)
	// Run 按名称执行一次任务并记录 SweepRun；其他进程持有锁时记录为 skipped
	Run(ctx context.Context, name string) (*dto.SweepRunResponse, error)
	RecentRuns(ctx context.Context, name string, limit int) ([]dto.SweepRunResponse, error)
}

type reconcileService struct {
	repo     *repository.Repository
	settings SettingsService
	tl       timeline
	locker   SweepLocker
	lockTTL  time.Duration
	logger   *zap.Logger
}

// NewReconcileService 创建 ReconcileService 实例；locker 为 nil 时不做跨进程互斥
func NewReconcileService(
	repo *repository.Repository,
	settings SettingsService,
	tl timeline,
	locker SweepLocker,
	lockTTL time.Duration,
	logger *zap.Logger,
) ReconcileService {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &reconcileService{
		repo:     repo,
		settings: settings,
		tl:       tl,
		locker:   locker,
		lockTTL:  lockTTL,
		logger:   logger,
	}
}

// ────────────────────── AutoClose ──────────────────────

func (s *reconcileService) AutoClose(ctx context.Context, now time.Time) (int, error) {
	now = now.In(s.tl.loc)
	date := policy.DateOf(now, s.tl.loc)

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	fullDay := policy.FullDayMinutes(settings.WindowOn(now))

	open, err := s.repo.Attendance.ListOpenByDate(ctx, date)
	if err != nil {
		s.logger.Error("查询未签退记录失败", zap.String("date", date), zap.Error(err))
		return 0, err
	}

	closed := 0
	for _, a := range open {
		ok, err := s.repo.Attendance.AutoClose(ctx, a.AttendanceID, now, fullDay)
		if err != nil {
			s.logger.Error("自动签退失败", zap.String("attendance_id", a.AttendanceID), zap.Error(err))
			return closed, err
		}
		if ok {
			closed++
		}
	}
	s.logger.Info("自动签退完成", zap.String("date", date), zap.Int("open", len(open)), zap.Int("closed", closed))
	return closed, nil
}

// ────────────────────── MarkAbsent ──────────────────────

func (s *reconcileService) MarkAbsent(ctx context.Context, now time.Time) (int, error) {
	now = now.In(s.tl.loc)
	date := policy.DateOf(now, s.tl.loc)
	month := policy.MonthOf(now, s.tl.loc)

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	threshold := policy.AbsentThreshold(settings.WindowOn(now).Start, settings.AutoAbsentAfterHours)
	if now.Before(threshold) {
		return 0, nil
	}

	employees, err := s.repo.User.ListActiveEmployees(ctx)
	if err != nil {
		s.logger.Error("查询在职员工失败", zap.Error(err))
		return 0, err
	}
	restIDs, err := s.repo.RestDay.ListRestUserIDs(ctx, month, date)
	if err != nil {
		s.logger.Error("查询休息日员工失败", zap.String("date", date), zap.Error(err))
		return 0, err
	}
	presentIDs, err := s.repo.Attendance.ListDutyInUserIDs(ctx, date)
	if err != nil {
		s.logger.Error("查询已签到员工失败", zap.String("date", date), zap.Error(err))
		return 0, err
	}
	skip := make(map[string]bool, len(restIDs)+len(presentIDs))
	for _, id := range restIDs {
		skip[id] = true
	}
	for _, id := range presentIDs {
		skip[id] = true
	}

	marked := 0
	for _, u := range employees {
		if skip[u.UserID] {
			continue
		}
		ok, err := s.repo.Attendance.UpsertAbsent(ctx, u.UserID, date)
		if err != nil {
			s.logger.Error("标记缺勤失败", zap.String("user_id", u.UserID), zap.Error(err))
			return marked, err
		}
		if ok {
			marked++
		}
	}
	s.logger.Info("缺勤标记完成", zap.String("date", date), zap.Int("marked", marked))
	return marked, nil
}

// ────────────────────── LockMissedDutyOut ──────────────────────

func (s *reconcileService) LockMissedDutyOut(ctx context.Context, now time.Time) (int, error) {
	now = now.In(s.tl.loc)
	date := policy.DateOf(now, s.tl.loc)

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	deadline := policy.DutyOutDeadline(settings.WindowOn(now).End, settings.LateDutyOutMaxMinutes)
	if now.Before(deadline) {
		return 0, nil
	}

	open, err := s.repo.Attendance.ListOpenByDate(ctx, date)
	if err != nil {
		s.logger.Error("查询未签退记录失败", zap.String("date", date), zap.Error(err))
		return 0, err
	}

	locked := 0
	for _, a := range open {
		changed, err := s.repo.User.Lock(ctx, a.UserID, model.LockReasonMissedDutyOut)
		if err != nil {
			s.logger.Error("锁定账号失败", zap.String("user_id", a.UserID), zap.Error(err))
			return locked, err
		}
		if err := s.repo.Attendance.LockOpen(ctx, a.UserID, date, model.LockReasonMissedDutyOut); err != nil {
			s.logger.Error("标记考勤锁定失败", zap.String("user_id", a.UserID), zap.Error(err))
			return locked, err
		}
		if changed {
			locked++
		}
	}
	s.logger.Info("签退超时锁定完成", zap.String("date", date), zap.Int("open", len(open)), zap.Int("locked", locked))
	return locked, nil
}

// ────────────────────── Run ──────────────────────

func (s *reconcileService) sweep(name string) (func(context.Context, time.Time) (int, error), bool) {
	switch name {
	case SweepAutoClose:
		return s.AutoClose, true
	case SweepMarkAbsent:
		return s.MarkAbsent, true
	case SweepLockMissed:
		return s.LockMissedDutyOut, true
	}
	return nil, false
}

func (s *reconcileService) Run(ctx context.Context, name string) (*dto.SweepRunResponse, error) {
	fn, ok := s.sweep(name)
	if !ok {
		return nil, ErrUnknownSweep
	}

	start := s.tl.Now()
	run := &model.SweepRun{
		Name:      name,
		RunDate:   policy.DateOf(start, s.tl.loc),
		Status:    model.SweepStatusRunning,
		StartedAt: start,
	}

	if s.locker != nil {
		token := uuid.NewString()
		acquired, err := s.locker.AcquireLock(ctx, name, token, s.lockTTL)
		if err != nil {
			// Redis 不可用时继续执行：任务本身幂等
			s.logger.Warn("获取任务锁失败，无锁执行", zap.String("sweep", name), zap.Error(err))
		} else if !acquired {
			run.Status = model.SweepStatusSkipped
			run.FinishedAt = &start
			s.saveRun(ctx, run, true)
			s.logger.Info("任务正在其他进程执行，跳过", zap.String("sweep", name))
			return s.toRunResponse(run), nil
		} else {
			defer func() {
				if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), name, token); err != nil {
					s.logger.Warn("释放任务锁失败", zap.String("sweep", name), zap.Error(err))
				}
			}()
		}
	}

	s.saveRun(ctx, run, true)
	s.logger.Info("对账任务开始", zap.String("sweep", name))

	affected, err := fn(ctx, start)
	finished := s.tl.Now()
	run.Affected = affected
	run.FinishedAt = &finished
	if err != nil {
		msg := err.Error()
		run.Status = model.SweepStatusFailed
		run.Error = &msg
		s.logger.Error("对账任务失败", zap.String("sweep", name), zap.Int("affected", affected), zap.Error(err))
	} else {
		run.Status = model.SweepStatusCompleted
		s.logger.Info("对账任务完成", zap.String("sweep", name), zap.Int("affected", affected),
			zap.Duration("elapsed", finished.Sub(start)))
	}
	s.saveRun(ctx, run, false)
	return s.toRunResponse(run), err
}

// saveRun 运行记录写入失败只记日志，不影响任务本身
func (s *reconcileService) saveRun(ctx context.Context, run *model.SweepRun, create bool) {
	var err error
	if create {
		err = s.repo.SweepRun.Create(ctx, run)
	} else {
		err = s.repo.SweepRun.Update(ctx, run)
	}
	if err != nil {
		s.logger.Error("写入任务运行记录失败", zap.String("sweep", run.Name), zap.Error(err))
	}
}

func (s *reconcileService) RecentRuns(ctx context.Context, name string, limit int) ([]dto.SweepRunResponse, error) {
	if name != "" {
		if _, ok := s.sweep(name); !ok {
			return nil, ErrUnknownSweep
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := s.repo.SweepRun.ListRecent(ctx, name, limit)
	if err != nil {
		s.logger.Error("查询任务运行记录失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SweepRunResponse, 0, len(runs))
	for i := range runs {
		result = append(result, *s.toRunResponse(&runs[i]))
	}
	return result, nil
}

func (s *reconcileService) toRunResponse(run *model.SweepRun) *dto.SweepRunResponse {
	return &dto.SweepRunResponse{
		ID:         run.SweepRunID,
		Name:       run.Name,
		RunDate:    run.RunDate,
		Status:     run.Status,
		Affected:   run.Affected,
		Error:      run.Error,
		StartedAt:  s.tl.format(&run.StartedAt),
		FinishedAt: s.tl.format(run.FinishedAt),
	}
}
