package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/policy"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/jwt"
)

// Clock 当前时刻来源，测试中注入固定时刻
type Clock func() time.Time

// TokenBlacklist 注销 Token 的黑名单存储（由 Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Options 服务运行参数
type Options struct {
	Location    *time.Location // 服务器时区，所有 HH:mm 设置与日期串均按此解释
	Clock       Clock
	SweepLocker SweepLocker
	SweepLock   time.Duration // 任务锁 TTL
}

// Service 所有 Service 的聚合入口
type Service struct {
	Settings   SettingsService
	Attendance AttendanceService
	Break      BreakService
	RestDay    RestDayService
	Leader     LeaderService
	Report     ReportService
	Auth       AuthService
	Reconcile  ReconcileService
}

// NewService 创建 Service 聚合
func NewService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenBlacklist,
	opts Options,
	logger *zap.Logger,
) *Service {
	tl := newTimeline(opts.Location, opts.Clock)
	settings := NewSettingsService(repo, tl, logger)
	restDay := NewRestDayService(repo, settings, tl, logger)
	return &Service{
		Settings:   settings,
		Attendance: NewAttendanceService(repo, settings, restDay, tl, logger),
		Break:      NewBreakService(repo, settings, tl, logger),
		RestDay:    restDay,
		Leader:     NewLeaderService(repo, settings, tl, logger),
		Report:     NewReportService(repo, tl, logger),
		Auth:       NewAuthService(repo, jwtMgr, tokens, tl, logger),
		Reconcile:  NewReconcileService(repo, settings, tl, opts.SweepLocker, opts.SweepLock, logger),
	}
}

// timeline 服务共享的服务器时区与时钟
type timeline struct {
	loc *time.Location
	now Clock
}

func newTimeline(loc *time.Location, now Clock) timeline {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return timeline{loc: loc, now: now}
}

// Now 服务器时区的当前时刻
func (t timeline) Now() time.Time { return t.now().In(t.loc) }

// Today 服务器时区的当前日期
func (t timeline) Today() string { return policy.DateOf(t.now(), t.loc) }

// ThisMonth 服务器时区的当前月份
func (t timeline) ThisMonth() string { return policy.MonthOf(t.now(), t.loc) }

// Day 返回日期串当日零点；非法日期串返回 ErrInvalidDate
func (t timeline) Day(date string) (time.Time, error) {
	d, err := policy.ParseDate(date, t.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// format 格式化为 RFC3339（服务器时区）；nil 返回空串
func (t timeline) format(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.In(t.loc).Format(time.RFC3339)
}

// withTx 在事务中执行 fn；聚合未持有数据库连接（mock 仓储）时直接在当前聚合上执行
func withTx(ctx context.Context, repo *repository.Repository, logger *zap.Logger, fn func(txRepo *repository.Repository) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}
