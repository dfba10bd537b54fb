// Package scheduler 以 cron 表达式定时触发对账任务。
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/config"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/service"
)

// jobTimeout 单次任务的最长执行时间
const jobTimeout = 4 * time.Minute

// Runner 按名称执行一次对账任务
type Runner interface {
	Run(ctx context.Context, name string) (*dto.SweepRunResponse, error)
}

// Scheduler cron 调度器
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *zap.Logger
}

// New 创建调度器并注册三个对账任务
func New(cfg *config.SchedulerConfig, loc *time.Location, runner Runner, logger *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		logger: logger,
	}

	jobs := []struct {
		name string
		spec string
	}{
		{service.SweepAutoClose, cfg.AutoCloseSpec},
		{service.SweepMarkAbsent, cfg.MarkAbsentSpec},
		{service.SweepLockMissed, cfg.LockMissedSpec},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, s.job(j.name)); err != nil {
			return nil, fmt.Errorf("注册任务 %s 失败: %w", j.name, err)
		}
		logger.Info("已注册对账任务", zap.String("sweep", j.name), zap.String("spec", j.spec))
	}
	return s, nil
}

// job 任务错误只记日志，不向调度器传播
func (s *Scheduler) job(name string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := s.runner.Run(ctx, name); err != nil {
			s.logger.Error("定时对账任务失败", zap.String("sweep", name), zap.Error(err))
		}
	}
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("等待对账任务结束超时")
	}
}

// Entries 已注册任务数
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// cronLogger 将 cron 内部日志转接到 zap
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
