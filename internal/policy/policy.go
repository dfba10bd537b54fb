// Package policy 考勤时间窗口策略：签到/签退的迟到判定、有效窗口与工时计算。
//
// 所有函数都是纯计算：设置快照与当前时刻由调用方显式传入，不做任何 I/O。
package policy

import (
	"errors"
	"fmt"
	"time"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
)

// ErrInvalidClock 时刻格式不是 HH:mm
var ErrInvalidClock = errors.New("time must be in HH:mm format")

// Settings 一次策略计算使用的设置快照
type Settings struct {
	JobStart                  Clock
	JobEnd                    Clock
	GraceMinutes              int
	EarlyDutyInMaxMinutes     int
	LateDutyOutMaxMinutes     int
	MaxBreakMinutesPerDay     int
	RestDaysPerMonth          int
	MaxRestDaysPerDatePerTeam int
	AutoAbsentAfterHours      int
}

// FromModel 由持久化的系统设置构建快照
func FromModel(m *model.SystemSettings) (Settings, error) {
	start, err := ParseClock(m.JobStartTime)
	if err != nil {
		return Settings{}, fmt.Errorf("job start time: %w", err)
	}
	end, err := ParseClock(m.JobEndTime)
	if err != nil {
		return Settings{}, fmt.Errorf("job end time: %w", err)
	}
	return Settings{
		JobStart:                  start,
		JobEnd:                    end,
		GraceMinutes:              m.GraceMinutes,
		EarlyDutyInMaxMinutes:     m.EarlyDutyInMaxMinutes,
		LateDutyOutMaxMinutes:     m.LateDutyOutMaxMinutes,
		MaxBreakMinutesPerDay:     m.MaxBreakMinutesPerDay,
		RestDaysPerMonth:          m.RestDaysPerMonth,
		MaxRestDaysPerDatePerTeam: m.MaxRestDaysPerDatePerTeam,
		AutoAbsentAfterHours:      m.AutoAbsentAfterHours,
	}, nil
}

// Clock 一天中的时刻（自零点起的分钟数）
type Clock int

// ParseClock 解析 HH:mm
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// String 格式化为 HH:mm
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On 返回 day 所在日历日（day 的时区）的该时刻
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, day.Location())
}

// Window 某一日历日的上下班时刻
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowOn 返回 day 所在日历日的上下班时刻
func (s Settings) WindowOn(day time.Time) Window {
	return Window{Start: s.JobStart.On(day), End: s.JobEnd.On(day)}
}

// Lateness 迟到判定结果
type Lateness struct {
	IsLate  bool
	Minutes int
}

// minutesBetween 向下取整的分钟差
func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}

// IsWithinEarlyWindow now >= jobStart - earlyMax
func IsWithinEarlyWindow(now, jobStart time.Time, earlyMaxMinutes int) bool {
	earliest := jobStart.Add(-time.Duration(earlyMaxMinutes) * time.Minute)
	return !now.Before(earliest)
}

// ComputeDutyInLateness 超过宽限期即为迟到，迟到分钟数从上班时刻起算（不是从宽限期结束起算）
func ComputeDutyInLateness(now, jobStart time.Time, graceMinutes int) Lateness {
	boundary := jobStart.Add(time.Duration(graceMinutes) * time.Minute)
	if !now.After(boundary) {
		return Lateness{}
	}
	return Lateness{IsLate: true, Minutes: max(0, minutesBetween(jobStart, now))}
}

// ComputeDutyOutLateness 晚于下班时刻即为迟签退
func ComputeDutyOutLateness(now, jobEnd time.Time) Lateness {
	if !now.After(jobEnd) {
		return Lateness{}
	}
	return Lateness{IsLate: true, Minutes: minutesBetween(jobEnd, now)}
}

// DutyOutDeadline 签退截止时刻 jobEnd + lateMax
func DutyOutDeadline(jobEnd time.Time, lateMaxMinutes int) time.Time {
	return jobEnd.Add(time.Duration(lateMaxMinutes) * time.Minute)
}

// IsBeyondDutyOutDeadline now > jobEnd + lateMax
func IsBeyondDutyOutDeadline(now, jobEnd time.Time, lateMaxMinutes int) bool {
	return now.After(DutyOutDeadline(jobEnd, lateMaxMinutes))
}

// ComputeWorkingMinutes 从上班时刻计到 min(actualOut, jobEnd)，不计早到与加班，下限为 0
func ComputeWorkingMinutes(jobStart, jobEnd, actualOut time.Time) int {
	end := actualOut
	if jobEnd.Before(end) {
		end = jobEnd
	}
	return max(0, minutesBetween(jobStart, end))
}

// FullDayMinutes 整日工时，系统自动签退时使用
func FullDayMinutes(w Window) int {
	return ComputeWorkingMinutes(w.Start, w.End, w.End)
}

// AbsentThreshold 自动缺勤生效时刻 jobStart + autoAbsentAfterHours
func AbsentThreshold(jobStart time.Time, afterHours int) time.Time {
	return jobStart.Add(time.Duration(afterHours) * time.Hour)
}

// WorkingHours 工时（小时，两位小数）
func WorkingHours(workingMinutes int) string {
	return fmt.Sprintf("%.2f", float64(workingMinutes)/60)
}
