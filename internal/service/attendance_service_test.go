package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
)

// ── DutyIn 测试 ──

func TestAttendanceService_DutyIn_OnTime(t *testing.T) {
	env := newTestEnv(at(testDate, "08:50"))

	result, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if err != nil {
		t.Fatalf("DutyIn 应成功: %v", err)
	}
	if result.Attendance.DutyIn == nil || result.Attendance.DutyIn.IsLate {
		t.Error("08:50 签到不应迟到")
	}
	if result.Attendance.Status != model.AttendanceStatusPresent {
		t.Errorf("期望Status=present，实际=%s", result.Attendance.Status)
	}
	if result.Message != "Duty in marked successfully." {
		t.Errorf("消息不符: %s", result.Message)
	}
}

func TestAttendanceService_DutyIn_LateMinutesFromJobStart(t *testing.T) {
	env := newTestEnv(at(testDate, "09:12"))

	result, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if err != nil {
		t.Fatalf("DutyIn 应成功: %v", err)
	}
	if !result.Attendance.DutyIn.IsLate {
		t.Fatal("09:12 签到应判定迟到")
	}
	if result.Attendance.DutyIn.LateMinutes != 12 {
		t.Errorf("期望LateMinutes=12，实际=%d", result.Attendance.DutyIn.LateMinutes)
	}
	if !strings.Contains(result.Message, "12 minutes late") {
		t.Errorf("消息应包含迟到分钟数: %s", result.Message)
	}
}

func TestAttendanceService_DutyIn_GraceBoundary(t *testing.T) {
	env := newTestEnv(at(testDate, "09:10"))

	result, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if err != nil {
		t.Fatalf("DutyIn 应成功: %v", err)
	}
	if result.Attendance.DutyIn.IsLate {
		t.Error("宽限期末刻签到不应迟到")
	}
}

func TestAttendanceService_DutyIn_EarlyWindow(t *testing.T) {
	env := newTestEnv(at(testDate, "08:29"))

	_, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if !errors.Is(err, ErrTooEarly) {
		t.Fatalf("期望ErrTooEarly，实际=%v", err)
	}
	if env.record("emp-1", testDate) != nil {
		t.Error("过早签到不应创建记录")
	}

	env.now = at(testDate, "08:30")
	if _, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false); err != nil {
		t.Fatalf("窗口起点签到应成功: %v", err)
	}
}

func TestAttendanceService_DutyIn_AlreadyMarked(t *testing.T) {
	env := newTestEnv(at(testDate, "08:55"))
	env.dutyIn("emp-1", "08:55")

	env.now = at(testDate, "09:01")
	_, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if !errors.Is(err, ErrAlreadyMarked) {
		t.Fatalf("期望ErrAlreadyMarked，实际=%v", err)
	}
	if got := env.record("emp-1", testDate).DutyIn.Time; !got.Equal(at(testDate, "08:55")) {
		t.Errorf("首次签到时刻不应被覆盖，实际=%v", got)
	}
}

func TestAttendanceService_DutyIn_RestDayConflict(t *testing.T) {
	env := newTestEnv(at(testDate, "08:55"))
	env.restDays.UpsertSelection(context.Background(), &model.RestDay{
		UserID: "emp-1", TeamID: "team-a", Month: "2025-06", SelectedDates: model.StringArray{testDate},
	})

	_, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if !errors.Is(err, ErrRestDayConflict) {
		t.Fatalf("期望ErrRestDayConflict，实际=%v", err)
	}
}

func TestAttendanceService_DutyIn_PendingEmergencyOffBlocks(t *testing.T) {
	env := newTestEnv(at(testDate, "08:55"))
	_, err := env.svc.RestDay.RequestEmergencyOff(context.Background(), "emp-1", &dto.EmergencyOffRequest{
		Date: testDate, Reason: "family",
	})
	if err != nil {
		t.Fatalf("申请紧急休假应成功: %v", err)
	}

	_, err = env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if !errors.Is(err, ErrRestDayConflict) {
		t.Fatalf("未批准的紧急休假也应阻止签到，实际=%v", err)
	}
}

func TestAttendanceService_DutyIn_Locked(t *testing.T) {
	env := newTestEnv(at(testDate, "08:55"))
	env.users.Lock(context.Background(), "emp-1", model.LockReasonMissedDutyOut)

	_, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("期望ErrAccountLocked，实际=%v", err)
	}
}

func TestAttendanceService_DutyIn_OverAbsentRecord(t *testing.T) {
	env := newTestEnv(at(testDate, "12:30"))
	env.attendance.UpsertAbsent(context.Background(), "emp-1", testDate)

	result, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", true)
	if err != nil {
		t.Fatalf("缺勤记录上签到应成功: %v", err)
	}
	if result.Attendance.Status != model.AttendanceStatusPresent {
		t.Errorf("期望Status=present，实际=%s", result.Attendance.Status)
	}
	if !result.Attendance.DutyIn.IsOffline {
		t.Error("应记录离线标记")
	}
	if len(env.attendance.records) != 1 {
		t.Errorf("期望仍只有1条记录，实际=%d", len(env.attendance.records))
	}
}

func TestAttendanceService_DutyIn_ReadsFreshSettings(t *testing.T) {
	env := newTestEnv(at(testDate, "09:20"))
	start := "09:30"
	if _, err := env.svc.Settings.Update(context.Background(), &dto.UpdateSettingsRequest{JobStartTime: &start}, "admin-1"); err != nil {
		t.Fatalf("更新设置应成功: %v", err)
	}

	result, err := env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if err != nil {
		t.Fatalf("DutyIn 应成功: %v", err)
	}
	if result.Attendance.DutyIn.IsLate {
		t.Error("上班时刻调整为09:30后，09:20签到不应迟到")
	}
}

// ── DutyOut 测试 ──

func TestAttendanceService_DutyOut_NoDutyIn(t *testing.T) {
	env := newTestEnv(at(testDate, "17:00"))

	_, err := env.svc.Attendance.DutyOut(context.Background(), "emp-1", "device-1", false)
	if !errors.Is(err, ErrNoDutyIn) {
		t.Fatalf("期望ErrNoDutyIn，实际=%v", err)
	}
}

func TestAttendanceService_DutyOut_WorkingMinutes(t *testing.T) {
	tests := []struct {
		name        string
		out         string
		wantMinutes int
		wantHours   string
		wantLate    int
	}{
		{"正点签退", "17:00", 480, "8.00", 0},
		{"早退", "16:00", 420, "7.00", 0},
		{"迟签退不计加班", "17:20", 480, "8.00", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(at(testDate, "08:45"))
			env.dutyIn("emp-1", "08:45")

			env.now = at(testDate, tt.out)
			result, err := env.svc.Attendance.DutyOut(context.Background(), "emp-1", "device-1", false)
			if err != nil {
				t.Fatalf("DutyOut 应成功: %v", err)
			}
			if result.Attendance.WorkingMinutes != tt.wantMinutes {
				t.Errorf("期望WorkingMinutes=%d，实际=%d", tt.wantMinutes, result.Attendance.WorkingMinutes)
			}
			if result.WorkingHours != tt.wantHours {
				t.Errorf("期望WorkingHours=%s，实际=%s", tt.wantHours, result.WorkingHours)
			}
			if result.Attendance.DutyOut.LateMinutes != tt.wantLate {
				t.Errorf("期望LateMinutes=%d，实际=%d", tt.wantLate, result.Attendance.DutyOut.LateMinutes)
			}
		})
	}
}

func TestAttendanceService_DutyOut_AtDeadline(t *testing.T) {
	env := newTestEnv(at(testDate, "09:00"))
	env.dutyIn("emp-1", "09:00")

	env.now = at(testDate, "17:30")
	if _, err := env.svc.Attendance.DutyOut(context.Background(), "emp-1", "device-1", false); err != nil {
		t.Fatalf("截止时刻签退应成功: %v", err)
	}
	if env.user("emp-1").IsLocked() {
		t.Error("截止时刻签退不应锁定账号")
	}
}

func TestAttendanceService_DutyOut_DeadlinePassedLocks(t *testing.T) {
	env := newTestEnv(at(testDate, "09:00"))
	env.dutyIn("emp-1", "09:00")

	env.now = at(testDate, "17:31")
	_, err := env.svc.Attendance.DutyOut(context.Background(), "emp-1", "device-1", false)
	if !errors.Is(err, ErrDeadlinePassedLocked) {
		t.Fatalf("期望ErrDeadlinePassedLocked，实际=%v", err)
	}

	u := env.user("emp-1")
	if !u.IsLocked() {
		t.Fatal("超过截止时刻后账号应被锁定")
	}
	if u.LockReason == nil || *u.LockReason != model.LockReasonMissedDutyOut {
		t.Errorf("锁定原因不符: %v", u.LockReason)
	}
	rec := env.record("emp-1", testDate)
	if !rec.IsLocked {
		t.Error("考勤记录应标记锁定")
	}
	if rec.HasDutyOut() {
		t.Error("锁定不应写入签退")
	}

	// 锁定后再次签到、签退均被拒绝
	_, err = env.svc.Attendance.DutyIn(context.Background(), "emp-1", "device-1", false)
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("锁定后签到期望ErrAccountLocked，实际=%v", err)
	}
}

func TestAttendanceService_DutyOut_AlreadyMarked(t *testing.T) {
	env := newTestEnv(at(testDate, "09:00"))
	env.dutyIn("emp-1", "09:00")

	env.now = at(testDate, "17:00")
	if _, err := env.svc.Attendance.DutyOut(context.Background(), "emp-1", "device-1", false); err != nil {
		t.Fatalf("首次签退应成功: %v", err)
	}
	env.now = at(testDate, "17:05")
	_, err := env.svc.Attendance.DutyOut(context.Background(), "emp-1", "device-1", false)
	if !errors.Is(err, ErrAlreadyMarked) {
		t.Fatalf("期望ErrAlreadyMarked，实际=%v", err)
	}
	if got := env.record("emp-1", testDate).WorkingMinutes; got != 480 {
		t.Errorf("重复签退不应改变工时，实际=%d", got)
	}
}

// ── 查询测试 ──

func TestAttendanceService_Today(t *testing.T) {
	env := newTestEnv(at(testDate, "08:50"))

	empty, err := env.svc.Attendance.Today(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("Today 应成功: %v", err)
	}
	if empty.Attendance != nil {
		t.Error("未签到时不应返回记录")
	}
	if empty.Breaks.MaxMinutes != 60 || empty.Breaks.RemainingMinutes != 60 {
		t.Errorf("休息汇总不符: %+v", empty.Breaks)
	}

	env.dutyIn("emp-1", "08:50")
	today, err := env.svc.Attendance.Today(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("Today 应成功: %v", err)
	}
	if today.Attendance == nil || today.Date != testDate {
		t.Errorf("应返回当日记录: %+v", today)
	}
}

func TestAttendanceService_Monthly(t *testing.T) {
	env := newTestEnv(at(testDate, "08:50"))
	env.attendance.Create(context.Background(), &model.Attendance{UserID: "emp-1", Date: "2025-06-02", Status: model.AttendanceStatusAbsent})
	env.attendance.Create(context.Background(), &model.Attendance{UserID: "emp-1", Date: "2025-05-30", Status: model.AttendanceStatusAbsent})
	env.dutyIn("emp-1", "08:50")

	result, err := env.svc.Attendance.Monthly(context.Background(), "emp-1", "2025-06")
	if err != nil {
		t.Fatalf("Monthly 应成功: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("期望2条记录，实际=%d", len(result.Records))
	}
	if result.Records[0].Date != testDate {
		t.Errorf("应按日期倒序，首条=%s", result.Records[0].Date)
	}

	if _, err := env.svc.Attendance.Monthly(context.Background(), "emp-1", "2025-13"); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("期望ErrInvalidMonth，实际=%v", err)
	}
}
