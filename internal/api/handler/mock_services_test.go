package handler

import (
	"bytes"
	"context"
	"time"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/policy"
)

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	loginIP     string
	logoutErr   error
	logoutJTI   string
	logoutExp   time.Time
	meResult    *dto.UserResponse
	meErr       error
	sessionErr  error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest, ip string) (*dto.TokenResponse, error) {
	m.loginIP = ip
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _, _, jti string, exp time.Time) error {
	m.logoutJTI, m.logoutExp = jti, exp
	return m.logoutErr
}
func (m *mockAuthService) CheckSession(_ context.Context, _, _ string) error {
	return m.sessionErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	dutyInResult  *dto.DutyInResult
	dutyInErr     error
	dutyOutResult *dto.DutyOutResult
	dutyOutErr    error
	todayResult   *dto.TodayAttendanceResponse
	monthlyResult *dto.MonthlyAttendanceResponse
	monthlyErr    error

	gotDevice  string
	gotOffline bool
	gotMonth   string
}

func (m *mockAttendanceService) DutyIn(_ context.Context, _, deviceID string, isOffline bool) (*dto.DutyInResult, error) {
	m.gotDevice, m.gotOffline = deviceID, isOffline
	return m.dutyInResult, m.dutyInErr
}
func (m *mockAttendanceService) DutyOut(_ context.Context, _, deviceID string, isOffline bool) (*dto.DutyOutResult, error) {
	m.gotDevice, m.gotOffline = deviceID, isOffline
	return m.dutyOutResult, m.dutyOutErr
}
func (m *mockAttendanceService) Today(_ context.Context, _ string) (*dto.TodayAttendanceResponse, error) {
	return m.todayResult, nil
}
func (m *mockAttendanceService) Monthly(_ context.Context, _, month string) (*dto.MonthlyAttendanceResponse, error) {
	m.gotMonth = month
	return m.monthlyResult, m.monthlyErr
}

// ── Mock BreakService ──

type mockBreakService struct {
	startResult *dto.StartBreakResult
	startErr    error
	endResult   *dto.EndBreakResult
	endErr      error
	gotBreakID  string
}

func (m *mockBreakService) StartBreak(_ context.Context, _ string, _ *dto.StartBreakRequest) (*dto.StartBreakResult, error) {
	return m.startResult, m.startErr
}
func (m *mockBreakService) EndBreak(_ context.Context, _, breakID string, _ bool) (*dto.EndBreakResult, error) {
	m.gotBreakID = breakID
	return m.endResult, m.endErr
}
func (m *mockBreakService) TodayBreaks(_ context.Context, _ string) (*dto.BreakSummary, error) {
	return &dto.BreakSummary{}, nil
}
func (m *mockBreakService) DailyTotal(_ context.Context, _, _ string) (int, error) {
	return 0, nil
}

// ── Mock RestDayService ──

type mockRestDayService struct {
	selectErr   error
	approveErr  error
	calendar    []byte
	calendarErr error
}

func (m *mockRestDayService) SelectRestDays(_ context.Context, _ string, _ *dto.SelectRestDaysRequest) (*dto.RestDayResult, error) {
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	return &dto.RestDayResult{Message: "Rest days selected"}, nil
}
func (m *mockRestDayService) RequestEmergencyOff(_ context.Context, _ string, _ *dto.EmergencyOffRequest) (*dto.RestDayResult, error) {
	return &dto.RestDayResult{}, nil
}
func (m *mockRestDayService) ApproveEmergencyOff(_ context.Context, _ string, _ *dto.ApproveEmergencyOffRequest) (*dto.RestDayResult, error) {
	if m.approveErr != nil {
		return nil, m.approveErr
	}
	return &dto.RestDayResult{}, nil
}
func (m *mockRestDayService) GetRestDays(_ context.Context, _, _ string) (*dto.RestDayResponse, error) {
	return &dto.RestDayResponse{}, nil
}
func (m *mockRestDayService) AvailableDates(_ context.Context, _, _ string) (*dto.AvailableDatesResponse, error) {
	return &dto.AvailableDatesResponse{}, nil
}
func (m *mockRestDayService) IsRestDay(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}
func (m *mockRestDayService) ExportCalendar(_ context.Context, _, month string) ([]byte, string, error) {
	return m.calendar, "rest-days-" + month + ".ics", m.calendarErr
}

// ── Mock LeaderService ──

type mockLeaderService struct {
	membersErr error
	unlockErr  error
	editErr    error
	gotLimit   int
}

func (m *mockLeaderService) TeamMembers(_ context.Context, _ string) (*dto.TeamMembersResponse, error) {
	if m.membersErr != nil {
		return nil, m.membersErr
	}
	return &dto.TeamMembersResponse{}, nil
}
func (m *mockLeaderService) TeamAttendance(_ context.Context, _, _ string) (*dto.TeamAttendanceResponse, error) {
	return &dto.TeamAttendanceResponse{}, nil
}
func (m *mockLeaderService) UnlockEmployee(_ context.Context, _, _, _ string) (*dto.LeaderActionResult, error) {
	if m.unlockErr != nil {
		return nil, m.unlockErr
	}
	return &dto.LeaderActionResult{}, nil
}
func (m *mockLeaderService) EditAttendance(_ context.Context, _, _ string, _ *dto.EditAttendanceRequest) (*dto.LeaderActionResult, error) {
	if m.editErr != nil {
		return nil, m.editErr
	}
	return &dto.LeaderActionResult{}, nil
}
func (m *mockLeaderService) PendingApprovals(_ context.Context, _ string) (*dto.PendingApprovalsResponse, error) {
	return &dto.PendingApprovalsResponse{}, nil
}
func (m *mockLeaderService) ActionLogs(_ context.Context, _ string, limit int) ([]dto.ActionLogResponse, error) {
	m.gotLimit = limit
	return []dto.ActionLogResponse{}, nil
}

// ── Mock SettingsService ──

type mockSettingsService struct {
	updateErr error
	gotCaller string
}

func (m *mockSettingsService) Get(_ context.Context) (*dto.SettingsResponse, error) {
	return &dto.SettingsResponse{}, nil
}
func (m *mockSettingsService) Update(_ context.Context, _ *dto.UpdateSettingsRequest, callerID string) (*dto.SettingsResponse, error) {
	m.gotCaller = callerID
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dto.SettingsResponse{}, nil
}
func (m *mockSettingsService) Snapshot(_ context.Context) (policy.Settings, error) {
	return policy.Settings{}, nil
}

// ── Mock ReportService ──

type mockReportService struct {
	rangeErr  error
	dailyErr  error
	exportBuf *bytes.Buffer
	exportErr error
}

func (m *mockReportService) AttendanceReport(_ context.Context, _, _, _ string) (*dto.AttendanceReportResponse, error) {
	if m.rangeErr != nil {
		return nil, m.rangeErr
	}
	return &dto.AttendanceReportResponse{}, nil
}
func (m *mockReportService) MonthlyReport(_ context.Context, _, _ string) (*dto.MonthlyReportResponse, error) {
	return &dto.MonthlyReportResponse{}, nil
}
func (m *mockReportService) DailyReport(_ context.Context, _, _ string) (*dto.DailyReportResponse, error) {
	if m.dailyErr != nil {
		return nil, m.dailyErr
	}
	return &dto.DailyReportResponse{}, nil
}
func (m *mockReportService) ExportTeamMonthly(_ context.Context, _, month string) (*bytes.Buffer, string, error) {
	return m.exportBuf, "team-attendance-" + month + ".xlsx", m.exportErr
}

// ── Mock ReconcileService ──

type mockReconcileService struct {
	runResult *dto.SweepRunResponse
	runErr    error
	runsErr   error
}

func (m *mockReconcileService) AutoClose(_ context.Context, _ time.Time) (int, error)  { return 0, nil }
func (m *mockReconcileService) MarkAbsent(_ context.Context, _ time.Time) (int, error) { return 0, nil }
func (m *mockReconcileService) LockMissedDutyOut(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
func (m *mockReconcileService) Run(_ context.Context, _ string) (*dto.SweepRunResponse, error) {
	return m.runResult, m.runErr
}
func (m *mockReconcileService) RecentRuns(_ context.Context, _ string, _ int) ([]dto.SweepRunResponse, error) {
	if m.runsErr != nil {
		return nil, m.runsErr
	}
	return []dto.SweepRunResponse{}, nil
}
