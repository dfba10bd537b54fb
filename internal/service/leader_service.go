package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/policy"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
)

// ── 组长模块业务错误 ──

var (
	ErrReasonRequired = errors.New("reason is required")
	ErrNotLocked      = errors.New("employee is not locked")
	ErrNoChanges      = errors.New("no changes provided")
	ErrInvalidEdit    = errors.New("invalid attendance edit")
)

// LeaderService 组长业务接口
//
// 组长只能操作自己所带团队（team_leaders）的成员；解锁与修改必须附带原因，并写入操作日志。
type LeaderService interface {
	TeamMembers(ctx context.Context, leaderID string) (*dto.TeamMembersResponse, error)
	TeamAttendance(ctx context.Context, leaderID, date string) (*dto.TeamAttendanceResponse, error)
	UnlockEmployee(ctx context.Context, leaderID, employeeID, reason string) (*dto.LeaderActionResult, error)
	EditAttendance(ctx context.Context, leaderID, attendanceID string, req *dto.EditAttendanceRequest) (*dto.LeaderActionResult, error)
	PendingApprovals(ctx context.Context, leaderID string) (*dto.PendingApprovalsResponse, error)
	ActionLogs(ctx context.Context, leaderID string, limit int) ([]dto.ActionLogResponse, error)
}

type leaderService struct {
	repo     *repository.Repository
	settings SettingsService
	tl       timeline
	logger   *zap.Logger
}

// NewLeaderService 创建 LeaderService 实例
func NewLeaderService(repo *repository.Repository, settings SettingsService, tl timeline, logger *zap.Logger) LeaderService {
	return &leaderService{repo: repo, settings: settings, tl: tl, logger: logger}
}

// ────────────────────── 团队查询 ──────────────────────

func (s *leaderService) TeamMembers(ctx context.Context, leaderID string) (*dto.TeamMembersResponse, error) {
	teamIDs, members, err := ledTeamMembers(ctx, s.repo, s.logger, leaderID)
	if err != nil {
		return nil, err
	}
	resp := &dto.TeamMembersResponse{TeamIDs: teamIDs, Members: make([]dto.UserResponse, 0, len(members))}
	for i := range members {
		resp.Members = append(resp.Members, toUserResponse(&members[i]))
	}
	return resp, nil
}

func (s *leaderService) TeamAttendance(ctx context.Context, leaderID, date string) (*dto.TeamAttendanceResponse, error) {
	if date == "" {
		date = s.tl.Today()
	}
	if _, err := s.tl.Day(date); err != nil {
		return nil, err
	}
	_, members, err := ledTeamMembers(ctx, s.repo, s.logger, leaderID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	records, err := s.repo.Attendance.ListByUsersRange(ctx, ids, date, date)
	if err != nil {
		s.logger.Error("查询团队考勤失败", zap.String("date", date), zap.Error(err))
		return nil, err
	}
	byUser := make(map[string]*model.Attendance, len(records))
	for i := range records {
		byUser[records[i].UserID] = &records[i]
	}

	resp := &dto.TeamAttendanceResponse{Date: date, Entries: make([]dto.TeamAttendanceEntry, 0, len(members))}
	for i := range members {
		entry := dto.TeamAttendanceEntry{Member: toUserResponse(&members[i])}
		if a, ok := byUser[members[i].UserID]; ok {
			r := s.tl.toAttendanceResponse(a)
			entry.Attendance = &r
		}
		resp.Entries = append(resp.Entries, entry)
	}
	return resp, nil
}

func (s *leaderService) PendingApprovals(ctx context.Context, leaderID string) (*dto.PendingApprovalsResponse, error) {
	teamIDs, err := ledTeams(ctx, s.repo, s.logger, leaderID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PendingApprovalsResponse{
		LockedEmployees:      []dto.UserResponse{},
		PendingEmergencyOffs: []dto.PendingEmergencyOff{},
	}
	month := s.tl.ThisMonth()
	for _, teamID := range teamIDs {
		locked, err := s.repo.User.ListLockedByTeam(ctx, teamID)
		if err != nil {
			s.logger.Error("查询锁定成员失败", zap.String("team_id", teamID), zap.Error(err))
			return nil, err
		}
		for i := range locked {
			resp.LockedEmployees = append(resp.LockedEmployees, toUserResponse(&locked[i]))
		}

		schedules, err := s.repo.RestDay.ListByTeamMonth(ctx, teamID, month)
		if err != nil {
			s.logger.Error("查询团队休息日失败", zap.String("team_id", teamID), zap.Error(err))
			return nil, err
		}
		for _, rd := range schedules {
			name := ""
			if rd.User != nil {
				name = rd.User.Name
			}
			for _, off := range rd.EmergencyOffs {
				if off.IsApproved() {
					continue
				}
				resp.PendingEmergencyOffs = append(resp.PendingEmergencyOffs, dto.PendingEmergencyOff{
					EmployeeID:   rd.UserID,
					EmployeeName: name,
					Month:        rd.Month,
					Date:         off.Date,
					Reason:       off.Reason,
				})
			}
		}
	}
	return resp, nil
}

func (s *leaderService) ActionLogs(ctx context.Context, leaderID string, limit int) ([]dto.ActionLogResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	logs, err := s.repo.ActionLog.ListByLeader(ctx, leaderID, limit)
	if err != nil {
		s.logger.Error("查询操作日志失败", zap.String("leader_id", leaderID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.ActionLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		result = append(result, dto.ActionLogResponse{
			ID:           l.LogID,
			TargetUserID: l.TargetUserID,
			Action:       l.Action,
			Details:      l.Details,
			Reason:       l.Reason,
			CreatedAt:    s.tl.format(&l.CreatedAt),
		})
	}
	return result, nil
}

// ────────────────────── UnlockEmployee ──────────────────────

func (s *leaderService) UnlockEmployee(ctx context.Context, leaderID, employeeID, reason string) (*dto.LeaderActionResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	employee, err := getUser(ctx, s.repo, s.logger, employeeID)
	if err != nil {
		return nil, err
	}
	if err := checkTeamLeader(ctx, s.repo, s.logger, leaderID, employee); err != nil {
		return nil, err
	}
	if !employee.IsLocked() {
		return nil, ErrNotLocked
	}

	now := s.tl.Now()
	err = withTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		ok, err := txRepo.User.Unlock(ctx, employeeID, leaderID, now)
		if err != nil {
			s.logger.Error("解锁账号失败", zap.String("employee_id", employeeID), zap.Error(err))
			return err
		}
		if !ok {
			return ErrNotLocked
		}
		return txRepo.ActionLog.Create(ctx, &model.LeaderActionLog{
			LeaderID:     leaderID,
			TargetUserID: employeeID,
			Action:       model.ActionUnlockEmployee,
			Details:      fmt.Sprintf("Unlocked account for %s", employee.Name),
			Reason:       reason,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("账号已解锁", zap.String("employee_id", employeeID), zap.String("leader_id", leaderID))
	employee, err = getUser(ctx, s.repo, s.logger, employeeID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(employee)
	return &dto.LeaderActionResult{Message: "Employee unlocked successfully", Employee: &resp}, nil
}

// ────────────────────── EditAttendance ──────────────────────

func (s *leaderService) EditAttendance(ctx context.Context, leaderID, attendanceID string, req *dto.EditAttendanceRequest) (*dto.LeaderActionResult, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	if req.DutyInTime == nil && req.DutyOutTime == nil && req.Status == nil {
		return nil, ErrNoChanges
	}

	record, err := s.repo.Attendance.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("查询考勤记录失败", zap.String("attendance_id", attendanceID), zap.Error(err))
		return nil, err
	}
	employee, err := getUser(ctx, s.repo, s.logger, record.UserID)
	if err != nil {
		return nil, err
	}
	if err := checkTeamLeader(ctx, s.repo, s.logger, leaderID, employee); err != nil {
		return nil, err
	}

	var changes []string
	if req.DutyInTime != nil {
		t := req.DutyInTime.In(s.tl.loc)
		changes = append(changes, fmt.Sprintf("duty in %s -> %s", orNone(s.tl.format(record.DutyIn.Time)), s.tl.format(&t)))
		record.DutyIn.Time = &t
	}
	if req.DutyOutTime != nil {
		t := req.DutyOutTime.In(s.tl.loc)
		changes = append(changes, fmt.Sprintf("duty out %s -> %s", orNone(s.tl.format(record.DutyOut.Time)), s.tl.format(&t)))
		record.DutyOut.Time = &t
	}
	if req.Status != nil {
		changes = append(changes, fmt.Sprintf("status %s -> %s", record.Status, *req.Status))
		record.Status = *req.Status
	}

	if record.HasDutyOut() {
		if !record.HasDutyIn() {
			return nil, fmt.Errorf("%w: duty out requires a duty in", ErrInvalidEdit)
		}
		if record.DutyOut.Time.Before(*record.DutyIn.Time) {
			return nil, fmt.Errorf("%w: duty out must not be before duty in", ErrInvalidEdit)
		}
	}
	if req.DutyOutTime != nil {
		settings, err := s.settings.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		day, err := s.tl.Day(record.Date)
		if err != nil {
			return nil, err
		}
		window := settings.WindowOn(day)
		record.WorkingMinutes = policy.ComputeWorkingMinutes(window.Start, window.End, *record.DutyOut.Time)
	}

	now := s.tl.Now()
	record.EditedBy = &leaderID
	record.EditReason = &reason
	record.EditedAt = &now
	record.UpdatedBy = &leaderID

	err = withTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Attendance.UpdateWithVersion(ctx, record); err != nil {
			return err
		}
		return txRepo.ActionLog.Create(ctx, &model.LeaderActionLog{
			LeaderID:     leaderID,
			TargetUserID: employee.UserID,
			Action:       model.ActionEditAttendance,
			Details:      fmt.Sprintf("Edited attendance for %s on %s: %s", employee.Name, record.Date, strings.Join(changes, "; ")),
			Reason:       reason,
			CreatedAt:    now,
		})
	})
	if err != nil {
		s.logger.Error("修改考勤失败", zap.String("attendance_id", attendanceID), zap.Error(err))
		return nil, err
	}

	resp := s.tl.toAttendanceResponse(record)
	return &dto.LeaderActionResult{Message: "Attendance updated successfully", Attendance: &resp}, nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// ────────────────────── 共享辅助 ──────────────────────

// getUser 查询用户并将未找到映射为 ErrUserNotFound
func getUser(ctx context.Context, repo *repository.Repository, logger *zap.Logger, userID string) (*model.User, error) {
	user, err := repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// checkTeamLeader 校验 leaderID 是否为员工所在团队的组长
func checkTeamLeader(ctx context.Context, repo *repository.Repository, logger *zap.Logger, leaderID string, employee *model.User) error {
	if employee.TeamID == nil {
		return ErrNotTeamLeader
	}
	ok, err := repo.Team.IsLeader(ctx, *employee.TeamID, leaderID)
	if err != nil {
		logger.Error("查询团队组长失败", zap.String("team_id", *employee.TeamID), zap.Error(err))
		return err
	}
	if !ok {
		return ErrNotTeamLeader
	}
	return nil
}

// ledTeams 组长所带团队
func ledTeams(ctx context.Context, repo *repository.Repository, logger *zap.Logger, leaderID string) ([]string, error) {
	teamIDs, err := repo.Team.ListLedTeamIDs(ctx, leaderID)
	if err != nil {
		logger.Error("查询组长团队失败", zap.String("leader_id", leaderID), zap.Error(err))
		return nil, err
	}
	if len(teamIDs) == 0 {
		return nil, ErrNotLeader
	}
	return teamIDs, nil
}

// ledTeamMembers 组长所带团队及其员工成员
func ledTeamMembers(ctx context.Context, repo *repository.Repository, logger *zap.Logger, leaderID string) ([]string, []model.User, error) {
	teamIDs, err := ledTeams(ctx, repo, logger, leaderID)
	if err != nil {
		return nil, nil, err
	}
	var members []model.User
	for _, teamID := range teamIDs {
		users, err := repo.User.ListByTeam(ctx, teamID)
		if err != nil {
			logger.Error("查询团队成员失败", zap.String("team_id", teamID), zap.Error(err))
			return nil, nil, err
		}
		for _, u := range users {
			if u.Role == model.RoleEmployee {
				members = append(members, u)
			}
		}
	}
	return teamIDs, members, nil
}
