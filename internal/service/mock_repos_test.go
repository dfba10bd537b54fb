package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	pkgerrors "github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/errors"
)

// 所有 mock 返回副本，条件更新在 mock 内部按存储状态判断，模拟数据库语义

// ── Mock SettingsRepository ──

type mockSettingsRepo struct {
	settings *model.SystemSettings
	getErr   error
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{}
}

func (m *mockSettingsRepo) Get(_ context.Context) (*model.SystemSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.settings
	return &cp, nil
}

func (m *mockSettingsRepo) CreateIfMissing(_ context.Context, s *model.SystemSettings) error {
	if m.settings == nil {
		cp := *s
		m.settings = &cp
	}
	return nil
}

func (m *mockSettingsRepo) Update(_ context.Context, s *model.SystemSettings) error {
	cp := *s
	m.settings = &cp
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) {
	if u.Status == "" {
		u.Status = model.UserStatusActive
	}
	if u.Role == "" {
		u.Role = model.RoleEmployee
	}
	m.users[u.UserID] = u
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.add(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) list(match func(u *model.User) bool) []model.User {
	var result []model.User
	for _, u := range m.users {
		if match(u) {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *mockUserRepo) ListByTeam(_ context.Context, teamID string) ([]model.User, error) {
	return m.list(func(u *model.User) bool { return u.TeamID != nil && *u.TeamID == teamID }), nil
}

func (m *mockUserRepo) ListLockedByTeam(_ context.Context, teamID string) ([]model.User, error) {
	return m.list(func(u *model.User) bool {
		return u.TeamID != nil && *u.TeamID == teamID && u.Status == model.UserStatusLocked
	}), nil
}

func (m *mockUserRepo) ListActiveEmployees(_ context.Context) ([]model.User, error) {
	return m.list(func(u *model.User) bool {
		return u.Role == model.RoleEmployee && u.Status == model.UserStatusActive
	}), nil
}

func (m *mockUserRepo) Lock(_ context.Context, userID, reason string) (bool, error) {
	u, ok := m.users[userID]
	if !ok || u.Status != model.UserStatusActive {
		return false, nil
	}
	u.Status = model.UserStatusLocked
	u.LockReason = &reason
	return true, nil
}

func (m *mockUserRepo) Unlock(_ context.Context, userID, approverID string, at time.Time) (bool, error) {
	u, ok := m.users[userID]
	if !ok || u.Status != model.UserStatusLocked {
		return false, nil
	}
	u.Status = model.UserStatusActive
	u.LockReason = nil
	u.UnlockApprovedBy = &approverID
	u.UnlockApprovedAt = &at
	return true, nil
}

func (m *mockUserRepo) SetDevice(_ context.Context, userID string, deviceID *string) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.DeviceID = deviceID
	return nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams   map[string]*model.Team
	leaders map[string]map[string]bool // teamID -> userID
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{
		teams:   make(map[string]*model.Team),
		leaders: make(map[string]map[string]bool),
	}
}

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	if team.TeamID == "" {
		team.TeamID = "team-" + team.Name
	}
	m.teams[team.TeamID] = team
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	if t, ok := m.teams[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) AddLeader(_ context.Context, teamID, userID string) error {
	if m.leaders[teamID] == nil {
		m.leaders[teamID] = make(map[string]bool)
	}
	m.leaders[teamID][userID] = true
	return nil
}

func (m *mockTeamRepo) IsLeader(_ context.Context, teamID, userID string) (bool, error) {
	return m.leaders[teamID][userID], nil
}

func (m *mockTeamRepo) ListLedTeamIDs(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for teamID, leaders := range m.leaders {
		if leaders[userID] {
			ids = append(ids, teamID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records map[string]*model.Attendance
	seq     int
	// autoCloseErr 指定记录 AutoClose 时返回的错误，模拟中途失败
	autoCloseErr map[string]error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{
		records:      make(map[string]*model.Attendance),
		autoCloseErr: make(map[string]error),
	}
}

func (m *mockAttendanceRepo) find(userID, date string) *model.Attendance {
	for _, a := range m.records {
		if a.UserID == userID && a.Date == date {
			return a
		}
	}
	return nil
}

func (m *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	if m.find(a.UserID, a.Date) != nil {
		return gorm.ErrDuplicatedKey
	}
	if a.AttendanceID == "" {
		m.seq++
		a.AttendanceID = fmt.Sprintf("att-%d", m.seq)
	}
	if a.Version == 0 {
		a.Version = 1
	}
	cp := *a
	m.records[a.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	if a, ok := m.records[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetByUserDate(_ context.Context, userID, date string) (*model.Attendance, error) {
	if a := m.find(userID, date); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) MarkDutyIn(_ context.Context, a *model.Attendance) (bool, error) {
	stored, ok := m.records[a.AttendanceID]
	if !ok || stored.HasDutyIn() {
		return false, nil
	}
	stored.DutyIn = a.DutyIn
	stored.Status = a.Status
	return true, nil
}

func (m *mockAttendanceRepo) MarkDutyOut(_ context.Context, a *model.Attendance) (bool, error) {
	stored, ok := m.records[a.AttendanceID]
	if !ok || !stored.HasDutyIn() || stored.HasDutyOut() {
		return false, nil
	}
	stored.DutyOut = a.DutyOut
	stored.WorkingMinutes = a.WorkingMinutes
	return true, nil
}

func (m *mockAttendanceRepo) LockOpen(_ context.Context, userID, date, reason string) error {
	if a := m.find(userID, date); a != nil && !a.HasDutyOut() {
		a.IsLocked = true
		a.LockReason = &reason
	}
	return nil
}

func (m *mockAttendanceRepo) AutoClose(_ context.Context, id string, at time.Time, workingMinutes int) (bool, error) {
	if err := m.autoCloseErr[id]; err != nil {
		return false, err
	}
	stored, ok := m.records[id]
	if !ok || !stored.IsOpen() {
		return false, nil
	}
	device := model.DeviceSystem
	stored.DutyOut = model.DutyOutMark{Time: &at, Device: &device, AutoClosedBySystem: true}
	stored.WorkingMinutes = workingMinutes
	return true, nil
}

func (m *mockAttendanceRepo) UpsertAbsent(ctx context.Context, userID, date string) (bool, error) {
	if a := m.find(userID, date); a != nil {
		if a.HasDutyIn() || a.Status == model.AttendanceStatusAbsent {
			return false, nil
		}
		a.Status = model.AttendanceStatusAbsent
		a.WorkingMinutes = 0
		return true, nil
	}
	return true, m.Create(ctx, &model.Attendance{UserID: userID, Date: date, Status: model.AttendanceStatusAbsent})
}

func (m *mockAttendanceRepo) UpdateWithVersion(_ context.Context, a *model.Attendance) error {
	stored, ok := m.records[a.AttendanceID]
	if !ok || stored.Version != a.Version {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version++
	cp := *a
	m.records[a.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) ListOpenByDate(_ context.Context, date string) ([]model.Attendance, error) {
	var list []model.Attendance
	for _, a := range m.records {
		if a.Date == date && a.IsOpen() {
			list = append(list, *a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].AttendanceID < list[j].AttendanceID })
	return list, nil
}

func (m *mockAttendanceRepo) ListDutyInUserIDs(_ context.Context, date string) ([]string, error) {
	var ids []string
	for _, a := range m.records {
		if a.Date == date && a.HasDutyIn() {
			ids = append(ids, a.UserID)
		}
	}
	return ids, nil
}

func (m *mockAttendanceRepo) ListByUserRange(_ context.Context, userID, from, to string) ([]model.Attendance, error) {
	var list []model.Attendance
	for _, a := range m.records {
		if a.UserID == userID && a.Date >= from && a.Date <= to {
			list = append(list, *a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date > list[j].Date })
	return list, nil
}

func (m *mockAttendanceRepo) ListByUsersRange(_ context.Context, userIDs []string, from, to string) ([]model.Attendance, error) {
	want := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	var list []model.Attendance
	for _, a := range m.records {
		if want[a.UserID] && a.Date >= from && a.Date <= to {
			list = append(list, *a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	return list, nil
}

// ── Mock BreakLogRepository ──

type mockBreakLogRepo struct {
	breaks map[string]*model.BreakLog
	seq    int
}

func newMockBreakLogRepo() *mockBreakLogRepo {
	return &mockBreakLogRepo{breaks: make(map[string]*model.BreakLog)}
}

func (m *mockBreakLogRepo) Create(_ context.Context, b *model.BreakLog) error {
	if b.IsActive {
		for _, existing := range m.breaks {
			if existing.AttendanceID == b.AttendanceID && existing.IsActive {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if b.BreakID == "" {
		m.seq++
		b.BreakID = fmt.Sprintf("brk-%d", m.seq)
	}
	cp := *b
	m.breaks[b.BreakID] = &cp
	return nil
}

func (m *mockBreakLogRepo) GetByID(_ context.Context, id string) (*model.BreakLog, error) {
	if b, ok := m.breaks[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBreakLogRepo) GetActiveByAttendance(_ context.Context, attendanceID string) (*model.BreakLog, error) {
	for _, b := range m.breaks {
		if b.AttendanceID == attendanceID && b.IsActive {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBreakLogRepo) Close(_ context.Context, b *model.BreakLog) (bool, error) {
	stored, ok := m.breaks[b.BreakID]
	if !ok || !stored.IsActive {
		return false, nil
	}
	stored.BreakIn = b.BreakIn
	stored.DurationMinutes = b.DurationMinutes
	stored.IsOffline = b.IsOffline
	stored.IsActive = false
	return true, nil
}

func (m *mockBreakLogRepo) ListByUserDate(ctx context.Context, userID, date string) ([]model.BreakLog, error) {
	return m.ListByUserRange(ctx, userID, date, date)
}

func (m *mockBreakLogRepo) ListByUserRange(_ context.Context, userID, from, to string) ([]model.BreakLog, error) {
	var list []model.BreakLog
	for _, b := range m.breaks {
		if b.UserID == userID && b.Date >= from && b.Date <= to {
			list = append(list, *b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].BreakOut.After(list[j].BreakOut) })
	return list, nil
}

func (m *mockBreakLogRepo) SumClosedMinutes(_ context.Context, userID, date string) (int, error) {
	total := 0
	for _, b := range m.breaks {
		if b.UserID == userID && b.Date == date && !b.IsActive {
			total += b.DurationMinutes
		}
	}
	return total, nil
}

// ── Mock RestDayRepository ──

type mockRestDayRepo struct {
	schedules map[string]*model.RestDay // userID:month
	users     *mockUserRepo
	seq       int
}

func newMockRestDayRepo(users *mockUserRepo) *mockRestDayRepo {
	return &mockRestDayRepo{schedules: make(map[string]*model.RestDay), users: users}
}

func (m *mockRestDayRepo) copyOf(rd *model.RestDay) *model.RestDay {
	cp := *rd
	cp.SelectedDates = append(model.StringArray{}, rd.SelectedDates...)
	cp.EmergencyOffs = append([]model.EmergencyOff{}, rd.EmergencyOffs...)
	if m.users != nil {
		if u, ok := m.users.users[rd.UserID]; ok {
			uc := *u
			cp.User = &uc
		}
	}
	return &cp
}

func (m *mockRestDayRepo) GetByUserMonth(_ context.Context, userID, month string) (*model.RestDay, error) {
	if rd, ok := m.schedules[userID+":"+month]; ok {
		return m.copyOf(rd), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRestDayRepo) UpsertSelection(_ context.Context, rd *model.RestDay) error {
	key := rd.UserID + ":" + rd.Month
	if stored, ok := m.schedules[key]; ok {
		stored.SelectedDates = append(model.StringArray{}, rd.SelectedDates...)
		stored.TeamID = rd.TeamID
		return nil
	}
	m.seq++
	cp := *rd
	cp.RestDayID = fmt.Sprintf("rd-%d", m.seq)
	cp.SelectedDates = append(model.StringArray{}, rd.SelectedDates...)
	m.schedules[key] = &cp
	return nil
}

func (m *mockRestDayRepo) EnsureForMonth(ctx context.Context, userID, teamID, month string) (*model.RestDay, error) {
	if _, ok := m.schedules[userID+":"+month]; !ok {
		if err := m.UpsertSelection(ctx, &model.RestDay{UserID: userID, TeamID: teamID, Month: month, SelectedDates: model.StringArray{}}); err != nil {
			return nil, err
		}
	}
	return m.GetByUserMonth(ctx, userID, month)
}

func (m *mockRestDayRepo) CountDateInTeam(_ context.Context, teamID, month, date, excludeUserID string) (int64, error) {
	var n int64
	for _, rd := range m.schedules {
		if rd.TeamID == teamID && rd.Month == month && rd.UserID != excludeUserID && rd.SelectedDates.Contains(date) {
			n++
		}
	}
	return n, nil
}

func (m *mockRestDayRepo) ListByTeamMonth(_ context.Context, teamID, month string) ([]model.RestDay, error) {
	var list []model.RestDay
	for _, rd := range m.schedules {
		if rd.TeamID == teamID && rd.Month == month {
			list = append(list, *m.copyOf(rd))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UserID < list[j].UserID })
	return list, nil
}

func (m *mockRestDayRepo) ListRestUserIDs(_ context.Context, month, date string) ([]string, error) {
	var ids []string
	for _, rd := range m.schedules {
		if rd.Month == month && (rd.SelectedDates.Contains(date) || rd.HasEmergencyOff(date)) {
			ids = append(ids, rd.UserID)
		}
	}
	return ids, nil
}

func (m *mockRestDayRepo) byID(id string) *model.RestDay {
	for _, rd := range m.schedules {
		if rd.RestDayID == id {
			return rd
		}
	}
	return nil
}

func (m *mockRestDayRepo) CreateEmergencyOff(_ context.Context, off *model.EmergencyOff) error {
	rd := m.byID(off.RestDayID)
	if rd == nil {
		return gorm.ErrRecordNotFound
	}
	if rd.HasEmergencyOff(off.Date) {
		return gorm.ErrDuplicatedKey
	}
	m.seq++
	off.EmergencyOffID = fmt.Sprintf("eo-%d", m.seq)
	rd.EmergencyOffs = append(rd.EmergencyOffs, *off)
	return nil
}

func (m *mockRestDayRepo) ApproveEmergencyOff(_ context.Context, restDayID, date, approverID string, at time.Time) (bool, error) {
	rd := m.byID(restDayID)
	if rd == nil {
		return false, nil
	}
	for i := range rd.EmergencyOffs {
		off := &rd.EmergencyOffs[i]
		if off.Date == date && !off.IsApproved() {
			off.ApprovedBy = &approverID
			off.ApprovedAt = &at
			return true, nil
		}
	}
	return false, nil
}

// ── Mock ActionLogRepository ──

type mockActionLogRepo struct {
	logs []model.LeaderActionLog
}

func newMockActionLogRepo() *mockActionLogRepo {
	return &mockActionLogRepo{}
}

func (m *mockActionLogRepo) Create(_ context.Context, log *model.LeaderActionLog) error {
	log.LogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockActionLogRepo) ListByLeader(_ context.Context, leaderID string, limit int) ([]model.LeaderActionLog, error) {
	var result []model.LeaderActionLog
	for i := len(m.logs) - 1; i >= 0 && len(result) < limit; i-- {
		if m.logs[i].LeaderID == leaderID {
			result = append(result, m.logs[i])
		}
	}
	return result, nil
}

// ── Mock LoginHistoryRepository ──

type mockLoginHistoryRepo struct {
	entries []model.LoginHistory
}

func newMockLoginHistoryRepo() *mockLoginHistoryRepo {
	return &mockLoginHistoryRepo{}
}

func (m *mockLoginHistoryRepo) Create(_ context.Context, h *model.LoginHistory) error {
	h.LoginHistoryID = fmt.Sprintf("lh-%d", len(m.entries)+1)
	m.entries = append(m.entries, *h)
	return nil
}

func (m *mockLoginHistoryRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.LoginHistory, error) {
	var result []model.LoginHistory
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if m.entries[i].UserID == userID {
			result = append(result, m.entries[i])
		}
	}
	return result, nil
}

// ── Mock SweepRunRepository ──

type mockSweepRunRepo struct {
	runs []*model.SweepRun
}

func newMockSweepRunRepo() *mockSweepRunRepo {
	return &mockSweepRunRepo{}
}

func (m *mockSweepRunRepo) Create(_ context.Context, run *model.SweepRun) error {
	run.SweepRunID = fmt.Sprintf("run-%d", len(m.runs)+1)
	cp := *run
	m.runs = append(m.runs, &cp)
	return nil
}

func (m *mockSweepRunRepo) Update(_ context.Context, run *model.SweepRun) error {
	for i, r := range m.runs {
		if r.SweepRunID == run.SweepRunID {
			cp := *run
			m.runs[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockSweepRunRepo) ListRecent(_ context.Context, name string, limit int) ([]model.SweepRun, error) {
	var result []model.SweepRun
	for i := len(m.runs) - 1; i >= 0 && len(result) < limit; i-- {
		if name == "" || m.runs[i].Name == name {
			result = append(result, *m.runs[i])
		}
	}
	return result, nil
}
