package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/config"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/jwt"
)

// ── 测试辅助 ──

var testLoc = time.FixedZone("UTC+6", 6*60*60)

const testDate = "2025-06-10"

// at 返回测试时区中 date 当日的 HH:mm 时刻
func at(date, hhmm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hhmm, testLoc)
	if err != nil {
		panic(err)
	}
	return t
}

// mockLocker 内存实现的任务锁
type mockLocker struct {
	held       map[string]string
	acquireErr error
	released   int
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]string)}
}

func (m *mockLocker) AcquireLock(_ context.Context, name, token string, _ time.Duration) (bool, error) {
	if m.acquireErr != nil {
		return false, m.acquireErr
	}
	if _, ok := m.held[name]; ok {
		return false, nil
	}
	m.held[name] = token
	return true, nil
}

func (m *mockLocker) ReleaseLock(_ context.Context, name, token string) error {
	if m.held[name] == token {
		delete(m.held, name)
		m.released++
	}
	return nil
}

// mockBlacklist 内存实现的 Token 黑名单
type mockBlacklist struct {
	tokens map[string]time.Duration
	err    error
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.tokens[jti] = ttl
	return nil
}

var errStorage = errors.New("storage unavailable")

// testEnv 持有全部 mock 仓储与可调的当前时刻
type testEnv struct {
	now time.Time

	settings   *mockSettingsRepo
	users      *mockUserRepo
	teams      *mockTeamRepo
	attendance *mockAttendanceRepo
	breaks     *mockBreakLogRepo
	restDays   *mockRestDayRepo
	actionLogs *mockActionLogRepo
	logins     *mockLoginHistoryRepo
	sweepRuns  *mockSweepRunRepo
	locker     *mockLocker
	tokens     *mockBlacklist

	repo   *repository.Repository
	jwtMgr *jwt.Manager
	svc    *Service
}

// newTestEnv 构建测试环境：
//   - team-a：组长 leader-1，员工 emp-1、emp-2
//   - team-b：组长 leader-2，员工 emp-3
func newTestEnv(now time.Time) *testEnv {
	e := &testEnv{
		now:        now,
		settings:   newMockSettingsRepo(),
		users:      newMockUserRepo(),
		teams:      newMockTeamRepo(),
		attendance: newMockAttendanceRepo(),
		breaks:     newMockBreakLogRepo(),
		actionLogs: newMockActionLogRepo(),
		logins:     newMockLoginHistoryRepo(),
		sweepRuns:  newMockSweepRunRepo(),
		locker:     newMockLocker(),
		tokens:     &mockBlacklist{tokens: make(map[string]time.Duration)},
	}
	e.restDays = newMockRestDayRepo(e.users)
	e.repo = &repository.Repository{
		Settings:     e.settings,
		User:         e.users,
		Team:         e.teams,
		Attendance:   e.attendance,
		BreakLog:     e.breaks,
		RestDay:      e.restDays,
		ActionLog:    e.actionLogs,
		LoginHistory: e.logins,
		SweepRun:     e.sweepRuns,
	}
	e.jwtMgr = jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-at-least-32-bytes!!",
		AccessTokenTTL: time.Hour,
	})

	teamA, teamB := "team-a", "team-b"
	e.teams.Create(context.Background(), &model.Team{TeamID: teamA, Name: "A"})
	e.teams.Create(context.Background(), &model.Team{TeamID: teamB, Name: "B"})
	e.users.add(&model.User{UserID: "leader-1", Name: "Leader One", Email: "leader1@example.com", Role: model.RoleTeamLeader, TeamID: &teamA})
	e.users.add(&model.User{UserID: "leader-2", Name: "Leader Two", Email: "leader2@example.com", Role: model.RoleTeamLeader, TeamID: &teamB})
	e.users.add(&model.User{UserID: "emp-1", Name: "Alice", Email: "alice@example.com", TeamID: &teamA})
	e.users.add(&model.User{UserID: "emp-2", Name: "Bob", Email: "bob@example.com", TeamID: &teamA})
	e.users.add(&model.User{UserID: "emp-3", Name: "Carol", Email: "carol@example.com", TeamID: &teamB})
	e.teams.AddLeader(context.Background(), teamA, "leader-1")
	e.teams.AddLeader(context.Background(), teamB, "leader-2")

	e.svc = NewService(e.repo, e.jwtMgr, e.tokens, Options{
		Location:    testLoc,
		Clock:       func() time.Time { return e.now },
		SweepLocker: e.locker,
		SweepLock:   time.Minute,
	}, zap.NewNop())
	return e
}

// dutyIn 以指定时刻为员工签到
func (e *testEnv) dutyIn(userID, hhmm string) *model.Attendance {
	e.now = at(testDate, hhmm)
	if _, err := e.svc.Attendance.DutyIn(context.Background(), userID, "device-1", false); err != nil {
		panic(err)
	}
	a, _ := e.attendance.GetByUserDate(context.Background(), userID, testDate)
	return a
}

// user 返回存储中的用户
func (e *testEnv) user(userID string) *model.User {
	return e.users.users[userID]
}

// record 返回存储中的考勤记录，不存在返回 nil
func (e *testEnv) record(userID, date string) *model.Attendance {
	return e.attendance.find(userID, date)
}
