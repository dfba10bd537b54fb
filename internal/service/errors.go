package service

import (
	"errors"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
)

// ── 跨模块通用业务错误 ──

var (
	ErrInvalidDate  = errors.New("date must be a valid YYYY-MM-DD date")
	ErrInvalidMonth = errors.New("month must be a valid YYYY-MM month")
	ErrInvalidRange = errors.New("from must not be after to")
	ErrUserNotFound = errors.New("user not found")
	ErrNoTeam       = errors.New("you must be assigned to a team")
)

var (
	ErrNotTeamLeader = errors.New("employee is not in your team")
	ErrNotLeader     = errors.New("you are not assigned as a leader to any team")
)

// AccountLockedError 携带锁定原因的账号锁定错误，errors.Is 可匹配 ErrAccountLocked
type AccountLockedError struct {
	Reason string
}

func (e *AccountLockedError) Error() string {
	if e.Reason == "" {
		return ErrAccountLocked.Error()
	}
	return ErrAccountLocked.Error() + ": " + e.Reason
}

func (e *AccountLockedError) Unwrap() error { return ErrAccountLocked }

// LockReason 锁定原因，未记录时为空
func (e *AccountLockedError) LockReason() string { return e.Reason }

func lockedError(u *model.User) error {
	return &AccountLockedError{Reason: derefString(u.LockReason)}
}
