package service

import (
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/policy"
)

// ── model → dto 转换 ──

func (t timeline) toAttendanceResponse(a *model.Attendance) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:             a.AttendanceID,
		UserID:         a.UserID,
		Date:           a.Date,
		WorkingMinutes: a.WorkingMinutes,
		WorkingHours:   policy.WorkingHours(a.WorkingMinutes),
		Status:         a.Status,
		IsLocked:       a.IsLocked,
		LockReason:     a.LockReason,
		EditedBy:       a.EditedBy,
		EditReason:     a.EditReason,
		EditedAt:       t.format(a.EditedAt),
	}
	if a.HasDutyIn() {
		resp.DutyIn = &dto.DutyInResponse{
			Time:        t.format(a.DutyIn.Time),
			IsLate:      a.DutyIn.IsLate,
			LateMinutes: a.DutyIn.LateMinutes,
			Device:      a.DutyIn.Device,
			IsOffline:   a.DutyIn.IsOffline,
		}
	}
	if a.HasDutyOut() {
		resp.DutyOut = &dto.DutyOutResponse{
			Time:               t.format(a.DutyOut.Time),
			IsLate:             a.DutyOut.IsLate,
			LateMinutes:        a.DutyOut.LateMinutes,
			Device:             a.DutyOut.Device,
			AutoClosedBySystem: a.DutyOut.AutoClosedBySystem,
			IsOffline:          a.DutyOut.IsOffline,
		}
	}
	return resp
}

func (t timeline) toAttendanceList(list []model.Attendance) []dto.AttendanceResponse {
	result := make([]dto.AttendanceResponse, 0, len(list))
	for i := range list {
		result = append(result, t.toAttendanceResponse(&list[i]))
	}
	return result
}

func (t timeline) toBreakResponse(b *model.BreakLog) dto.BreakResponse {
	return dto.BreakResponse{
		ID:              b.BreakID,
		AttendanceID:    b.AttendanceID,
		Date:            b.Date,
		BreakType:       b.BreakType,
		BreakOut:        t.format(&b.BreakOut),
		BreakIn:         t.format(b.BreakIn),
		DurationMinutes: b.DurationMinutes,
		IsActive:        b.IsActive,
		IsOffline:       b.IsOffline,
	}
}

func (t timeline) toBreakList(list []model.BreakLog) []dto.BreakResponse {
	result := make([]dto.BreakResponse, 0, len(list))
	for i := range list {
		result = append(result, t.toBreakResponse(&list[i]))
	}
	return result
}

func (t timeline) toRestDayResponse(rd *model.RestDay) dto.RestDayResponse {
	resp := dto.RestDayResponse{
		UserID:            rd.UserID,
		Month:             rd.Month,
		SelectedDates:     append([]string{}, rd.SelectedDates...),
		EmergencyOffDates: make([]dto.EmergencyOffResponse, 0, len(rd.EmergencyOffs)),
	}
	for i := range rd.EmergencyOffs {
		off := &rd.EmergencyOffs[i]
		resp.EmergencyOffDates = append(resp.EmergencyOffDates, dto.EmergencyOffResponse{
			Date:       off.Date,
			Reason:     off.Reason,
			ApprovedBy: off.ApprovedBy,
			ApprovedAt: t.format(off.ApprovedAt),
		})
	}
	return resp
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		TeamID:     u.TeamID,
		Status:     u.Status,
		LockReason: u.LockReason,
	}
}
