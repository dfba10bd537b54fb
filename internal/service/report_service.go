package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/policy"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("failed to generate export file")
)

// ReportService 报表业务接口
type ReportService interface {
	AttendanceReport(ctx context.Context, userID, from, to string) (*dto.AttendanceReportResponse, error)
	MonthlyReport(ctx context.Context, userID, month string) (*dto.MonthlyReportResponse, error)
	DailyReport(ctx context.Context, userID, date string) (*dto.DailyReportResponse, error)
	// ExportTeamMonthly 导出组长所带团队的月度考勤 Excel，返回内容与建议文件名
	ExportTeamMonthly(ctx context.Context, leaderID, month string) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo   *repository.Repository
	tl     timeline
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, tl timeline, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, tl: tl, logger: logger}
}

// ────────────────────── AttendanceReport ──────────────────────

func (s *reportService) AttendanceReport(ctx context.Context, userID, from, to string) (*dto.AttendanceReportResponse, error) {
	if _, err := s.tl.Day(from); err != nil {
		return nil, err
	}
	if _, err := s.tl.Day(to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, ErrInvalidRange
	}

	records, err := s.repo.Attendance.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("查询考勤报表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.AttendanceReportResponse{
		From:    from,
		To:      to,
		Records: s.tl.toAttendanceList(records),
		Stats:   attendanceStats(records),
	}, nil
}

// attendanceStats 平均工时按出勤天数计算
func attendanceStats(records []model.Attendance) dto.AttendanceStats {
	stats := dto.AttendanceStats{TotalDays: len(records), AverageWorkingHours: "0.00"}
	for _, a := range records {
		switch a.Status {
		case model.AttendanceStatusPresent:
			stats.PresentDays++
		case model.AttendanceStatusAbsent:
			stats.AbsentDays++
		}
		if a.DutyIn.IsLate {
			stats.LateDays++
		}
		stats.TotalWorkingMinutes += a.WorkingMinutes
		stats.TotalLateMinutes += a.DutyIn.LateMinutes
	}
	if stats.PresentDays > 0 {
		stats.AverageWorkingHours = fmt.Sprintf("%.2f", float64(stats.TotalWorkingMinutes)/float64(stats.PresentDays)/60)
	}
	return stats
}

// ────────────────────── MonthlyReport ──────────────────────

func (s *reportService) MonthlyReport(ctx context.Context, userID, month string) (*dto.MonthlyReportResponse, error) {
	from, to, err := policy.MonthRange(month)
	if err != nil {
		return nil, ErrInvalidMonth
	}

	records, err := s.repo.Attendance.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("查询月度考勤失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	breaks, err := s.repo.BreakLog.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("查询月度休息失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := &dto.MonthlyReportResponse{
		Month:           month,
		Records:         s.tl.toAttendanceList(records),
		AttendanceStats: attendanceStats(records),
		BreakStats:      breakStats(breaks),
	}

	rd, err := s.repo.RestDay.GetByUserMonth(ctx, userID, month)
	switch {
	case err == nil:
		resp.RestDayStats.SelectedDays = len(rd.SelectedDates)
		for _, off := range rd.EmergencyOffs {
			if off.IsApproved() {
				resp.RestDayStats.ApprovedEmergency++
			} else {
				resp.RestDayStats.PendingEmergency++
			}
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询休息日失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func breakStats(breaks []model.BreakLog) dto.BreakStats {
	stats := dto.BreakStats{
		Count:          len(breaks),
		AverageMinutes: "0.00",
		ByType:         map[string]dto.BreakTypeStats{},
	}
	for _, b := range breaks {
		stats.TotalMinutes += b.DurationMinutes
		t := stats.ByType[b.BreakType]
		t.Count++
		t.TotalMinutes += b.DurationMinutes
		stats.ByType[b.BreakType] = t
	}
	if stats.Count > 0 {
		stats.AverageMinutes = fmt.Sprintf("%.2f", float64(stats.TotalMinutes)/float64(stats.Count))
	}
	return stats
}

// ────────────────────── DailyReport ──────────────────────

func (s *reportService) DailyReport(ctx context.Context, userID, date string) (*dto.DailyReportResponse, error) {
	if _, err := s.tl.Day(date); err != nil {
		return nil, err
	}
	record, err := s.repo.Attendance.GetByUserDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("查询考勤记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	breaks, err := s.repo.BreakLog.ListByUserDate(ctx, userID, date)
	if err != nil {
		s.logger.Error("查询休息记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	a := s.tl.toAttendanceResponse(record)
	return &dto.DailyReportResponse{
		Date:       date,
		Attendance: &a,
		Breaks:     s.tl.toBreakList(breaks),
	}, nil
}

// ═══════════════════════════════════════════════════════════
// ExportTeamMonthly — 导出团队月度考勤为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Attendance"：每个成员每天一行，无记录的日期以 "-" 填充
//   - Sheet "Summary"：每个成员一行月度统计

func (s *reportService) ExportTeamMonthly(ctx context.Context, leaderID, month string) (*bytes.Buffer, string, error) {
	days, err := policy.DatesInMonth(month)
	if err != nil {
		return nil, "", ErrInvalidMonth
	}
	_, members, err := ledTeamMembers(ctx, s.repo, s.logger, leaderID)
	if err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	records, err := s.repo.Attendance.ListByUsersRange(ctx, ids, days[0], days[len(days)-1])
	if err != nil {
		s.logger.Error("查询团队月度考勤失败", zap.String("month", month), zap.Error(err))
		return nil, "", err
	}
	index := make(map[string]*model.Attendance, len(records)) // "userID:date"
	byUser := make(map[string][]model.Attendance, len(members))
	for i := range records {
		a := &records[i]
		index[a.UserID+":"+a.Date] = a
		byUser[a.UserID] = append(byUser[a.UserID], *a)
	}

	f := excelize.NewFile()
	defer f.Close()

	const detailSheet, summarySheet = "Attendance", "Summary"
	idx, _ := f.NewSheet(detailSheet)
	f.NewSheet(summarySheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	detailHeader := []string{"Employee", "Email", "Date", "Status", "Duty In", "Duty Out", "Late (min)", "Working Hours", "Auto Closed", "Edited"}
	writeHeader(f, detailSheet, detailHeader, headerStyle)
	f.SetColWidth(detailSheet, "A", "B", 24)
	f.SetColWidth(detailSheet, "C", "J", 14)

	row := 2
	for _, m := range members {
		for _, day := range days {
			values := []interface{}{m.Name, m.Email, day, "-", "-", "-", 0, "0.00", "", ""}
			if a, ok := index[m.UserID+":"+day]; ok {
				values[3] = a.Status
				values[4] = s.clockOf(a.DutyIn.Time)
				values[5] = s.clockOf(a.DutyOut.Time)
				values[6] = a.DutyIn.LateMinutes
				values[7] = policy.WorkingHours(a.WorkingMinutes)
				values[8] = yesNo(a.DutyOut.AutoClosedBySystem)
				values[9] = yesNo(a.EditedAt != nil)
			}
			writeRow(f, detailSheet, row, values)
			row++
		}
	}

	summaryHeader := []string{"Employee", "Email", "Status", "Present", "Absent", "Late Days", "Late (min)", "Working Hours", "Avg Hours"}
	writeHeader(f, summarySheet, summaryHeader, headerStyle)
	f.SetColWidth(summarySheet, "A", "B", 24)
	f.SetColWidth(summarySheet, "C", "I", 14)
	for i, m := range members {
		st := attendanceStats(byUser[m.UserID])
		writeRow(f, summarySheet, i+2, []interface{}{
			m.Name, m.Email, m.Status,
			st.PresentDays, st.AbsentDays, st.LateDays, st.TotalLateMinutes,
			policy.WorkingHours(st.TotalWorkingMinutes), st.AverageWorkingHours,
		})
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("team-attendance-%s.xlsx", month), nil
}

// clockOf 以服务器时区的 HH:mm 展示打卡时刻
func (s *reportService) clockOf(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.In(s.tl.loc).Format("15:04")
}

// ── 辅助函数 ──

func writeHeader(f *excelize.File, sheet string, titles []string, style int) {
	for i, title := range titles {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	last, _ := excelize.CoordinatesToCellName(len(titles), 1)
	f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
