package policy

import (
	"errors"
	"fmt"
	"time"
)

// 日期格式
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var (
	ErrInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidMonth = errors.New("month must be in YYYY-MM format")
)

// DateOf 返回 t 在 loc 时区的日历日
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// MonthOf 返回 t 在 loc 时区的月份
func MonthOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(MonthLayout)
}

// ParseDate 解析 YYYY-MM-DD，返回 loc 时区当日零点
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseMonth 解析 YYYY-MM，返回 loc 时区当月一日零点
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return t, nil
}

// MonthOfDate 返回日期串所在的月份串，日期非法时报错
func MonthOfDate(date string) (string, error) {
	if _, err := ParseDate(date, time.UTC); err != nil {
		return "", err
	}
	return date[:7], nil
}

// DatesInMonth 按顺序列出月份内的所有日期
func DatesInMonth(month string) ([]string, error) {
	first, err := ParseMonth(month, time.UTC)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, 31)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}

// MonthRange 返回月份的首尾日期（含）
func MonthRange(month string) (from, to string, err error) {
	first, err := ParseMonth(month, time.UTC)
	if err != nil {
		return "", "", err
	}
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout), nil
}
