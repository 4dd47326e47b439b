package model

import (
	"fmt"
	"time"
)

// DateLayout はカレンダー日付（YYYY-MM-DD）の書式。
const DateLayout = "2006-01-02"

// DayOf は指定タイムゾーンにおける時刻tのカレンダー日付を返す。
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDay はYYYY-MM-DD形式の日付をUTCの0時として解釈する。
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DaysBetween はfromからtoまでの日数差を返す。toがfromより前の場合は負の値になる。
// 両日付をUTCの0時として扱うため、夏時間の切り替えに影響されない。
func DaysBetween(from, to string) (int, error) {
	f, err := ParseDay(from)
	if err != nil {
		return 0, err
	}
	t, err := ParseDay(to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}

// AddDays はYYYY-MM-DD形式の日付にn日を加算した日付を返す。
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}
