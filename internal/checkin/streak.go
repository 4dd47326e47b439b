package checkin

import "github.com/hitoshi/moodglow/internal/model"

// Advance はdayのチェックインを反映した連続記録を返す。streakは変更しない。
//
//   - 前回日付なし: current = 1
//   - 前回の翌日: current + 1
//   - 2日以上空いた: current = 1
//   - 同日または過去日: currentは変化しない
//
// longestはcurrentとの最大値、lastDateはdayに更新される。
func Advance(streak model.Streak, day string) (model.Streak, error) {
	next := streak

	if streak.LastDate == "" {
		next.Current = 1
	} else {
		diff, err := model.DaysBetween(streak.LastDate, day)
		if err != nil {
			return streak, err
		}
		switch {
		case diff == 1:
			next.Current++
		case diff > 1:
			next.Current = 1
		}
	}

	next.Longest = max(next.Longest, next.Current)
	next.LastDate = day
	return next, nil
}
