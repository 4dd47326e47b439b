package checkin

import (
	"testing"

	"github.com/hitoshi/moodglow/internal/model"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name   string
		before model.Streak
		day    string
		want   model.Streak
	}{
		{
			name:   "first check-in",
			before: model.Streak{},
			day:    "2024-01-01",
			want:   model.Streak{Current: 1, Longest: 1, LastDate: "2024-01-01"},
		},
		{
			name:   "consecutive day",
			before: model.Streak{Current: 1, Longest: 1, LastDate: "2024-01-01"},
			day:    "2024-01-02",
			want:   model.Streak{Current: 2, Longest: 2, LastDate: "2024-01-02"},
		},
		{
			name:   "gap resets current but keeps longest",
			before: model.Streak{Current: 2, Longest: 2, LastDate: "2024-01-02"},
			day:    "2024-01-04",
			want:   model.Streak{Current: 1, Longest: 2, LastDate: "2024-01-04"},
		},
		{
			name:   "same day does not increment",
			before: model.Streak{Current: 3, Longest: 5, LastDate: "2024-01-10"},
			day:    "2024-01-10",
			want:   model.Streak{Current: 3, Longest: 5, LastDate: "2024-01-10"},
		},
		{
			name:   "backdated day neither increments nor resets",
			before: model.Streak{Current: 3, Longest: 3, LastDate: "2024-01-10"},
			day:    "2024-01-08",
			want:   model.Streak{Current: 3, Longest: 3, LastDate: "2024-01-08"},
		},
		{
			name:   "across month boundary",
			before: model.Streak{Current: 4, Longest: 4, LastDate: "2024-02-29"},
			day:    "2024-03-01",
			want:   model.Streak{Current: 5, Longest: 5, LastDate: "2024-03-01"},
		},
		{
			name:   "across year boundary",
			before: model.Streak{Current: 1, Longest: 7, LastDate: "2023-12-31"},
			day:    "2024-01-01",
			want:   model.Streak{Current: 2, Longest: 7, LastDate: "2024-01-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Advance(tt.before, tt.day)
			if err != nil {
				t.Fatalf("Advance error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Advance(%+v, %s) = %+v, want %+v", tt.before, tt.day, got, tt.want)
			}
		})
	}
}

func TestAdvance_InvalidDate(t *testing.T) {
	before := model.Streak{Current: 2, Longest: 2, LastDate: "2024-01-02"}
	got, err := Advance(before, "not-a-date")
	if err == nil {
		t.Fatal("expected error for invalid date")
	}
	if got != before {
		t.Errorf("streak should be unchanged on error, got %+v", got)
	}
}

// 連続した日付のチェックインではcurrentが連続日数と一致し、longestは減少しない。
func TestAdvance_ConsecutiveSequence(t *testing.T) {
	days := []string{
		"2024-01-01", "2024-01-02", "2024-01-03", // 3日連続
		"2024-01-05", "2024-01-06", // 途切れて2日連続
		"2024-01-06",               // 同日再チェックイン
		"2024-01-10",               // 途切れ
		"2024-01-11", "2024-01-12", "2024-01-13", "2024-01-14", // 5日連続
	}
	wantCurrent := []int{1, 2, 3, 1, 2, 2, 1, 2, 3, 4, 5}

	var s model.Streak
	prevLongest := 0
	for i, day := range days {
		next, err := Advance(s, day)
		if err != nil {
			t.Fatalf("Advance(%s) error: %v", day, err)
		}
		if next.Current != wantCurrent[i] {
			t.Errorf("day %s: current = %d, want %d", day, next.Current, wantCurrent[i])
		}
		if next.Longest < prevLongest {
			t.Errorf("day %s: longest decreased from %d to %d", day, prevLongest, next.Longest)
		}
		if next.Longest < next.Current {
			t.Errorf("day %s: longest %d < current %d", day, next.Longest, next.Current)
		}
		prevLongest = next.Longest
		s = next
	}

	if s.Longest != 5 {
		t.Errorf("final longest = %d, want 5", s.Longest)
	}
}
