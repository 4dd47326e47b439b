package model

import "time"

// CheckIn は1日1回の気分チェックインを表す。
// (UserID, Date) ごとに最大1件で、同日の再保存は上書きとなる。
type CheckIn struct {
	UserID    string            `json:"userId"`
	Date      string            `json:"date"`
	Mood      string            `json:"mood"`
	Emoji     string            `json:"emoji"`
	Answers   map[string]string `json:"answers"`
	Timestamp time.Time         `json:"timestamp"`
}

// MoodData はチェックイン画面から送信される入力値。
type MoodData struct {
	Mood    string            `json:"mood"`
	Emoji   string            `json:"emoji"`
	Answers map[string]string `json:"answers"`
}

// Streak は連続チェックイン日数を表す派生エンティティ。
// チェックイン保存のたびに更新され、ユーザーが直接書き込むことはない。
// LastDateが空文字の場合は未チェックインを表す。
type Streak struct {
	Current  int    `json:"current"`
	Longest  int    `json:"longest"`
	LastDate string `json:"lastDate,omitempty"`
}
