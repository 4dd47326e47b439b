package model

import "time"

// DefaultJournalTitle はタイトル未指定時に使用するタイトル。
const DefaultJournalTitle = "Untitled"

// JournalEntry はパスワードで閲覧を制限する日記エントリ。
// 保存後は変更されない。Passwordは平文で保持され、暗号化は行わない。
type JournalEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Password  string    `json:"password,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
