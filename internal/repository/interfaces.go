// Package repository はデータ永続化のインターフェースと、
// キーバリューストア上の実装を定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/moodglow/internal/model"
)

// AccountRepository はユーザー名からユーザーIDへの対応（アカウントディレクトリ）を管理する。
// ユーザー名は大文字小文字を区別せずに一意とする。
type AccountRepository interface {
	// Reserve はユーザー名をユーザーIDに割り当てる。
	// 同じ名前が別のユーザーIDに割り当て済みの場合はNameTakenエラーを返す。
	// 同じ(名前, ユーザーID)の組での再実行は冪等。
	Reserve(ctx context.Context, name, userID string) error

	// Resolve はユーザー名に対応するユーザーIDを返す。未登録の場合はfound=falseを返す。
	Resolve(ctx context.Context, name string) (userID string, found bool, err error)

	// Release はユーザー名の割り当てを解除する。
	// 別のユーザーIDに割り当てられている場合は何もしない。
	Release(ctx context.Context, name, userID string) error
}

// ProfileRepository はプロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID string) (*model.Profile, error)

	// Save はプロフィールを保存する。
	Save(ctx context.Context, profile *model.Profile) error

	// DeleteByID はプロフィールを削除する。サインアップ失敗時の補償処理でのみ使用する。
	DeleteByID(ctx context.Context, userID string) error
}

// CheckInRepository は気分チェックインの永続化インターフェース。
type CheckInRepository interface {
	// Save はチェックインを日付単位のキーに保存する。同日の既存チェックインは上書きされる。
	Save(ctx context.Context, checkIn *model.CheckIn) error

	// FindByDate は指定日のチェックインを取得する。見つからない場合はnilを返す。
	FindByDate(ctx context.Context, userID, date string) (*model.CheckIn, error)

	// ListByOwner はユーザーの全チェックインを返す。順序は規定しない。
	ListByOwner(ctx context.Context, userID string) ([]model.CheckIn, error)
}

// StreakRepository は連続記録の永続化インターフェース。
type StreakRepository interface {
	// Find はユーザーの連続記録を返す。未保存の場合はゼロ値を返す。
	Find(ctx context.Context, userID string) (model.Streak, error)

	// Save は連続記録を保存する。
	Save(ctx context.Context, userID string, streak model.Streak) error
}

// JournalRepository は日記エントリの永続化インターフェース。
type JournalRepository interface {
	// Create は日記エントリを保存する。
	Create(ctx context.Context, entry *model.JournalEntry) error

	// ListByOwner はユーザーの全エントリを返す。順序は規定しない。
	ListByOwner(ctx context.Context, userID string) ([]model.JournalEntry, error)
}

// ContactsRepository は緊急連絡先リストの永続化インターフェース。
type ContactsRepository interface {
	// Replace は連絡先リスト全体を置き換える。
	Replace(ctx context.Context, record *model.ContactsRecord) error

	// Find はユーザーの連絡先リストを返す。見つからない場合はnilを返す。
	Find(ctx context.Context, userID string) (*model.ContactsRecord, error)
}

// PeriodRepository は生理記録の永続化インターフェース。
type PeriodRepository interface {
	// Save は生理記録を保存する。同じIDの記録は上書きされる。
	Save(ctx context.Context, record *model.PeriodRecord) error

	// ListByOwner はユーザーの全記録を返す。順序は規定しない。
	ListByOwner(ctx context.Context, userID string) ([]model.PeriodRecord, error)
}

// SessionRepository はHTTP APIのログインセッションの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。見つからない場合や期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired はnow時点で期限切れのセッションを全て削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
