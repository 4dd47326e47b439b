// Package model はドメインモデルを定義する。
package model

import (
	"regexp"
	"time"
)

// Gender はプロフィールの性別を表す。
type Gender string

const (
	GenderMale         Gender = "male"
	GenderFemale       Gender = "female"
	GenderNotSpecified Gender = "not-specified"
)

// ParseGender は文字列をGenderに変換する。未知の値や空文字はGenderNotSpecifiedとして扱う。
func ParseGender(s string) Gender {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s)
	default:
		return GenderNotSpecified
	}
}

// userIDPattern はユーザーIDに使える文字。キーの区切り文字":"を含められないようにする。
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateUserID はユーザーIDがキーに埋め込める形式かを検証する。
// 不正な場合はValidationエラーを返す。
func ValidateUserID(id string) error {
	if id == "" {
		return NewValidationError("userId is required")
	}
	if !userIDPattern.MatchString(id) {
		return NewValidationError("userId must be 1-64 characters of letters, digits, '-' or '_'")
	}
	return nil
}

// DefaultProfileName は名前未指定で登録した場合の表示名。
const DefaultProfileName = "User"

// Profile はユーザーのプロフィールを表す。
// Passwordにはパスワード検証器が生成した値（bcryptハッシュまたは平文）を保持する。
type Profile struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Password  string    `json:"password"`
	Gender    Gender    `json:"gender"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session はHTTP APIのログインセッションを表す。
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired はセッションが指定時刻時点で期限切れかどうかを返す。
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
