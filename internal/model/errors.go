// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// エラー種別。サービス層はこれらをラップした *APIError を返し、
// 呼び出し側は errors.Is で種別を判定できる。
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrNameTaken         = errors.New("username already taken")
	ErrStorage           = errors.New("storage error")
	ErrValidation        = errors.New("validation error")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInvalidTransition = errors.New("invalid phase transition")
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, storage, system
	Action   string // ユーザー向け対処方法

	kind  error
	cause error
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap はエラー種別と原因エラーを返す。
func (e *APIError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeProfileNotFound   = "PROFILE_NOT_FOUND"
	ErrCodeInvalidPassword   = "INVALID_PASSWORD"
	ErrCodeNameTaken         = "NAME_TAKEN"
	ErrCodeStorage           = "STORAGE_ERROR"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotAuthenticated  = "UNAUTHORIZED"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
)

// NewUserNotFoundError はユーザー名が登録されていない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザー名を確認するか、新規登録してください。",
		kind:     ErrUserNotFound,
	}
}

// NewProfileNotFoundError はプロフィールが存在しない場合のエラーを生成する。
func NewProfileNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  fmt.Sprintf("プロフィールが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ログインし直してください。",
		kind:     ErrProfileNotFound,
	}
}

// NewInvalidPasswordError はパスワード不一致エラーを生成する。
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  "パスワードが正しくありません。",
		Category: "auth",
		Action:   "パスワードを確認して再度お試しください。",
		kind:     ErrInvalidPassword,
	}
}

// NewNameTakenError はユーザー名が他のユーザーに使用されている場合のエラーを生成する。
func NewNameTakenError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeNameTaken,
		Message:  fmt.Sprintf("このユーザー名は既に使用されています: %s", name),
		Category: "auth",
		Action:   "別のユーザー名を指定してください。",
		kind:     ErrNameTaken,
	}
}

// NewValidationError は入力値が不正な場合のエラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
		kind:     ErrValidation,
	}
}

// NewNotAuthenticatedError は未ログイン状態での操作エラーを生成する。
func NewNotAuthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAuthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
		kind:     ErrNotAuthenticated,
	}
}

// NewInvalidTransitionError は現在のフェーズから許可されない遷移を要求した場合のエラーを生成する。
func NewInvalidTransitionError(from, to string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("フェーズ %s から %s へは遷移できません。", from, to),
		Category: "system",
		Action:   "画面を再読み込みしてください。",
		kind:     ErrInvalidTransition,
	}
}

// NewStorageError は永続化層の失敗をラップする。
// リトライは行わず、再試行の判断は呼び出し側に委ねる。
func NewStorageError(op string, cause error) *APIError {
	return &APIError{
		Code:     ErrCodeStorage,
		Message:  fmt.Sprintf("データの保存・読み込みに失敗しました（%s）", op),
		Category: "storage",
		Action:   "しばらく待ってから再度お試しください。",
		kind:     ErrStorage,
		cause:    cause,
	}
}
