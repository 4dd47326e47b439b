package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// パスワード方式
const (
	PasswordSchemeBcrypt = "bcrypt"
	PasswordSchemePlain  = "plain"
)

// PasswordVerifier はパスワードの保存形式と照合方法を抽象化する。
// 呼び出し側を変更せずに平文比較とハッシュ比較を切り替えられる。
type PasswordVerifier interface {
	// Hash は保存用の値を生成する。
	Hash(password string) (string, error)
	// Verify は保存済みの値と入力されたパスワードが一致するかを返す。
	Verify(stored, supplied string) bool
}

// PlainVerifier は平文をそのまま保存し、等価比較で照合する。
// 既存データとの互換用で、新規環境ではBcryptVerifierを使用する。
type PlainVerifier struct{}

// Hash は入力をそのまま返す。
func (PlainVerifier) Hash(password string) (string, error) {
	return password, nil
}

// Verify は定数時間で等価比較する。
func (PlainVerifier) Verify(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// BcryptVerifier はbcryptハッシュで保存・照合する。
type BcryptVerifier struct {
	Cost int
}

// NewBcryptVerifier はデフォルトコストのBcryptVerifierを生成する。
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{Cost: bcrypt.DefaultCost}
}

// Hash はbcryptハッシュを生成する。72バイトを超えるパスワードはエラーになる。
func (v *BcryptVerifier) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), v.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Verify はbcryptハッシュと入力を照合する。
func (v *BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// NewPasswordVerifier は方式名からPasswordVerifierを生成する。
func NewPasswordVerifier(scheme string) (PasswordVerifier, error) {
	switch scheme {
	case PasswordSchemeBcrypt, "":
		return NewBcryptVerifier(), nil
	case PasswordSchemePlain:
		return PlainVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme: %s", scheme)
	}
}
