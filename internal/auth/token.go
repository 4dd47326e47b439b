package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/moodglow/internal/model"
)

const tokenIssuer = "moodglow"

// sessionClaims はセッションCookieに載せるJWTクレーム。
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenManager はセッションIDを署名付きトークンとして発行・検証する。
// Cookieの改ざんをセッションストア参照前に検出する。
type TokenManager struct {
	secret []byte
}

// NewTokenManager はHMAC-SHA256で署名するTokenManagerを生成する。
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// Issue はセッションに対応する署名付きトークンを発行する。
func (m *TokenManager) Issue(session *model.Session) (string, error) {
	claims := sessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Parse はトークンを検証し、セッションIDとユーザーIDを返す。
func (m *TokenManager) Parse(token string) (sessionID, userID string, err error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return "", "", fmt.Errorf("invalid session token: %w", err)
	}
	if !parsed.Valid || claims.SessionID == "" || claims.Subject == "" {
		return "", "", errors.New("invalid session token claims")
	}
	return claims.SessionID, claims.Subject, nil
}
