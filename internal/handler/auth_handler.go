package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hitoshi/moodglow/internal/api"
	"github.com/hitoshi/moodglow/internal/middleware"
	"github.com/hitoshi/moodglow/internal/model"
)

// AuthBackend は認証ハンドラーが必要とするAPI操作。*api.Clientが満たす。
type AuthBackend interface {
	Login(ctx context.Context, name, password string) (*api.ProfileResult, error)
	Signup(ctx context.Context, userID, name, password string, gender model.Gender) (*api.ProfileResult, error)
}

// SessionService はHTTPセッションの発行と破棄を行う。*auth.Serviceが満たす。
type SessionService interface {
	CreateSession(ctx context.Context, userID string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.Profile, error)
}

// SessionTokens はセッショントークンを発行・検証する。*auth.TokenManagerが満たす。
type SessionTokens interface {
	Issue(session *model.Session) (string, error)
	middleware.TokenParser
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はサインアップ・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	backend  AuthBackend
	sessions SessionService
	tokens   SessionTokens
	config   AuthHandlerConfig
	newID    func() string
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(backend AuthBackend, sessions SessionService, tokens SessionTokens, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		backend:  backend,
		sessions: sessions,
		tokens:   tokens,
		config:   config,
		newID:    uuid.NewString,
	}
}

// signupRequest はサインアップリクエストのボディ。
// userIdを省略した場合はサーバーで生成する。同じuserIdとパスワードでの再送は冪等に扱われる。
type signupRequest struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type authResponse struct {
	Profile profileResponse `json:"profile"`
}

// Signup はプロフィールを作成し、セッションを開始する。
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = h.newID()
	}

	result, err := h.backend.Signup(r.Context(), req.UserID, req.Name, req.Password, model.ParseGender(req.Gender))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	if !h.startSession(w, r, result.Profile.UserID) {
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Profile: toProfileResponse(result.Profile)})
}

// Login はユーザー名とパスワードで認証し、セッションを開始する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.backend.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	if !h.startSession(w, r, result.Profile.UserID) {
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Profile: toProfileResponse(result.Profile)})
}

// startSession はセッションを作成し、署名付きトークンをHTTP Only Cookieに設定する。
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID string) bool {
	session, err := h.sessions.CreateSession(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return false
	}

	token, err := h.tokens.Issue(session)
	if err != nil {
		slog.Error("failed to issue session token", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return false
	}

	h.setSessionCookie(w, token, h.config.SessionMaxAge)
	return true
}

// Logout はセッションを破棄し、Cookieをクリアする。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if sessionID, _, err := h.tokens.Parse(cookie.Value); err == nil {
			if err := h.sessions.Logout(r.Context(), sessionID); err != nil {
				// ログアウト失敗してもCookieはクリアする
				slog.Error("failed to logout", slog.String("error", err.Error()))
			}
		}
	}

	h.setSessionCookie(w, "", -1)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me は現在のログインユーザーのプロフィールを返す。
// GET /auth/me（セッションミドルウェア配下）
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	profile, err := h.sessions.GetCurrentUser(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Profile: toProfileResponse(profile)})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
