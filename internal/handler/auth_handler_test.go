package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/moodglow/internal/api"
	"github.com/hitoshi/moodglow/internal/middleware"
	"github.com/hitoshi/moodglow/internal/model"
)

// --- モック定義 ---

type mockAuthBackend struct {
	loginFn  func(ctx context.Context, name, password string) (*api.ProfileResult, error)
	signupFn func(ctx context.Context, userID, name, password string, gender model.Gender) (*api.ProfileResult, error)
}

func (m *mockAuthBackend) Login(ctx context.Context, name, password string) (*api.ProfileResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, name, password)
	}
	return nil, model.NewUserNotFoundError()
}

func (m *mockAuthBackend) Signup(ctx context.Context, userID, name, password string, gender model.Gender) (*api.ProfileResult, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, userID, name, password, gender)
	}
	return nil, errors.New("not implemented")
}

type mockSessionService struct {
	createSessionFn  func(ctx context.Context, userID string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.Profile, error)
}

func (m *mockSessionService) CreateSession(ctx context.Context, userID string) (*model.Session, error) {
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, userID)
	}
	return &model.Session{ID: "sid-" + userID, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *mockSessionService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockSessionService) GetCurrentUser(ctx context.Context, sessionID string) (*model.Profile, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, model.NewNotAuthenticatedError()
}

// mockTokens はセッションIDを "token:" 接頭辞付きでそのままトークンにする。
type mockTokens struct {
	issueErr error
}

func (m *mockTokens) Issue(session *model.Session) (string, error) {
	if m.issueErr != nil {
		return "", m.issueErr
	}
	return "token:" + session.ID + ":" + session.UserID, nil
}

func (m *mockTokens) Parse(token string) (string, string, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != "token" {
		return "", "", errors.New("invalid token")
	}
	return parts[1], parts[2], nil
}

func testProfile(userID, name string) *model.Profile {
	return &model.Profile{
		UserID:    userID,
		Name:      name,
		Password:  "$2a$04$secret-hash",
		Gender:    model.GenderFemale,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestAuthHandler(backend AuthBackend, sessions SessionService) *AuthHandler {
	h := NewAuthHandler(backend, sessions, &mockTokens{}, AuthHandlerConfig{SessionMaxAge: 3600})
	h.newID = func() string { return "generated-id" }
	return h
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookieFrom(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

// --- テスト ---

func TestAuthHandler_Signup_CreatesProfileAndSetsCookie(t *testing.T) {
	var gotUserID, gotName, gotPassword string
	var gotGender model.Gender
	backend := &mockAuthBackend{
		signupFn: func(ctx context.Context, userID, name, password string, gender model.Gender) (*api.ProfileResult, error) {
			gotUserID, gotName, gotPassword, gotGender = userID, name, password, gender
			return &api.ProfileResult{Profile: testProfile(userID, name)}, nil
		},
	}
	h := newTestAuthHandler(backend, &mockSessionService{})

	w := httptest.NewRecorder()
	h.Signup(w, postJSON("/auth/signup", `{"name":"alice","password":"pw","gender":"female"}`))

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if gotUserID != "generated-id" || gotName != "alice" || gotPassword != "pw" || gotGender != model.GenderFemale {
		t.Errorf("signup args = %q %q %q %q", gotUserID, gotName, gotPassword, gotGender)
	}

	cookie := sessionCookieFrom(resp)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if cookie.Value != "token:sid-generated-id:generated-id" {
		t.Errorf("cookie value = %q", cookie.Value)
	}
	if !cookie.HttpOnly || cookie.MaxAge != 3600 || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie attributes = %+v", cookie)
	}

	raw := w.Body.String()
	if strings.Contains(raw, "password") || strings.Contains(raw, "secret-hash") {
		t.Errorf("response must not expose password: %s", raw)
	}
	var body struct {
		Profile profileResponse `json:"profile"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Profile.UserID != "generated-id" || body.Profile.Name != "alice" {
		t.Errorf("profile = %+v", body.Profile)
	}
}

func TestAuthHandler_Signup_UsesClientUserIDAndDefaultsGender(t *testing.T) {
	var gotUserID string
	var gotGender model.Gender
	backend := &mockAuthBackend{
		signupFn: func(ctx context.Context, userID, name, password string, gender model.Gender) (*api.ProfileResult, error) {
			gotUserID, gotGender = userID, gender
			return &api.ProfileResult{Profile: testProfile(userID, name)}, nil
		},
	}
	h := newTestAuthHandler(backend, &mockSessionService{})

	w := httptest.NewRecorder()
	h.Signup(w, postJSON("/auth/signup", `{"userId":"client-id","name":"bob","gender":"unknown"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotUserID != "client-id" {
		t.Errorf("userID = %q, want client-id", gotUserID)
	}
	if gotGender != model.GenderNotSpecified {
		t.Errorf("gender = %q, want %q", gotGender, model.GenderNotSpecified)
	}
}

func TestAuthHandler_Signup_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		signupErr  error
		wantStatus int
		wantCode   string
	}{
		{"name taken", `{"name":"alice"}`, model.NewNameTakenError("alice"), http.StatusConflict, model.ErrCodeNameTaken},
		{"storage", `{"name":"alice"}`, model.NewStorageError("save profile", errors.New("down")), http.StatusInternalServerError, model.ErrCodeStorage},
		{"invalid json", `{"name":`, nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"empty body", ``, nil, http.StatusBadRequest, model.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessionCreated := false
			backend := &mockAuthBackend{
				signupFn: func(ctx context.Context, userID, name, password string, gender model.Gender) (*api.ProfileResult, error) {
					return nil, tt.signupErr
				},
			}
			sessions := &mockSessionService{
				createSessionFn: func(ctx context.Context, userID string) (*model.Session, error) {
					sessionCreated = true
					return nil, errors.New("unexpected")
				},
			}
			h := newTestAuthHandler(backend, sessions)

			w := httptest.NewRecorder()
			h.Signup(w, postJSON("/auth/signup", tt.body))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body := decodeErrorBody(t, w); body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if sessionCreated {
				t.Error("session should not be created on failure")
			}
			if sessionCookieFrom(w.Result()) != nil {
				t.Error("session cookie should not be set on failure")
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	backend := &mockAuthBackend{
		loginFn: func(ctx context.Context, name, password string) (*api.ProfileResult, error) {
			if name == "alice" && password == "pw" {
				return &api.ProfileResult{Profile: testProfile("u-alice", "alice")}, nil
			}
			return nil, model.NewInvalidPasswordError()
		},
	}
	h := newTestAuthHandler(backend, &mockSessionService{})

	w := httptest.NewRecorder()
	h.Login(w, postJSON("/auth/login", `{"name":"alice","password":"pw"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	cookie := sessionCookieFrom(w.Result())
	if cookie == nil || cookie.Value != "token:sid-u-alice:u-alice" {
		t.Errorf("session cookie = %+v", cookie)
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		status   int
	}{
		{"unknown user", model.NewUserNotFoundError(), model.ErrCodeUserNotFound, http.StatusUnauthorized},
		{"wrong password", model.NewInvalidPasswordError(), model.ErrCodeInvalidPassword, http.StatusUnauthorized},
		{"orphan account", model.NewProfileNotFoundError("u1"), model.ErrCodeProfileNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockAuthBackend{
				loginFn: func(ctx context.Context, name, password string) (*api.ProfileResult, error) {
					return nil, tt.err
				},
			}
			h := newTestAuthHandler(backend, &mockSessionService{})

			w := httptest.NewRecorder()
			h.Login(w, postJSON("/auth/login", `{"name":"alice","password":"nope"}`))

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if body := decodeErrorBody(t, w); body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestAuthHandler_Login_TokenIssueFailure_Returns500(t *testing.T) {
	backend := &mockAuthBackend{
		loginFn: func(ctx context.Context, name, password string) (*api.ProfileResult, error) {
			return &api.ProfileResult{Profile: testProfile("u1", "alice")}, nil
		},
	}
	h := NewAuthHandler(backend, &mockSessionService{}, &mockTokens{issueErr: errors.New("sign")}, AuthHandlerConfig{})

	w := httptest.NewRecorder()
	h.Login(w, postJSON("/auth/login", `{"name":"alice","password":"pw"}`))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if sessionCookieFrom(w.Result()) != nil {
		t.Error("session cookie should not be set")
	}
}

func TestAuthHandler_Logout_DeletesSessionAndClearsCookie(t *testing.T) {
	var deleted string
	sessions := &mockSessionService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	}
	h := newTestAuthHandler(&mockAuthBackend{}, sessions)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "token:sid-9:u9"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if deleted != "sid-9" {
		t.Errorf("deleted session = %q, want sid-9", deleted)
	}
	cookie := sessionCookieFrom(w.Result())
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Errorf("session cookie should be cleared, got %+v", cookie)
	}
}

func TestAuthHandler_Logout_InvalidOrMissingToken_StillClearsCookie(t *testing.T) {
	for _, cookieValue := range []string{"", "garbage"} {
		called := false
		sessions := &mockSessionService{
			logoutFn: func(ctx context.Context, sessionID string) error {
				called = true
				return nil
			},
		}
		h := newTestAuthHandler(&mockAuthBackend{}, sessions)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		if cookieValue != "" {
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: cookieValue})
		}
		w := httptest.NewRecorder()
		h.Logout(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("cookie %q: status = %d, want %d", cookieValue, w.Code, http.StatusOK)
		}
		if called {
			t.Errorf("cookie %q: Logout should not be called", cookieValue)
		}
		if c := sessionCookieFrom(w.Result()); c == nil || c.MaxAge >= 0 {
			t.Errorf("cookie %q: session cookie should be cleared", cookieValue)
		}
	}
}

func TestAuthHandler_Logout_ServiceError_StillClearsCookie(t *testing.T) {
	sessions := &mockSessionService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			return model.NewStorageError("delete session", errors.New("down"))
		},
	}
	h := newTestAuthHandler(&mockAuthBackend{}, sessions)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "token:sid-1:u1"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if c := sessionCookieFrom(w.Result()); c == nil || c.MaxAge >= 0 {
		t.Error("session cookie should be cleared")
	}
}

func TestAuthHandler_Me_ReturnsProfileWithoutPassword(t *testing.T) {
	sessions := &mockSessionService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.Profile, error) {
			if sessionID != "sid-me" {
				return nil, model.NewNotAuthenticatedError()
			}
			return testProfile("u-me", "meg"), nil
		},
	}
	h := newTestAuthHandler(&mockAuthBackend{}, sessions)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.ContextWithSessionID(req.Context(), "sid-me"))
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("response must not expose password: %s", w.Body.String())
	}
}

func TestAuthHandler_Me_NoSession_ReturnsUnauthorized(t *testing.T) {
	h := newTestAuthHandler(&mockAuthBackend{}, &mockSessionService{})

	w := httptest.NewRecorder()
	h.Me(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
