package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/moodglow/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// buildChain はサーバーと同じ順序でミドルウェアを組み立てる。
// Recovery -> SecurityHeaders -> CORS -> Metrics -> Logging -> Session -> next
func buildChain(recorder StatusRecorder, finder SessionFinder, tokens TokenParser, next http.Handler) http.Handler {
	h := NewSessionMiddleware(tokens, finder)(next)
	h = NewLoggingMiddleware(discardLogger())(h)
	h = NewMetricsMiddleware(recorder)(h)
	h = NewCORSMiddleware("http://localhost:3000")(h)
	h = NewSecurityHeadersMiddleware(false)(h)
	return NewRecoveryMiddleware(discardLogger())(h)
}

// TestMiddlewareChain_AuthenticatedRequest はチェーン全体を通過したリクエストにユーザーIDが渡ることを検証する。
func TestMiddlewareChain_AuthenticatedRequest(t *testing.T) {
	repo := sessionRepoWith(&model.Session{
		ID:        "valid-session",
		UserID:    "user-chain-test",
		ExpiresAt: time.Now().Add(1 * time.Hour),
	})
	recorder := &mockStatusRecorder{}

	var capturedUserID string
	handler := buildChain(recorder, repo, identityTokens("user-chain-test"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/checkins", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-session"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if capturedUserID != "user-chain-test" {
		t.Errorf("userID = %q, want %q", capturedUserID, "user-chain-test")
	}
	for header, want := range map[string]string{
		"X-Content-Type-Options":      "nosniff",
		"X-Frame-Options":             "DENY",
		"Cache-Control":               "no-store",
		"Access-Control-Allow-Origin": "http://localhost:3000",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusOK {
		t.Errorf("recorded statuses = %v, want [200]", recorder.statuses)
	}
}

// TestMiddlewareChain_NoSession_Returns401 はセッションがない場合に401が記録されることを検証する。
func TestMiddlewareChain_NoSession_Returns401(t *testing.T) {
	recorder := &mockStatusRecorder{}
	handler := buildChain(recorder, sessionRepoWith(), identityTokens("nobody"), mustNotBeCalled(t))

	req := httptest.NewRequest(http.MethodPost, "/api/journal", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusUnauthorized {
		t.Errorf("recorded statuses = %v, want [401]", recorder.statuses)
	}
}

// TestMiddlewareChain_PanicRecovered はハンドラーのpanicが統一フォーマットの500になることを検証する。
func TestMiddlewareChain_PanicRecovered(t *testing.T) {
	repo := sessionRepoWith(&model.Session{ID: "sid", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
	handler := buildChain(&mockStatusRecorder{}, repo, identityTokens("u1"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/periods", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sid"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
}
