package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/moodglow/internal/model"
)

func TestRecoveryMiddleware_LogsPanicWithUserID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	repo := sessionRepoWith(&model.Session{ID: "sid", UserID: "user-panic", ExpiresAt: time.Now().Add(time.Hour)})

	h := NewSessionMiddleware(identityTokens("user-panic"), repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("journal encoder exploded")
	}))
	h = NewRecoveryMiddleware(logger)(h)

	req := httptest.NewRequest(http.MethodPost, "/api/journal", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sid"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if strings.Contains(w.Body.String(), "exploded") {
		t.Error("response must not leak the panic value")
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "panic recovered" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["user_id"] != "user-panic" {
		t.Errorf("user_id = %v, want user-panic", entry["user_id"])
	}
	if entry["path"] != "/api/journal" {
		t.Errorf("path = %v", entry["path"])
	}
	if s, _ := entry["stack"].(string); s == "" {
		t.Error("stack should be logged")
	}
}

func TestRecoveryMiddleware_RepanicsOnAbortHandler(t *testing.T) {
	h := NewRecoveryMiddleware(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/streak", nil))
	t.Error("ServeHTTP should have panicked")
}

func TestRecoveryMiddleware_NoPanic_PassesThrough(t *testing.T) {
	h := NewRecoveryMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", w.Code, http.StatusAccepted)
	}
}
