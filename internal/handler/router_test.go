package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/moodglow/internal/middleware"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestLimiter(t *testing.T) *middleware.RateLimiter {
	l := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(l.Stop)
	return l
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Ping(ctx context.Context) error {
	return m.err
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		checker    HealthChecker
		wantStatus int
		wantBody   string
	}{
		{"in-memory store", nil, http.StatusOK, `"status":"ok"`},
		{"store reachable", &mockHealthChecker{}, http.StatusOK, `"status":"ok"`},
		{"store down", &mockHealthChecker{err: errors.New("connection refused")}, http.StatusServiceUnavailable, `"status":"unavailable"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newIntegrationEnv(t, tt.checker)

			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want to contain %s", w.Body.String(), tt.wantBody)
			}
			if strings.Contains(w.Body.String(), "connection refused") {
				t.Error("health response must not leak the cause")
			}
		})
	}
}

func TestRouter_Metrics_ExposesCounters(t *testing.T) {
	env := newIntegrationEnv(t, nil)
	b := newBrowser(t, env.router)
	b.get("/api/csrf-token")
	expectStatus(t, b.post("/auth/signup", `{"name":"gina","password":"pw"}`), http.StatusCreated)
	expectStatus(t, b.post("/api/checkins", `{"mood":"good"}`), http.StatusCreated)

	w := b.get("/metrics")
	expectStatus(t, w, http.StatusOK)

	body := w.Body.String()
	for _, want := range []string{
		"moodglow_signups_total 1",
		"moodglow_checkins_total 1",
		`moodglow_http_status_total{status_code="201"}`,
		"moodglow_store_op_latency_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRouter_MetricsRouteOmittedWhenHandlerNil(t *testing.T) {
	router := NewRouter(&RouterDeps{
		Logger:      discardLogger(),
		RateLimiter: newTestLimiter(t),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRouter_CSRFTokenEndpoint(t *testing.T) {
	env := newIntegrationEnv(t, nil)
	b := newBrowser(t, env.router)

	w := b.get("/api/csrf-token")
	expectStatus(t, w, http.StatusOK)

	var body struct {
		Token string `json:"token"`
	}
	decodeInto(t, w, &body)
	cookie, ok := b.cookies[middleware.CSRFCookieName]
	if !ok {
		t.Fatal("csrf cookie not set")
	}
	if body.Token == "" || body.Token != cookie.Value {
		t.Errorf("token = %q, cookie = %q", body.Token, cookie.Value)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	env := newIntegrationEnv(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/journal", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, JournalPasswordHeader) {
		t.Errorf("Access-Control-Allow-Headers = %q, want to include %s", got, JournalPasswordHeader)
	}
}

func TestRouter_UnknownRoute_Returns404Or405(t *testing.T) {
	env := newIntegrationEnv(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/nonexistent"},
		{http.MethodDelete, "/health"},
		{http.MethodGet, "/auth/signup"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			// DELETEはCSRF検証で先に403になりうる
			if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 404, 405 or 403", w.Code)
			}
		})
	}
}

func TestRouter_SecurityHeadersOnEveryResponse(t *testing.T) {
	env := newIntegrationEnv(t, nil)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}
