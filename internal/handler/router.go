package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/moodglow/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	Tokens            SessionTokens
	CORSAllowedOrigin string // カンマ区切りで複数指定可
	SecureTransport   bool   // HTTPS配信時にHSTSを付与する
	RateLimiter       *middleware.RateLimiter
	CSRF              middleware.CSRFConfig
	StatusRecorder    middleware.StatusRecorder
	HealthChecker     HealthChecker
	MetricsHandler    http.Handler

	// 認証
	AuthBackend AuthBackend
	Sessions    SessionService
	AuthConfig  AuthHandlerConfig

	// ログイン後の機能
	Backend WellnessBackend
	Today   TodayReader
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging → CSRF
//	  /auth/signup, /auth/login: RateLimit(Auth)
//	  /auth/me, /api/*:          Session → RateLimit(General)
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.SecureTransport))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin, JournalPasswordHeader))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

	authHandler := NewAuthHandler(deps.AuthBackend, deps.Sessions, deps.Tokens, deps.AuthConfig)
	wellness := NewWellnessHandler(deps.Backend, deps.Today)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})
		r.Post("/logout", authHandler.Logout)

		r.With(middleware.NewSessionMiddleware(deps.Tokens, deps.SessionFinder)).Get("/me", authHandler.Me)
	})

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF))

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.Tokens, deps.SessionFinder))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/profile", wellness.GetProfile)

			r.Route("/checkins", func(r chi.Router) {
				r.Post("/", wellness.SaveCheckin)
				r.Get("/", wellness.GetCheckins)
				r.Get("/today", wellness.GetTodayCheckin)
			})
			r.Get("/streak", wellness.GetStreak)

			r.Post("/journal", wellness.SaveJournal)
			r.Get("/journal", wellness.GetJournalEntries)

			r.Put("/contacts", wellness.SaveContacts)
			r.Get("/contacts", wellness.GetContacts)

			r.Post("/periods", wellness.SavePeriod)
			r.Get("/periods", wellness.GetPeriodData)
		})
	})

	return r
}
