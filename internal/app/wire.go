package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/moodglow/internal/api"
	"github.com/hitoshi/moodglow/internal/auth"
	"github.com/hitoshi/moodglow/internal/checkin"
	"github.com/hitoshi/moodglow/internal/config"
	"github.com/hitoshi/moodglow/internal/contacts"
	"github.com/hitoshi/moodglow/internal/cycle"
	"github.com/hitoshi/moodglow/internal/database"
	"github.com/hitoshi/moodglow/internal/handler"
	"github.com/hitoshi/moodglow/internal/journal"
	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/metrics"
	"github.com/hitoshi/moodglow/internal/middleware"
	"github.com/hitoshi/moodglow/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
)

// keyNamespace は全キーに付与するプレフィックス。
const keyNamespace = "moodglow:"

// backend は設定に応じて開いたストアとその後始末を保持する。
type backend struct {
	store   kvstore.Store
	checker handler.HealthChecker // インメモリの場合はnil
	close   func() error
}

// openBackend はSTORE_BACKENDに応じたストアを開き、疎通を確認する。
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := database.Open(cfg.DatabaseURL, database.DefaultPoolConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		store := kvstore.NewPostgresStore(db)
		if err := store.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established", slog.String("url", redactURL(cfg.DatabaseURL)))
		return &backend{store: store, checker: store, close: db.Close}, nil

	case config.StoreRedis:
		client, err := kvstore.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		store := kvstore.NewRedisStore(client)
		if err := store.Ping(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("redis connection established", slog.String("url", redactURL(cfg.RedisURL)))
		return &backend{store: store, checker: store, close: client.Close}, nil

	default:
		slog.Warn("using in-memory store; data is lost on restart")
		return &backend{store: kvstore.NewMemoryStore(), close: func() error { return nil }}, nil
	}
}

// appStore はバックエンドのストアに名前空間とメトリクス計測を重ねる。
func appStore(b *backend, collector *metrics.Collector) kvstore.Store {
	return kvstore.Instrument(kvstore.WithNamespace(b.store, keyNamespace), collector)
}

// components はHTTPサーバーが使用する依存関係。
type components struct {
	registry  *prometheus.Registry
	collector *metrics.Collector
	sessions  *repository.KVSessionRepo
	router    http.Handler
	limiter   *middleware.RateLimiter
}

// newComponents はストアの上にリポジトリ・サービス・ルーターを構築する。
func newComponents(cfg *config.Config, b *backend) (*components, error) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	store := appStore(b, collector)

	// 1. リポジトリの初期化
	accountRepo := repository.NewKVAccountRepo(store)
	profileRepo := repository.NewKVProfileRepo(store)
	sessionRepo := repository.NewKVSessionRepo(store)
	checkInRepo := repository.NewKVCheckInRepo(store)
	streakRepo := repository.NewKVStreakRepo(store)
	journalRepo := repository.NewKVJournalRepo(store)
	contactsRepo := repository.NewKVContactsRepo(store)
	periodRepo := repository.NewKVPeriodRepo(store)

	// 2. ドメインサービスの初期化
	verifier, err := auth.NewPasswordVerifier(cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}
	predictor, ok := cycle.NewPredictor(cfg.CyclePrediction)
	if !ok {
		return nil, fmt.Errorf("unsupported cycle prediction mode: %q", cfg.CyclePrediction)
	}

	authService := auth.NewService(
		accountRepo, profileRepo, sessionRepo, verifier,
		auth.ServiceConfig{SessionMaxAge: time.Duration(cfg.SessionMaxAge) * time.Second},
	)
	checkinService := checkin.NewService(checkInRepo, streakRepo, collector, cfg.Location)

	client := api.NewClient(api.Services{
		Auth:     authService,
		CheckIn:  checkinService,
		Journal:  journal.NewService(journalRepo),
		Contacts: contacts.NewService(contactsRepo),
		Cycle:    cycle.NewService(periodRepo, predictor, cfg.Location),
	}, api.Latency{
		Auth:    cfg.SimulatedAuthLatency,
		Default: cfg.SimulatedLatency,
	}, collector)

	// 3. ルーターの構築
	limiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		SessionFinder:     sessionRepo,
		Tokens:            auth.NewTokenManager(cfg.SessionSecret),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		SecureTransport:   cfg.CookieSecure,
		RateLimiter:       limiter,
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		StatusRecorder: collector,
		HealthChecker:  b.checker,
		MetricsHandler: metrics.Handler(registry),

		AuthBackend: client,
		Sessions:    authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		Backend: client,
		Today:   checkinService,
	})

	return &components{
		registry:  registry,
		collector: collector,
		sessions:  sessionRepo,
		router:    router,
		limiter:   limiter,
	}, nil
}
