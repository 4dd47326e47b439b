// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層、ミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordSignup()
	RecordAuthFailure(reason string)
	RecordCheckIn(streakCurrent int)
	RecordHTTPStatus(statusCode int)
	RecordSessionsCleaned(count int)
	ObserveStoreOp(op string, duration time.Duration, err error)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signups       prometheus.Counter
	authFailures  *prometheus.CounterVec
	checkIns      prometheus.Counter
	streakLength  prometheus.Histogram
	httpStatus    *prometheus.CounterVec
	sessionsClean prometheus.Counter
	storeLatency  *prometheus.HistogramVec
	storeErrors   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moodglow_signups_total",
			Help: "新規サインアップの合計数",
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moodglow_auth_failures_total",
			Help: "認証失敗の理由別の合計数",
		}, []string{"reason"}),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moodglow_checkins_total",
			Help: "気分チェックイン保存の合計数",
		}),
		streakLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "moodglow_streak_current_days",
			Help:    "チェックイン保存時点の連続日数",
			Buckets: []float64{1, 2, 3, 7, 14, 30, 60, 100, 365},
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moodglow_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsClean: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moodglow_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "moodglow_store_op_latency_seconds",
			Help:    "キーバリューストア操作のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moodglow_store_op_errors_total",
			Help: "キーバリューストア操作の失敗数",
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.signups,
		c.authFailures,
		c.checkIns,
		c.streakLength,
		c.httpStatus,
		c.sessionsClean,
		c.storeLatency,
		c.storeErrors,
	)

	return c
}

// RecordSignup はサインアップ成功を記録する。
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordAuthFailure は認証失敗を記録する。reasonはエラーコード。
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

// RecordCheckIn はチェックイン保存と保存後の連続日数を記録する。
func (c *Collector) RecordCheckIn(streakCurrent int) {
	c.checkIns.Inc()
	c.streakLength.Observe(float64(streakCurrent))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsCleaned は削除したセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int) {
	c.sessionsClean.Add(float64(count))
}

// ObserveStoreOp はストア操作のレイテンシと失敗を記録する。
func (c *Collector) ObserveStoreOp(op string, duration time.Duration, err error) {
	c.storeLatency.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		c.storeErrors.WithLabelValues(op).Inc()
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// 一部のメトリクスの収集に失敗しても残りは返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Nop は何も記録しないMetricsCollector。メトリクスを使用しない構成とテストで使用する。
type Nop struct{}

func (Nop) RecordSignup()                               {}
func (Nop) RecordAuthFailure(string)                    {}
func (Nop) RecordCheckIn(int)                           {}
func (Nop) RecordHTTPStatus(int)                        {}
func (Nop) RecordSessionsCleaned(int)                   {}
func (Nop) ObserveStoreOp(string, time.Duration, error) {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
