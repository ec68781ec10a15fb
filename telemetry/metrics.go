// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	ChatLinesReceived prometheus.Counter
	CommandsRouted    *prometheus.CounterVec // labels: command, outcome
	CommandsDenied    prometheus.Counter
	StealAttempts     *prometheus.CounterVec // labels: result
	Purchases         prometheus.Counter
	PlayRequests      prometheus.Counter
	StoreErrors       prometheus.Counter
	TokenRefreshes    *prometheus.CounterVec // labels: result

	// Histograms (seconds)
	RouteDuration prometheus.Observer

	// Gauges
	AudienceSizeGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		ChatLinesReceived = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_thief_chat_lines_total", Help: "Number of chat lines received"})
		CommandsRouted = promauto.NewCounterVec(prometheus.CounterOpts{Name: "chat_thief_commands_routed_total", Help: "Commands dispatched by route and outcome"}, []string{"command", "outcome"})
		CommandsDenied = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_thief_commands_denied_total", Help: "Commands dropped by a permission tier check"})
		StealAttempts = promauto.NewCounterVec(prometheus.CounterOpts{Name: "chat_thief_steal_attempts_total", Help: "Steal attempts by result"}, []string{"result"})
		Purchases = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_thief_purchases_total", Help: "Commands bought with cool points"})
		PlayRequests = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_thief_play_requests_total", Help: "Sound effect plays queued for the player"})
		StoreErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_thief_store_errors_total", Help: "Commands that failed with a document store error"})
		TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{Name: "chat_thief_oauth_refreshes_total", Help: "Bot token refresh attempts by result"}, []string{"result"})
		RouteDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "chat_thief_route_duration_seconds", Help: "Time spent handling one chat command", Buckets: prometheus.DefBuckets})
		AudienceSizeGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "chat_thief_audience_size", Help: "Users seen in chat within the audience window"})
	})
}

// IncCommand counts one routed command.
func IncCommand(command, outcome string) {
	if CommandsRouted != nil {
		CommandsRouted.WithLabelValues(command, outcome).Inc()
	}
}

// IncSteal counts one steal attempt.
func IncSteal(result string) {
	if StealAttempts != nil {
		StealAttempts.WithLabelValues(result).Inc()
	}
}

// IncRefresh counts one token refresh attempt.
func IncRefresh(result string) {
	if TokenRefreshes != nil {
		TokenRefreshes.WithLabelValues(result).Inc()
	}
}

// Inc increments c if it has been registered.
func Inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// SetAudienceSize records the current audience pool size.
func SetAudienceSize(n int) {
	if AudienceSizeGauge != nil {
		AudienceSizeGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
