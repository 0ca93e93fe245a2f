package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	generationRequests *CounterVec
	generationLatency  *HistogramVec
	generationTokens   *CounterVec

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	sessionStages  *CounterVec
	reviewOutcomes *CounterVec
	notifications  *CounterVec

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initMu   sync.Mutex
	instance *Metrics
)

// Current returns the process-wide metrics registry, or nil when metrics are disabled.
func Current() *Metrics {
	return instance
}

func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initMu.Lock()
	defer initMu.Unlock()
	if instance != nil {
		return instance
	}
	latency := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
	instance = &Metrics{
		apiRequests: NewCounterVec("cr_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("cr_api_request_duration_seconds", "API request latency in seconds.", []string{"method", "route", "status"}, latency),
		apiInflight: NewGauge("cr_api_inflight_requests", "In-flight API requests."),

		generationRequests: NewCounterVec("cr_generation_requests_total", "Generator calls by provider/stage/status.", []string{"provider", "stage", "status"}),
		generationLatency: NewHistogramVec(
			"cr_generation_duration_seconds",
			"Generator call latency in seconds.",
			[]string{"provider", "stage"},
			[]float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		),
		generationTokens: NewCounterVec("cr_generation_tokens_total", "Generator token usage.", []string{"provider", "kind"}),

		aggregateOps:       NewCounterVec("cr_aggregate_operations_total", "Aggregate write operations by name/status.", []string{"operation", "status"}),
		aggregateLatency:   NewHistogramVec("cr_aggregate_operation_duration_seconds", "Aggregate write latency.", []string{"operation"}, latency),
		aggregateConflicts: NewCounterVec("cr_aggregate_conflicts_total", "Aggregate optimistic-concurrency conflicts.", []string{"operation"}),
		aggregateRetries:   NewCounterVec("cr_aggregate_retries_total", "Aggregate retryable failures.", []string{"operation"}),

		sessionStages:  NewCounterVec("cr_session_stage_commits_total", "Committed session stage transitions.", []string{"stage"}),
		reviewOutcomes: NewCounterVec("cr_review_outcomes_total", "Submission review outcomes.", []string{"status"}),
		notifications:  NewCounterVec("cr_notifications_total", "Notifications by type and delivery result.", []string{"type", "result"}),

		pgStats:   NewGaugeVec("cr_postgres_pool", "Postgres pool stats.", []string{"stat"}),
		redisUp:   NewGauge("cr_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("cr_redis_ping_seconds", "Redis ping latency in seconds."),
	}
	return instance
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.generationRequests, m.generationLatency, m.generationTokens,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.sessionStages, m.reviewOutcomes, m.notifications,
		m.pgStats, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orDefault(method, "UNKNOWN")
	route = orDefault(route, "unknown")
	status = orDefault(status, "0")
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveGeneration records one generator call. status is "ok", "timeout", "invalid" or "error".
func (m *Metrics) ObserveGeneration(provider, stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	provider = orDefault(provider, "unknown")
	stage = orDefault(stage, "unknown")
	m.generationRequests.Inc(provider, stage, orDefault(status, "unknown"))
	if dur > 0 {
		m.generationLatency.Observe(dur.Seconds(), provider, stage)
	}
}

func (m *Metrics) AddGenerationTokens(provider string, input, output int) {
	if m == nil {
		return
	}
	provider = orDefault(provider, "unknown")
	if input > 0 {
		m.generationTokens.Add(float64(input), provider, "input")
	}
	if output > 0 {
		m.generationTokens.Add(float64(output), provider, "output")
	}
}

func (m *Metrics) ObserveAggregateOperation(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	operation = orDefault(operation, "unknown")
	m.aggregateOps.Inc(operation, orDefault(status, "unknown"))
	m.aggregateLatency.Observe(dur.Seconds(), operation)
}

func (m *Metrics) IncAggregateConflict(operation string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(orDefault(operation, "unknown"))
}

func (m *Metrics) IncAggregateRetry(operation string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(orDefault(operation, "unknown"))
}

func (m *Metrics) IncSessionStage(stage string) {
	if m == nil {
		return
	}
	m.sessionStages.Inc(orDefault(stage, "unknown"))
}

func (m *Metrics) IncReviewOutcome(status string) {
	if m == nil {
		return
	}
	m.reviewOutcomes.Inc(orDefault(status, "unknown"))
}

func (m *Metrics) IncNotification(kind, result string) {
	if m == nil {
		return
	}
	m.notifications.Inc(orDefault(kind, "unknown"), orDefault(result, "unknown"))
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, every time.Duration) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: postgres collector disabled", "error", err)
		}
		return
	}
	if every <= 0 {
		every = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient, every time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if every <= 0 {
		every = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				err := rdb.Ping(pingCtx).Err()
				cancel()
				if err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Debug("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
