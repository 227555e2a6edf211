package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DBPoolConnections reports pgxpool connection counts by state:
	// open, in_use, idle and max.
	DBPoolConnections = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_connections",
			Help:      "Database pool connections by state.",
		},
		[]string{"state"},
	)

	DBAcquireWaitSeconds = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "acquire_wait_seconds",
			Help:      "Cumulative time spent waiting for a pool connection.",
		},
	)

	DBQueryDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Repository operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10),
		},
		[]string{"operation"},
	)

	DBErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Repository operation failures by error class.",
		},
		[]string{"operation", "error_type"},
	)
)

// DBCollector samples pgxpool.Stat into DBPoolConnections.
type DBCollector struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewDBCollector(pool *pgxpool.Pool) *DBCollector {
	return &DBCollector{pool: pool, done: make(chan struct{})}
}

// Start blocks, sampling once up front and then every interval, until ctx is
// done or Stop is called.
func (c *DBCollector) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	stopped := c.isStopped()
	c.mu.Unlock()
	defer cancel()
	if stopped {
		return
	}

	c.collect()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop may be called any number of times, before or after Start.
func (c *DBCollector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isStopped() {
		close(c.done)
	}
	if c.cancel != nil {
		c.cancel()
	}
}

// isStopped requires c.mu.
func (c *DBCollector) isStopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *DBCollector) collect() {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()
	for state, n := range map[string]int32{
		"open":   stat.TotalConns(),
		"in_use": stat.AcquiredConns(),
		"idle":   stat.IdleConns(),
		"max":    stat.MaxConns(),
	} {
		DBPoolConnections.WithLabelValues(state).Set(float64(n))
	}
	DBAcquireWaitSeconds.Set(stat.AcquireDuration().Seconds())
}

// RecordQuery observes one repository call. Defer it so err is final:
//
//	defer func() { metrics.RecordQuery("events.list", start, err) }()
func RecordQuery(operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DBErrors.WithLabelValues(operation, classify(err)).Inc()
	}
}

func classify(err error) string {
	if errors.Is(err, pgx.ErrNoRows) {
		return "no_rows"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if pgErr := (*pgconn.PgError)(nil); errors.As(err, &pgErr) {
		return "sqlstate_" + pgErr.Code
	}
	return "query_error"
}
