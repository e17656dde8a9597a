package telemetry

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig holds database metrics configuration.
type DBMetricsConfig struct {
	SlowQueryThreshold time.Duration
	PoolStatsInterval  time.Duration
}

// DBMetrics records query counts, latency and connection pool usage.
type DBMetrics struct {
	poolConnections    *Gauge
	poolConnectionsMax *Gauge
	queryTotal         *Counter
	queryDuration      *Histogram
	slowQueryTotal     *Counter

	config   DBMetricsConfig
	logger   *zap.Logger
	sqlDB    *sql.DB
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewDBMetrics creates the database instruments on meter
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}

	m := &DBMetrics{config: cfg, logger: logger, stopCh: make(chan struct{})}
	var err error
	if m.poolConnections, err = NewGauge(meter, "db_pool_connections", "Connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	if m.poolConnectionsMax, err = NewGauge(meter, "db_pool_connections_max", "Maximum open connections", "{connection}"); err != nil {
		return nil, err
	}
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the threshold by table", "{query}"); err != nil {
		return nil, err
	}
	return m, nil
}

// Register hooks query metrics into db and remembers its pool for
// StartPoolStatsCollection.
func (m *DBMetrics) Register(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	m.sqlDB = sqlDB
	return registerTimed(db, "db_metrics", func(db *gorm.DB, operation string, elapsed time.Duration) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		m.RecordQuery(ctx, operation, db.Statement.Table, elapsed)
	})
}

// RecordQuery records one executed statement
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, elapsed time.Duration) {
	if operation == "" {
		operation = "OTHER"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(operation))

	if elapsed > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// StartPoolStatsCollection samples pool stats until Stop or ctx is done.
// Register must have been called first.
func (m *DBMetrics) StartPoolStatsCollection(ctx context.Context) {
	if m.sqlDB == nil {
		m.logger.Warn("Cannot start pool stats collection: database not registered")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()

		m.collectPoolStats(ctx)
		for {
			select {
			case <-ticker.C:
				m.collectPoolStats(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *DBMetrics) collectPoolStats(ctx context.Context) {
	stats := m.sqlDB.Stats()
	m.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool stats collection. Safe to call more than once.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}
