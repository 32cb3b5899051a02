package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"edoquery/pkg/logger"
	"edoquery/pkg/metrics"
	"edoquery/pkg/otel"
	"edoquery/pkg/util"
)

const defaultSlowThreshold = 500 * time.Millisecond

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Executor runs one named statement at a time and maps its rows. It records
// latency metrics, logs slow statements and opens a tracing span per call.
type Executor struct {
	db            Querier
	dialect       Dialect
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewExecutor wraps db. A zero slowThreshold means 500ms.
func NewExecutor(db Querier, dialect Dialect, logger *zap.Logger, slowThreshold time.Duration) *Executor {
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		db:            db,
		dialect:       dialect,
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

// Dialect returns the dialect statements are rebound for.
func (e *Executor) Dialect() Dialect {
	return e.dialect
}

// Query executes query (written with ? placeholders) and maps every row with
// schema. Driver errors are returned unchanged.
func (e *Executor) Query(ctx context.Context, name, query string, schema Schema, args ...any) ([]Row, error) {
	log := logger.WithTrace(ctx, e.logger).With(zap.String("query", name))

	bound, err := e.dialect.Rebind(query)
	if err != nil {
		log.Error("Failed to bind placeholders", zap.Error(err))
		return nil, err
	}

	ctx, span := otel.DBSpan(ctx, e.dialect.Name, name, bound)
	start := time.Now()

	rows, err := e.db.QueryContext(ctx, bound, args...)
	if err != nil {
		e.fail(log, name, start, err)
		otel.EndDBSpan(span, 0, err)
		return nil, err
	}
	defer rows.Close()

	results, err := MapRows(rows, schema)
	if err != nil {
		e.fail(log, name, start, err)
		otel.EndDBSpan(span, 0, err)
		return nil, err
	}

	took := time.Since(start)
	metrics.RecordDBQueryDuration(name, "ok", took)
	metrics.AddRowsReturned(name, len(results))
	otel.EndDBSpan(span, len(results), nil)

	if took > e.slowThreshold {
		log.Warn("slow-query",
			zap.Duration("took", took),
			zap.String("sql", truncate(bound, 200)),
		)
		metrics.IncrementSlowQuery(name)
	}

	log.Debug("Query completed", zap.Int("rows", len(results)), zap.Duration("took", took))
	return results, nil
}

// QueryOne returns the first mapped row. ok is false when nothing matched.
func (e *Executor) QueryOne(ctx context.Context, name, query string, schema Schema, args ...any) (Row, bool, error) {
	rows, err := e.Query(ctx, name, query, schema, args...)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

func (e *Executor) fail(log *zap.Logger, name string, start time.Time, err error) {
	errType := util.ClassifyDBError(err)
	metrics.RecordDBQueryDuration(name, "error", time.Since(start))
	metrics.IncrementQueryError(name, errType)
	log.Error("Query failed", zap.String("error_type", errType), zap.Error(err))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
