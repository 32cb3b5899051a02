// Package edo is the query catalog for the campus EDO (Enterprise Data
// Operations) database: course sections, enrollments, rosters, transfer
// credit and instructor history.
//
// Statements are written with ? bind markers; the executor rebinds them for
// Oracle or the Postgres sandbox. Identifier lists that vary in length (term
// filters, section ids) are rendered as literal lists by QueryList.
package edo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"edoquery/internal/terms"
	"edoquery/pkg/db"
	"edoquery/pkg/metrics"
)

// ReferenceCache stores encoded results of reference queries whose columns
// are all text. Implementations must be safe for concurrent use.
type ReferenceCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Queries exposes the catalog operations. "One" operations return
// (row, false, nil) when nothing matched; list operations return an empty,
// non-nil slice.
type Queries struct {
	exec   *db.Executor
	cache  ReferenceCache
	logger *zap.Logger
}

// Option configures Queries.
type Option func(*Queries)

// WithReferenceCache enables read-through caching of reference queries.
func WithReferenceCache(c ReferenceCache) Option {
	return func(q *Queries) {
		q.cache = c
	}
}

// NewQueries builds the catalog on top of exec.
func NewQueries(exec *db.Executor, logger *zap.Logger, opts ...Option) *Queries {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queries{exec: exec, logger: logger}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queries) list(ctx context.Context, name, query string, schema db.Schema, args ...any) ([]db.Row, error) {
	return q.exec.Query(ctx, name, query, schema, args...)
}

func (q *Queries) one(ctx context.Context, name, query string, schema db.Schema, args ...any) (db.Row, bool, error) {
	return q.exec.QueryOne(ctx, name, query, schema, args...)
}

// exists runs a COUNT(*) AS history_count statement.
func (q *Queries) exists(ctx context.Context, name, query string, args ...any) (bool, error) {
	row, ok, err := q.one(ctx, name, query, historyCountSchema, args...)
	if err != nil || !ok {
		return false, err
	}
	n, _ := row.Int("history_count")
	return n > 0, nil
}

// cachedList serves text-only reference results from the cache when one is
// configured. Keys are namespaced by dialect so the sandbox and production
// never share entries. Empty results are not stored. Cache failures are
// logged and fall through to the database.
func (q *Queries) cachedList(ctx context.Context, key, name, query string, schema db.Schema, args ...any) ([]db.Row, error) {
	if q.cache == nil || !schema.TextOnly() {
		return q.list(ctx, name, query, schema, args...)
	}

	cacheKey := "edo:" + q.exec.Dialect().Name + ":" + key
	if data, ok, err := q.cache.Get(ctx, cacheKey); err != nil {
		metrics.IncrementCacheLookup(name, "error")
		q.logger.Warn("Reference cache read failed", zap.String("key", cacheKey), zap.Error(err))
	} else if ok {
		var rows []db.Row
		if err := json.Unmarshal(data, &rows); err == nil {
			metrics.IncrementCacheLookup(name, "hit")
			if rows == nil {
				rows = make([]db.Row, 0)
			}
			return rows, nil
		}
		q.logger.Warn("Discarding undecodable cache entry", zap.String("key", cacheKey))
	} else {
		metrics.IncrementCacheLookup(name, "miss")
	}

	rows, err := q.list(ctx, name, query, schema, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if data, err := json.Marshal(rows); err == nil {
		if err := q.cache.Set(ctx, cacheKey, data); err != nil {
			q.logger.Warn("Reference cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return rows, nil
}

// termClause renders "AND col IN (...)" for a non-empty filter and "" for an
// empty one.
func termClause(col string, filter terms.Filter) (string, error) {
	if filter.Empty() {
		return "", nil
	}
	list, err := TermsQueryList(filter)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("AND %s IN (%s)", col, list), nil
}

func blank(ids ...string) bool {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return true
		}
	}
	return false
}

func emptyRows() []db.Row {
	return make([]db.Row, 0)
}
