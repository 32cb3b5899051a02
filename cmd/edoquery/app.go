package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"edoquery/internal/edo"
	"edoquery/internal/terms"
	"edoquery/pkg/circuitbreaker"
	"edoquery/pkg/config"
	"edoquery/pkg/db"
	"edoquery/pkg/redis"
)

// app holds what the subcommands share. The database is opened on first use
// so reference-only commands work offline.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	format  string
	queries *edo.Queries
	closers []func()
}

// Queries returns the catalog, connecting on first call.
func (a *app) Queries() (*edo.Queries, error) {
	if a.queries != nil {
		return a.queries, nil
	}

	conn, dialect, err := db.NewConnection(a.cfg.EdoDB, a.log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = conn.Close() })

	exec := db.NewExecutor(conn, dialect, a.log, time.Duration(a.cfg.EdoDB.SlowQueryMS)*time.Millisecond)

	var opts []edo.Option
	if rdb := redis.NewRedisClient(a.cfg.Redis); rdb != nil {
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		ttl := time.Duration(a.cfg.Redis.TTLSeconds) * time.Second
		onChange := circuitbreaker.OnStateChange(func(from, to circuitbreaker.State) {
			a.log.Warn("Reference cache breaker changed state", zap.Stringer("from", from), zap.Stringer("to", to))
		})
		cache := redis.NewReferenceCache(rdb, ttl, onChange)
		a.log.Info("Reference cache enabled",
			zap.String("addr", a.cfg.Redis.Addr),
			zap.Duration("ttl", cache.TTL()),
		)
		opts = append(opts, edo.WithReferenceCache(cache))
	}

	a.queries = edo.NewQueries(exec, a.log, opts...)
	return a.queries, nil
}

// Terms loads the term catalog from the definitions file or the database.
func (a *app) Terms(ctx context.Context) (*terms.Catalog, error) {
	if a.cfg.Features.HubTermAPI {
		a.log.Warn("Hub term API is not available from this tool; using local term sources")
	}

	if a.cfg.Terms.UseTermDefinitionsFile {
		a.log.Debug("Loading term definitions file", zap.String("path", a.cfg.Terms.DefinitionsPath))
		return terms.LoadDefinitionsFile(a.cfg.Terms.DefinitionsPath)
	}

	q, err := a.Queries()
	if err != nil {
		return nil, err
	}
	rows, err := q.Terms(ctx)
	if err != nil {
		return nil, err
	}
	return terms.FromRows(rows)
}

// Now returns the configured fake time in sandbox mode, else the wall clock.
func (a *app) Now() (time.Time, error) {
	if a.cfg.Terms.FakeNow == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, a.cfg.Terms.FakeNow)
	if err != nil {
		t, err = time.Parse("2006-01-02", a.cfg.Terms.FakeNow)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid terms.fake_now %q: %w", a.cfg.Terms.FakeNow, err)
	}
	return t, nil
}

// Close releases connections and flushes spans, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.log != nil {
		_ = a.log.Sync()
	}
}
