package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	go_ora "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"

	"edoquery/pkg/config"
)

// NewConnection opens the EDO connection pool described by cfg and pings it.
// With cfg.Fake set the sandbox Postgres replica at cfg.FakeDSN is used
// instead of Oracle.
func NewConnection(cfg config.EdoDBConfig, logger *zap.Logger) (*sql.DB, Dialect, error) {
	var (
		pool    *sql.DB
		dialect Dialect
	)

	switch {
	case cfg.Fake || cfg.Driver == "pgx":
		dsn := cfg.FakeDSN
		logger.Info("Initializing EDO sandbox connection pool", zap.Bool("fake", cfg.Fake))

		connCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			logger.Error("Failed to parse sandbox db config", zap.Error(err))
			return nil, Dialect{}, fmt.Errorf("failed to parse db config: %w", err)
		}
		pool = stdlib.OpenDB(*connCfg)
		dialect = Postgres

	case cfg.Driver == "" || cfg.Driver == "oracle":
		logger.Info("Initializing EDO Oracle connection pool",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("service", cfg.Service),
		)

		dsn := go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.Service, cfg.User, cfg.Password, nil)
		var err error
		pool, err = sql.Open(Oracle.DriverName, dsn)
		if err != nil {
			logger.Error("Failed to open Oracle pool", zap.Error(err))
			return nil, Dialect{}, fmt.Errorf("failed to open db: %w", err)
		}
		dialect = Oracle

	default:
		return nil, Dialect{}, fmt.Errorf("unsupported edodb driver %q", cfg.Driver)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(2)
	pool.SetConnMaxIdleTime(time.Minute)

	logger.Info("Applying connection pool settings",
		zap.Int("max_open_conns", maxOpen),
		zap.Duration("max_idle_time", time.Minute),
	)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.PingContext(pingCtx); err != nil {
		logger.Error("EDO database ping failed", zap.Error(err))
		_ = pool.Close()
		return nil, Dialect{}, fmt.Errorf("failed to ping: %w", err)
	}

	logger.Info("EDO database connection established successfully", zap.String("dialect", dialect.Name))
	return pool, dialect, nil
}
