package util

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ClassifyDBError returns a short label for err suitable for a metric label.
// It never alters err; callers still return the original error.
func ClassifyDBError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return "connection"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "connection"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return "postgres"
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "ORA-"):
		return "oracle"
	case strings.Contains(errStr, "connection"):
		return "connection"
	case strings.Contains(errStr, "timeout"):
		return "timeout"
	}

	return "unknown"
}
