package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"edoquery/pkg/metrics"
)

func newMockExecutor(t *testing.T, dialect Dialect) (*Executor, sqlmock.Sqlmock, *observer.ObservedLogs) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	return NewExecutor(db, dialect, zap.New(core), 0), mock, logs
}

func TestExecutor_Query(t *testing.T) {
	exec, mock, _ := newMockExecutor(t, Oracle)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT term_id FROM enr WHERE uid = :1 AND term_id IN ('2178')")).
		WithArgs("799934").
		WillReturnRows(sqlmock.NewRows([]string{"TERM_ID"}).AddRow(int64(2178)).AddRow(int64(2178)))

	rows, err := exec.Query(context.Background(), "executor_test_query",
		"SELECT term_id FROM enr WHERE uid = ? AND term_id IN ('2178')",
		Schema{"term_id": KindString}, "799934")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2178", rows[0]["term_id"])
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.DBRowsReturned.WithLabelValues("executor_test_query")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_QueryErrorIsReturnedUnchanged(t *testing.T) {
	exec, mock, logs := newMockExecutor(t, Question)

	driverErr := errors.New("ORA-03113: end-of-file on communication channel")
	mock.ExpectQuery("SELECT").WillReturnError(driverErr)

	rows, err := exec.Query(context.Background(), "executor_test_error", "SELECT 1 FROM DUAL", nil)
	assert.Nil(t, rows)
	assert.Same(t, driverErr, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DBQueryErrors.WithLabelValues("executor_test_error", "oracle")))
	assert.Equal(t, 1, logs.FilterMessage("Query failed").Len())
}

func TestExecutor_QueryOne(t *testing.T) {
	tests := []struct {
		name   string
		rows   *sqlmock.Rows
		wantOK bool
	}{
		{
			name:   "first row",
			rows:   sqlmock.NewRows([]string{"concurrent_status"}).AddRow("Y").AddRow("N"),
			wantOK: true,
		},
		{
			name:   "no rows is absent",
			rows:   sqlmock.NewRows([]string{"concurrent_status"}),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, mock, _ := newMockExecutor(t, Question)
			mock.ExpectQuery("SELECT").WillReturnRows(tt.rows)

			row, ok, err := exec.QueryOne(context.Background(), "executor_test_one", "SELECT 1", Schema{"concurrent_status": KindFlag})
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				flag, _ := row.Flag("concurrent_status")
				assert.Equal(t, "Y", flag)
			} else {
				assert.Nil(t, row)
			}
		})
	}
}

func TestExecutor_SlowQueryIsLogged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	core, logs := observer.New(zapcore.WarnLevel)
	exec := NewExecutor(db, Question, zap.New(core), 1)

	mock.ExpectQuery("SELECT").WillDelayFor(5 * time.Millisecond).WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow("x"))

	_, err = exec.Query(context.Background(), "executor_test_slow", "SELECT a FROM t", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("slow-query").Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DBSlowQueryCount.WithLabelValues("executor_test_slow")))
}

func TestExecutor_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	exec, mock, _ := newMockExecutor(t, Oracle)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("boom"))

	_, err := exec.Query(context.Background(), "executor_test_span", "SELECT 1", nil)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "edo.executor_test_span", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestNewExecutor_Defaults(t *testing.T) {
	exec := NewExecutor(nil, Oracle, nil, 0)
	assert.Equal(t, defaultSlowThreshold, exec.slowThreshold)
	assert.NotNil(t, exec.logger)
	assert.Equal(t, Oracle.Name, exec.Dialect().Name)
}
