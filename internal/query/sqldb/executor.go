// Package sqldb executes statements against a relational database through
// database/sql drivers, one connection per call.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "modernc.org/sqlite"

	"github.com/bookquery/bookquery/internal/config"
	"github.com/bookquery/bookquery/internal/observability"
	"github.com/bookquery/bookquery/internal/query"
)

// Opener returns a ready connection handle. The executor closes it.
type Opener func(ctx context.Context, driverName, dsn string) (*sqlx.DB, error)

type Config struct {
	Driver  string
	DSN     string
	Timeout time.Duration
}

type Executor struct {
	driverName string
	dsn        string
	timeout    time.Duration
	open       Opener
	logger     *slog.Logger
}

func ConfigFrom(cfg config.Config) (Config, error) {
	dsn, err := DSN(cfg.Database)
	if err != nil {
		return Config{}, err
	}
	return Config{Driver: cfg.Database.Driver, DSN: dsn, Timeout: cfg.Query.Timeout}, nil
}

func NewExecutor(cfg Config, logger *slog.Logger) (*Executor, error) {
	driverName, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	return &Executor{
		driverName: driverName,
		dsn:        cfg.DSN,
		timeout:    cfg.Timeout,
		open:       sqlx.ConnectContext,
		logger:     observability.LoggerOrDiscard(logger),
	}, nil
}

// WithOpener swaps the connection factory, mainly for tests.
func (e *Executor) WithOpener(open Opener) *Executor {
	if open != nil {
		e.open = open
	}
	return e
}

func (e *Executor) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	start := time.Now()
	sqlText := strings.TrimSpace(request.SQL)
	if sqlText == "" {
		return query.Result{}, fmt.Errorf("%w: sql is required", query.ErrExecution)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result, err := e.run(ctx, sqlText)
	elapsed := time.Since(start)
	attrs := append(observability.RequestAttrs(ctx), "driver", e.driverName, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		observability.ObserveExecution(observability.OutcomeQueryFailed, 0, elapsed)
		e.logger.WarnContext(ctx, "query execution failed", append(attrs, "error", err.Error())...)
		return query.Result{}, fmt.Errorf("%w: %w", query.ErrExecution, err)
	}
	result.Duration = elapsed
	observability.ObserveExecution(observability.OutcomeSuccess, len(result.Rows), elapsed)
	e.logger.InfoContext(ctx, "query executed", append(attrs, "rows", len(result.Rows), "columns", len(result.Columns))...)
	return result, nil
}

// HealthCheck opens and closes one connection against the configured database.
func (e *Executor) HealthCheck(ctx context.Context) error {
	db, err := e.open(ctx, e.driverName, e.dsn)
	if err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	return db.Close()
}

func (e *Executor) run(ctx context.Context, sqlText string) (result query.Result, err error) {
	db, err := e.open(ctx, e.driverName, e.dsn)
	if err != nil {
		return query.Result{}, fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close connection: %w", closeErr)
		}
	}()

	rows, err := db.QueryxContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, fmt.Errorf("query columns: %w", err)
	}
	if columns == nil {
		columns = []string{}
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return query.Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return query.Result{}, fmt.Errorf("query timed out: %w", err)
		}
		return query.Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	return query.Result{Columns: columns, Rows: resultRows}, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}
