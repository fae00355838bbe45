package query

import (
	"context"
	"errors"
	"time"
)

// ErrExecution wraps every database failure and carries the driver message.
var ErrExecution = errors.New("database error")

type Request struct {
	SQL string
}

// Result is the tabular outcome of one statement. A statement without a
// result descriptor yields empty Columns and Rows.
type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}
