// Package archive stores each answered question as a one-row parquet object.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/bookquery/bookquery/internal/observability"
	"github.com/bookquery/bookquery/internal/storage"
)

const parquetContentType = "application/vnd.apache.parquet"

type Run struct {
	RunID       string   `parquet:"run_id" json:"run_id"`
	SessionID   string   `parquet:"session_id" json:"session_id,omitempty"`
	Question    string   `parquet:"question" json:"question"`
	SQL         string   `parquet:"sql" json:"sql"`
	Model       string   `parquet:"model" json:"model"`
	Columns     []string `parquet:"columns,list" json:"columns"`
	RowCount    int64    `parquet:"row_count" json:"row_count"`
	DurationMS  int64    `parquet:"duration_ms" json:"duration_ms"`
	CreatedAtMS int64    `parquet:"created_at_ms" json:"created_at_ms"`
}

type Archiver struct {
	store  storage.ObjectStore
	logger *slog.Logger
	now    func() time.Time
}

func New(store storage.ObjectStore, logger *slog.Logger) (*Archiver, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	return &Archiver{
		store:  store,
		logger: observability.LoggerOrDiscard(logger),
		now:    time.Now,
	}, nil
}

// Write encodes run and uploads it, returning the object key.
func (a *Archiver) Write(ctx context.Context, run Run) (string, error) {
	now := a.now().UTC()
	if strings.TrimSpace(run.RunID) == "" {
		run.RunID = uuid.NewString()
	}
	if run.CreatedAtMS == 0 {
		run.CreatedAtMS = now.UnixMilli()
	}
	key, err := storage.BuildRunPath(time.UnixMilli(run.CreatedAtMS), run.RunID)
	if err != nil {
		return "", err
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[Run](buf)
	if _, err := writer.Write([]Run{run}); err != nil {
		return "", fmt.Errorf("encode run parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close run parquet writer: %w", err)
	}

	if _, err := a.store.Put(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), storage.PutOptions{ContentType: parquetContentType}); err != nil {
		return "", err
	}
	return key, nil
}

// Record writes run and only logs a failure. Callers never see archive errors.
func (a *Archiver) Record(ctx context.Context, run Run) {
	key, err := a.Write(ctx, run)
	if err != nil {
		observability.IncrementArchiveFailure()
		a.logger.WarnContext(ctx, "archive run failed", append(observability.RequestAttrs(ctx), "error", err.Error())...)
		return
	}
	a.logger.DebugContext(ctx, "run archived", append(observability.RequestAttrs(ctx), "key", key)...)
}

func (a *Archiver) Read(ctx context.Context, key string) (Run, error) {
	reader, err := a.store.Get(ctx, key)
	if err != nil {
		return Run{}, err
	}
	defer func() { _ = reader.Close() }()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return Run{}, fmt.Errorf("read run object %q: %w", key, err)
	}
	rows, err := parquet.Read[Run](bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return Run{}, fmt.Errorf("decode run parquet %q: %w", key, err)
	}
	if len(rows) != 1 {
		return Run{}, fmt.Errorf("run object %q holds %d rows", key, len(rows))
	}
	return rows[0], nil
}

// List returns the keys archived on the UTC day of day.
func (a *Archiver) List(ctx context.Context, day time.Time) ([]string, error) {
	items, err := a.store.List(ctx, storage.RunDayPrefix(day))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		if strings.HasSuffix(item.Key, ".parquet") {
			keys = append(keys, item.Key)
		}
	}
	return keys, nil
}
