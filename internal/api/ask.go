package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bookquery/bookquery/internal/archive"
	"github.com/bookquery/bookquery/internal/fewshot"
	"github.com/bookquery/bookquery/internal/nl2sql"
	"github.com/bookquery/bookquery/internal/observability"
	"github.com/bookquery/bookquery/internal/query"
	"github.com/bookquery/bookquery/internal/session"
)

type generateRequest struct {
	Question string `json:"question"`
}

type generateResponse struct {
	SQL      string            `json:"sql"`
	Model    string            `json:"model"`
	Examples []fewshot.Example `json:"examples"`
}

type executeRequest struct {
	SQL string `json:"sql"`
}

type executeResponse struct {
	Columns []string       `json:"columns"`
	Rows    [][]any        `json:"rows"`
	Stats   map[string]any `json:"stats"`
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type askResponse struct {
	SessionID string            `json:"session_id"`
	Question  string            `json:"question"`
	SQL       string            `json:"sql"`
	Model     string            `json:"model"`
	Examples  []fewshot.Example `json:"examples"`
	Columns   []string          `json:"columns"`
	Rows      [][]any           `json:"rows"`
	Stats     map[string]any    `json:"stats"`
	History   []session.Entry   `json:"history"`
}

func handleGenerate(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.QueryTranslator == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "GENERATION_NOT_CONFIGURED", "sql generation is not configured", false, nil)
		return
	}
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid generate request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	result, err := deps.QueryTranslator.Translate(r.Context(), nl2sql.Request{Question: req.Question})
	if err != nil {
		writeGenerationError(r.Context(), w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{SQL: result.SQL, Model: result.Model, Examples: result.Examples})
}

func handleExecute(deps Dependencies, readOnly bool, w http.ResponseWriter, r *http.Request) {
	if deps.QueryEngine == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query execution is not configured", false, nil)
		return
	}
	var req executeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid execute request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}
	if readOnly && !isAllowedSQL(req.SQL) {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_NOT_ALLOWED", "only read-only SELECT/WITH queries are allowed", false, nil)
		return
	}

	result, err := deps.QueryEngine.Execute(r.Context(), query.Request{SQL: req.SQL})
	if err != nil {
		writeExecutionError(r.Context(), w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, executeResponse{
		Columns: result.Columns,
		Rows:    result.Rows,
		Stats:   resultStats(result),
	})
}

// handleAsk generates, records history, executes and archives in that order.
// History keeps the question even when execution later fails.
func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.QueryTranslator == nil || deps.QueryEngine == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "ask dependencies are not configured", false, nil)
		return
	}
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = r.Header.Get(observability.SessionHeader)
	}
	sessionID, history := deps.Sessions.Get(sessionID)
	ctx := observability.ContextWithSessionID(r.Context(), sessionID)
	w.Header().Set(observability.SessionHeader, sessionID)

	generated, err := deps.QueryTranslator.Translate(ctx, nl2sql.Request{Question: req.Question})
	if err != nil {
		writeGenerationError(ctx, w, err, map[string]any{"session_id": sessionID})
		return
	}
	history.Record(req.Question, generated.SQL)

	result, err := deps.QueryEngine.Execute(ctx, query.Request{SQL: generated.SQL})
	if err != nil {
		writeExecutionError(ctx, w, err, map[string]any{"session_id": sessionID, "sql": generated.SQL})
		return
	}

	if deps.Archive != nil {
		deps.Archive.Record(ctx, archive.Run{
			SessionID:   sessionID,
			Question:    req.Question,
			SQL:         generated.SQL,
			Model:       generated.Model,
			Columns:     result.Columns,
			RowCount:    int64(len(result.Rows)),
			DurationMS:  result.Duration.Milliseconds(),
			CreatedAtMS: deps.Now().UTC().UnixMilli(),
		})
	}

	writeJSON(w, http.StatusOK, askResponse{
		SessionID: sessionID,
		Question:  req.Question,
		SQL:       generated.SQL,
		Model:     generated.Model,
		Examples:  generated.Examples,
		Columns:   result.Columns,
		Rows:      result.Rows,
		Stats:     resultStats(result),
		History:   history.Recent(),
	})
}

func writeGenerationError(ctx context.Context, w http.ResponseWriter, err error, extra map[string]any) {
	switch {
	case errors.Is(err, nl2sql.ErrNoSQL):
		writeError(ctx, w, http.StatusUnprocessableEntity, "NO_SQL_GENERATED", err.Error(), false, extra)
	case errors.Is(err, nl2sql.ErrNotReadOnly):
		writeError(ctx, w, http.StatusBadRequest, "SQL_NOT_ALLOWED", err.Error(), false, extra)
	default:
		writeError(ctx, w, http.StatusBadGateway, "GENERATION_FAILED", err.Error(), true, extra)
	}
}

func writeExecutionError(ctx context.Context, w http.ResponseWriter, err error, extra map[string]any) {
	writeError(ctx, w, http.StatusBadRequest, "QUERY_EXECUTION_FAILED", err.Error(), false, extra)
}

func resultStats(result query.Result) map[string]any {
	return map[string]any{
		"duration_ms": result.Duration.Milliseconds(),
		"row_count":   len(result.Rows),
	}
}

func isAllowedSQL(sqlText string) bool {
	normalized := strings.ToLower(strings.TrimSpace(sqlText))
	return strings.HasPrefix(normalized, "select") || strings.HasPrefix(normalized, "with")
}

