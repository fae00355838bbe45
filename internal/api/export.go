package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/bookquery/bookquery/internal/export"
	"github.com/bookquery/bookquery/internal/query"
)

type exportRequest struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// handleExportCSV renders the result the client already holds. The statement
// is not executed again, so the file matches what was shown. The body is
// buffered so a write failure never yields a partial file.
func handleExportCSV(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExportBodyBytes))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid export request body", false, map[string]any{"details": err.Error()})
		return
	}
	if len(req.Columns) == 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "COLUMNS_REQUIRED", "columns are required", false, nil)
		return
	}
	for i, row := range req.Rows {
		if len(row) != len(req.Columns) {
			writeError(r.Context(), w, http.StatusBadRequest, "ROW_WIDTH_MISMATCH", "row width does not match columns", false, map[string]any{"row": i})
			return
		}
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, query.Result{Columns: req.Columns, Rows: req.Rows}); err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "EXPORT_FAILED", "failed to render csv", false, map[string]any{"details": err.Error()})
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(deps.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
