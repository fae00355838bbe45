package api

import (
	"net/http"
	"strings"
	"time"
)

func handleListRuns(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Archive == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ARCHIVE_NOT_CONFIGURED", "run archive is not enabled", false, nil)
		return
	}
	day := deps.Now().UTC()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD", false, map[string]any{"date": raw})
			return
		}
		day = parsed
	}

	keys, err := deps.Archive.List(r.Context(), day)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, "ARCHIVE_UNAVAILABLE", "failed to list archived runs", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date": day.Format(time.DateOnly),
		"runs": keys,
	})
}
