package api

import (
	"net/http"

	"github.com/bookquery/bookquery/internal/fewshot"
)

func handleHistory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	history, ok := deps.Sessions.Lookup(id)
	if !ok {
		writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", "session was not found", false, map[string]any{"session_id": id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"history":    history.Recent(),
	})
}

func handleExamples(deps Dependencies, w http.ResponseWriter, _ *http.Request) {
	questions := deps.SampleQuestions
	if len(questions) == 0 {
		questions = fewshot.SampleQuestions()
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

