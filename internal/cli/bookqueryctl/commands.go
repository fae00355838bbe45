package bookqueryctl

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

type askResponse struct {
	SessionID string   `json:"session_id"`
	SQL       string   `json:"sql"`
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
}

type historyEntry struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

func newHealthCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "GET /v1/health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var body map[string]any
			raw, err := st.do(cmd.Context(), http.MethodGet, "/v1/health", nil, &body)
			if err != nil {
				return err
			}
			rows := [][]any{{fmt.Sprint(body["status"]), fmt.Sprint(body["service"])}}
			return st.render(raw, table{header: []string{"status", "service"}, rows: rows})
		},
	}
}

func newExamplesCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List example questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var body struct {
				Questions []string `json:"questions"`
			}
			raw, err := st.do(cmd.Context(), http.MethodGet, "/v1/examples", nil, &body)
			if err != nil {
				return err
			}
			rows := make([][]any, 0, len(body.Questions))
			for i, question := range body.Questions {
				rows = append(rows, []any{i + 1, question})
			}
			return st.render(raw, table{header: []string{"#", "question"}, rows: rows})
		},
	}
}

func newGenerateCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <question>",
		Short: "Translate a question into SQL without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body struct {
				SQL   string `json:"sql"`
				Model string `json:"model"`
			}
			payload := map[string]string{"question": strings.Join(args, " ")}
			raw, err := st.do(cmd.Context(), http.MethodPost, "/v1/generate", payload, &body)
			if err != nil {
				return err
			}
			return st.render(raw, table{header: []string{"sql", "model"}, rows: [][]any{{body.SQL, body.Model}}})
		},
	}
}

func newAskCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Generate SQL for a question and show the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"question": strings.Join(args, " ")}
			if st.sessionID != "" {
				payload["session_id"] = st.sessionID
			}
			var body askResponse
			raw, err := st.do(cmd.Context(), http.MethodPost, "/v1/ask", payload, &body)
			if err != nil {
				return err
			}
			result := table{header: body.Columns, rows: body.Rows}
			if st.output == outputTable {
				_, _ = fmt.Fprintf(st.stdout, "session: %s\nsql: %s\n\n", body.SessionID, body.SQL)
			}
			return st.render(raw, result)
		},
	}
}

func newHistoryCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the recent questions of a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if st.sessionID == "" {
				return usageError{err: errors.New("history requires --session")}
			}
			var body struct {
				History []historyEntry `json:"history"`
			}
			path := "/v1/sessions/" + url.PathEscape(st.sessionID) + "/history"
			raw, err := st.do(cmd.Context(), http.MethodGet, path, nil, &body)
			if err != nil {
				return err
			}
			rows := make([][]any, 0, len(body.History))
			for _, entry := range body.History {
				rows = append(rows, []any{entry.Question, entry.SQL})
			}
			return st.render(raw, table{header: []string{"question", "sql"}, rows: rows})
		},
	}
}

func newRunsCommand(st *state) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived query runs for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/v1/runs"
			if strings.TrimSpace(date) != "" {
				path += "?date=" + url.QueryEscape(strings.TrimSpace(date))
			}
			var body struct {
				Date string   `json:"date"`
				Runs []string `json:"runs"`
			}
			raw, err := st.do(cmd.Context(), http.MethodGet, path, nil, &body)
			if err != nil {
				return err
			}
			rows := make([][]any, 0, len(body.Runs))
			for _, key := range body.Runs {
				rows = append(rows, []any{body.Date, key})
			}
			return st.render(raw, table{header: []string{"date", "object"}, rows: rows})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to list (YYYY-MM-DD), defaults to today")
	return cmd
}
