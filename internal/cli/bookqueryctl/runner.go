// Package bookqueryctl is a terminal client for the bookquery HTTP API.
package bookqueryctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const sessionHeader = "X-Session-ID"

type Options struct {
	BaseURL    string
	SessionID  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }

type state struct {
	baseURL   string
	sessionID string
	timeout   time.Duration
	output    string
	client    *http.Client
	stdout    io.Writer
	ran       bool
}

// Run executes one command and returns the process exit code: 0 on success,
// 1 when the request or the API fails and 2 for usage errors.
func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	st := &state{stdout: stdout, client: defaults.HTTPClient}
	root := newRootCommand(st, defaults)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintln(stderr, err.Error())
	var usage usageError
	if !st.ran || errors.As(err, &usage) {
		return 2
	}
	return 1
}

func newRootCommand(st *state, defaults Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "bookqueryctl",
		Short:         "Ask questions about the book inventory from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			st.ran = true
			switch st.output {
			case outputTable, outputJSON, outputCSV:
			default:
				return usageError{err: fmt.Errorf("invalid --output %q: want table, json or csv", st.output)}
			}
			if st.client == nil {
				st.client = &http.Client{Timeout: st.timeout}
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&st.baseURL, "base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "bookquery API base URL")
	flags.StringVar(&st.sessionID, "session", strings.TrimSpace(defaults.SessionID), "session ID used for ask and history")
	flags.DurationVar(&st.timeout, "timeout", durationOr(defaults.Timeout, 30*time.Second), "HTTP timeout (e.g. 30s)")
	flags.StringVarP(&st.output, "output", "o", outputTable, "output format: table|json|csv")

	root.AddCommand(
		newHealthCommand(st),
		newExamplesCommand(st),
		newGenerateCommand(st),
		newAskCommand(st),
		newHistoryCommand(st),
		newRunsCommand(st),
	)
	return root
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
