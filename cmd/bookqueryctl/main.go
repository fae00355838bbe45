package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bookquery/bookquery/internal/cli/bookqueryctl"
)

func main() {
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("BOOKQUERY_CLI_TIMEOUT")), 30*time.Second)
	options := bookqueryctl.Options{
		BaseURL:   envOr("BOOKQUERY_API_URL", "http://localhost:8080"),
		SessionID: strings.TrimSpace(os.Getenv("BOOKQUERY_SESSION_ID")),
		Timeout:   timeout,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}

	code := bookqueryctl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid BOOKQUERY_CLI_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
