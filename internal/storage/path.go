package storage

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

const runsRoot = "runs"

var runIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildRunPath returns runs/date=YYYY-MM-DD/run-<id>.parquet using the UTC day of at.
func BuildRunPath(at time.Time, runID string) (string, error) {
	if !runIDPattern.MatchString(runID) {
		return "", fmt.Errorf("invalid run id: %q", runID)
	}
	return path.Join(RunDayPrefix(at), fmt.Sprintf("run-%s.parquet", runID)), nil
}

// RunDayPrefix is the directory holding every run archived on the UTC day of at.
func RunDayPrefix(at time.Time) string {
	ts := at.UTC()
	return path.Join(runsRoot, fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()))
}
