package storage

import (
	"testing"
	"time"
)

func TestBuildRunPath(t *testing.T) {
	ts := time.Date(2026, time.February, 19, 22, 5, 0, 0, time.FixedZone("x", -5*3600))
	key, err := BuildRunPath(ts, "3f1c2a")
	if err != nil {
		t.Fatalf("BuildRunPath() error = %v", err)
	}
	want := "runs/date=2026-02-20/run-3f1c2a.parquet"
	if key != want {
		t.Fatalf("BuildRunPath() = %q, want %q", key, want)
	}
}

func TestRunDayPrefix(t *testing.T) {
	got := RunDayPrefix(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	if got != "runs/date=2026-03-01" {
		t.Fatalf("RunDayPrefix() = %q", got)
	}
}

func TestBuildRunPathRejectsInvalidID(t *testing.T) {
	if _, err := BuildRunPath(time.Now(), "../oops"); err == nil {
		t.Fatal("expected invalid run id error")
	}
}
