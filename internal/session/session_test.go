package session

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestHistoryRecentIsMostRecentFirst(t *testing.T) {
	history := NewHistory(5)
	for i := 1; i <= 7; i++ {
		history.Record(fmt.Sprintf("q%d", i), fmt.Sprintf("SELECT %d;", i))
	}
	got := history.Recent()
	if len(got) != 5 {
		t.Fatalf("len(Recent()) = %d, want 5", len(got))
	}
	for i, want := range []string{"q7", "q6", "q5", "q4", "q3"} {
		if got[i].Question != want {
			t.Fatalf("Recent()[%d] = %q, want %q", i, got[i].Question, want)
		}
	}
	if history.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", history.Len())
	}
}

func TestHistoryIgnoresRepeatedQuestion(t *testing.T) {
	history := NewHistory(0)
	if !history.Record("q1", "SELECT 1;") {
		t.Fatal("Record() = false for new question")
	}
	history.Record("q2", "SELECT 2;")
	if history.Record("q1", "SELECT 99;") {
		t.Fatal("Record() = true for repeated question")
	}
	got := history.Recent()
	if len(got) != 2 || got[0].Question != "q2" || got[1].SQL != "SELECT 1;" {
		t.Fatalf("Recent() = %+v", got)
	}
}

func TestStoreCreatesAndReusesSessions(t *testing.T) {
	store := NewStore(StoreConfig{HistorySize: 5})
	id, history := store.Get("")
	if id == "" {
		t.Fatal("Get() returned empty id")
	}
	history.Record("q", "SELECT 1;")

	again, same := store.Get(id)
	if again != id || same != history {
		t.Fatalf("Get(%q) returned a different session", id)
	}

	if _, ok := store.Lookup("missing"); ok {
		t.Fatal("Lookup() found unknown session")
	}
	named, _ := store.Get("client-chosen")
	if named != "client-chosen" {
		t.Fatalf("Get() id = %q", named)
	}
	if _, ok := store.Lookup("client-chosen"); !ok {
		t.Fatal("Lookup() did not find created session")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(StoreConfig{HistorySize: 5})
	id, _ := store.Get("")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, history := store.Get(id)
			history.Record(fmt.Sprintf("q%d", i), "SELECT 1;")
			_ = history.Recent()
		}(i)
	}
	wg.Wait()
	history, _ := store.Lookup(id)
	if history.Len() != 50 {
		t.Fatalf("Len() = %d, want 50", history.Len())
	}
}

func TestHistoryRetainsOnlyNewestEntries(t *testing.T) {
	history := NewHistory(5)
	for i := 0; i < 1000; i++ {
		history.Record(fmt.Sprintf("q%d", i), "SELECT 1;")
	}
	if history.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", history.Len())
	}
	if got := history.Recent()[0].Question; got != "q999" {
		t.Fatalf("Recent()[0] = %q, want q999", got)
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewStore(StoreConfig{HistorySize: 5, MaxSessions: 3})
	first, _ := store.Get("a")
	store.Get("b")
	store.Get("c")
	store.Get(first)
	store.Get("d")

	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", store.Len())
	}
	if _, ok := store.Lookup("b"); ok {
		t.Fatal("least recently used session b was not evicted")
	}
	for _, id := range []string{"a", "c", "d"} {
		if _, ok := store.Lookup(id); !ok {
			t.Fatalf("Lookup(%q) missing", id)
		}
	}
}

func TestStoreBoundsAnonymousSessions(t *testing.T) {
	store := NewStore(StoreConfig{MaxSessions: 100})
	for i := 0; i < 10000; i++ {
		store.Get("")
	}
	if store.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", store.Len())
	}
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	store := NewStore(StoreConfig{IdleTTL: time.Minute})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, history := store.Get("idle")
	history.Record("q", "SELECT 1;")
	store.Get("active")

	now = now.Add(45 * time.Second)
	store.Get("active")

	now = now.Add(30 * time.Second)
	if _, ok := store.Lookup("idle"); ok {
		t.Fatal("idle session survived past its ttl")
	}
	if _, ok := store.Lookup("active"); !ok {
		t.Fatal("active session expired early")
	}

	_, fresh := store.Get("idle")
	if fresh.Len() != 0 {
		t.Fatalf("expired session kept %d entries", fresh.Len())
	}
}
