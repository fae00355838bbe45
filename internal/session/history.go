// Package session keeps the per-user question history shown next to results.
package session

import "sync"

const DefaultHistorySize = 5

type Entry struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

// History records distinct questions in the order first asked, keeping only
// the newest size entries. It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	size    int
	entries []Entry
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

// Record appends the pair unless the question is among the retained entries.
// It reports whether the entry was added.
func (h *History) Record(question, sql string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, entry := range h.entries {
		if entry.Question == question {
			return false
		}
	}
	h.entries = append(h.entries, Entry{Question: question, SQL: sql})
	if len(h.entries) > h.size {
		trimmed := make([]Entry, h.size)
		copy(trimmed, h.entries[len(h.entries)-h.size:])
		h.entries = trimmed
	}
	return true
}

// Recent returns up to the configured number of entries, most recent first.
func (h *History) Recent() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.entries)
	if n > h.size {
		n = h.size
	}
	out := make([]Entry, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
