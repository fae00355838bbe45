package session

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxSessions = 10000
	DefaultIdleTTL     = 24 * time.Hour
)

type StoreConfig struct {
	HistorySize int
	MaxSessions int
	IdleTTL     time.Duration
}

type storeEntry struct {
	id       string
	history  *History
	lastSeen time.Time
}

// Store maps session IDs to their histories. It keeps at most MaxSessions
// entries, evicting the least recently used first, and drops sessions idle
// for longer than IdleTTL.
type Store struct {
	mu          sync.Mutex
	historySize int
	maxSessions int
	idleTTL     time.Duration
	items       map[string]*list.Element
	ll          *list.List
	now         func() time.Time
}

func NewStore(cfg StoreConfig) *Store {
	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	idleTTL := cfg.IdleTTL
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Store{
		historySize: cfg.HistorySize,
		maxSessions: maxSessions,
		idleTTL:     idleTTL,
		items:       make(map[string]*list.Element),
		ll:          list.New(),
		now:         time.Now,
	}
}

// Get returns the history for id, creating a session when id is empty,
// unknown or expired. The returned id is the one the caller should keep using.
func (s *Store) Get(id string) (string, *History) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)

	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	} else if elem, ok := s.items[id]; ok {
		entry := elem.Value.(*storeEntry)
		entry.lastSeen = now
		s.ll.MoveToFront(elem)
		return id, entry.history
	}

	history := NewHistory(s.historySize)
	s.items[id] = s.ll.PushFront(&storeEntry{id: id, history: history, lastSeen: now})
	for s.ll.Len() > s.maxSessions {
		s.remove(s.ll.Back())
	}
	return id, history
}

// Lookup returns an existing, unexpired history without creating one.
func (s *Store) Lookup(id string) (*History, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(s.now())
	elem, ok := s.items[strings.TrimSpace(id)]
	if !ok {
		return nil, false
	}
	return elem.Value.(*storeEntry).history, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

// expire drops idle sessions from the back of the list; it is ordered by last use.
func (s *Store) expire(now time.Time) {
	for elem := s.ll.Back(); elem != nil; elem = s.ll.Back() {
		if now.Sub(elem.Value.(*storeEntry).lastSeen) <= s.idleTTL {
			return
		}
		s.remove(elem)
	}
}

func (s *Store) remove(elem *list.Element) {
	if elem == nil {
		return
	}
	s.ll.Remove(elem)
	delete(s.items, elem.Value.(*storeEntry).id)
}
