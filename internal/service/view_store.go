package service

import (
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ViewStore keeps the ViewState of open dashboard pages so that consecutive
// requests from one page share request tokens and loaded announcements.
// Entries idle for longer than the TTL are swept; past the limit the least
// recently used entry is evicted.
type ViewStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	limit   int
	entries map[string]*viewEntry
	now     func() time.Time
}

type viewEntry struct {
	state *ViewState
	seen  time.Time
}

// NewViewStore constructs a ViewStore. Non-positive values fall back to 30 minutes and 1000 pages.
func NewViewStore(ttl time.Duration, limit int) *ViewStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if limit <= 0 {
		limit = 1000
	}
	return &ViewStore{ttl: ttl, limit: limit, entries: make(map[string]*viewEntry), now: time.Now}
}

// ViewScope derives the store scope from a pupil code. Pages of one pupil
// share a scope; the code itself is never kept.
func ViewScope(pupilCode string) string {
	code := strings.ToUpper(strings.TrimSpace(pupilCode))
	if code == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte("view|" + code))
	return hex.EncodeToString(sum[:16])
}

// Acquire returns the state of page within scope, creating it on first use.
// Without a scope or page id every call gets a fresh, unshared state.
func (s *ViewStore) Acquire(scope, page, context, theme string) *ViewState {
	if s == nil || scope == "" || page == "" {
		return NewViewState(context, theme)
	}
	key := scope + "|" + page
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)
	if entry, ok := s.entries[key]; ok {
		entry.seen = now
		return entry.state
	}
	if len(s.entries) >= s.limit {
		s.evictOldest()
	}
	state := NewViewState(context, theme)
	s.entries[key] = &viewEntry{state: state, seen: now}
	return state
}

// Len returns the number of pages held.
func (s *ViewStore) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *ViewStore) sweep(now time.Time) {
	for key, entry := range s.entries {
		if now.Sub(entry.seen) > s.ttl {
			delete(s.entries, key)
		}
	}
}

func (s *ViewStore) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, entry := range s.entries {
		if oldestKey == "" || entry.seen.Before(oldest) {
			oldestKey, oldest = key, entry.seen
		}
	}
	delete(s.entries, oldestKey)
}
