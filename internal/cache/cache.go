package cache

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Key names a cached query result.
type Key string

const (
	KeyBranch    Key = "branch"
	KeyStatus    Key = "status"
	KeyOperation Key = "operation"
	KeyVersion   Key = "version"
	KeyStash     Key = "stash"
	KeyFull      Key = "full"
)

// Keys lists every key in display order.
var Keys = []Key{KeyBranch, KeyStatus, KeyOperation, KeyVersion, KeyStash, KeyFull}

// Entry is a cached value with its lifetime.
type Entry struct {
	Data      any
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Stats is a point-in-time view of a Store.
type Stats struct {
	Enabled bool     `json:"enabled"`
	Entries int      `json:"entries"`
	Hits    uint64   `json:"hits"`
	Misses  uint64   `json:"misses"`
	Keys    []string `json:"keys"`
}

// Store is an in-memory TTL cache. It is safe for concurrent use.
type Store struct {
	items *gocache.Cache
	now   func() time.Time

	mu      sync.RWMutex
	enabled bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an enabled Store.
func New(opts ...Option) *Store {
	s := &Store{
		// No janitor goroutine: expired entries are dropped on read.
		items:   gocache.New(gocache.NoExpiration, 0),
		now:     time.Now,
		enabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key if it is present, unexpired and
// of type T.
func Get[T any](s *Store, key Key) (T, bool) {
	var v T
	e, ok := s.lookup(key)
	if ok {
		v, ok = e.Data.(T)
	}
	s.record(ok)
	return v, ok
}

// Set stores value under key for ttl, replacing any previous entry.
func Set[T any](s *Store, key Key, value T, ttl time.Duration) {
	if ttl <= 0 || !s.Enabled() {
		return
	}
	now := s.now()
	s.items.Set(string(key), Entry{
		Data:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, gocache.NoExpiration)
}

// Lookup returns the raw entry under key.
func (s *Store) Lookup(key Key) (Entry, bool) {
	e, ok := s.lookup(key)
	s.record(ok)
	return e, ok
}

func (s *Store) lookup(key Key) (Entry, bool) {
	if !s.Enabled() {
		return Entry{}, false
	}
	raw, ok := s.items.Get(string(key))
	if !ok {
		return Entry{}, false
	}
	e, ok := raw.(Entry)
	if !ok || e.Expired(s.now()) {
		s.items.Delete(string(key))
		return Entry{}, false
	}
	return e, true
}

func (s *Store) record(hit bool) {
	if hit {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
}

// Delete removes a single key.
func (s *Store) Delete(key Key) {
	s.items.Delete(string(key))
}

// Clear removes every entry and resets the counters.
func (s *Store) Clear() {
	s.items.Flush()
	s.hits.Store(0)
	s.misses.Store(0)
}

// SetEnabled turns the store on or off. Disabling drops all entries.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	if !enabled {
		s.items.Flush()
	}
}

// Enabled reports whether the store accepts reads and writes.
func (s *Store) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Stats reports the live entries and hit counters.
func (s *Store) Stats() Stats {
	now := s.now()
	keys := []string{}
	for k, item := range s.items.Items() {
		if e, ok := item.Object.(Entry); ok && !e.Expired(now) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return Stats{
		Enabled: s.Enabled(),
		Entries: len(keys),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Keys:    keys,
	}
}
