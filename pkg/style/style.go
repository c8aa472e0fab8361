// Package style collects global CSS emitted while rendering.
//
// Style text is de-duplicated by content hash through a Store, which is
// append-only and safe to share between concurrent render passes. Tests
// and per-page renders use their own MemoryStore; Shared is the
// process-wide store.
package style

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Sink receives global style text.
type Sink interface {
	AppendGlobalStyle(css string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(css string)

// AppendGlobalStyle implements Sink.
func (f SinkFunc) AppendGlobalStyle(css string) { f(css) }

// Discard ignores all styles.
var Discard Sink = SinkFunc(func(string) {})

// Store records which style hashes have been seen.
type Store interface {
	// Add records key and reports whether it was not present before.
	Add(key uint64) bool
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	seen sync.Map
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add implements Store.
func (s *MemoryStore) Add(key uint64) bool {
	_, loaded := s.seen.LoadOrStore(key, struct{}{})
	return !loaded
}

// Shared is the process-wide store.
var Shared Store = NewMemoryStore()

// Hash returns the content hash of css.
func Hash(css string) uint64 {
	return xxhash.Sum64String(css)
}

// Sheet accumulates de-duplicated style text in insertion order.
type Sheet struct {
	store Store

	mu    sync.Mutex
	rules []string
}

// NewSheet creates a sheet backed by store. A nil store gives the sheet a
// private MemoryStore.
func NewSheet(store Store) *Sheet {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Sheet{store: store}
}

// AppendGlobalStyle implements Sink. Blank text and text whose hash is
// already in the store are ignored.
func (s *Sheet) AppendGlobalStyle(css string) {
	css = strings.TrimSpace(css)
	if css == "" {
		return
	}
	if !s.store.Add(Hash(css)) {
		return
	}
	s.mu.Lock()
	s.rules = append(s.rules, css)
	s.mu.Unlock()
}

// Rules returns a copy of the collected style text.
func (s *Sheet) Rules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rules...)
}

// Len returns the number of collected rules.
func (s *Sheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rules)
}

// CSS returns the collected style text joined by newlines.
func (s *Sheet) CSS() string {
	return strings.Join(s.Rules(), "\n")
}
