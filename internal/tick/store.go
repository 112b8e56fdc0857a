// Package tick implements the last-price store shared by the streaming
// and polling ingestion paths.
package tick

import (
	"sync"
	"time"
)

// Record is the latest observation for a key. No history is kept.
type Record struct {
	LastPrice  float64
	ObservedAt time.Time
}

// Store holds the last observed price per instrument key. Safe for
// concurrent use; last write wins between the two ingestion paths.
type Store struct {
	mu   sync.Mutex
	last map[string]Record
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{last: make(map[string]Record)}
}

// Observe records price for key and reports whether it differs from the
// previously stored value. The first observation for a key is always a
// change, price zero included.
func (s *Store) Observe(key string, price float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.last[key]
	s.last[key] = Record{LastPrice: price, ObservedAt: time.Now()}
	return !ok || prev.LastPrice != price
}

// Last returns the stored record for key.
func (s *Store) Last(key string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.last[key]
	return rec, ok
}

// Len returns the number of tracked keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.last)
}
