package session

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is how long an idle session survives before the cleanup
// loop removes it. It matches the session cookie's max age.
const DefaultTTL = 24 * time.Hour

// Record is the value stored per authenticated user. The SessionID is
// Google's stable subject identifier, so re-authenticating the same
// account overwrites the prior record instead of creating a duplicate.
type Record struct {
	// SessionID is the opaque session identifier (Google's "sub" claim).
	SessionID string

	// AccessToken is the bearer credential for the Calendar API.
	AccessToken string

	// Email and Name are descriptive profile fields, never used for
	// authorization decisions.
	Email string
	Name  string

	// CreatedAt is when this record was first stored.
	CreatedAt time.Time

	// LastAccess is updated on every successful lookup.
	LastAccess time.Time
}

// Store maps session identifiers to cached credentials. Absence of a key
// is a normal outcome, not an error.
type Store interface {
	// Put inserts or replaces the record for record.SessionID.
	Put(record Record)

	// Get returns the record for sessionID, if present.
	Get(sessionID string) (Record, bool)

	// Has reports whether a record exists for sessionID.
	Has(sessionID string) bool

	// Delete removes the record for sessionID, if present.
	Delete(sessionID string)

	// Len returns the number of live records.
	Len() int
}

// MemoryStore is an in-memory Store shared across concurrent requests.
// Writes are whole-record inserts keyed by distinct session ids, so
// concurrent access from different sessions never conflicts; concurrent
// re-authentication of the same id is last-write-wins.
type MemoryStore struct {
	mu            sync.RWMutex
	records       map[string]*Record
	ttl           time.Duration
	cleanupTicker *time.Ticker
	cleanupDone   chan struct{}
	logger        *slog.Logger
}

// NewMemoryStore creates a memory store with the default TTL and logger.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithLogger(DefaultTTL, slog.Default())
}

// NewMemoryStoreWithTTL creates a memory store with a custom idle TTL.
func NewMemoryStoreWithTTL(ttl time.Duration) *MemoryStore {
	return NewMemoryStoreWithLogger(ttl, slog.Default())
}

// NewMemoryStoreWithLogger creates a memory store with a custom idle TTL
// and logger. Records untouched for longer than ttl are removed by a
// background cleanup loop; call Stop to terminate it.
func NewMemoryStoreWithLogger(ttl time.Duration, logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &MemoryStore{
		records:       make(map[string]*Record),
		ttl:           ttl,
		cleanupTicker: time.NewTicker(10 * time.Minute),
		cleanupDone:   make(chan struct{}),
		logger:        logger,
	}

	go s.cleanupExpired()

	return s
}

// Put inserts or replaces the record for record.SessionID.
func (s *MemoryStore) Put(record Record) {
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.LastAccess = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SessionID] = &record
}

// Get returns the record for sessionID and refreshes its last access
// time, giving sessions a sliding expiry.
func (s *MemoryStore) Get(sessionID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[sessionID]
	if !ok {
		return Record{}, false
	}

	record.LastAccess = time.Now()
	return *record, true
}

// Has reports whether a record exists for sessionID.
func (s *MemoryStore) Has(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[sessionID]
	return ok
}

// Delete removes the record for sessionID.
func (s *MemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
}

// Len returns the number of live records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// cleanupExpired periodically removes sessions idle for longer than the TTL.
func (s *MemoryStore) cleanupExpired() {
	for {
		select {
		case <-s.cleanupTicker.C:
			s.mu.Lock()
			now := time.Now()
			expiredCount := 0
			for sessionID, record := range s.records {
				if now.Sub(record.LastAccess) > s.ttl {
					delete(s.records, sessionID)
					expiredCount++
				}
			}
			s.mu.Unlock()
			if expiredCount > 0 {
				s.logger.Info("Cleaned up expired sessions", "count", expiredCount)
			}
		case <-s.cleanupDone:
			return
		}
	}
}

// Stop stops the background cleanup loop.
func (s *MemoryStore) Stop() {
	if s.cleanupTicker != nil {
		s.cleanupTicker.Stop()
	}
	if s.cleanupDone != nil {
		close(s.cleanupDone)
	}
}
