package services

import (
	"sync"
	"time"
)

// RecentLimit caps a submitter's recent-submissions list. The oldest entry
// is evicted by insertion order when the cap is exceeded.
const RecentLimit = 5

// SubmitterStore is the persisted per-client state that re-associates a
// visitor with their prior submissions. Keys are an opaque client id (a
// long-lived cookie in the HTTP layer). Remember collapses the legacy
// duplicate email keys into a single idempotent write; MarkSession is the
// session-scoped marker and may expire, everything else is long-lived.
type SubmitterStore interface {
	Remember(clientID, email string) error
	CurrentEmail(clientID string) (string, error)
	SetLastSubmitted(clientID, assessmentID string) error
	LastSubmitted(clientID string) (string, error)
	PushRecent(clientID string, ptr RecentPointer) error
	Recent(clientID string) ([]RecentPointer, error)
	MarkSession(clientID, source string) error
}

// MemorySubmitterStore is the in-process SubmitterStore used by default and
// in tests. A Redis-backed implementation lives in the db package.
type MemorySubmitterStore struct {
	mu       sync.RWMutex
	emails   map[string]string
	last     map[string]string
	recent   map[string][]RecentPointer
	sessions map[string]sessionMarker
}

type sessionMarker struct {
	Source    string
	Timestamp time.Time
}

func NewMemorySubmitterStore() *MemorySubmitterStore {
	return &MemorySubmitterStore{
		emails:   map[string]string{},
		last:     map[string]string{},
		recent:   map[string][]RecentPointer{},
		sessions: map[string]sessionMarker{},
	}
}

func (s *MemorySubmitterStore) Remember(clientID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails[clientID] = email
	return nil
}

func (s *MemorySubmitterStore) CurrentEmail(clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emails[clientID], nil
}

func (s *MemorySubmitterStore) SetLastSubmitted(clientID, assessmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[clientID] = assessmentID
	return nil
}

func (s *MemorySubmitterStore) LastSubmitted(clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last[clientID], nil
}

func (s *MemorySubmitterStore) PushRecent(clientID string, ptr RecentPointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]RecentPointer{ptr}, s.recent[clientID]...)
	if len(list) > RecentLimit {
		list = list[:RecentLimit]
	}
	s.recent[clientID] = list
	return nil
}

func (s *MemorySubmitterStore) Recent(clientID string) ([]RecentPointer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RecentPointer(nil), s.recent[clientID]...), nil
}

func (s *MemorySubmitterStore) MarkSession(clientID, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[clientID] = sessionMarker{Source: source, Timestamp: time.Now().UTC()}
	return nil
}
