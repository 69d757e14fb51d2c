package api

import (
	"sort"
	"strings"
	"sync"

	"github.com/vitalpath/VitalPath/internal/services"
)

// memoryStore is the in-process Store used when no SQLite path is
// configured, and by tests. The durable implementation lives in the db
// package behind the same interface.
type memoryStore struct {
	mu           sync.RWMutex
	assessments  map[string]*services.Assessment
	order        []string // insertion order of assessment ids
	usersByEmail map[string]*services.User
	audit        []services.AuditEntry
}

func NewMemoryStore() Store { return newMemoryStore() }

func newMemoryStore() *memoryStore {
	return &memoryStore{
		assessments:  map[string]*services.Assessment{},
		usersByEmail: map[string]*services.User{},
	}
}

func (s *memoryStore) InsertAssessment(a *services.Assessment) (*services.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.assessments[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	return &cp, nil
}

func (s *memoryStore) GetAssessment(id string) (*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a := s.assessments[id]
	if a == nil {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *memoryStore) SearchAssessments(email string) ([]*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.Assessment{}
	for _, id := range s.order {
		a := s.assessments[id]
		if a != nil && a.Email != "" && strings.EqualFold(a.Email, email) {
			cp := *a
			out = append(out, &cp)
		}
	}
	// Newest first, stable for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) ListAssessments(status string) ([]*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.Assessment{}
	for _, id := range s.order {
		a := s.assessments[id]
		if a == nil {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memoryStore) UpdateAssessmentStatus(id, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.assessments[id]
	if a == nil {
		return false, nil
	}
	a.Status = status
	return true, nil
}

func (s *memoryStore) DeleteAssessmentsByEmail(email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	keptOrder := make([]string, 0, len(s.order))
	for _, id := range s.order {
		a := s.assessments[id]
		if a != nil && a.Email != "" && strings.EqualFold(a.Email, email) {
			delete(s.assessments, id)
			removed++
			continue
		}
		keptOrder = append(keptOrder, id)
	}
	s.order = keptOrder
	return removed, nil
}

func (s *memoryStore) AddUser(u *services.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByEmail[strings.ToLower(u.Email)] = u
	return nil
}

func (s *memoryStore) FindUserByEmail(email string) (*services.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[strings.ToLower(email)], nil
}

func (s *memoryStore) AddAudit(entry services.AuditEntry) {
	s.mu.Lock()
	s.audit = append(s.audit, entry)
	s.mu.Unlock()
}

func (s *memoryStore) ListAudit() []services.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]services.AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}
