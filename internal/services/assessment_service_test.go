package services

import (
	"strings"
	"testing"
	"time"
)

type stubAssessmentStore struct {
	assessments []*Assessment
	audit       []AuditEntry
	err         error
}

func (s *stubAssessmentStore) InsertAssessment(a *Assessment) (*Assessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.assessments = append(s.assessments, a)
	return a, nil
}

func (s *stubAssessmentStore) GetAssessment(id string) (*Assessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, a := range s.assessments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (s *stubAssessmentStore) SearchAssessments(email string) ([]*Assessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*Assessment{}
	for _, a := range s.assessments {
		if strings.EqualFold(a.Email, email) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubAssessmentStore) ListAssessments(status string) ([]*Assessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	if status == "" {
		return append([]*Assessment(nil), s.assessments...), nil
	}
	out := []*Assessment{}
	for _, a := range s.assessments {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubAssessmentStore) UpdateAssessmentStatus(id, status string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, a := range s.assessments {
		if a.ID == id {
			a.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (s *stubAssessmentStore) DeleteAssessmentsByEmail(email string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	kept := s.assessments[:0]
	removed := 0
	for _, a := range s.assessments {
		if strings.EqualFold(a.Email, email) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.assessments = kept
	return removed, nil
}

func (s *stubAssessmentStore) AddAudit(entry AuditEntry) { s.audit = append(s.audit, entry) }

func TestCreateAssessmentStoresPendingWithBMI(t *testing.T) {
	store := &stubAssessmentStore{}
	svc := NewAssessmentService(store)
	svc.idGen = func() string { return "A1" }
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }

	draft := completedWizard("ada@example.com").Draft()
	id, err := svc.CreateAssessment(draft)
	if err != nil {
		t.Fatalf("CreateAssessment: %v", err)
	}
	if id != "A1" {
		t.Fatalf("id = %q, want A1", id)
	}
	if len(store.assessments) != 1 {
		t.Fatalf("stored %d assessments, want 1", len(store.assessments))
	}
	a := store.assessments[0]
	if a.Status != StatusPending {
		t.Fatalf("status = %q, want pending", a.Status)
	}
	if a.Email != "ada@example.com" {
		t.Fatalf("email = %q", a.Email)
	}
	if a.BMI != 22.9 {
		t.Fatalf("bmi snapshot = %v, want 22.9", a.BMI)
	}
	if !a.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v", a.CreatedAt)
	}
}

func TestCreateAssessmentWithoutPhysicalStats(t *testing.T) {
	store := &stubAssessmentStore{}
	svc := NewAssessmentService(store)

	if _, err := svc.CreateAssessment(Draft{}); err != nil {
		t.Fatalf("empty draft rejected: %v", err)
	}
	if store.assessments[0].BMI != 0 {
		t.Fatalf("bmi = %v for draft without stats, want 0", store.assessments[0].BMI)
	}
}

func TestGetAssessmentNotFound(t *testing.T) {
	svc := NewAssessmentService(&stubAssessmentStore{})
	_, err := svc.GetAssessment("missing")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSearchAssessmentsRequiresEmail(t *testing.T) {
	svc := NewAssessmentService(&stubAssessmentStore{})
	_, err := svc.SearchAssessments("  ")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestReview(t *testing.T) {
	store := &stubAssessmentStore{assessments: []*Assessment{
		{ID: "A1", Status: StatusPending},
	}}
	svc := NewAssessmentService(store)

	if err := svc.Review("A1", StatusReviewed, "coach@vitalpath.fit"); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if store.assessments[0].Status != StatusReviewed {
		t.Fatalf("status = %q, want reviewed", store.assessments[0].Status)
	}
	if len(store.audit) != 1 || store.audit[0].Action != "review_assessment" {
		t.Fatalf("audit = %+v", store.audit)
	}

	if err := svc.Review("A1", "bogus", "coach@vitalpath.fit"); err == nil {
		t.Fatalf("unknown status accepted")
	}
	err := svc.Review("missing", StatusCompleted, "coach@vitalpath.fit")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
