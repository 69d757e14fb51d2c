package services

import (
	"strings"
	"time"
)

type SubmitterDataStore interface {
	SearchAssessments(email string) ([]*Assessment, error)
	DeleteAssessmentsByEmail(email string) (int, error)
	AddAudit(entry AuditEntry)
}

// SubmitterDataService handles data requests about a submitter: export
// everything we hold for an email, or delete it.
type SubmitterDataService struct {
	store SubmitterDataStore
	now   func() time.Time
}

func NewSubmitterDataService(store SubmitterDataStore) *SubmitterDataService {
	return &SubmitterDataService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type SubmitterExport struct {
	Email       string        `json:"email"`
	Assessments []*Assessment `json:"assessments"`
}

func (s *SubmitterDataService) ExportByEmail(email, actor string) (*SubmitterExport, error) {
	if strings.TrimSpace(email) == "" {
		return nil, NewInvalidError("email required")
	}
	list, err := s.store.SearchAssessments(email)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, NewNotFoundError("no assessments for email")
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "export_submitter", Target: email})
	return &SubmitterExport{Email: email, Assessments: list}, nil
}

func (s *SubmitterDataService) DeleteByEmail(email, actor string) (int, error) {
	if strings.TrimSpace(email) == "" {
		return 0, NewInvalidError("email required")
	}
	removed, err := s.store.DeleteAssessmentsByEmail(email)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, NewNotFoundError("no assessments for email")
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "delete_submitter", Target: email})
	return removed, nil
}
