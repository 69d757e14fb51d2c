package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AssessmentStore abstracts persistence operations required by AssessmentService.
type AssessmentStore interface {
	InsertAssessment(a *Assessment) (*Assessment, error)
	GetAssessment(id string) (*Assessment, error)
	SearchAssessments(email string) ([]*Assessment, error)
	ListAssessments(status string) ([]*Assessment, error)
	UpdateAssessmentStatus(id, status string) (bool, error)
	AddAudit(entry AuditEntry)
}

// AssessmentService hosts create/read/review operations on assessments.
type AssessmentService struct {
	store AssessmentStore
	now   func() time.Time
	idGen func() string
}

func NewAssessmentService(store AssessmentStore) *AssessmentService {
	return &AssessmentService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(12) },
	}
}

// CreateAssessment persists a submitted draft as a pending assessment and
// returns the assigned id. The BMI snapshot is stored when the draft's
// physical stats parse; drafts without them are accepted as-is.
func (s *AssessmentService) CreateAssessment(draft Draft) (string, error) {
	a := &Assessment{
		ID:        s.idGen(),
		Email:     strings.TrimSpace(draft.Personal.Email),
		Draft:     draft,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	w := Wizard{draft: draft}
	if bmi, ok := w.BMI(); ok {
		a.BMI = bmi
	}
	created, err := s.store.InsertAssessment(a)
	if err != nil {
		return "", err
	}
	if created != nil {
		return created.ID, nil
	}
	return a.ID, nil
}

// SearchAssessments returns the submitter's assessments, newest first.
func (s *AssessmentService) SearchAssessments(email string) ([]*Assessment, error) {
	if strings.TrimSpace(email) == "" {
		return nil, NewInvalidError("email required")
	}
	return s.store.SearchAssessments(email)
}

func (s *AssessmentService) GetAssessment(id string) (*Assessment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewInvalidError("assessment id required")
	}
	a, err := s.store.GetAssessment(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, NewNotFoundError("assessment not found")
	}
	return a, nil
}

func (s *AssessmentService) ListAssessments(status string) ([]*Assessment, error) {
	if status != "" && !validStatus(status) {
		return nil, NewInvalidError("unknown status: " + status)
	}
	return s.store.ListAssessments(status)
}

// Review updates an assessment's status on behalf of a staff member.
func (s *AssessmentService) Review(id, status, actor string) error {
	if !validStatus(status) {
		return NewInvalidError("unknown status: " + status)
	}
	ok, err := s.store.UpdateAssessmentStatus(id, status)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("assessment not found")
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "review_assessment", Target: id, Note: status})
	return nil
}

func validStatus(status string) bool {
	switch status {
	case StatusPending, StatusReviewed, StatusCompleted:
		return true
	}
	return false
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
