package services

import (
	"strings"
	"time"
)

// AssessmentCreator is the single remote operation the submission pipeline
// needs from the assessment store.
type AssessmentCreator interface {
	CreateAssessment(draft Draft) (string, error)
}

// SubmitResult carries what the HTTP layer needs to confirm a submission
// and navigate to the status view.
type SubmitResult struct {
	AssessmentID string          `json:"assessment_id"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	Recent       []RecentPointer `json:"recent"`
}

// SubmitService runs the wizard submission sequence: remember the
// submitter, create the assessment, persist the local pointers. The steps
// execute in that order with no rollback; local writes that succeeded
// before a failed remote create are kept (a known gap carried from the
// original flow).
type SubmitService struct {
	assessments AssessmentCreator
	submitters  SubmitterStore
	now         func() time.Time
}

func NewSubmitService(assessments AssessmentCreator, submitters SubmitterStore) *SubmitService {
	return &SubmitService{
		assessments: assessments,
		submitters:  submitters,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and submits a finished wizard. The wizard must be at the
// final step; an email, when present, must at least look like one. No other
// fields are required, matching the form's permissive advancement.
func (s *SubmitService) Submit(clientID string, w *Wizard) (*SubmitResult, error) {
	if w == nil {
		return nil, NewInvalidError("wizard required")
	}
	if w.Step() != TotalSteps {
		return nil, NewInvalidError("wizard not at final step")
	}
	draft := w.Draft()
	email := strings.TrimSpace(draft.Personal.Email)
	if email != "" && !looksLikeEmail(email) {
		return nil, NewInvalidError("invalid email")
	}

	if email != "" {
		if err := s.submitters.Remember(clientID, email); err != nil {
			return nil, err
		}
		if err := s.submitters.MarkSession(clientID, "assessment"); err != nil {
			return nil, err
		}
	}

	id, err := s.assessments.CreateAssessment(draft)
	if err != nil {
		return nil, err
	}

	submittedAt := s.now()
	if err := s.submitters.SetLastSubmitted(clientID, id); err != nil {
		return nil, err
	}
	ptr := RecentPointer{AssessmentID: id, Email: email, SubmittedAt: submittedAt, Status: StatusPending}
	if err := s.submitters.PushRecent(clientID, ptr); err != nil {
		return nil, err
	}
	recent, err := s.submitters.Recent(clientID)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{AssessmentID: id, SubmittedAt: submittedAt, Recent: recent}, nil
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return !strings.ContainsAny(s, " \t")
}
