package api

import "github.com/vitalpath/VitalPath/internal/services"

// Store is the full persistence surface the router wires up. The services
// each declare the narrow subset they need; any Store satisfies them.
type Store interface {
	InsertAssessment(a *services.Assessment) (*services.Assessment, error)
	GetAssessment(id string) (*services.Assessment, error)
	SearchAssessments(email string) ([]*services.Assessment, error)
	ListAssessments(status string) ([]*services.Assessment, error)
	UpdateAssessmentStatus(id, status string) (bool, error)
	DeleteAssessmentsByEmail(email string) (int, error)

	AddUser(u *services.User) error
	FindUserByEmail(email string) (*services.User, error)

	AddAudit(entry services.AuditEntry)
	ListAudit() []services.AuditEntry
}

var _ Store = (*memoryStore)(nil)
