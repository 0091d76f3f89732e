// Package application contains the application aggregate: a student's
// candidacy for one opportunity, moving through the review lifecycle.
package application

import (
	"strings"
	"time"

	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// Status is the review state of an application.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusReviewed Status = "Reviewed"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
)

// IsValid checks if the status is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// String returns the canonical string form.
func (s Status) String() string {
	return string(s)
}

// ParseStatus normalizes a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return StatusPending, nil
	case "reviewed":
		return StatusReviewed, nil
	case "accepted":
		return StatusAccepted, nil
	case "rejected":
		return StatusRejected, nil
	default:
		return "", shared.WrapError("application", "ParseStatus", shared.ErrInvalidInput,
			"unknown status "+raw, shared.ErrInvalidStatus)
	}
}

// Payload is the applicant-authored content of an application. It is
// stored verbatim and echoed back unmodified in applicant listings.
type Payload struct {
	FullName       string            `json:"full_name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	CoverLetter    string            `json:"cover_letter,omitempty"`
	ResumeFileKey  string            `json:"resume_file_key,omitempty"`
	ResumeFileName string            `json:"resume_file_name,omitempty"`
	ResumeURL      string            `json:"resume_url,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// HasResume returns true if the payload carries a resume in either form.
func (p Payload) HasResume() bool {
	return p.ResumeFileKey != "" || p.ResumeURL != ""
}

// Application is a student's candidacy for one opportunity. At most one
// application per (student, opportunity type, opportunity id) exists.
type Application struct {
	ID          string
	StudentID   string
	StudentName string
	Opportunity opportunity.Ref
	Status      Status
	Payload     Payload
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New creates a pending application for a student.
func New(id, studentID, studentName string, ref opportunity.Ref, payload Payload) (*Application, error) {
	if id == "" {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidInput, "application id is required")
	}
	if studentID == "" {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidInput, "student id is required")
	}
	if !ref.Type.IsValid() || ref.ID == "" {
		return nil, shared.ErrInvalidOpportunity
	}
	if payload.FullName == "" {
		return nil, shared.NewDomainError("application", "New", shared.ErrInvalidInput, "applicant full name is required")
	}
	if !payload.HasResume() {
		return nil, shared.ErrMissingResume
	}

	now := time.Now().UTC()
	return &Application{
		ID:          id,
		StudentID:   studentID,
		StudentName: studentName,
		Opportunity: ref,
		Status:      StatusPending,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// BelongsTo returns true if the application was submitted by the student.
func (a *Application) BelongsTo(studentID string) bool {
	return a.StudentID == studentID
}

// IsAccepted returns true once the poster has accepted the application.
func (a *Application) IsAccepted() bool {
	return a.Status == StatusAccepted
}

// TracksProgress returns true when the application qualifies for a
// progress ledger: an accepted project application.
func (a *Application) TracksProgress() bool {
	return a.IsAccepted() && a.Opportunity.IsProject()
}

// SetStatus moves the application to a new review state.
func (a *Application) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.ErrInvalidStatus
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	return nil
}
