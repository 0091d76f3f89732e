// Package opportunity defines the closed union of opportunity kinds the
// portal publishes (jobs, projects, internships) and the registry port
// that resolves a reference to its listing.
package opportunity

import (
	"context"
	"strings"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// Type is the kind of opportunity. The union is closed: unknown kinds
// are rejected at the boundary, never stored.
type Type string

const (
	TypeJob        Type = "job"
	TypeProject    Type = "project"
	TypeInternship Type = "internship"
)

// IsValid checks if the type is a known opportunity kind.
func (t Type) IsValid() bool {
	switch t {
	case TypeJob, TypeProject, TypeInternship:
		return true
	}
	return false
}

// String returns the canonical string form.
func (t Type) String() string {
	return string(t)
}

// ParseType normalizes a raw opportunity type string.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", shared.WrapError("opportunity", "ParseType", shared.ErrInvalidInput,
			"unknown opportunity type "+raw, shared.ErrInvalidOpportunity)
	}
	return t, nil
}

// Ref identifies a single opportunity listing.
type Ref struct {
	Type Type
	ID   string
}

// NewRef validates and builds a Ref.
func NewRef(rawType, id string) (Ref, error) {
	t, err := ParseType(rawType)
	if err != nil {
		return Ref{}, err
	}
	if id == "" {
		return Ref{}, shared.NewDomainError("opportunity", "NewRef", shared.ErrInvalidInput, "opportunity id is required")
	}
	return Ref{Type: t, ID: id}, nil
}

// IsProject returns true for project opportunities, the only kind with
// progress tracking.
func (r Ref) IsProject() bool {
	return r.Type == TypeProject
}

// Resolution is what the registry knows about a listing.
type Resolution struct {
	Ref        Ref
	Exists     bool
	Title      string
	PosterID   string
	PosterRole actor.Role
}

// Registry resolves opportunity references against the portal's listing
// tables and records applicant membership. Implemented by the postgres
// registry, optionally fronted by a redis cache.
type Registry interface {
	// Resolve looks up a listing. A missing listing returns a Resolution
	// with Exists=false, not an error; infrastructure failures error.
	Resolve(ctx context.Context, ref Ref) (Resolution, error)

	// AddApplicant records the student on the listing's applicant set.
	// Adding the same student twice is a no-op. Withdrawal never removes
	// the student from the set.
	AddApplicant(ctx context.Context, ref Ref, studentID string) error
}
