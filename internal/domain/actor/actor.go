// Package actor defines who is acting on the workflow: the authenticated
// portal user and their normalized role.
package actor

import (
	"strings"

	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// Role is the normalized portal role. Raw role strings from tokens and
// legacy records vary in casing and spacing, so every boundary parses
// into this enum before any authorization decision.
type Role string

const (
	RoleStudent  Role = "student"
	RoleAcademia Role = "academia"
	RoleIndustry Role = "industry"
)

// IsValid checks if the role is one of the known portal roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleAcademia, RoleIndustry:
		return true
	}
	return false
}

// String returns the canonical string form.
func (r Role) String() string {
	return string(r)
}

// ParseRole normalizes a raw role string into a Role. Accepts the
// variants seen in practice ("Student", "Academia Official",
// "industry official", "Industry") case-insensitively.
func ParseRole(raw string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.TrimSuffix(normalized, " official")

	switch normalized {
	case "student":
		return RoleStudent, nil
	case "academia":
		return RoleAcademia, nil
	case "industry":
		return RoleIndustry, nil
	default:
		return "", shared.WrapError("actor", "ParseRole", shared.ErrInvalidInput,
			"unrecognized role "+raw, shared.ErrUnknownRole)
	}
}

// Actor is the authenticated caller of a workflow operation.
type Actor struct {
	ID          string
	DisplayName string
	Role        Role
}

// New creates an Actor, normalizing the raw role string.
func New(id, displayName, rawRole string) (Actor, error) {
	if id == "" {
		return Actor{}, shared.NewDomainError("actor", "New", shared.ErrInvalidInput, "actor id is required")
	}

	role, err := ParseRole(rawRole)
	if err != nil {
		return Actor{}, err
	}

	return Actor{
		ID:          id,
		DisplayName: displayName,
		Role:        role,
	}, nil
}

// IsStudent returns true if the actor holds the student role.
func (a Actor) IsStudent() bool {
	return a.Role == RoleStudent
}

// IsPosterRole returns true if the actor holds a role that can post
// opportunities (academia or industry).
func (a Actor) IsPosterRole() bool {
	return a.Role == RoleAcademia || a.Role == RoleIndustry
}
