package postgres

import (
	"context"
	"fmt"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// OpportunityRegistry implements opportunity.Registry against the
// portal's listing tables. The type tag picks the table exactly once,
// here; no call site branches on the opportunity kind.
type OpportunityRegistry struct {
	conn *Connection
}

// NewOpportunityRegistry creates a new OpportunityRegistry.
func NewOpportunityRegistry(conn *Connection) *OpportunityRegistry {
	return &OpportunityRegistry{conn: conn}
}

var _ opportunity.Registry = (*OpportunityRegistry)(nil)

// listingTable maps the closed union to its table. Unknown tags were
// rejected at the boundary, so the fallback never fires in practice.
func listingTable(t opportunity.Type) (string, error) {
	switch t {
	case opportunity.TypeJob:
		return "job_listings", nil
	case opportunity.TypeProject:
		return "project_listings", nil
	case opportunity.TypeInternship:
		return "internship_listings", nil
	default:
		return "", shared.ErrInvalidOpportunity
	}
}

// Resolve looks up one listing. A missing row is Exists=false, not an error.
func (r *OpportunityRegistry) Resolve(ctx context.Context, ref opportunity.Ref) (opportunity.Resolution, error) {
	table, err := listingTable(ref.Type)
	if err != nil {
		return opportunity.Resolution{}, err
	}

	query := fmt.Sprintf(
		`SELECT title, poster_id, poster_role FROM %s WHERE id = $1`, table)

	var title, posterID, rawRole string
	err = r.conn.QueryRow(ctx, query, ref.ID).Scan(&title, &posterID, &rawRole)
	if err != nil {
		if IsNoRows(err) {
			return opportunity.Resolution{Ref: ref, Exists: false}, nil
		}
		return opportunity.Resolution{}, shared.WrapError("opportunity", "Resolve", shared.ErrInternal, "query failed", err)
	}

	// Listings written by older portal versions carry unnormalized role
	// strings; parse failures degrade to an empty role, not an error.
	role, _ := actor.ParseRole(rawRole)

	return opportunity.Resolution{
		Ref:        ref,
		Exists:     true,
		Title:      title,
		PosterID:   posterID,
		PosterRole: role,
	}, nil
}

// AddApplicant records the student on the listing's applicant set.
// The primary key makes the add idempotent.
func (r *OpportunityRegistry) AddApplicant(ctx context.Context, ref opportunity.Ref, studentID string) error {
	if !ref.Type.IsValid() {
		return shared.ErrInvalidOpportunity
	}

	const query = `
		INSERT INTO opportunity_applicants (opportunity_type, opportunity_id, student_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (opportunity_type, opportunity_id, student_id) DO NOTHING
	`
	_, err := r.conn.Exec(ctx, query, ref.Type.String(), ref.ID, studentID)
	if err != nil {
		return shared.WrapError("opportunity", "AddApplicant", shared.ErrInternal, "insert failed", err)
	}
	return nil
}
