// Package authz centralizes the relationship checks the workflow gates
// on: is the actor the applicant, is the actor the opportunity's poster.
package authz

import (
	"context"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// Relation is the actor-to-application relationship being asserted.
type Relation string

const (
	// RelationApplicant requires the actor to be the student who
	// submitted the application.
	RelationApplicant Relation = "applicant"

	// RelationPoster requires the actor to be the poster of the
	// application's opportunity.
	RelationPoster Relation = "poster"
)

// Gate answers relationship questions against the opportunity registry.
type Gate struct {
	registry opportunity.Registry
}

// NewGate creates an authorization gate.
func NewGate(registry opportunity.Registry) *Gate {
	return &Gate{registry: registry}
}

// RequireStudent checks the actor holds the student role.
func (g *Gate) RequireStudent(a actor.Actor) error {
	if !a.IsStudent() {
		return shared.ErrNotStudent
	}
	return nil
}

// RequireRelation checks the actor stands in the given relation to the
// application. Ownership mismatches are Forbidden regardless of role.
func (g *Gate) RequireRelation(ctx context.Context, a actor.Actor, app *application.Application, rel Relation) error {
	switch rel {
	case RelationApplicant:
		if !app.BelongsTo(a.ID) {
			return shared.ErrNotApplicant
		}
		return nil

	case RelationPoster:
		res, err := g.registry.Resolve(ctx, app.Opportunity)
		if err != nil {
			return err
		}
		if !res.Exists {
			return shared.ErrOpportunityNotFound
		}
		if res.PosterID != a.ID {
			return shared.ErrNotPoster
		}
		return nil

	default:
		return shared.ErrActorMismatch
	}
}

// ResolvePoster returns the poster resolution for an application's
// opportunity, for callers that need the poster's identity after the
// relation check.
func (g *Gate) ResolvePoster(ctx context.Context, app *application.Application) (opportunity.Resolution, error) {
	res, err := g.registry.Resolve(ctx, app.Opportunity)
	if err != nil {
		return opportunity.Resolution{}, err
	}
	if !res.Exists {
		return opportunity.Resolution{}, shared.ErrOpportunityNotFound
	}
	return res, nil
}
