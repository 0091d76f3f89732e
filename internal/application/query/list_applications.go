// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST MY APPLICATIONS QUERY
// A student lists their own applications across all opportunity kinds.
// ══════════════════════════════════════════════════════════════════════════════

// ListMyApplicationsQuery asks for the calling student's applications.
type ListMyApplicationsQuery struct {
	Actor actor.Actor
}

// ListMyApplicationsResult contains the student's applications, newest first.
type ListMyApplicationsResult struct {
	Applications []*application.Application
}

// ListMyApplicationsHandler handles the ListMyApplicationsQuery.
type ListMyApplicationsHandler struct {
	appRepo application.Repository
	gate    *authz.Gate
}

// NewListMyApplicationsHandler creates a new ListMyApplicationsHandler.
func NewListMyApplicationsHandler(appRepo application.Repository, gate *authz.Gate) *ListMyApplicationsHandler {
	return &ListMyApplicationsHandler{appRepo: appRepo, gate: gate}
}

// Handle executes the query.
func (h *ListMyApplicationsHandler) Handle(ctx context.Context, q ListMyApplicationsQuery) (*ListMyApplicationsResult, error) {
	if err := h.gate.RequireStudent(q.Actor); err != nil {
		return nil, err
	}

	apps, err := h.appRepo.ListByStudent(ctx, q.Actor.ID)
	if err != nil {
		return nil, err
	}
	return &ListMyApplicationsResult{Applications: apps}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST APPLICANTS QUERY
// A poster lists the applications for one of their listings, payloads
// intact. Only the listing's own poster may read its applicants.
// ══════════════════════════════════════════════════════════════════════════════

// ListApplicantsQuery asks for all applications to one opportunity.
type ListApplicantsQuery struct {
	Actor           actor.Actor
	OpportunityType string
	OpportunityID   string
}

// ListApplicantsResult contains the opportunity's applications, oldest first.
type ListApplicantsResult struct {
	Opportunity  opportunity.Resolution
	Applications []*application.Application
}

// ListApplicantsHandler handles the ListApplicantsQuery.
type ListApplicantsHandler struct {
	appRepo  application.Repository
	registry opportunity.Registry
}

// NewListApplicantsHandler creates a new ListApplicantsHandler.
func NewListApplicantsHandler(appRepo application.Repository, registry opportunity.Registry) *ListApplicantsHandler {
	return &ListApplicantsHandler{appRepo: appRepo, registry: registry}
}

// Handle executes the query.
func (h *ListApplicantsHandler) Handle(ctx context.Context, q ListApplicantsQuery) (*ListApplicantsResult, error) {
	ref, err := opportunity.NewRef(q.OpportunityType, q.OpportunityID)
	if err != nil {
		return nil, err
	}

	res, err := h.registry.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !res.Exists {
		return nil, shared.ErrOpportunityNotFound
	}
	if !q.Actor.IsPosterRole() || res.PosterID != q.Actor.ID {
		return nil, shared.ErrNotPoster
	}

	apps, err := h.appRepo.ListByOpportunity(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &ListApplicantsResult{Opportunity: res, Applications: apps}, nil
}
