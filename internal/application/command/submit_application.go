package command

import (
	"context"
	"fmt"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT APPLICATION COMMAND
// A student applies to a job, project, or internship listing.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitApplicationCommand contains the data to submit an application.
type SubmitApplicationCommand struct {
	// Actor is the authenticated caller; must hold the student role.
	Actor actor.Actor

	// OpportunityType is the raw opportunity kind ("job", "project", "internship").
	OpportunityType string

	// OpportunityID identifies the listing being applied to.
	OpportunityID string

	// Payload is the applicant-authored content, stored verbatim.
	Payload application.Payload

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SubmitApplicationCommand) Validate() error {
	if c.Actor.ID == "" {
		return shared.NewDomainError("application", "Submit", shared.ErrInvalidInput, "actor is required")
	}
	if c.OpportunityID == "" {
		return shared.NewDomainError("application", "Submit", shared.ErrInvalidInput, "opportunity id is required")
	}
	if !c.Payload.HasResume() {
		return shared.ErrMissingResume
	}
	return nil
}

// SubmitApplicationResult contains the created application.
type SubmitApplicationResult struct {
	Application *application.Application
}

// SubmitApplicationHandler handles the SubmitApplicationCommand.
type SubmitApplicationHandler struct {
	appRepo   application.Repository
	registry  opportunity.Registry
	gate      *authz.Gate
	ids       IDGenerator
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewSubmitApplicationHandler creates a new SubmitApplicationHandler.
func NewSubmitApplicationHandler(
	appRepo application.Repository,
	registry opportunity.Registry,
	gate *authz.Gate,
	ids IDGenerator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *SubmitApplicationHandler {
	return &SubmitApplicationHandler{
		appRepo:   appRepo,
		registry:  registry,
		gate:      gate,
		ids:       ids,
		publisher: publisher,
		log:       log,
	}
}

// Handle executes the submit application command.
func (h *SubmitApplicationHandler) Handle(ctx context.Context, cmd SubmitApplicationCommand) (*SubmitApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if err := h.gate.RequireStudent(cmd.Actor); err != nil {
		return nil, err
	}

	ref, err := opportunity.NewRef(cmd.OpportunityType, cmd.OpportunityID)
	if err != nil {
		return nil, err
	}

	res, err := h.registry.Resolve(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("submit_application: resolve opportunity: %w", err)
	}
	if !res.Exists {
		return nil, shared.ErrOpportunityNotFound
	}

	app, err := application.New(h.ids.NewID(), cmd.Actor.ID, cmd.Actor.DisplayName, ref, cmd.Payload)
	if err != nil {
		return nil, err
	}

	// The unique index on (student, type, id) decides the duplicate
	// race; a concurrent second submit surfaces here as Conflict.
	if err := h.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	if err := h.registry.AddApplicant(ctx, ref, cmd.Actor.ID); err != nil {
		// The application is already committed; the applicant set is a
		// denormalized convenience, so log and continue.
		h.log.Warn("failed to record applicant on opportunity",
			logger.ApplicationID(app.ID),
			logger.OpportunityID(ref.ID),
			logger.Err(err))
	}

	event := shared.NewApplicationSubmittedEvent(
		app.ID, app.StudentID, app.StudentName,
		ref.Type.String(), ref.ID, res.Title, res.PosterID,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.publisher.Publish(event)

	h.log.Info("application submitted",
		logger.ApplicationID(app.ID),
		logger.StudentID(app.StudentID),
		logger.OpportunityKind(ref.Type.String()),
		logger.OpportunityID(ref.ID))

	return &SubmitApplicationResult{Application: app}, nil
}
