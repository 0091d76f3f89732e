package command

import (
	"context"
	"fmt"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET APPLICATION STATUS COMMAND
// The opportunity poster reviews an application. Accepting a project
// application creates its progress ledger entry.
// ══════════════════════════════════════════════════════════════════════════════

// SetApplicationStatusCommand contains the data for a status change.
type SetApplicationStatusCommand struct {
	// Actor must be the poster of the application's opportunity.
	Actor actor.Actor

	// ApplicationID identifies the application under review.
	ApplicationID string

	// NewStatus is the raw target status.
	NewStatus string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SetApplicationStatusCommand) Validate() error {
	if c.Actor.ID == "" {
		return shared.NewDomainError("application", "SetStatus", shared.ErrInvalidInput, "actor is required")
	}
	if c.ApplicationID == "" {
		return shared.NewDomainError("application", "SetStatus", shared.ErrInvalidInput, "application id is required")
	}
	return nil
}

// SetApplicationStatusResult contains the outcome of the status change.
type SetApplicationStatusResult struct {
	Application  *application.Application
	OldStatus    application.Status
	EntryCreated bool
}

// SetApplicationStatusHandler handles the SetApplicationStatusCommand.
type SetApplicationStatusHandler struct {
	appRepo      application.Repository
	progressRepo progress.Repository
	gate         *authz.Gate
	ids          IDGenerator
	publisher    shared.EventPublisher
	log          *logger.Logger
}

// NewSetApplicationStatusHandler creates a new SetApplicationStatusHandler.
func NewSetApplicationStatusHandler(
	appRepo application.Repository,
	progressRepo progress.Repository,
	gate *authz.Gate,
	ids IDGenerator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *SetApplicationStatusHandler {
	return &SetApplicationStatusHandler{
		appRepo:      appRepo,
		progressRepo: progressRepo,
		gate:         gate,
		ids:          ids,
		publisher:    publisher,
		log:          log,
	}
}

// Handle executes the set application status command.
func (h *SetApplicationStatusHandler) Handle(ctx context.Context, cmd SetApplicationStatusCommand) (*SetApplicationStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	status, err := application.ParseStatus(cmd.NewStatus)
	if err != nil {
		return nil, err
	}

	app, err := h.appRepo.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, err
	}

	// Resolves the opportunity; a vanished listing is NotFound here.
	res, err := h.gate.ResolvePoster(ctx, app)
	if err != nil {
		return nil, err
	}
	if res.PosterID != cmd.Actor.ID {
		return nil, shared.ErrNotPoster
	}

	oldStatus := app.Status
	if err := app.SetStatus(status); err != nil {
		return nil, err
	}
	if err := h.appRepo.UpdateStatus(ctx, app.ID, status); err != nil {
		return nil, fmt.Errorf("set_application_status: persist status: %w", err)
	}

	result := &SetApplicationStatusResult{
		Application: app,
		OldStatus:   oldStatus,
	}

	// Accepting a project application opens its progress ledger.
	// EnsureEntry is an atomic conditional insert, so a concurrent
	// re-accept never creates a second entry.
	if app.TracksProgress() {
		entry := progress.NewEntry(
			h.ids.NewID(), app.ID,
			app.StudentID, app.StudentName,
			app.Opportunity.ID, res.Title, res.PosterID,
		)
		if _, err := h.progressRepo.EnsureEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("set_application_status: ensure progress entry: %w", err)
		}
		result.EntryCreated = true
	}

	event := shared.NewApplicationStatusChangedEvent(
		app.ID, app.StudentID,
		app.Opportunity.Type.String(), app.Opportunity.ID, res.Title,
		oldStatus.String(), status.String(), cmd.Actor.ID,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.publisher.Publish(event)

	h.log.Info("application status changed",
		logger.ApplicationID(app.ID),
		logger.ActorID(cmd.Actor.ID),
		logger.String("old_status", oldStatus.String()),
		logger.String("new_status", status.String()))

	return result, nil
}
