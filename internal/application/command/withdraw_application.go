package command

import (
	"context"
	"fmt"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// WITHDRAW APPLICATION COMMAND
// The owning student hard-deletes their application. The progress ledger
// entry, if any, is left in place and suppressed on read paths; the
// applicant listing on the opportunity is not retracted.
// ══════════════════════════════════════════════════════════════════════════════

// WithdrawApplicationCommand contains the data to withdraw an application.
type WithdrawApplicationCommand struct {
	// Actor must be the student who submitted the application.
	Actor actor.Actor

	// ApplicationID identifies the application to withdraw.
	ApplicationID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c WithdrawApplicationCommand) Validate() error {
	if c.Actor.ID == "" {
		return shared.NewDomainError("application", "Withdraw", shared.ErrInvalidInput, "actor is required")
	}
	if c.ApplicationID == "" {
		return shared.NewDomainError("application", "Withdraw", shared.ErrInvalidInput, "application id is required")
	}
	return nil
}

// WithdrawApplicationResult contains the outcome of the withdrawal.
type WithdrawApplicationResult struct {
	ApplicationID string
}

// WithdrawApplicationHandler handles the WithdrawApplicationCommand.
type WithdrawApplicationHandler struct {
	appRepo   application.Repository
	gate      *authz.Gate
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewWithdrawApplicationHandler creates a new WithdrawApplicationHandler.
func NewWithdrawApplicationHandler(
	appRepo application.Repository,
	gate *authz.Gate,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *WithdrawApplicationHandler {
	return &WithdrawApplicationHandler{
		appRepo:   appRepo,
		gate:      gate,
		publisher: publisher,
		log:       log,
	}
}

// Handle executes the withdraw application command.
func (h *WithdrawApplicationHandler) Handle(ctx context.Context, cmd WithdrawApplicationCommand) (*WithdrawApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	app, err := h.appRepo.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, err
	}

	if err := h.gate.RequireRelation(ctx, cmd.Actor, app, authz.RelationApplicant); err != nil {
		return nil, err
	}

	if err := h.appRepo.Delete(ctx, app.ID); err != nil {
		return nil, fmt.Errorf("withdraw_application: delete: %w", err)
	}

	// The poster's identity is best-effort here: a withdrawn listing
	// may itself be gone, in which case nobody gets notified.
	var title, posterID string
	if res, err := h.gate.ResolvePoster(ctx, app); err == nil {
		title = res.Title
		posterID = res.PosterID
	}

	event := shared.NewApplicationWithdrawnEvent(
		app.ID, app.StudentID, app.StudentName,
		app.Opportunity.Type.String(), app.Opportunity.ID, title, posterID,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.publisher.Publish(event)

	h.log.Info("application withdrawn",
		logger.ApplicationID(app.ID),
		logger.StudentID(app.StudentID))

	return &WithdrawApplicationResult{ApplicationID: app.ID}, nil
}

// applicationFromRepo is a shared load helper for ledger commands: it
// fetches the application and checks the applicant relation in one step.
func applicationFromRepo(
	ctx context.Context,
	appRepo application.Repository,
	gate *authz.Gate,
	a actor.Actor,
	applicationID string,
) (*application.Application, error) {
	app, err := appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := gate.RequireRelation(ctx, a, app, authz.RelationApplicant); err != nil {
		return nil, err
	}
	return app, nil
}
