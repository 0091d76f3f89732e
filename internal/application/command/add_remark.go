package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD REMARK COMMAND
// The project poster leaves a remark on the student's progress entry.
// ══════════════════════════════════════════════════════════════════════════════

// AddRemarkCommand contains the data for one poster remark.
type AddRemarkCommand struct {
	// Actor must be the poster of the application's opportunity.
	Actor actor.Actor

	// ApplicationID identifies the application whose entry gets the remark.
	ApplicationID string

	// Text is the remark body.
	Text string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c AddRemarkCommand) Validate() error {
	if c.Actor.ID == "" {
		return shared.NewDomainError("progress", "AddRemark", shared.ErrInvalidInput, "actor is required")
	}
	if c.ApplicationID == "" {
		return shared.NewDomainError("progress", "AddRemark", shared.ErrInvalidInput, "application id is required")
	}
	if strings.TrimSpace(c.Text) == "" {
		return shared.NewDomainError("progress", "AddRemark", shared.ErrInvalidInput, "remark text is required")
	}
	return nil
}

// AddRemarkResult contains the stored remark.
type AddRemarkResult struct {
	RemarkID string
}

// AddRemarkHandler handles the AddRemarkCommand.
type AddRemarkHandler struct {
	appRepo      application.Repository
	progressRepo progress.Repository
	gate         *authz.Gate
	ids          IDGenerator
	publisher    shared.EventPublisher
	log          *logger.Logger
}

// NewAddRemarkHandler creates a new AddRemarkHandler.
func NewAddRemarkHandler(
	appRepo application.Repository,
	progressRepo progress.Repository,
	gate *authz.Gate,
	ids IDGenerator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *AddRemarkHandler {
	return &AddRemarkHandler{
		appRepo:      appRepo,
		progressRepo: progressRepo,
		gate:         gate,
		ids:          ids,
		publisher:    publisher,
		log:          log,
	}
}

// Handle executes the add remark command.
func (h *AddRemarkHandler) Handle(ctx context.Context, cmd AddRemarkCommand) (*AddRemarkResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	app, err := h.appRepo.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, err
	}
	if err := h.gate.RequireRelation(ctx, cmd.Actor, app, authz.RelationPoster); err != nil {
		return nil, err
	}

	entry, err := h.progressRepo.GetByApplicationID(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	rem := progress.RemarkRecord{
		ID:         h.ids.NewID(),
		AuthorID:   cmd.Actor.ID,
		AuthorName: cmd.Actor.DisplayName,
		Text:       cmd.Text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.progressRepo.AddRemark(ctx, app.ID, rem); err != nil {
		return nil, fmt.Errorf("add_remark: persist: %w", err)
	}

	event := shared.NewRemarkAddedEvent(
		app.ID, rem.ID, entry.StudentID,
		entry.ProjectID, entry.ProjectTitle,
		cmd.Actor.ID, cmd.Actor.DisplayName,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.publisher.Publish(event)

	h.log.Info("remark added",
		logger.ApplicationID(app.ID),
		logger.RemarkID(rem.ID),
		logger.ActorID(cmd.Actor.ID))

	return &AddRemarkResult{RemarkID: rem.ID}, nil
}
