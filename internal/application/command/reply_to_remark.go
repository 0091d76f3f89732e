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
// REPLY TO REMARK COMMAND
// The student answers a poster remark. Threads stay two levels deep:
// every reply lands in the remark's flat reply list.
// ══════════════════════════════════════════════════════════════════════════════

// ReplyToRemarkCommand contains the data for one reply.
type ReplyToRemarkCommand struct {
	// Actor must be the student who owns the application.
	Actor actor.Actor

	// ApplicationID identifies the application whose entry holds the remark.
	ApplicationID string

	// RemarkID identifies the remark being answered.
	RemarkID string

	// Text is the reply body.
	Text string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ReplyToRemarkCommand) Validate() error {
	if c.Actor.ID == "" {
		return shared.NewDomainError("progress", "ReplyToRemark", shared.ErrInvalidInput, "actor is required")
	}
	if c.ApplicationID == "" {
		return shared.NewDomainError("progress", "ReplyToRemark", shared.ErrInvalidInput, "application id is required")
	}
	if c.RemarkID == "" {
		return shared.NewDomainError("progress", "ReplyToRemark", shared.ErrInvalidInput, "remark id is required")
	}
	if strings.TrimSpace(c.Text) == "" {
		return shared.NewDomainError("progress", "ReplyToRemark", shared.ErrInvalidInput, "reply text is required")
	}
	return nil
}

// ReplyToRemarkResult contains the stored reply.
type ReplyToRemarkResult struct {
	ReplyID string
}

// ReplyToRemarkHandler handles the ReplyToRemarkCommand.
type ReplyToRemarkHandler struct {
	appRepo      application.Repository
	progressRepo progress.Repository
	gate         *authz.Gate
	ids          IDGenerator
	publisher    shared.EventPublisher
	log          *logger.Logger
}

// NewReplyToRemarkHandler creates a new ReplyToRemarkHandler.
func NewReplyToRemarkHandler(
	appRepo application.Repository,
	progressRepo progress.Repository,
	gate *authz.Gate,
	ids IDGenerator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *ReplyToRemarkHandler {
	return &ReplyToRemarkHandler{
		appRepo:      appRepo,
		progressRepo: progressRepo,
		gate:         gate,
		ids:          ids,
		publisher:    publisher,
		log:          log,
	}
}

// Handle executes the reply to remark command.
func (h *ReplyToRemarkHandler) Handle(ctx context.Context, cmd ReplyToRemarkCommand) (*ReplyToRemarkResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	app, err := applicationFromRepo(ctx, h.appRepo, h.gate, cmd.Actor, cmd.ApplicationID)
	if err != nil {
		return nil, err
	}

	entry, err := h.progressRepo.GetByApplicationID(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if entry.FindRemark(cmd.RemarkID) == nil {
		return nil, shared.ErrRemarkNotFound
	}

	rep := progress.ReplyRecord{
		ID:         h.ids.NewID(),
		RemarkID:   cmd.RemarkID,
		AuthorID:   cmd.Actor.ID,
		AuthorName: cmd.Actor.DisplayName,
		Text:       cmd.Text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.progressRepo.AddReply(ctx, app.ID, rep); err != nil {
		return nil, fmt.Errorf("reply_to_remark: persist: %w", err)
	}

	event := shared.NewRemarkReplyAddedEvent(
		app.ID, cmd.RemarkID, rep.ID, entry.ProjectTitle,
		cmd.Actor.ID, cmd.Actor.DisplayName, entry.PosterID,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.publisher.Publish(event)

	h.log.Info("reply added",
		logger.ApplicationID(app.ID),
		logger.RemarkID(cmd.RemarkID),
		logger.ActorID(cmd.Actor.ID))

	return &ReplyToRemarkResult{ReplyID: rep.ID}, nil
}
