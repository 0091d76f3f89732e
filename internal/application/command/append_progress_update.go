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
// APPEND PROGRESS UPDATE COMMAND
// The student reports progress on an accepted project. Updates are
// append-only; an omitted percentage carries the previous one forward.
// ══════════════════════════════════════════════════════════════════════════════

// AppendProgressUpdateCommand contains the data for one progress update.
type AppendProgressUpdateCommand struct {
	// Actor must be the student who owns the application.
	Actor actor.Actor

	// ApplicationID identifies the accepted project application.
	ApplicationID string

	// Text is the update body.
	Text string

	// Percentage is the reported completion, 0-100. Nil carries the
	// latest recorded percentage forward (0 if none exists).
	Percentage *int

	// Status optionally overwrites the entry's current work status.
	Status string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c AppendProgressUpdateCommand) Validate() error {
	if c.Actor.ID == "" {
		return shared.NewDomainError("progress", "AppendUpdate", shared.ErrInvalidInput, "actor is required")
	}
	if c.ApplicationID == "" {
		return shared.NewDomainError("progress", "AppendUpdate", shared.ErrInvalidInput, "application id is required")
	}
	if strings.TrimSpace(c.Text) == "" {
		return shared.NewDomainError("progress", "AppendUpdate", shared.ErrInvalidInput, "update text is required")
	}
	if c.Percentage != nil {
		if err := progress.ValidatePercentage(*c.Percentage); err != nil {
			return err
		}
	}
	return nil
}

// AppendProgressUpdateResult contains the outcome of the append.
type AppendProgressUpdateResult struct {
	Entry      *progress.Entry
	Percentage int
	Status     progress.CurrentStatus
}

// AppendProgressUpdateHandler handles the AppendProgressUpdateCommand.
type AppendProgressUpdateHandler struct {
	appRepo      application.Repository
	progressRepo progress.Repository
	gate         *authz.Gate
	ids          IDGenerator
	publisher    shared.EventPublisher
	log          *logger.Logger

	// strictTransitions rejects backward status moves and decreasing
	// percentages when enabled. Off by default.
	strictTransitions bool
}

// NewAppendProgressUpdateHandler creates a new AppendProgressUpdateHandler.
func NewAppendProgressUpdateHandler(
	appRepo application.Repository,
	progressRepo progress.Repository,
	gate *authz.Gate,
	ids IDGenerator,
	publisher shared.EventPublisher,
	log *logger.Logger,
	strictTransitions bool,
) *AppendProgressUpdateHandler {
	return &AppendProgressUpdateHandler{
		appRepo:           appRepo,
		progressRepo:      progressRepo,
		gate:              gate,
		ids:               ids,
		publisher:         publisher,
		log:               log,
		strictTransitions: strictTransitions,
	}
}

// Handle executes the append progress update command.
func (h *AppendProgressUpdateHandler) Handle(ctx context.Context, cmd AppendProgressUpdateCommand) (*AppendProgressUpdateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	app, err := applicationFromRepo(ctx, h.appRepo, h.gate, cmd.Actor, cmd.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !app.TracksProgress() {
		return nil, shared.ErrNotAcceptedProject
	}

	entry, err := h.loadOrCreateEntry(ctx, app)
	if err != nil {
		return nil, err
	}

	percentage := entry.LatestPercentage()
	if cmd.Percentage != nil {
		percentage = *cmd.Percentage
	}

	status := entry.CurrentStatus
	if cmd.Status != "" {
		status, err = progress.ParseCurrentStatus(cmd.Status)
		if err != nil {
			return nil, err
		}
	}

	if h.strictTransitions {
		if percentage < entry.LatestPercentage() {
			return nil, shared.ErrBackwardTransition
		}
		if !status.AtLeast(entry.CurrentStatus) {
			return nil, shared.ErrBackwardTransition
		}
	}

	upd := progress.UpdateRecord{
		ID:         h.ids.NewID(),
		Text:       cmd.Text,
		Percentage: percentage,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.progressRepo.AppendUpdate(ctx, app.ID, upd, status); err != nil {
		return nil, fmt.Errorf("append_progress_update: persist: %w", err)
	}

	entry.Updates = append(entry.Updates, progress.Update(upd))
	entry.CurrentStatus = status

	event := shared.NewProgressUpdateAppendedEvent(
		app.ID, entry.StudentID, entry.StudentName,
		entry.ProjectID, entry.ProjectTitle, entry.PosterID,
		percentage, status.String(),
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.publisher.Publish(event)

	h.log.Info("progress update appended",
		logger.ApplicationID(app.ID),
		logger.StudentID(entry.StudentID),
		logger.Int("percentage", percentage),
		logger.String("status", status.String()))

	return &AppendProgressUpdateResult{
		Entry:      entry,
		Percentage: percentage,
		Status:     status,
	}, nil
}

// loadOrCreateEntry fetches the ledger entry, lazily creating it for
// applications accepted before the ledger existed.
func (h *AppendProgressUpdateHandler) loadOrCreateEntry(ctx context.Context, app *application.Application) (*progress.Entry, error) {
	entry, err := h.progressRepo.GetByApplicationID(ctx, app.ID)
	if err == nil {
		return entry, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	res, err := h.gate.ResolvePoster(ctx, app)
	if err != nil {
		return nil, err
	}

	fresh := progress.NewEntry(
		h.ids.NewID(), app.ID,
		app.StudentID, app.StudentName,
		app.Opportunity.ID, res.Title, res.PosterID,
	)
	return h.progressRepo.EnsureEntry(ctx, fresh)
}
