package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/document"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPLOAD SUBMISSION COMMAND
// The student uploads the final project document. Academia-posted
// projects require submission eligibility (Completed or 100%);
// industry-posted projects accept a submission in any state.
// ══════════════════════════════════════════════════════════════════════════════

// UploadSubmissionCommand contains the data for a submission upload.
type UploadSubmissionCommand struct {
	// Actor must be the student who owns the application.
	Actor actor.Actor

	// ApplicationID identifies the accepted project application.
	ApplicationID string

	// Filename is the original name of the uploaded document.
	Filename string

	// Content is the document bytes.
	Content io.Reader

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UploadSubmissionCommand) Validate() error {
	if c.Actor.ID == "" {
		return shared.NewDomainError("progress", "UploadSubmission", shared.ErrInvalidInput, "actor is required")
	}
	if c.ApplicationID == "" {
		return shared.NewDomainError("progress", "UploadSubmission", shared.ErrInvalidInput, "application id is required")
	}
	if c.Filename == "" {
		return shared.NewDomainError("progress", "UploadSubmission", shared.ErrInvalidInput, "filename is required")
	}
	if c.Content == nil {
		return shared.NewDomainError("progress", "UploadSubmission", shared.ErrInvalidInput, "document content is required")
	}
	return nil
}

// UploadSubmissionResult contains the outcome of the upload.
type UploadSubmissionResult struct {
	DocumentKey string
	Filename    string
	Replaced    bool
}

// UploadSubmissionHandler handles the UploadSubmissionCommand.
type UploadSubmissionHandler struct {
	appRepo      application.Repository
	progressRepo progress.Repository
	store        document.Store
	gate         *authz.Gate
	ids          IDGenerator
	publisher    shared.EventPublisher
	log          *logger.Logger
}

// NewUploadSubmissionHandler creates a new UploadSubmissionHandler.
func NewUploadSubmissionHandler(
	appRepo application.Repository,
	progressRepo progress.Repository,
	store document.Store,
	gate *authz.Gate,
	ids IDGenerator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *UploadSubmissionHandler {
	return &UploadSubmissionHandler{
		appRepo:      appRepo,
		progressRepo: progressRepo,
		store:        store,
		gate:         gate,
		ids:          ids,
		publisher:    publisher,
		log:          log,
	}
}

// Handle executes the upload submission command.
func (h *UploadSubmissionHandler) Handle(ctx context.Context, cmd UploadSubmissionCommand) (*UploadSubmissionResult, error) {
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

	res, err := h.gate.ResolvePoster(ctx, app)
	if err != nil {
		return nil, err
	}
	industryPosted := res.PosterRole == actor.RoleIndustry

	entry, err := h.progressRepo.GetByApplicationID(ctx, app.ID)
	switch {
	case err == nil:
		if !industryPosted && !entry.SubmissionEligible() {
			return nil, shared.ErrNotSubmissionEligible
		}
	case shared.IsNotFound(err) && industryPosted:
		// Industry-posted projects tolerate a missing entry: create one
		// already In Progress so the submission has a home.
		fresh := progress.NewEntry(
			h.ids.NewID(), app.ID,
			app.StudentID, app.StudentName,
			app.Opportunity.ID, res.Title, res.PosterID,
		)
		fresh.CurrentStatus = progress.StatusInProgress
		entry, err = h.progressRepo.EnsureEntry(ctx, fresh)
		if err != nil {
			return nil, fmt.Errorf("upload_submission: ensure entry: %w", err)
		}
	default:
		return nil, err
	}

	// Stage the bytes before touching the ledger; any failure after
	// this point must delete the staged file.
	key, err := h.store.Save(ctx, cmd.Filename, cmd.Content)
	if err != nil {
		return nil, fmt.Errorf("upload_submission: store document: %w", err)
	}

	sub := progress.Submission{
		DocumentKey: key,
		Filename:    cmd.Filename,
		UploadedBy:  cmd.Actor.ID,
		UploadedAt:  time.Now().UTC(),
	}
	previousKey, err := h.progressRepo.SetSubmission(ctx, app.ID, sub)
	if err != nil {
		if delErr := h.store.Delete(ctx, key); delErr != nil {
			h.log.Error("failed to clean up staged submission",
				logger.ApplicationID(app.ID),
				logger.DocumentKey(key),
				logger.Err(delErr))
		}
		return nil, fmt.Errorf("upload_submission: persist slot: %w", err)
	}

	// The slot now points at the new document; the replaced file is
	// garbage and best-effort deleted.
	if previousKey != "" {
		if err := h.store.Delete(ctx, previousKey); err != nil {
			h.log.Warn("failed to delete replaced submission document",
				logger.ApplicationID(app.ID),
				logger.DocumentKey(previousKey),
				logger.Err(err))
		}
	}

	event := shared.NewSubmissionUploadedEvent(
		app.ID, entry.StudentID, entry.StudentName,
		entry.ProjectID, entry.ProjectTitle, entry.PosterID,
		cmd.Actor.ID, cmd.Filename, previousKey != "",
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.publisher.Publish(event)

	h.log.Info("submission uploaded",
		logger.ApplicationID(app.ID),
		logger.StudentID(entry.StudentID),
		logger.DocumentKey(key),
		logger.Bool("replaced", previousKey != ""))

	return &UploadSubmissionResult{
		DocumentKey: key,
		Filename:    cmd.Filename,
		Replaced:    previousKey != "",
	}, nil
}
