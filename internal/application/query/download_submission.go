package query

import (
	"context"
	"io"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/document"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOWNLOAD SUBMISSION QUERY
// The project poster streams the stored submission document. Reading the
// submission is a poster right; students re-download nothing through
// this path.
// ══════════════════════════════════════════════════════════════════════════════

// DownloadSubmissionQuery asks for one application's submission document.
type DownloadSubmissionQuery struct {
	Actor         actor.Actor
	ApplicationID string
}

// DownloadSubmissionResult streams the document. The caller owns Content
// and must close it.
type DownloadSubmissionResult struct {
	Filename string
	Content  io.ReadCloser
}

// DownloadSubmissionHandler handles the DownloadSubmissionQuery.
type DownloadSubmissionHandler struct {
	appRepo      application.Repository
	progressRepo progress.Repository
	store        document.Store
	gate         *authz.Gate
}

// NewDownloadSubmissionHandler creates a new DownloadSubmissionHandler.
func NewDownloadSubmissionHandler(
	appRepo application.Repository,
	progressRepo progress.Repository,
	store document.Store,
	gate *authz.Gate,
) *DownloadSubmissionHandler {
	return &DownloadSubmissionHandler{
		appRepo:      appRepo,
		progressRepo: progressRepo,
		store:        store,
		gate:         gate,
	}
}

// Handle executes the query.
func (h *DownloadSubmissionHandler) Handle(ctx context.Context, q DownloadSubmissionQuery) (*DownloadSubmissionResult, error) {
	app, err := h.appRepo.GetByID(ctx, q.ApplicationID)
	if err != nil {
		return nil, err
	}
	res, err := h.gate.ResolvePoster(ctx, app)
	if err != nil {
		return nil, err
	}
	if res.PosterID != q.Actor.ID {
		return nil, shared.ErrNotPoster
	}

	entry, err := h.progressRepo.GetByApplicationID(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if !entry.HasSubmission() {
		return nil, shared.ErrNoSubmission
	}
	if !entry.SubmissionEligible() && res.PosterRole != actor.RoleIndustry {
		return nil, shared.ErrNoSubmission
	}

	rc, err := h.store.Open(ctx, entry.Submission.DocumentKey)
	if err != nil {
		return nil, err
	}

	return &DownloadSubmissionResult{
		Filename: entry.Submission.Filename,
		Content:  rc,
	}, nil
}
