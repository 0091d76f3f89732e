package query

import (
	"context"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MY PROGRESS QUERY
// A student reads the full history of all their ledger entries. Entries
// whose application was withdrawn or is no longer Accepted never appear;
// the filter happens at the query, the rows stay.
// ══════════════════════════════════════════════════════════════════════════════

// GetMyProgressQuery asks for the calling student's progress entries.
type GetMyProgressQuery struct {
	Actor actor.Actor
}

// GetMyProgressResult contains the student's live entries, full history.
type GetMyProgressResult struct {
	Entries []*progress.Entry
}

// GetMyProgressHandler handles the GetMyProgressQuery.
type GetMyProgressHandler struct {
	progressRepo progress.Repository
	gate         *authz.Gate
}

// NewGetMyProgressHandler creates a new GetMyProgressHandler.
func NewGetMyProgressHandler(progressRepo progress.Repository, gate *authz.Gate) *GetMyProgressHandler {
	return &GetMyProgressHandler{progressRepo: progressRepo, gate: gate}
}

// Handle executes the query.
func (h *GetMyProgressHandler) Handle(ctx context.Context, q GetMyProgressQuery) (*GetMyProgressResult, error) {
	if err := h.gate.RequireStudent(q.Actor); err != nil {
		return nil, err
	}

	entries, err := h.progressRepo.ListByStudent(ctx, q.Actor.ID)
	if err != nil {
		return nil, err
	}
	return &GetMyProgressResult{Entries: entries}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET POSTER VIEW QUERY
// A poster reads one student's progress on their project. Information
// hiding is deliberate: only the latest update is returned, and the
// submission only once it is eligible to exist.
// ══════════════════════════════════════════════════════════════════════════════

// GetPosterViewQuery asks for the poster's view of one application's progress.
type GetPosterViewQuery struct {
	Actor         actor.Actor
	ApplicationID string
}

// PosterView is the poster-facing projection of a ledger entry.
type PosterView struct {
	ApplicationID string
	StudentID     string
	StudentName   string
	ProjectID     string
	ProjectTitle  string
	CurrentStatus progress.CurrentStatus
	LatestUpdate  *progress.Update
	Submission    *progress.Submission
	Remarks       []progress.Remark
}

// GetPosterViewResult contains the projection.
type GetPosterViewResult struct {
	View PosterView
}

// GetPosterViewHandler handles the GetPosterViewQuery.
type GetPosterViewHandler struct {
	appRepo      application.Repository
	progressRepo progress.Repository
	gate         *authz.Gate
}

// NewGetPosterViewHandler creates a new GetPosterViewHandler.
func NewGetPosterViewHandler(
	appRepo application.Repository,
	progressRepo progress.Repository,
	gate *authz.Gate,
) *GetPosterViewHandler {
	return &GetPosterViewHandler{
		appRepo:      appRepo,
		progressRepo: progressRepo,
		gate:         gate,
	}
}

// Handle executes the query.
func (h *GetPosterViewHandler) Handle(ctx context.Context, q GetPosterViewQuery) (*GetPosterViewResult, error) {
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

	view := PosterView{
		ApplicationID: entry.ApplicationID,
		StudentID:     entry.StudentID,
		StudentName:   entry.StudentName,
		ProjectID:     entry.ProjectID,
		ProjectTitle:  entry.ProjectTitle,
		CurrentStatus: entry.CurrentStatus,
		LatestUpdate:  entry.LatestUpdate(),
		Remarks:       entry.Remarks,
	}

	// The submission surfaces only while the eligibility condition
	// holds. Industry-posted projects bypass the condition, same as
	// they do on upload.
	if entry.HasSubmission() {
		if entry.SubmissionEligible() || res.PosterRole == actor.RoleIndustry {
			view.Submission = entry.Submission
		}
	}

	return &GetPosterViewResult{View: view}, nil
}
