package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

func uploadHandler(env *testEnv) *UploadSubmissionHandler {
	return NewUploadSubmissionHandler(
		env.appRepo, env.progressRepo, env.store, env.gate, env.ids, env.published, env.log)
}

func uploadCmd(appID, filename, content string) UploadSubmissionCommand {
	return UploadSubmissionCommand{
		Actor:         student,
		ApplicationID: appID,
		Filename:      filename,
		Content:       strings.NewReader(content),
	}
}

// completeWork drives the entry to submission eligibility.
func completeWork(t *testing.T, env *testEnv, appID string) {
	t.Helper()
	_, err := appendHandler(env, false).Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: appID, Text: "done", Percentage: intPtr(100), Status: "completed",
	})
	require.NoError(t, err)
}

func TestUploadSubmission_EligibleEntry(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	completeWork(t, env, app.ID)
	h := uploadHandler(env)

	result, err := h.Handle(context.Background(), uploadCmd(app.ID, "report.pdf", "final report"))
	require.NoError(t, err)

	assert.False(t, result.Replaced)
	assert.Equal(t, "report.pdf", result.Filename)

	entry, err := env.progressRepo.GetByApplicationID(context.Background(), app.ID)
	require.NoError(t, err)
	require.True(t, entry.HasSubmission())
	assert.Equal(t, result.DocumentKey, entry.Submission.DocumentKey)
	assert.Equal(t, student.ID, entry.Submission.UploadedBy)
}

func TestUploadSubmission_NotEligibleRejected(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := uploadHandler(env)

	_, err := h.Handle(context.Background(), uploadCmd(app.ID, "report.pdf", "too early"))
	assert.ErrorIs(t, err, shared.ErrNotSubmissionEligible)

	// Nothing was staged for a rejected upload.
	assert.Empty(t, env.store.files)
}

func TestUploadSubmission_ReplaceDeletesPreviousDocument(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	completeWork(t, env, app.ID)
	h := uploadHandler(env)

	first, err := h.Handle(context.Background(), uploadCmd(app.ID, "v1.pdf", "draft"))
	require.NoError(t, err)

	second, err := h.Handle(context.Background(), uploadCmd(app.ID, "v2.pdf", "final"))
	require.NoError(t, err)

	assert.True(t, second.Replaced)
	assert.Contains(t, env.store.deleted, first.DocumentKey)

	entry, err := env.progressRepo.GetByApplicationID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, second.DocumentKey, entry.Submission.DocumentKey)
	assert.Equal(t, "v2.pdf", entry.Submission.Filename)
}

func TestUploadSubmission_StagedFileCleanedUpOnFailure(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	completeWork(t, env, app.ID)
	env.progressRepo.failSetSubmission = true
	h := uploadHandler(env)

	_, err := h.Handle(context.Background(), uploadCmd(app.ID, "report.pdf", "doomed"))
	require.Error(t, err)

	// The staged document never outlives the failed slot write.
	assert.Empty(t, env.store.files)
	assert.Len(t, env.store.deleted, 1)
}

func TestUploadSubmission_IndustryBypassesEligibility(t *testing.T) {
	env := newTestEnv()
	ref := env.seedProject(t, "proj-ind", industryPoster)
	app := env.seedApplication(t, ref, application.StatusAccepted)

	entry := progress.NewEntry(env.ids.NewID(), app.ID,
		app.StudentID, app.StudentName, ref.ID, "Campus App", industryPoster.ID)
	_, err := env.progressRepo.EnsureEntry(context.Background(), entry)
	require.NoError(t, err)

	// Not Started, zero percent: an academia-posted project would refuse.
	result, err := uploadHandler(env).Handle(context.Background(), uploadCmd(app.ID, "early.pdf", "wip"))
	require.NoError(t, err)
	assert.False(t, result.Replaced)
}

func TestUploadSubmission_IndustryLazilyCreatesEntry(t *testing.T) {
	env := newTestEnv()
	ref := env.seedProject(t, "proj-ind", industryPoster)
	app := env.seedApplication(t, ref, application.StatusAccepted)

	_, err := uploadHandler(env).Handle(context.Background(), uploadCmd(app.ID, "early.pdf", "wip"))
	require.NoError(t, err)

	entry, err := env.progressRepo.GetByApplicationID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusInProgress, entry.CurrentStatus)
	assert.True(t, entry.HasSubmission())
}

func TestUploadSubmission_MissingEntryForAcademiaIsNotFound(t *testing.T) {
	env := newTestEnv()
	ref := env.seedProject(t, "proj-1", academiaPoster)
	app := env.seedApplication(t, ref, application.StatusAccepted)

	_, err := uploadHandler(env).Handle(context.Background(), uploadCmd(app.ID, "report.pdf", "hello"))
	assert.True(t, shared.IsNotFound(err))
}

func TestUploadSubmission_OnlyApplicant(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	completeWork(t, env, app.ID)

	cmd := uploadCmd(app.ID, "report.pdf", "not mine")
	cmd.Actor = academiaPoster

	_, err := uploadHandler(env).Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrNotApplicant)
}
