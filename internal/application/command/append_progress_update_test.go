package command

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

func intPtr(n int) *int { return &n }

func appendHandler(env *testEnv, strict bool) *AppendProgressUpdateHandler {
	return NewAppendProgressUpdateHandler(
		env.appRepo, env.progressRepo, env.gate, env.ids, env.published, env.log, strict)
}

// acceptedProject seeds an accepted project application with a ledger entry.
func acceptedProject(t *testing.T, env *testEnv) *application.Application {
	t.Helper()
	ref := env.seedProject(t, "proj-1", academiaPoster)
	app := env.seedApplication(t, ref, application.StatusAccepted)

	entry := progress.NewEntry(env.ids.NewID(), app.ID,
		app.StudentID, app.StudentName, ref.ID, "Campus App", academiaPoster.ID)
	_, err := env.progressRepo.EnsureEntry(context.Background(), entry)
	require.NoError(t, err)
	return app
}

func TestAppendUpdate_Success(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := appendHandler(env, false)

	result, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor:         student,
		ApplicationID: app.ID,
		Text:          "auth flow done",
		Percentage:    intPtr(40),
		Status:        "in progress",
	})
	require.NoError(t, err)

	assert.Equal(t, 40, result.Percentage)
	assert.Equal(t, progress.StatusInProgress, result.Status)
	assert.Equal(t, []shared.EventType{shared.EventProgressUpdateAppended}, env.published.types())
}

func TestAppendUpdate_CarriesPercentageForward(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := appendHandler(env, false)

	_, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "halfway", Percentage: intPtr(50),
	})
	require.NoError(t, err)

	// No percentage given: the latest recorded one carries forward.
	result, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "polishing",
	})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Percentage)

	// No update yet at all defaults to zero.
	env2 := newTestEnv()
	app2 := acceptedProject(t, env2)
	result, err = appendHandler(env2, false).Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app2.ID, Text: "starting",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Percentage)
}

func TestAppendUpdate_CarriesStatusForward(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := appendHandler(env, false)

	_, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "working", Status: "in progress",
	})
	require.NoError(t, err)

	result, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "still working",
	})
	require.NoError(t, err)
	assert.Equal(t, progress.StatusInProgress, result.Status)
}

func TestAppendUpdate_LazilyCreatesEntry(t *testing.T) {
	env := newTestEnv()
	ref := env.seedProject(t, "proj-1", academiaPoster)
	app := env.seedApplication(t, ref, application.StatusAccepted)
	h := appendHandler(env, false)

	// No entry was seeded; the handler creates one on first touch.
	result, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "kickoff", Percentage: intPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, "Campus App", result.Entry.ProjectTitle)
	assert.Len(t, result.Entry.Updates, 1)
}

func TestAppendUpdate_RequiresAcceptedProject(t *testing.T) {
	env := newTestEnv()
	projRef := env.seedProject(t, "proj-1", academiaPoster)
	pending := env.seedApplication(t, projRef, application.StatusPending)
	h := appendHandler(env, false)

	_, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: pending.ID, Text: "early start",
	})
	assert.ErrorIs(t, err, shared.ErrNotAcceptedProject)
}

func TestAppendUpdate_JobNeverTracksProgress(t *testing.T) {
	env := newTestEnv()
	jobRef := env.seedJob(t, "job-1", industryPoster)
	job := env.seedApplication(t, jobRef, application.StatusAccepted)
	h := appendHandler(env, false)

	_, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: job.ID, Text: "first week",
	})
	assert.ErrorIs(t, err, shared.ErrNotAcceptedProject)
}

func TestAppendUpdate_OnlyApplicant(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := appendHandler(env, false)

	_, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: academiaPoster, ApplicationID: app.ID, Text: "not mine",
	})
	assert.ErrorIs(t, err, shared.ErrNotApplicant)
}

func TestAppendUpdate_LooseModeAllowsCorrections(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := appendHandler(env, false)

	_, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "done", Percentage: intPtr(90), Status: "completed",
	})
	require.NoError(t, err)

	// Corrections backwards are fine by default.
	result, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "found a bug", Percentage: intPtr(70), Status: "in progress",
	})
	require.NoError(t, err)
	assert.Equal(t, 70, result.Percentage)
	assert.Equal(t, progress.StatusInProgress, result.Status)
}

func TestAppendUpdate_StrictModeRejectsBackward(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := appendHandler(env, true)

	_, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "most done", Percentage: intPtr(90), Status: "in progress",
	})
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "regress", Percentage: intPtr(70),
	})
	assert.ErrorIs(t, err, shared.ErrBackwardTransition)

	_, err = h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "pause", Status: "not started",
	})
	assert.ErrorIs(t, err, shared.ErrBackwardTransition)

	// Forward moves still pass.
	_, err = h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "finished", Percentage: intPtr(100), Status: "completed",
	})
	assert.NoError(t, err)
}

func TestAppendUpdate_ConcurrentAppendsAllSurvive(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := appendHandler(env, false)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.Handle(context.Background(), AppendProgressUpdateCommand{
				Actor:         student,
				ApplicationID: app.ID,
				Text:          fmt.Sprintf("checkpoint %d", i),
				Percentage:    intPtr(i * 5),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "append %d", i)
	}

	// Every append lands as its own row, whatever the interleaving.
	entry, err := env.progressRepo.GetByApplicationID(context.Background(), app.ID)
	require.NoError(t, err)
	require.Len(t, entry.Updates, workers)

	seen := make(map[string]bool, workers)
	for _, upd := range entry.Updates {
		assert.False(t, seen[upd.ID], "duplicate update id %s", upd.ID)
		seen[upd.ID] = true
	}
}

func TestAppendUpdate_ValidatesPercentageBounds(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := appendHandler(env, false)

	_, err := h.Handle(context.Background(), AppendProgressUpdateCommand{
		Actor: student, ApplicationID: app.ID, Text: "overshoot", Percentage: intPtr(120),
	})
	assert.True(t, shared.IsInvalidInput(err))
}
