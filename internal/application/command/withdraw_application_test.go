package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

func TestWithdraw_DeletesApplication(t *testing.T) {
	env := newTestEnv()
	ref := env.seedProject(t, "proj-1", academiaPoster)
	app := env.seedApplication(t, ref, application.StatusPending)
	h := NewWithdrawApplicationHandler(env.appRepo, env.gate, env.published, env.log)

	result, err := h.Handle(context.Background(), WithdrawApplicationCommand{
		Actor:         student,
		ApplicationID: app.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, app.ID, result.ApplicationID)

	_, err = env.appRepo.GetByID(context.Background(), app.ID)
	assert.True(t, shared.IsNotFound(err))

	assert.Equal(t, []shared.EventType{shared.EventApplicationWithdrawn}, env.published.types())
}

func TestWithdraw_KeepsApplicantOnListing(t *testing.T) {
	env := newTestEnv()
	ref := env.seedProject(t, "proj-1", academiaPoster)
	app := env.seedApplication(t, ref, application.StatusPending)
	require.NoError(t, env.registry.AddApplicant(context.Background(), ref, student.ID))
	h := NewWithdrawApplicationHandler(env.appRepo, env.gate, env.published, env.log)

	_, err := h.Handle(context.Background(), WithdrawApplicationCommand{
		Actor:         student,
		ApplicationID: app.ID,
	})
	require.NoError(t, err)

	// Withdrawal never retracts the applicant-set membership.
	assert.Contains(t, env.registry.applicants[ref], student.ID)
}

func TestWithdraw_OrphansProgressEntry(t *testing.T) {
	env := newTestEnv()
	app := acceptedProject(t, env)
	h := NewWithdrawApplicationHandler(env.appRepo, env.gate, env.published, env.log)

	_, err := h.Handle(context.Background(), WithdrawApplicationCommand{
		Actor:         student,
		ApplicationID: app.ID,
	})
	require.NoError(t, err)

	// The entry row survives the hard delete but no longer surfaces
	// in student listings.
	assert.Len(t, env.progressRepo.entries, 1)
	entries, err := env.progressRepo.ListByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithdraw_OnlyOwner(t *testing.T) {
	env := newTestEnv()
	ref := env.seedProject(t, "proj-1", academiaPoster)
	app := env.seedApplication(t, ref, application.StatusPending)
	h := NewWithdrawApplicationHandler(env.appRepo, env.gate, env.published, env.log)

	other := student
	other.ID = "stu-2"

	_, err := h.Handle(context.Background(), WithdrawApplicationCommand{
		Actor:         other,
		ApplicationID: app.ID,
	})
	assert.ErrorIs(t, err, shared.ErrNotApplicant)

	_, err = env.appRepo.GetByID(context.Background(), app.ID)
	assert.NoError(t, err, "application must survive a rejected withdrawal")
}

func TestWithdraw_UnknownApplication(t *testing.T) {
	env := newTestEnv()
	h := NewWithdrawApplicationHandler(env.appRepo, env.gate, env.published, env.log)

	_, err := h.Handle(context.Background(), WithdrawApplicationCommand{
		Actor:         student,
		ApplicationID: "app-404",
	})
	assert.ErrorIs(t, err, shared.ErrApplicationNotFound)
}
