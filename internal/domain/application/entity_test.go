package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

func validPayload() Payload {
	return Payload{
		FullName:  "Aruzhan S.",
		Email:     "aruzhan@example.com",
		ResumeURL: "https://cdn.example.com/resume.pdf",
	}
}

func projectRef(t *testing.T) opportunity.Ref {
	t.Helper()
	ref, err := opportunity.NewRef("project", "proj-1")
	require.NoError(t, err)
	return ref
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]Status{
		"pending":  StatusPending,
		"Pending":  StatusPending,
		"REVIEWED": StatusReviewed,
		"accepted": StatusAccepted,
		"Rejected": StatusRejected,
	} {
		got, err := ParseStatus(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseStatus("approved")
	assert.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestNew_StartsPending(t *testing.T) {
	app, err := New("app-1", "stu-1", "Aruzhan S.", projectRef(t), validPayload())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, app.Status)
	assert.True(t, app.BelongsTo("stu-1"))
	assert.False(t, app.BelongsTo("stu-2"))
}

func TestNew_RequiresResume(t *testing.T) {
	p := validPayload()
	p.ResumeURL = ""
	p.ResumeFileKey = ""

	_, err := New("app-1", "stu-1", "Aruzhan S.", projectRef(t), p)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMissingResume)
}

func TestNew_AcceptsResumeFileKey(t *testing.T) {
	p := validPayload()
	p.ResumeURL = ""
	p.ResumeFileKey = "a1b2c3.pdf"

	_, err := New("app-1", "stu-1", "Aruzhan S.", projectRef(t), p)
	assert.NoError(t, err)
}

func TestNew_RequiresFullName(t *testing.T) {
	p := validPayload()
	p.FullName = ""

	_, err := New("app-1", "stu-1", "Aruzhan S.", projectRef(t), p)
	assert.True(t, shared.IsInvalidInput(err))
}

func TestTracksProgress(t *testing.T) {
	jobRef, err := opportunity.NewRef("job", "job-1")
	require.NoError(t, err)

	project, err := New("app-1", "stu-1", "Aruzhan S.", projectRef(t), validPayload())
	require.NoError(t, err)
	job, err := New("app-2", "stu-1", "Aruzhan S.", jobRef, validPayload())
	require.NoError(t, err)

	// Pending applications never track progress.
	assert.False(t, project.TracksProgress())

	require.NoError(t, project.SetStatus(StatusAccepted))
	require.NoError(t, job.SetStatus(StatusAccepted))

	assert.True(t, project.TracksProgress())
	assert.False(t, job.TracksProgress(), "only projects carry a progress ledger")
}
