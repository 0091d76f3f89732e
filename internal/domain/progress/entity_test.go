package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

func newTestEntry() *Entry {
	return NewEntry("ent-1", "app-1", "stu-1", "Aruzhan S.", "proj-1", "Campus App", "poster-1")
}

func TestNewEntry_StartsNotStarted(t *testing.T) {
	e := newTestEntry()

	assert.Equal(t, StatusNotStarted, e.CurrentStatus)
	assert.Nil(t, e.LatestUpdate())
	assert.Equal(t, 0, e.LatestPercentage())
	assert.False(t, e.SubmissionEligible())
	assert.False(t, e.HasSubmission())
}

func TestLatestPercentage_FollowsLastUpdate(t *testing.T) {
	e := newTestEntry()
	e.Updates = append(e.Updates,
		Update{ID: "u-1", Text: "scaffolding done", Percentage: 30},
		Update{ID: "u-2", Text: "api wired", Percentage: 65},
	)

	require.NotNil(t, e.LatestUpdate())
	assert.Equal(t, "u-2", e.LatestUpdate().ID)
	assert.Equal(t, 65, e.LatestPercentage())
}

func TestSubmissionEligible(t *testing.T) {
	e := newTestEntry()
	assert.False(t, e.SubmissionEligible())

	// Eligible via the latest percentage alone.
	e.Updates = append(e.Updates, Update{ID: "u-1", Percentage: 100})
	e.CurrentStatus = StatusInProgress
	assert.True(t, e.SubmissionEligible())

	// A later lower report revokes percentage-based eligibility.
	e.Updates = append(e.Updates, Update{ID: "u-2", Percentage: 80})
	assert.False(t, e.SubmissionEligible())

	// Completed status is sufficient regardless of percentage.
	e.CurrentStatus = StatusCompleted
	assert.True(t, e.SubmissionEligible())
}

func TestParseCurrentStatus(t *testing.T) {
	for raw, want := range map[string]CurrentStatus{
		"not started": StatusNotStarted,
		"not_started": StatusNotStarted,
		"In Progress": StatusInProgress,
		"in_progress": StatusInProgress,
		"COMPLETED":   StatusCompleted,
	} {
		got, err := ParseCurrentStatus(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseCurrentStatus("done")
	assert.True(t, shared.IsInvalidInput(err))
}

func TestCurrentStatus_AtLeast(t *testing.T) {
	assert.True(t, StatusCompleted.AtLeast(StatusInProgress))
	assert.True(t, StatusInProgress.AtLeast(StatusInProgress))
	assert.False(t, StatusNotStarted.AtLeast(StatusInProgress))
}

func TestFindRemark(t *testing.T) {
	e := newTestEntry()
	e.Remarks = append(e.Remarks,
		Remark{ID: "r-1", AuthorID: "poster-1", Text: "looks good"},
		Remark{ID: "r-2", AuthorID: "poster-1", Text: "add tests"},
	)

	r := e.FindRemark("r-2")
	require.NotNil(t, r)
	assert.Equal(t, "add tests", r.Text)

	// The returned pointer aliases the entry so replies stick.
	r.Replies = append(r.Replies, Reply{ID: "rep-1", AuthorID: "stu-1", Text: "will do"})
	assert.Len(t, e.Remarks[1].Replies, 1)

	assert.Nil(t, e.FindRemark("r-404"))
}

func TestValidatePercentage(t *testing.T) {
	assert.NoError(t, ValidatePercentage(0))
	assert.NoError(t, ValidatePercentage(100))
	assert.Error(t, ValidatePercentage(-1))
	assert.Error(t, ValidatePercentage(101))
}

func TestSubmissionSlot(t *testing.T) {
	e := newTestEntry()
	e.Submission = &Submission{
		DocumentKey: "k-1",
		Filename:    "report.pdf",
		UploadedBy:  "stu-1",
		UploadedAt:  time.Now(),
	}
	assert.True(t, e.HasSubmission())
}
