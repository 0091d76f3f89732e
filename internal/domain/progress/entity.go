// Package progress contains the progress ledger: the append-only record
// of a student's work on an accepted project, the submission document
// slot, and the remark threads between student and poster.
package progress

import (
	"strings"
	"time"

	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// CurrentStatus is the coarse state of the student's project work.
// It is independent of the application's review status.
type CurrentStatus string

const (
	StatusNotStarted CurrentStatus = "Not Started"
	StatusInProgress CurrentStatus = "In Progress"
	StatusCompleted  CurrentStatus = "Completed"
)

// IsValid checks if the status is a known work state.
func (s CurrentStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// String returns the canonical string form.
func (s CurrentStatus) String() string {
	return string(s)
}

// rank orders work states for the strict-transitions mode.
func (s CurrentStatus) rank() int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return -1
	}
}

// AtLeast reports whether s is at or past other in the natural ordering.
func (s CurrentStatus) AtLeast(other CurrentStatus) bool {
	return s.rank() >= other.rank()
}

// ParseCurrentStatus normalizes a raw work status string.
func ParseCurrentStatus(raw string) (CurrentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "not started", "not_started":
		return StatusNotStarted, nil
	case "in progress", "in_progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	default:
		return "", shared.NewDomainError("progress", "ParseCurrentStatus", shared.ErrInvalidInput,
			"unknown progress status "+raw)
	}
}

// Update is one append-only progress report. Updates are never edited
// or removed once written.
type Update struct {
	ID         string
	Text       string
	Percentage int
	CreatedAt  time.Time
}

// Reply is a response under a remark, written by either party.
type Reply struct {
	ID         string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

// Remark is a poster-authored comment on the entry with a flat reply
// thread. Threads are two levels deep: replies to replies are not a
// thing, they land in the same list.
type Remark struct {
	ID         string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
	Replies    []Reply
}

// Submission is the single stored submission document slot. A re-upload
// replaces the previous document.
type Submission struct {
	DocumentKey string
	Filename    string
	UploadedBy  string
	UploadedAt  time.Time
}

// Entry is the progress ledger for one accepted project application.
// Exactly one entry exists per application; the project title is
// denormalized at creation so the entry survives listing edits.
type Entry struct {
	ID            string
	ApplicationID string
	StudentID     string
	StudentName   string
	ProjectID     string
	ProjectTitle  string
	PosterID      string
	CurrentStatus CurrentStatus
	Updates       []Update
	Submission    *Submission
	Remarks       []Remark
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewEntry creates a fresh ledger entry in the Not Started state.
func NewEntry(id, applicationID, studentID, studentName, projectID, projectTitle, posterID string) *Entry {
	now := time.Now().UTC()
	return &Entry{
		ID:            id,
		ApplicationID: applicationID,
		StudentID:     studentID,
		StudentName:   studentName,
		ProjectID:     projectID,
		ProjectTitle:  projectTitle,
		PosterID:      posterID,
		CurrentStatus: StatusNotStarted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// LatestUpdate returns the most recent update, or nil if none exist.
func (e *Entry) LatestUpdate() *Update {
	if len(e.Updates) == 0 {
		return nil
	}
	return &e.Updates[len(e.Updates)-1]
}

// LatestPercentage returns the percentage of the most recent update,
// or 0 when no update has been appended yet.
func (e *Entry) LatestPercentage() int {
	if u := e.LatestUpdate(); u != nil {
		return u.Percentage
	}
	return 0
}

// SubmissionEligible reports whether the project may receive a
// submission document: the work is Completed, or the latest reported
// percentage is 100.
func (e *Entry) SubmissionEligible() bool {
	return e.CurrentStatus == StatusCompleted || e.LatestPercentage() == 100
}

// HasSubmission returns true once a submission document is stored.
func (e *Entry) HasSubmission() bool {
	return e.Submission != nil
}

// FindRemark locates a remark by ID.
func (e *Entry) FindRemark(remarkID string) *Remark {
	for i := range e.Remarks {
		if e.Remarks[i].ID == remarkID {
			return &e.Remarks[i]
		}
	}
	return nil
}

// ValidatePercentage checks the 0-100 bound on a reported percentage.
func ValidatePercentage(p int) error {
	if p < 0 || p > 100 {
		return shared.NewDomainError("progress", "ValidatePercentage", shared.ErrInvalidInput,
			"percentage must be between 0 and 100")
	}
	return nil
}
