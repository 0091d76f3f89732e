package progress

import (
	"context"
	"time"
)

// UpdateRecord is the input for appending one progress update.
type UpdateRecord struct {
	ID         string
	Text       string
	Percentage int
	CreatedAt  time.Time
}

// RemarkRecord is the input for adding one poster remark.
type RemarkRecord struct {
	ID         string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

// ReplyRecord is the input for adding one reply under a remark.
type ReplyRecord struct {
	ID         string
	RemarkID   string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

// Repository defines the persistence interface for progress entries.
// Appends are stored as child rows, never by rewriting the entry, so
// concurrent appends both land without a lost update.
type Repository interface {
	// EnsureEntry creates the entry if it does not exist yet. Idempotent:
	// a second call for the same application is a no-op. The winning
	// entry is returned either way.
	EnsureEntry(ctx context.Context, entry *Entry) (*Entry, error)

	// GetByApplicationID loads the full entry with updates, submission,
	// and remark threads. Returns shared.ErrNotFound when absent.
	GetByApplicationID(ctx context.Context, applicationID string) (*Entry, error)

	// AppendUpdate inserts one update row and sets the entry's current
	// status in the same transaction.
	AppendUpdate(ctx context.Context, applicationID string, upd UpdateRecord, status CurrentStatus) error

	// SetSubmission stores the submission document slot and returns the
	// previous document key, empty if this is the first upload.
	SetSubmission(ctx context.Context, applicationID string, sub Submission) (previousKey string, err error)

	// AddRemark inserts one remark row.
	AddRemark(ctx context.Context, applicationID string, rem RemarkRecord) error

	// AddReply inserts one reply row under an existing remark. Returns
	// shared.ErrNotFound if the remark does not exist on this entry.
	AddReply(ctx context.Context, applicationID string, rep ReplyRecord) error

	// ListByStudent returns the student's entries whose application
	// still exists, newest first. Orphaned entries are filtered out at
	// the query, never surfaced.
	ListByStudent(ctx context.Context, studentID string) ([]*Entry, error)
}
