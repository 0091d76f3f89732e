package application

import (
	"context"

	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
)

// Repository defines the persistence interface for applications.
// Implementations must enforce the one-application-per-opportunity
// uniqueness at the storage layer, not in memory.
type Repository interface {
	// Create persists a new application. Returns shared.ErrConflict
	// (via ErrDuplicateApplication) if the student already applied to
	// the same opportunity, including under a concurrent race.
	Create(ctx context.Context, app *Application) error

	// GetByID retrieves an application. Returns shared.ErrNotFound if
	// it does not exist or was withdrawn.
	GetByID(ctx context.Context, id string) (*Application, error)

	// UpdateStatus sets the review status of an application.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// Delete removes an application permanently. Withdrawal is a hard
	// delete; dependent progress entries are left in place and
	// suppressed at read time.
	Delete(ctx context.Context, id string) error

	// ListByStudent returns all of a student's applications, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]*Application, error)

	// ListByOpportunity returns all applications for one listing,
	// oldest first, with payloads intact.
	ListByOpportunity(ctx context.Context, ref opportunity.Ref) ([]*Application, error)
}
