package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// ApplicationRepository implements application.Repository on PostgreSQL.
type ApplicationRepository struct {
	conn *Connection
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(conn *Connection) *ApplicationRepository {
	return &ApplicationRepository{conn: conn}
}

var _ application.Repository = (*ApplicationRepository)(nil)

// Create persists a new application. The unique index decides the
// duplicate race; a violation surfaces as Conflict.
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	payload, err := json.Marshal(app.Payload)
	if err != nil {
		return fmt.Errorf("application_repo: marshal payload: %w", err)
	}

	const query = `
		INSERT INTO applications
			(id, student_id, student_name, opportunity_type, opportunity_id, status, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.conn.Exec(ctx, query,
		app.ID, app.StudentID, app.StudentName,
		app.Opportunity.Type.String(), app.Opportunity.ID,
		app.Status.String(), payload,
		app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateApplication
		}
		return shared.WrapError("application", "Create", shared.ErrInternal, "insert failed", err)
	}
	return nil
}

const applicationColumns = `
	id, student_id, student_name, opportunity_type, opportunity_id,
	status, payload, created_at, updated_at
`

// GetByID retrieves an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrApplicationNotFound
		}
		return nil, shared.WrapError("application", "GetByID", shared.ErrInternal, "query failed", err)
	}
	return app, nil
}

// UpdateStatus sets the review status of an application.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status application.Status) error {
	const query = `UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.conn.Exec(ctx, query, id, status.String())
	if err != nil {
		return shared.WrapError("application", "UpdateStatus", shared.ErrInternal, "update failed", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrApplicationNotFound
	}
	return nil
}

// Delete hard-deletes an application. Progress ledger rows are untouched.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return shared.WrapError("application", "Delete", shared.ErrInternal, "delete failed", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrApplicationNotFound
	}
	return nil
}

// ListByStudent returns all of a student's applications, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID string) ([]*application.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications
		WHERE student_id = $1
		ORDER BY created_at DESC`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, shared.WrapError("application", "ListByStudent", shared.ErrInternal, "query failed", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListByOpportunity returns the applications for one listing, oldest first.
func (r *ApplicationRepository) ListByOpportunity(ctx context.Context, ref opportunity.Ref) ([]*application.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications
		WHERE opportunity_type = $1 AND opportunity_id = $2
		ORDER BY created_at ASC`

	rows, err := r.conn.Query(ctx, query, ref.Type.String(), ref.ID)
	if err != nil {
		return nil, shared.WrapError("application", "ListByOpportunity", shared.ErrInternal, "query failed", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// rowScanner matches pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*application.Application, error) {
	var (
		app     application.Application
		oppType string
		status  string
		payload []byte
	)
	err := row.Scan(
		&app.ID, &app.StudentID, &app.StudentName,
		&oppType, &app.Opportunity.ID,
		&status, &payload,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.Opportunity.Type = opportunity.Type(oppType)
	app.Status = application.Status(status)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &app.Payload); err != nil {
			return nil, fmt.Errorf("application_repo: unmarshal payload: %w", err)
		}
	}
	return &app, nil
}

func collectApplications(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*application.Application, error) {
	apps := make([]*application.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}
