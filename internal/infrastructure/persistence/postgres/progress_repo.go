package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/collab-hub/collab-portal/internal/domain/progress"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

// ProgressRepository implements progress.Repository on PostgreSQL.
// Updates, remarks, and replies are child rows: appends are INSERTs
// keyed by the parent, so two concurrent writers both land.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

var _ progress.Repository = (*ProgressRepository)(nil)

// EnsureEntry creates the entry unless one already exists for the
// application. ON CONFLICT DO NOTHING makes concurrent accepts race
// safely; the winning row is read back either way.
func (r *ProgressRepository) EnsureEntry(ctx context.Context, entry *progress.Entry) (*progress.Entry, error) {
	const query = `
		INSERT INTO progress_entries
			(id, application_id, student_id, student_name, project_id, project_title,
			 poster_id, current_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (application_id) DO NOTHING
	`
	_, err := r.conn.Exec(ctx, query,
		entry.ID, entry.ApplicationID,
		entry.StudentID, entry.StudentName,
		entry.ProjectID, entry.ProjectTitle, entry.PosterID,
		entry.CurrentStatus.String(),
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return nil, shared.WrapError("progress", "EnsureEntry", shared.ErrInternal, "insert failed", err)
	}

	return r.GetByApplicationID(ctx, entry.ApplicationID)
}

// GetByApplicationID loads one full entry with all child collections.
func (r *ProgressRepository) GetByApplicationID(ctx context.Context, applicationID string) (*progress.Entry, error) {
	const query = `
		SELECT id, application_id, student_id, student_name, project_id, project_title,
		       poster_id, current_status,
		       submission_key, submission_filename, submission_uploaded_by, submission_uploaded_at,
		       created_at, updated_at
		FROM progress_entries
		WHERE application_id = $1
	`
	entry, err := scanEntry(r.conn.QueryRow(ctx, query, applicationID))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrEntryNotFound
		}
		return nil, shared.WrapError("progress", "GetByApplicationID", shared.ErrInternal, "query failed", err)
	}

	if err := r.loadChildren(ctx, []*progress.Entry{entry}); err != nil {
		return nil, err
	}
	return entry, nil
}

// AppendUpdate inserts one update row and moves the entry's current
// status in the same transaction.
func (r *ProgressRepository) AppendUpdate(ctx context.Context, applicationID string, upd progress.UpdateRecord, status progress.CurrentStatus) error {
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		var entryID string
		err := tx.QueryRow(ctx,
			`SELECT id FROM progress_entries WHERE application_id = $1`,
			applicationID,
		).Scan(&entryID)
		if err != nil {
			if IsNoRows(err) {
				return shared.ErrEntryNotFound
			}
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO progress_updates (id, entry_id, body, percentage, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			upd.ID, entryID, upd.Text, upd.Percentage, upd.CreatedAt,
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE progress_entries SET current_status = $2, updated_at = NOW() WHERE id = $1`,
			entryID, status.String(),
		)
		return err
	})
	if err != nil {
		if shared.IsNotFound(err) {
			return err
		}
		return shared.WrapError("progress", "AppendUpdate", shared.ErrInternal, "append failed", err)
	}
	return nil
}

// SetSubmission swaps the submission slot atomically and hands back the
// key it displaced so the caller can delete the old file.
func (r *ProgressRepository) SetSubmission(ctx context.Context, applicationID string, sub progress.Submission) (string, error) {
	const query = `
		WITH old AS (
			SELECT id, submission_key FROM progress_entries WHERE application_id = $1
		)
		UPDATE progress_entries p
		SET submission_key = $2,
		    submission_filename = $3,
		    submission_uploaded_by = $4,
		    submission_uploaded_at = $5,
		    updated_at = NOW()
		FROM old
		WHERE p.id = old.id
		RETURNING COALESCE(old.submission_key, '')
	`
	var previousKey string
	err := r.conn.QueryRow(ctx, query,
		applicationID, sub.DocumentKey, sub.Filename, sub.UploadedBy, sub.UploadedAt,
	).Scan(&previousKey)
	if err != nil {
		if IsNoRows(err) {
			return "", shared.ErrEntryNotFound
		}
		return "", shared.WrapError("progress", "SetSubmission", shared.ErrInternal, "update failed", err)
	}
	return previousKey, nil
}

// AddRemark inserts one remark row.
func (r *ProgressRepository) AddRemark(ctx context.Context, applicationID string, rem progress.RemarkRecord) error {
	const query = `
		INSERT INTO progress_remarks (id, entry_id, author_id, author_name, body, created_at)
		SELECT $1, e.id, $3, $4, $5, $6
		FROM progress_entries e
		WHERE e.application_id = $2
	`
	tag, err := r.conn.Exec(ctx, query,
		rem.ID, applicationID, rem.AuthorID, rem.AuthorName, rem.Text, rem.CreatedAt,
	)
	if err != nil {
		return shared.WrapError("progress", "AddRemark", shared.ErrInternal, "insert failed", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

// AddReply inserts one reply row under a remark, verifying the remark
// belongs to this application's entry.
func (r *ProgressRepository) AddReply(ctx context.Context, applicationID string, rep progress.ReplyRecord) error {
	const query = `
		INSERT INTO remark_replies (id, remark_id, author_id, author_name, body, created_at)
		SELECT $1, r.id, $4, $5, $6, $7
		FROM progress_remarks r
		JOIN progress_entries e ON e.id = r.entry_id
		WHERE r.id = $3 AND e.application_id = $2
	`
	tag, err := r.conn.Exec(ctx, query,
		rep.ID, applicationID, rep.RemarkID, rep.AuthorID, rep.AuthorName, rep.Text, rep.CreatedAt,
	)
	if err != nil {
		return shared.WrapError("progress", "AddReply", shared.ErrInternal, "insert failed", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrRemarkNotFound
	}
	return nil
}

// ListByStudent returns the student's live entries, full history.
// The join is the orphan filter: entries whose application was
// withdrawn or is no longer Accepted simply never match.
func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID string) ([]*progress.Entry, error) {
	const query = `
		SELECT e.id, e.application_id, e.student_id, e.student_name, e.project_id, e.project_title,
		       e.poster_id, e.current_status,
		       e.submission_key, e.submission_filename, e.submission_uploaded_by, e.submission_uploaded_at,
		       e.created_at, e.updated_at
		FROM progress_entries e
		JOIN applications a ON a.id = e.application_id AND a.status = 'Accepted'
		WHERE e.student_id = $1
		ORDER BY e.created_at DESC
	`
	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, shared.WrapError("progress", "ListByStudent", shared.ErrInternal, "query failed", err)
	}
	defer rows.Close()

	entries := make([]*progress.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanEntry(row rowScanner) (*progress.Entry, error) {
	var (
		entry       progress.Entry
		status      string
		subKey      *string
		subFilename *string
		subBy       *string
		subAt       *time.Time
	)

	err := row.Scan(
		&entry.ID, &entry.ApplicationID,
		&entry.StudentID, &entry.StudentName,
		&entry.ProjectID, &entry.ProjectTitle,
		&entry.PosterID, &status,
		&subKey, &subFilename, &subBy, &subAt,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.CurrentStatus = progress.CurrentStatus(status)
	if subKey != nil && *subKey != "" {
		sub := progress.Submission{DocumentKey: *subKey}
		if subFilename != nil {
			sub.Filename = *subFilename
		}
		if subBy != nil {
			sub.UploadedBy = *subBy
		}
		if subAt != nil {
			sub.UploadedAt = *subAt
		}
		entry.Submission = &sub
	}
	return &entry, nil
}

// loadChildren fills updates and remark threads for a batch of entries.
func (r *ProgressRepository) loadChildren(ctx context.Context, entries []*progress.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	byID := make(map[string]*progress.Entry, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	rows, err := r.conn.Query(ctx, `
		SELECT entry_id, id, body, percentage, created_at
		FROM progress_updates
		WHERE entry_id = ANY($1)
		ORDER BY seq`, ids)
	if err != nil {
		return shared.WrapError("progress", "loadChildren", shared.ErrInternal, "updates query failed", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryID string
		var upd progress.Update
		if err := rows.Scan(&entryID, &upd.ID, &upd.Text, &upd.Percentage, &upd.CreatedAt); err != nil {
			return err
		}
		if e, ok := byID[entryID]; ok {
			e.Updates = append(e.Updates, upd)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	remarkRows, err := r.conn.Query(ctx, `
		SELECT entry_id, id, author_id, author_name, body, created_at
		FROM progress_remarks
		WHERE entry_id = ANY($1)
		ORDER BY seq`, ids)
	if err != nil {
		return shared.WrapError("progress", "loadChildren", shared.ErrInternal, "remarks query failed", err)
	}
	defer remarkRows.Close()

	remarkOwner := make(map[string]string) // remark id -> entry id
	for remarkRows.Next() {
		var entryID string
		var rem progress.Remark
		if err := remarkRows.Scan(&entryID, &rem.ID, &rem.AuthorID, &rem.AuthorName, &rem.Text, &rem.CreatedAt); err != nil {
			return err
		}
		if e, ok := byID[entryID]; ok {
			e.Remarks = append(e.Remarks, rem)
			remarkOwner[rem.ID] = entryID
		}
	}
	if err := remarkRows.Err(); err != nil {
		return err
	}
	if len(remarkOwner) == 0 {
		return nil
	}

	remarkIDs := make([]string, 0, len(remarkOwner))
	for id := range remarkOwner {
		remarkIDs = append(remarkIDs, id)
	}

	replyRows, err := r.conn.Query(ctx, `
		SELECT remark_id, id, author_id, author_name, body, created_at
		FROM remark_replies
		WHERE remark_id = ANY($1)
		ORDER BY seq`, remarkIDs)
	if err != nil {
		return shared.WrapError("progress", "loadChildren", shared.ErrInternal, "replies query failed", err)
	}
	defer replyRows.Close()

	for replyRows.Next() {
		var remarkID string
		var rep progress.Reply
		if err := replyRows.Scan(&remarkID, &rep.ID, &rep.AuthorID, &rep.AuthorName, &rep.Text, &rep.CreatedAt); err != nil {
			return err
		}
		entryID, ok := remarkOwner[remarkID]
		if !ok {
			continue
		}
		e := byID[entryID]
		if rem := e.FindRemark(remarkID); rem != nil {
			rem.Replies = append(rem.Replies, rep)
		}
	}
	return replyRows.Err()
}
