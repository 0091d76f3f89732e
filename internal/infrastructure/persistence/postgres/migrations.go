package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_opportunity_listings",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_applications",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_progress_ledger",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// Migration 001: opportunity listings
// The listing tables are owned by the posting side of the portal; the
// workflow only reads title/poster and appends to the applicant set.
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS job_listings (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    poster_id   TEXT NOT NULL,
    poster_role TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS project_listings (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    poster_id   TEXT NOT NULL,
    poster_role TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS internship_listings (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    poster_id   TEXT NOT NULL,
    poster_role TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS opportunity_applicants (
    opportunity_type TEXT NOT NULL,
    opportunity_id   TEXT NOT NULL,
    student_id       TEXT NOT NULL,
    added_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (opportunity_type, opportunity_id, student_id)
);
`

const migration001Down = `
DROP TABLE IF EXISTS opportunity_applicants;
DROP TABLE IF EXISTS internship_listings;
DROP TABLE IF EXISTS project_listings;
DROP TABLE IF EXISTS job_listings;
`

// ══════════════════════════════════════════════════════════════════════════════
// Migration 002: applications
// The unique constraint is the duplicate-submission arbiter: concurrent
// submits for the same (student, opportunity) pair race on the index.
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS applications (
    id               TEXT PRIMARY KEY,
    student_id       TEXT NOT NULL,
    student_name     TEXT NOT NULL DEFAULT '',
    opportunity_type TEXT NOT NULL CHECK (opportunity_type IN ('job', 'project', 'internship')),
    opportunity_id   TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT 'Pending'
                     CHECK (status IN ('Pending', 'Reviewed', 'Accepted', 'Rejected')),
    payload          JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT uq_application_per_opportunity
        UNIQUE (student_id, opportunity_type, opportunity_id)
);

CREATE INDEX IF NOT EXISTS idx_applications_student
    ON applications (student_id, created_at DESC);

CREATE INDEX IF NOT EXISTS idx_applications_opportunity
    ON applications (opportunity_type, opportunity_id, created_at);
`

const migration002Down = `
DROP TABLE IF EXISTS applications;
`

// ══════════════════════════════════════════════════════════════════════════════
// Migration 003: progress ledger
// application_id carries no foreign key on purpose: withdrawal deletes
// the application and must leave the entry orphaned, not cascade.
// Updates, remarks, and replies are child rows so appends are plain
// INSERTs and concurrent writers never clobber each other.
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS progress_entries (
    id                     TEXT PRIMARY KEY,
    application_id         TEXT NOT NULL UNIQUE,
    student_id             TEXT NOT NULL,
    student_name           TEXT NOT NULL DEFAULT '',
    project_id             TEXT NOT NULL,
    project_title          TEXT NOT NULL DEFAULT '',
    poster_id              TEXT NOT NULL DEFAULT '',
    current_status         TEXT NOT NULL DEFAULT 'Not Started'
                           CHECK (current_status IN ('Not Started', 'In Progress', 'Completed')),
    submission_key         TEXT,
    submission_filename    TEXT,
    submission_uploaded_by TEXT,
    submission_uploaded_at TIMESTAMPTZ,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_progress_entries_student
    ON progress_entries (student_id, created_at DESC);

CREATE TABLE IF NOT EXISTS progress_updates (
    id         TEXT PRIMARY KEY,
    entry_id   TEXT NOT NULL REFERENCES progress_entries (id) ON DELETE CASCADE,
    seq        BIGSERIAL,
    body       TEXT NOT NULL,
    percentage INTEGER NOT NULL CHECK (percentage BETWEEN 0 AND 100),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_progress_updates_entry
    ON progress_updates (entry_id, seq);

CREATE TABLE IF NOT EXISTS progress_remarks (
    id          TEXT PRIMARY KEY,
    entry_id    TEXT NOT NULL REFERENCES progress_entries (id) ON DELETE CASCADE,
    seq         BIGSERIAL,
    author_id   TEXT NOT NULL,
    author_name TEXT NOT NULL DEFAULT '',
    body        TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_progress_remarks_entry
    ON progress_remarks (entry_id, seq);

CREATE TABLE IF NOT EXISTS remark_replies (
    id          TEXT PRIMARY KEY,
    remark_id   TEXT NOT NULL REFERENCES progress_remarks (id) ON DELETE CASCADE,
    seq         BIGSERIAL,
    author_id   TEXT NOT NULL,
    author_name TEXT NOT NULL DEFAULT '',
    body        TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_remark_replies_remark
    ON remark_replies (remark_id, seq);
`

const migration003Down = `
DROP TABLE IF EXISTS remark_replies;
DROP TABLE IF EXISTS progress_remarks;
DROP TABLE IF EXISTS progress_updates;
DROP TABLE IF EXISTS progress_entries;
`
