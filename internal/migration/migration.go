package migration

import (
	"context"
	"fmt"

	"nuanswers/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the record store schema. Every statement is idempotent.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// dialect holds the column types that differ between postgres and sqlite
type dialect struct {
	pk        string
	timestamp string
	boolean   string
	float     string
}

func dialectFor(driverName string) dialect {
	if driverName == "sqlite" {
		return dialect{
			pk:        "INTEGER PRIMARY KEY AUTOINCREMENT",
			timestamp: "TIMESTAMP",
			boolean:   "BOOLEAN",
			float:     "REAL",
		}
	}
	return dialect{
		pk:        "BIGSERIAL PRIMARY KEY",
		timestamp: "TIMESTAMP WITH TIME ZONE",
		boolean:   "BOOLEAN",
		float:     "DOUBLE PRECISION",
	}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	d := dialectFor(db.DriverName())

	if err := r.createRegistrationsTable(ctx, db, d); err != nil {
		return errors.Wrap(err, "failed to create registrations table")
	}

	if err := r.createFeedbackTable(ctx, db, d); err != nil {
		return errors.Wrap(err, "failed to create feedback table")
	}

	if err := r.createTopicsTable(ctx, db, d); err != nil {
		return errors.Wrap(err, "failed to create topics table")
	}

	if err := r.createCompletionsTable(ctx, db, d); err != nil {
		return errors.Wrap(err, "failed to create completions table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRegistrationsTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS registrations (
			id %s,
			timestamp %s NOT NULL,
			full_name TEXT NOT NULL,
			student_id VARCHAR(7) NOT NULL,
			email VARCHAR(255) NOT NULL,
			grade VARCHAR(32) NOT NULL,
			campus VARCHAR(32) NOT NULL,
			major VARCHAR(64) NOT NULL,
			course_name TEXT NOT NULL,
			course_id VARCHAR(32) NOT NULL,
			professor TEXT NOT NULL,
			professor_email VARCHAR(255) NOT NULL DEFAULT '',
			usage_time_minutes %s NOT NULL DEFAULT 0
		)
	`, d.pk, d.timestamp, d.float))
	return err
}

func (r *MigrationRunner) createFeedbackTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS feedback (
			id %s,
			student_id VARCHAR(7) NOT NULL,
			course_id VARCHAR(32) NOT NULL,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			topic TEXT NOT NULL,
			difficulty INTEGER NOT NULL CHECK (difficulty BETWEEN 1 AND 5),
			timestamp %s NOT NULL
		)
	`, d.pk, d.timestamp))
	return err
}

func (r *MigrationRunner) createTopicsTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS topics (
			id %s,
			student_id VARCHAR(7) NOT NULL,
			course_id VARCHAR(32) NOT NULL,
			topic TEXT NOT NULL,
			difficulty INTEGER NOT NULL,
			timestamp %s NOT NULL
		)
	`, d.pk, d.timestamp))
	return err
}

func (r *MigrationRunner) createCompletionsTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS completions (
			id %s,
			student_id VARCHAR(7) NOT NULL,
			course_id VARCHAR(32) NOT NULL,
			completed %s NOT NULL,
			timestamp %s NOT NULL
		)
	`, d.pk, d.boolean, d.timestamp))
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_registrations_timestamp ON registrations(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_student ON registrations(student_id)",
		"CREATE INDEX IF NOT EXISTS idx_feedback_student ON feedback(student_id)",
		"CREATE INDEX IF NOT EXISTS idx_topics_course ON topics(course_id)",
		"CREATE INDEX IF NOT EXISTS idx_completions_student ON completions(student_id)",
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
