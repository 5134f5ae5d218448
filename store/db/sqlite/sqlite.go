package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/cadencelearn/cadence/internal/profile"
	"github.com/cadencelearn/cadence/store"
)

// DB is the SQLite driver, intended for development, demo instances,
// and tests. It supports the full Driver surface; concurrent writers are
// limited by the single-connection pool below.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a SQLite database at the DSN given by the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// Connect with pragmas suited for a local analytics store:
	// - busy_timeout avoids immediate SQLITE_BUSY under write contention.
	// - WAL journal mode prevents reader/writer locking issues.
	//
	// With the `modernc.org/sqlite` driver each pragma must be prefixed
	// with `_pragma=`. See https://pkg.go.dev/modernc.org/sqlite#Driver.Open
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// A single connection is optimal for SQLite with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	driver := DB{db: sqliteDB, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) ReviewStore() store.ReviewStore {
	return d
}

func (d *DB) ResponseStore() store.ResponseStore {
	return d
}

func (d *DB) QuestionStore() store.QuestionStore {
	return d
}

func (d *DB) LoadMetricStore() store.LoadMetricStore {
	return d
}

func (d *DB) InsightStore() store.InsightStore {
	return d
}

var migrationDDL = []string{
	`CREATE TABLE IF NOT EXISTS review_event (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		card_id TEXT NOT NULL,
		objective_id TEXT NOT NULL DEFAULT '',
		reviewed_at TIMESTAMP NOT NULL,
		rating TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_review_event_user ON review_event (user_id, reviewed_at)`,
	`CREATE TABLE IF NOT EXISTS response_record (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		question_id TEXT NOT NULL,
		objective_id TEXT NOT NULL DEFAULT '',
		score REAL NOT NULL,
		responded_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_response_record_user ON response_record (user_id, responded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_response_record_question ON response_record (question_id)`,
	`CREATE TABLE IF NOT EXISTS question (
		id TEXT PRIMARY KEY,
		objective_id TEXT NOT NULL DEFAULT '',
		difficulty REAL NOT NULL,
		times_used INTEGER NOT NULL DEFAULT 0,
		last_used_at TIMESTAMP,
		discrimination REAL,
		flagged_for_review INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_question_objective ON question (objective_id, difficulty)`,
	`CREATE TABLE IF NOT EXISTS cognitive_load_metric (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		load_score REAL NOT NULL,
		indicators TEXT NOT NULL DEFAULT '[]',
		confidence REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cognitive_load_metric_user ON cognitive_load_metric (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS overload_event (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		load_score REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS learning_profile (
		user_id INTEGER PRIMARY KEY,
		data_quality REAL NOT NULL DEFAULT 0,
		optimal_session_min REAL NOT NULL DEFAULT 0,
		session_confidence REAL NOT NULL DEFAULT 0,
		preferred_times TEXT NOT NULL DEFAULT '[]',
		style TEXT NOT NULL DEFAULT '{}',
		curve TEXT NOT NULL DEFAULT '{}',
		content_preferences TEXT NOT NULL DEFAULT '[]',
		attention_cycle_min REAL NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS struggle_prediction (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		topic TEXT NOT NULL,
		probability REAL NOT NULL,
		confidence REAL NOT NULL,
		interventions TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_struggle_prediction_user ON struggle_prediction (user_id, confidence)`,
	`CREATE TABLE IF NOT EXISTS orchestration_recommendation (
		user_id INTEGER PRIMARY KEY,
		recommended_start TEXT NOT NULL,
		recommended_duration_min INTEGER NOT NULL,
		confidence REAL NOT NULL,
		adherence_rate REAL NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS burnout_assessment (
		user_id INTEGER PRIMARY KEY,
		risk TEXT NOT NULL,
		assessed_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stress_pattern (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		confidence REAL NOT NULL,
		detected_at TIMESTAMP NOT NULL
	)`,
}

// Migrate creates the schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrationDDL {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply migration")
		}
	}
	return nil
}
