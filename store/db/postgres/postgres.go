package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Import the Postgres driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/internal/profile"
	"github.com/cadencelearn/cadence/store"
)

// DB is the Postgres driver, the recommended backend for multi-user
// deployments.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a Postgres database at the DSN given by the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	pgDB.SetMaxOpenConns(25)
	pgDB.SetMaxIdleConns(5)

	driver := DB{db: pgDB, profile: profile}

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

// placeholder returns the Postgres positional placeholder for index n (1-based).
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns "$1, $2, ..., $n".
func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}

var migrationDDL = []string{
	`CREATE TABLE IF NOT EXISTS review_event (
		id BIGSERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		card_id TEXT NOT NULL,
		objective_id TEXT NOT NULL DEFAULT '',
		reviewed_at TIMESTAMPTZ NOT NULL,
		rating TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_review_event_user ON review_event (user_id, reviewed_at)`,
	`CREATE TABLE IF NOT EXISTS response_record (
		id BIGSERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		question_id TEXT NOT NULL,
		objective_id TEXT NOT NULL DEFAULT '',
		score DOUBLE PRECISION NOT NULL,
		responded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_response_record_user ON response_record (user_id, responded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_response_record_question ON response_record (question_id)`,
	`CREATE TABLE IF NOT EXISTS question (
		id TEXT PRIMARY KEY,
		objective_id TEXT NOT NULL DEFAULT '',
		difficulty DOUBLE PRECISION NOT NULL,
		times_used INTEGER NOT NULL DEFAULT 0,
		last_used_at TIMESTAMPTZ,
		discrimination DOUBLE PRECISION,
		flagged_for_review BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_question_objective ON question (objective_id, difficulty)`,
	`CREATE TABLE IF NOT EXISTS cognitive_load_metric (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		load_score DOUBLE PRECISION NOT NULL,
		indicators JSONB NOT NULL DEFAULT '[]',
		confidence DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cognitive_load_metric_user ON cognitive_load_metric (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS overload_event (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		load_score DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS learning_profile (
		user_id INTEGER PRIMARY KEY,
		data_quality DOUBLE PRECISION NOT NULL DEFAULT 0,
		optimal_session_min DOUBLE PRECISION NOT NULL DEFAULT 0,
		session_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		preferred_times JSONB NOT NULL DEFAULT '[]',
		style JSONB NOT NULL DEFAULT '{}',
		curve JSONB NOT NULL DEFAULT '{}',
		content_preferences JSONB NOT NULL DEFAULT '[]',
		attention_cycle_min DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS struggle_prediction (
		id BIGSERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		topic TEXT NOT NULL,
		probability DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		interventions JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_struggle_prediction_user ON struggle_prediction (user_id, confidence)`,
	`CREATE TABLE IF NOT EXISTS orchestration_recommendation (
		user_id INTEGER PRIMARY KEY,
		recommended_start TEXT NOT NULL,
		recommended_duration_min INTEGER NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		adherence_rate DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS burnout_assessment (
		user_id INTEGER PRIMARY KEY,
		risk TEXT NOT NULL,
		assessed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stress_pattern (
		id BIGSERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		detected_at TIMESTAMPTZ NOT NULL
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
