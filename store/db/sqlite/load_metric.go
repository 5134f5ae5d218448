package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/store"
)

// SaveLoadMetric persists a load metric record.
func (d *DB) SaveLoadMetric(ctx context.Context, metric *store.CognitiveLoadMetric) error {
	indicators, err := json.Marshal(metric.Indicators)
	if err != nil {
		return errors.Wrap(err, "failed to encode stress indicators")
	}
	stmt := `
		INSERT INTO cognitive_load_metric (id, user_id, session_id, load_score, indicators, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = d.db.ExecContext(ctx, stmt,
		metric.ID,
		metric.UserID,
		metric.SessionID,
		metric.LoadScore,
		string(indicators),
		metric.Confidence,
		metric.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save load metric")
	}
	return nil
}

// SaveOverloadEvent persists an overload event.
func (d *DB) SaveOverloadEvent(ctx context.Context, event *store.OverloadEvent) error {
	stmt := `
		INSERT INTO overload_event (id, user_id, session_id, load_score, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := d.db.ExecContext(ctx, stmt,
		event.ID,
		event.UserID,
		event.SessionID,
		event.LoadScore,
		event.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save overload event")
	}
	return nil
}

// GetLatestLoadMetric returns the user's most recent metric.
func (d *DB) GetLatestLoadMetric(ctx context.Context, userID int32) (*store.CognitiveLoadMetric, error) {
	query := `
		SELECT id, user_id, session_id, load_score, indicators, confidence, created_at
		FROM cognitive_load_metric
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`
	metric, err := scanLoadMetric(d.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get latest load metric")
	}
	return metric, nil
}

// ListLoadMetrics returns metrics recorded within the trailing window,
// newest first.
func (d *DB) ListLoadMetrics(ctx context.Context, userID int32, window time.Duration) ([]*store.CognitiveLoadMetric, error) {
	query := `
		SELECT id, user_id, session_id, load_score, indicators, confidence, created_at
		FROM cognitive_load_metric
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`
	rows, err := d.db.QueryContext(ctx, query, userID, time.Now().Add(-window))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list load metrics")
	}
	defer rows.Close()

	list := []*store.CognitiveLoadMetric{}
	for rows.Next() {
		metric, err := scanLoadMetric(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan load metric")
		}
		list = append(list, metric)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate load metrics")
	}
	return list, nil
}

func scanLoadMetric(row rowScanner) (*store.CognitiveLoadMetric, error) {
	var metric store.CognitiveLoadMetric
	var indicators string
	if err := row.Scan(
		&metric.ID,
		&metric.UserID,
		&metric.SessionID,
		&metric.LoadScore,
		&indicators,
		&metric.Confidence,
		&metric.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(indicators), &metric.Indicators); err != nil {
		return nil, errors.Wrap(err, "failed to decode stress indicators")
	}
	return &metric, nil
}
