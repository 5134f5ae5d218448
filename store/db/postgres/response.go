package postgres

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/store"
)

// CreateResponse appends a scored response.
func (d *DB) CreateResponse(ctx context.Context, response *store.ResponseRecord) error {
	stmt := `
		INSERT INTO response_record (user_id, question_id, objective_id, score, responded_at)
		VALUES (` + placeholders(5) + `)
		RETURNING id
	`
	err := d.db.QueryRowContext(ctx, stmt,
		response.UserID,
		response.QuestionID,
		response.ObjectiveID,
		response.Score,
		response.RespondedAt,
	).Scan(&response.ID)
	if err != nil {
		return errors.Wrap(err, "failed to create response")
	}
	return nil
}

// ListRecentResponses returns the user's most recent responses, newest first.
func (d *DB) ListRecentResponses(ctx context.Context, userID int32, objectiveID string, limit int) ([]*store.ResponseRecord, error) {
	query := `
		SELECT id, user_id, question_id, objective_id, score, responded_at
		FROM response_record
		WHERE user_id = $1
	`
	args := []any{userID}
	if objectiveID != "" {
		query += " AND objective_id = " + placeholder(len(args)+1)
		args = append(args, objectiveID)
	}
	query += " ORDER BY responded_at DESC LIMIT " + placeholder(len(args)+1)
	args = append(args, limit)

	return d.scanResponses(ctx, query, args...)
}

// ListQuestionResponses returns all responses recorded for a question.
func (d *DB) ListQuestionResponses(ctx context.Context, questionID string) ([]*store.ResponseRecord, error) {
	query := `
		SELECT id, user_id, question_id, objective_id, score, responded_at
		FROM response_record
		WHERE question_id = $1
		ORDER BY responded_at DESC
	`
	return d.scanResponses(ctx, query, questionID)
}

// ListAnsweredQuestionIDs returns distinct question IDs the user
// answered at or after the given time.
func (d *DB) ListAnsweredQuestionIDs(ctx context.Context, userID int32, since time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT question_id
		FROM response_record
		WHERE user_id = $1 AND responded_at >= $2
	`
	rows, err := d.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list answered question ids")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan question id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate question ids")
	}
	return ids, nil
}

func (d *DB) scanResponses(ctx context.Context, query string, args ...any) ([]*store.ResponseRecord, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list responses")
	}
	defer rows.Close()

	list := []*store.ResponseRecord{}
	for rows.Next() {
		var response store.ResponseRecord
		if err := rows.Scan(
			&response.ID,
			&response.UserID,
			&response.QuestionID,
			&response.ObjectiveID,
			&response.Score,
			&response.RespondedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan response")
		}
		list = append(list, &response)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate responses")
	}
	return list, nil
}
