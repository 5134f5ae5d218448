package postgres

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/store"
)

// CreateReviewEvent appends a review event.
func (d *DB) CreateReviewEvent(ctx context.Context, event *store.ReviewEvent) error {
	stmt := `
		INSERT INTO review_event (user_id, card_id, objective_id, reviewed_at, rating)
		VALUES (` + placeholders(5) + `)
		RETURNING id
	`
	err := d.db.QueryRowContext(ctx, stmt,
		event.UserID,
		event.CardID,
		event.ObjectiveID,
		event.ReviewedAt,
		string(event.Rating),
	).Scan(&event.ID)
	if err != nil {
		return errors.Wrap(err, "failed to create review event")
	}
	return nil
}

// ListReviewEvents returns the user's review history ordered by reviewed
// time ascending.
func (d *DB) ListReviewEvents(ctx context.Context, userID int32, objectiveID string) ([]*store.ReviewEvent, error) {
	query := `
		SELECT id, user_id, card_id, objective_id, reviewed_at, rating
		FROM review_event
		WHERE user_id = $1
	`
	args := []any{userID}
	if objectiveID != "" {
		query += " AND objective_id = $2"
		args = append(args, objectiveID)
	}
	query += " ORDER BY reviewed_at ASC"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list review events")
	}
	defer rows.Close()

	list := []*store.ReviewEvent{}
	for rows.Next() {
		var event store.ReviewEvent
		var rating string
		if err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.CardID,
			&event.ObjectiveID,
			&event.ReviewedAt,
			&rating,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan review event")
		}
		event.Rating = store.Rating(rating)
		list = append(list, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate review events")
	}
	return list, nil
}
