package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/store"
)

// CreateQuestion inserts a question record.
func (d *DB) CreateQuestion(ctx context.Context, question *store.QuestionRecord) error {
	stmt := `
		INSERT INTO question (id, objective_id, difficulty, times_used, last_used_at, discrimination, flagged_for_review)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.ExecContext(ctx, stmt,
		question.ID,
		question.ObjectiveID,
		question.Difficulty,
		question.TimesUsed,
		question.LastUsedAt,
		question.Discrimination,
		question.FlaggedForReview,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create question")
	}
	return nil
}

// GetQuestion returns a question by ID.
func (d *DB) GetQuestion(ctx context.Context, id string) (*store.QuestionRecord, error) {
	query := `
		SELECT id, objective_id, difficulty, times_used, last_used_at, discrimination, flagged_for_review
		FROM question
		WHERE id = ?
	`
	question, err := scanQuestion(d.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get question")
	}
	return question, nil
}

// ListCandidateQuestions returns questions matching the filter, ordered
// by ascending usage then descending discrimination. Questions with no
// discrimination data are retained and sort after known-good ones
// within the same usage tier.
func (d *DB) ListCandidateQuestions(ctx context.Context, filter *store.CandidateFilter) ([]*store.QuestionRecord, error) {
	where := []string{"difficulty >= ?", "difficulty <= ?"}
	args := []any{filter.MinDifficulty, filter.MaxDifficulty}

	if filter.ObjectiveID != "" {
		where = append(where, "objective_id = ?")
		args = append(args, filter.ObjectiveID)
	}
	where = append(where, "(discrimination IS NULL OR discrimination >= ?)")
	args = append(args, filter.DiscriminationFloor)

	if len(filter.ExcludedIDs) > 0 {
		where = append(where, "id NOT IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(filter.ExcludedIDs)), ", ")+")")
		for _, id := range filter.ExcludedIDs {
			args = append(args, id)
		}
	}

	query := `
		SELECT id, objective_id, difficulty, times_used, last_used_at, discrimination, flagged_for_review
		FROM question
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY times_used ASC, discrimination IS NULL ASC, discrimination DESC
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list candidate questions")
	}
	defer rows.Close()

	list := []*store.QuestionRecord{}
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan question")
		}
		list = append(list, question)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate questions")
	}
	return list, nil
}

// IncrementUsage bumps the usage counter and stamps last-used time.
func (d *DB) IncrementUsage(ctx context.Context, id string, usedAt time.Time) error {
	stmt := `UPDATE question SET times_used = times_used + 1, last_used_at = ? WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, usedAt, id); err != nil {
		return errors.Wrap(err, "failed to increment question usage")
	}
	return nil
}

// UpdateDiscrimination stores a freshly computed discrimination index.
func (d *DB) UpdateDiscrimination(ctx context.Context, id string, discrimination float64) error {
	stmt := `UPDATE question SET discrimination = ? WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, discrimination, id); err != nil {
		return errors.Wrap(err, "failed to update question discrimination")
	}
	return nil
}

// FlagForReview marks a question as a removal candidate.
func (d *DB) FlagForReview(ctx context.Context, id string) error {
	stmt := `UPDATE question SET flagged_for_review = 1 WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, id); err != nil {
		return errors.Wrap(err, "failed to flag question for review")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*store.QuestionRecord, error) {
	var question store.QuestionRecord
	var lastUsedAt sql.NullTime
	var discrimination sql.NullFloat64
	if err := row.Scan(
		&question.ID,
		&question.ObjectiveID,
		&question.Difficulty,
		&question.TimesUsed,
		&lastUsedAt,
		&discrimination,
		&question.FlaggedForReview,
	); err != nil {
		return nil, err
	}
	if lastUsedAt.Valid {
		question.LastUsedAt = &lastUsedAt.Time
	}
	if discrimination.Valid {
		question.Discrimination = &discrimination.Float64
	}
	return &question, nil
}
