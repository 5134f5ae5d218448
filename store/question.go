package store

import (
	"context"
	"time"
)

// QuestionRecord is a question in the item bank.
type QuestionRecord struct {
	ID          string
	ObjectiveID string
	// Difficulty is the calibrated difficulty in [0,100].
	Difficulty float64
	TimesUsed  int
	LastUsedAt *time.Time
	// Discrimination is the item discrimination index in [-1,1], or nil
	// while too few responses exist to compute one.
	Discrimination   *float64
	FlaggedForReview bool
}

// CandidateFilter restricts a candidate-question query.
type CandidateFilter struct {
	ObjectiveID   string
	MinDifficulty float64
	MaxDifficulty float64
	// ExcludedIDs are question IDs the caller has ruled out (cooldown).
	ExcludedIDs []string
	// DiscriminationFloor excludes questions whose known discrimination
	// is below it. Questions with no discrimination data are retained.
	DiscriminationFloor float64
}

// QuestionStore persists and queries the question bank.
type QuestionStore interface {
	// CreateQuestion inserts a question record.
	CreateQuestion(ctx context.Context, question *QuestionRecord) error

	// GetQuestion returns a question by ID, or ErrNotFound.
	GetQuestion(ctx context.Context, id string) (*QuestionRecord, error)

	// ListCandidateQuestions returns questions matching the filter,
	// ordered by ascending usage count then descending discrimination
	// (unknown discrimination last within its usage tier).
	ListCandidateQuestions(ctx context.Context, filter *CandidateFilter) ([]*QuestionRecord, error)

	// IncrementUsage bumps the usage counter and stamps last-used time.
	// Concurrent increments may race; usage is a soft signal only.
	IncrementUsage(ctx context.Context, id string, usedAt time.Time) error

	// UpdateDiscrimination stores a freshly computed discrimination index.
	UpdateDiscrimination(ctx context.Context, id string, discrimination float64) error

	// FlagForReview marks a question as a removal candidate.
	FlagForReview(ctx context.Context, id string) error
}
