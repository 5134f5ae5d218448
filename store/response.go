package store

import (
	"context"
	"time"
)

// ResponseRecord is one scored answer to a question.
type ResponseRecord struct {
	ID          int64
	UserID      int32
	QuestionID  string
	ObjectiveID string
	// Score is the graded correctness of the answer in [0,1].
	Score       float64
	RespondedAt time.Time
}

// ResponseStore persists and queries scored responses.
type ResponseStore interface {
	// CreateResponse appends a scored response.
	CreateResponse(ctx context.Context, response *ResponseRecord) error

	// ListRecentResponses returns the user's most recent responses,
	// newest first, optionally scoped to an objective.
	ListRecentResponses(ctx context.Context, userID int32, objectiveID string, limit int) ([]*ResponseRecord, error)

	// ListQuestionResponses returns all responses recorded for a question.
	ListQuestionResponses(ctx context.Context, questionID string) ([]*ResponseRecord, error)

	// ListAnsweredQuestionIDs returns the distinct question IDs the user
	// answered at or after the given time. Used for selection cooldowns.
	ListAnsweredQuestionIDs(ctx context.Context, userID int32, since time.Time) ([]string, error)
}
