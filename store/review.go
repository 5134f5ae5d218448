package store

import (
	"context"
	"time"
)

// Rating is the learner's self-reported recall quality for one review.
type Rating string

const (
	RatingAgain Rating = "AGAIN"
	RatingHard  Rating = "HARD"
	RatingGood  Rating = "GOOD"
	RatingEasy  Rating = "EASY"
)

// IsValid reports whether r is one of the four known ratings.
func (r Rating) IsValid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	}
	return false
}

// ReviewEvent is an immutable record of one card review. It is the
// source of truth for forgetting-curve fitting and retention estimation.
type ReviewEvent struct {
	ID          int64
	UserID      int32
	CardID      string
	ObjectiveID string
	ReviewedAt  time.Time
	Rating      Rating
}

// ReviewStore persists and queries review events.
type ReviewStore interface {
	// CreateReviewEvent appends a review event.
	CreateReviewEvent(ctx context.Context, event *ReviewEvent) error

	// ListReviewEvents returns the user's review history ordered by
	// reviewed time ascending. An empty objectiveID means all objectives.
	ListReviewEvents(ctx context.Context, userID int32, objectiveID string) ([]*ReviewEvent, error)
}
