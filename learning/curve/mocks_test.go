package curve

import (
	"context"
	"fmt"
	"time"

	"github.com/cadencelearn/cadence/store"
)

type fakeReviewStore struct {
	events []*store.ReviewEvent
	err    error
}

func (f *fakeReviewStore) CreateReviewEvent(_ context.Context, event *store.ReviewEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeReviewStore) ListReviewEvents(_ context.Context, userID int32, objectiveID string) ([]*store.ReviewEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []*store.ReviewEvent{}
	for _, e := range f.events {
		if e.UserID != userID {
			continue
		}
		if objectiveID != "" && e.ObjectiveID != objectiveID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// addCardReviews appends one card's review sequence: the first review at
// start, then one review per given (interval, rating) pair.
func (f *fakeReviewStore) addCardReviews(userID int32, cardID string, start time.Time, steps ...reviewStep) {
	f.events = append(f.events, &store.ReviewEvent{
		UserID:     userID,
		CardID:     cardID,
		ReviewedAt: start,
		Rating:     store.RatingGood,
	})
	at := start
	for _, s := range steps {
		at = at.Add(time.Duration(s.days * 24 * float64(time.Hour)))
		f.events = append(f.events, &store.ReviewEvent{
			UserID:     userID,
			CardID:     cardID,
			ReviewedAt: at,
			Rating:     s.rating,
		})
	}
}

type reviewStep struct {
	days   float64
	rating store.Rating
}

// seedCards adds n cards each with the same review steps.
func (f *fakeReviewStore) seedCards(userID int32, n int, start time.Time, steps ...reviewStep) {
	for i := 0; i < n; i++ {
		f.addCardReviews(userID, fmt.Sprintf("card-%d", i), start, steps...)
	}
}
