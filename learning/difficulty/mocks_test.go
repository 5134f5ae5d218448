package difficulty

import (
	"context"
	"time"

	"github.com/cadencelearn/cadence/store"
)

type fakeResponseStore struct {
	recent      []*store.ResponseRecord
	byQuestion  map[string][]*store.ResponseRecord
	answeredIDs []string
	recentErr   error
	answeredErr error
}

func (f *fakeResponseStore) CreateResponse(_ context.Context, r *store.ResponseRecord) error {
	f.recent = append([]*store.ResponseRecord{r}, f.recent...)
	return nil
}

func (f *fakeResponseStore) ListRecentResponses(_ context.Context, _ int32, _ string, limit int) ([]*store.ResponseRecord, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeResponseStore) ListQuestionResponses(_ context.Context, questionID string) ([]*store.ResponseRecord, error) {
	return f.byQuestion[questionID], nil
}

func (f *fakeResponseStore) ListAnsweredQuestionIDs(context.Context, int32, time.Time) ([]string, error) {
	if f.answeredErr != nil {
		return nil, f.answeredErr
	}
	return f.answeredIDs, nil
}

type fakeQuestionStore struct {
	candidates       []*store.QuestionRecord
	lastFilter       *store.CandidateFilter
	usageIncremented []string
	updated          map[string]float64
	flagged          []string
	incrementErr     error
}

func (f *fakeQuestionStore) CreateQuestion(context.Context, *store.QuestionRecord) error {
	return nil
}

func (f *fakeQuestionStore) GetQuestion(_ context.Context, id string) (*store.QuestionRecord, error) {
	for _, q := range f.candidates {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeQuestionStore) ListCandidateQuestions(_ context.Context, filter *store.CandidateFilter) ([]*store.QuestionRecord, error) {
	f.lastFilter = filter
	excluded := map[string]bool{}
	for _, id := range filter.ExcludedIDs {
		excluded[id] = true
	}
	out := []*store.QuestionRecord{}
	for _, q := range f.candidates {
		if excluded[q.ID] {
			continue
		}
		if q.Difficulty < filter.MinDifficulty || q.Difficulty > filter.MaxDifficulty {
			continue
		}
		if q.Discrimination != nil && *q.Discrimination < filter.DiscriminationFloor {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeQuestionStore) IncrementUsage(_ context.Context, id string, _ time.Time) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.usageIncremented = append(f.usageIncremented, id)
	return nil
}

func (f *fakeQuestionStore) UpdateDiscrimination(_ context.Context, id string, d float64) error {
	if f.updated == nil {
		f.updated = map[string]float64{}
	}
	f.updated[id] = d
	return nil
}

func (f *fakeQuestionStore) FlagForReview(_ context.Context, id string) error {
	f.flagged = append(f.flagged, id)
	return nil
}
