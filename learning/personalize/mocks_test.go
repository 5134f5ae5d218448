package personalize

import (
	"context"
	"time"

	"github.com/cadencelearn/cadence/store"
)

type fakeInsightStore struct {
	profile     *store.LearningProfile
	predictions []*store.StrugglePrediction
	rec         *store.OrchestrationRecommendation
	burnout     *store.BurnoutAssessment
	stress      []*store.StressPattern

	profileErr     error
	predictionsErr error
	recErr         error
	burnoutErr     error
	stressErr      error
}

func (f *fakeInsightStore) GetLearningProfile(context.Context, int32) (*store.LearningProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return nil, store.ErrNotFound
	}
	return f.profile, nil
}

func (f *fakeInsightStore) ListStrugglePredictions(context.Context, int32, float64) ([]*store.StrugglePrediction, error) {
	if f.predictionsErr != nil {
		return nil, f.predictionsErr
	}
	return f.predictions, nil
}

func (f *fakeInsightStore) GetOrchestrationRecommendation(context.Context, int32) (*store.OrchestrationRecommendation, error) {
	if f.recErr != nil {
		return nil, f.recErr
	}
	if f.rec == nil {
		return nil, store.ErrNotFound
	}
	return f.rec, nil
}

func (f *fakeInsightStore) GetBurnoutAssessment(context.Context, int32) (*store.BurnoutAssessment, error) {
	if f.burnoutErr != nil {
		return nil, f.burnoutErr
	}
	if f.burnout == nil {
		return nil, store.ErrNotFound
	}
	return f.burnout, nil
}

func (f *fakeInsightStore) ListStressPatterns(context.Context, int32, float64) ([]*store.StressPattern, error) {
	if f.stressErr != nil {
		return nil, f.stressErr
	}
	return f.stress, nil
}

type fakeLoadStore struct {
	latest    *store.CognitiveLoadMetric
	history   []*store.CognitiveLoadMetric
	latestErr error
	listErr   error
}

func (f *fakeLoadStore) SaveLoadMetric(context.Context, *store.CognitiveLoadMetric) error {
	return nil
}

func (f *fakeLoadStore) SaveOverloadEvent(context.Context, *store.OverloadEvent) error {
	return nil
}

func (f *fakeLoadStore) GetLatestLoadMetric(context.Context, int32) (*store.CognitiveLoadMetric, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	if f.latest == nil {
		return nil, store.ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeLoadStore) ListLoadMetrics(context.Context, int32, time.Duration) ([]*store.CognitiveLoadMetric, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.history, nil
}

// fullInsightStore returns a store with every family populated.
func fullInsightStore() *fakeInsightStore {
	return &fakeInsightStore{
		profile: &store.LearningProfile{
			UserID:            1,
			DataQuality:       0.9,
			OptimalSessionMin: 35,
			SessionConfidence: 0.8,
			Style:             store.LearningStyleProfile{Visual: 0.7, Auditory: 0.1, Reading: 0.1, Kinesthetic: 0.1},
			Curve:             store.ForgettingCurveSnapshot{R0: 1.0, K: 0.14, HalfLifeDays: 4.95},
		},
		predictions: []*store.StrugglePrediction{
			{
				Topic:       "calculus-limits",
				Probability: 0.85,
				Confidence:  0.8,
				Interventions: []store.Intervention{
					{Action: "review prerequisite material", Priority: 9},
					{Action: "schedule a tutor session", Priority: 5},
				},
			},
		},
		rec: &store.OrchestrationRecommendation{
			RecommendedStart:       "19:30",
			RecommendedDurationMin: 40,
			Confidence:             0.8,
			AdherenceRate:          0.75,
		},
		burnout: &store.BurnoutAssessment{Risk: store.RiskLow},
	}
}

func calmLoadStore() *fakeLoadStore {
	return &fakeLoadStore{
		latest: &store.CognitiveLoadMetric{UserID: 1, LoadScore: 30, Confidence: 0.9},
		history: []*store.CognitiveLoadMetric{
			{LoadScore: 30}, {LoadScore: 20}, {LoadScore: 40},
		},
	}
}
