package curve

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/cadencelearn/cadence/store"
)

var testStart = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func TestFitCurveInsufficientHistoryUsesPopulationDefaults(t *testing.T) {
	fake := &fakeReviewStore{}
	// 15 cards with 2 reviews each: 30 qualifying reviews, below the gate.
	fake.seedCards(1, 15, testStart, reviewStep{days: 3, rating: store.RatingGood})
	a := NewAnalyzer(fake, nil, nil)

	params, err := a.FitCurve(context.Background(), 1, "")
	require.NoError(t, err)

	require.Equal(t, PopulationR0, params.R0)
	require.Equal(t, PopulationK, params.K)
	require.InDelta(t, math.Ln2/PopulationK, params.HalfLifeDays, 1e-9)
	require.Equal(t, 30, params.SampleCount)
	require.Less(t, params.Confidence, 1.0)
	require.InDelta(t, 0.1+0.4*(30.0/50.0), params.Confidence, 1e-9)
	require.Contains(t, params.Note, "insufficient review history")
}

func TestFitCurveSingleReviewCardsDoNotQualify(t *testing.T) {
	fake := &fakeReviewStore{}
	// 100 cards reviewed once each: plenty of events, zero qualifying.
	fake.seedCards(1, 100, testStart)
	a := NewAnalyzer(fake, nil, nil)

	params, err := a.FitCurve(context.Background(), 1, "")
	require.NoError(t, err)
	require.Equal(t, PopulationR0, params.R0)
	require.Equal(t, PopulationK, params.K)
	require.Equal(t, 0, params.SampleCount)
	require.InDelta(t, 0.1, params.Confidence, 1e-9)
}

func TestFitCurveIndividualFit(t *testing.T) {
	fake := &fakeReviewStore{}
	// 25 cards, each with an easy recall after 1 day and a hard one after
	// 10 more: 75 qualifying reviews, a genuinely decaying curve.
	fake.seedCards(1, 25, testStart,
		reviewStep{days: 1, rating: store.RatingEasy},
		reviewStep{days: 10, rating: store.RatingHard},
	)
	a := NewAnalyzer(fake, nil, nil)

	params, err := a.FitCurve(context.Background(), 1, "")
	require.NoError(t, err)

	// Two observation points: (1, 0.97) and (10, 0.50).
	wantK := (math.Log(0.97) - math.Log(0.50)) / 9
	require.InDelta(t, wantK, params.K, 1e-9)
	require.Equal(t, 1.0, params.R0)
	require.InDelta(t, math.Ln2/wantK, params.HalfLifeDays, 1e-6)
	require.Equal(t, 75, params.SampleCount)
	require.InDelta(t, 0.75, params.Confidence, 1e-9)
	require.Empty(t, params.Note)
}

func TestFitCurveFlatRetentionYieldsZeroDecay(t *testing.T) {
	fake := &fakeReviewStore{}
	// Same retention at 1-day and 5-day intervals: slope 0, k 0.
	fake.seedCards(1, 25, testStart,
		reviewStep{days: 1, rating: store.RatingGood},
		reviewStep{days: 5, rating: store.RatingGood},
	)
	a := NewAnalyzer(fake, nil, nil)

	params, err := a.FitCurve(context.Background(), 1, "")
	require.NoError(t, err)
	require.InDelta(t, 0.0, params.K, 1e-9)
	require.InDelta(t, 0.85, params.R0, 1e-6)
	require.Greater(t, params.HalfLifeDays, 1e6)
}

func TestFitCurveDegenerateObservationsFallBack(t *testing.T) {
	fake := &fakeReviewStore{}
	// Every observation at the same 1-day interval: the regression has no
	// spread in x and cannot fit.
	fake.seedCards(1, 30, testStart, reviewStep{days: 1, rating: store.RatingGood})
	a := NewAnalyzer(fake, nil, nil)

	params, err := a.FitCurve(context.Background(), 1, "")
	require.NoError(t, err)
	require.Equal(t, PopulationR0, params.R0)
	require.Equal(t, PopulationK, params.K)
	require.Contains(t, params.Note, "insufficient review history")
}

func TestFitCurvePropagatesReadError(t *testing.T) {
	fake := &fakeReviewStore{err: errors.New("connection reset")}
	a := NewAnalyzer(fake, nil, nil)

	_, err := a.FitCurve(context.Background(), 1, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read review history")
}

func TestDefaultCurveRetentionAtHalfLife(t *testing.T) {
	fake := &fakeReviewStore{}
	halfLifeDays := math.Ln2 / PopulationK
	// One card reviewed twice, far below the qualifying gate, so the
	// default curve applies. The last review sits exactly one half-life ago.
	last := testStart.Add(time.Duration(2 * 24 * float64(time.Hour)))
	fake.addCardReviews(1, "card-a", testStart, reviewStep{days: 2, rating: store.RatingGood})

	a := NewAnalyzer(fake, nil, nil)
	a.now = func() time.Time {
		return last.Add(time.Duration(halfLifeDays * 24 * float64(time.Hour)))
	}

	p, err := a.PredictRetentionDecay(context.Background(), 1, "")
	require.NoError(t, err)
	require.InDelta(t, 0.5, p.CurrentRetention, 1e-6)
	// Retention is exactly at the forgetting threshold now.
	require.InDelta(t, 0.0, p.DaysUntilForgetting, 1e-6)
	require.InDelta(t, 0.0, p.RecommendedReviewInDays, 1e-6)
}

func TestPredictRetentionDecayFreshReview(t *testing.T) {
	fake := &fakeReviewStore{}
	fake.addCardReviews(1, "card-a", testStart, reviewStep{days: 2, rating: store.RatingGood})
	last := testStart.Add(2 * 24 * time.Hour)

	a := NewAnalyzer(fake, nil, nil)
	a.now = func() time.Time { return last }

	p, err := a.PredictRetentionDecay(context.Background(), 1, "")
	require.NoError(t, err)
	require.InDelta(t, 1.0, p.CurrentRetention, 1e-9)
	// ln(1/0.5)/0.14 days until the forgetting threshold.
	require.InDelta(t, math.Ln2/PopulationK, p.DaysUntilForgetting, 1e-6)
	// The 0.7 threshold is crossed sooner.
	require.InDelta(t, math.Log(1/0.7)/PopulationK, p.RecommendedReviewInDays, 1e-6)
	require.Greater(t, p.DaysUntilForgetting, p.RecommendedReviewInDays)
}

func TestPredictRetentionDecayNoHistory(t *testing.T) {
	a := NewAnalyzer(&fakeReviewStore{}, nil, nil)

	p, err := a.PredictRetentionDecay(context.Background(), 1, "algebra")
	require.NoError(t, err)
	require.Equal(t, &Prediction{}, p)
}

func TestPredictRetentionDecayPredictionsInRange(t *testing.T) {
	fake := &fakeReviewStore{}
	fake.seedCards(1, 25, testStart,
		reviewStep{days: 1, rating: store.RatingEasy},
		reviewStep{days: 10, rating: store.RatingAgain},
	)
	a := NewAnalyzer(fake, nil, nil)
	a.now = func() time.Time { return testStart.Add(20 * 24 * time.Hour) }

	p, err := a.PredictRetentionDecay(context.Background(), 1, "")
	require.NoError(t, err)
	require.GreaterOrEqual(t, p.CurrentRetention, 0.0)
	require.LessOrEqual(t, p.CurrentRetention, 1.0)
	require.GreaterOrEqual(t, p.DaysUntilForgetting, 0.0)
	require.GreaterOrEqual(t, p.Confidence, 0.0)
	require.LessOrEqual(t, p.Confidence, 1.0)
}

func TestAnalyzeRetentionByTimeInterval(t *testing.T) {
	fake := &fakeReviewStore{}
	// Intervals 1d, ~3d, and 50d; 50 is nearer the 30-day bucket than 90.
	fake.addCardReviews(1, "card-a", testStart, reviewStep{days: 1, rating: store.RatingEasy})
	fake.addCardReviews(1, "card-b", testStart, reviewStep{days: 2.9, rating: store.RatingGood})
	fake.addCardReviews(1, "card-c", testStart, reviewStep{days: 50, rating: store.RatingAgain})
	a := NewAnalyzer(fake, nil, nil)

	intervals, err := a.AnalyzeRetentionByTimeInterval(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, intervals, 3)

	byDays := map[int]IntervalRetention{}
	for _, iv := range intervals {
		byDays[iv.Days] = iv
	}
	require.InDelta(t, 0.97, byDays[1].MeanRetention, 1e-9)
	require.InDelta(t, 0.85, byDays[3].MeanRetention, 1e-9)
	require.InDelta(t, 0.15, byDays[30].MeanRetention, 1e-9)
	require.Equal(t, 1, byDays[30].SampleCount)
}

func TestAnalyzeRetentionByTimeIntervalEmpty(t *testing.T) {
	a := NewAnalyzer(&fakeReviewStore{}, nil, nil)

	intervals, err := a.AnalyzeRetentionByTimeInterval(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, intervals)
}
