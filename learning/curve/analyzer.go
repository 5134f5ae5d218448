// Package curve fits per-user forgetting curves from review history and
// predicts retention decay. The model is R(t) = R0 * e^(-k*t) with t in
// days since the last review.
package curve

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/cadencelearn/cadence/store"
)

const (
	// PopulationR0 and PopulationK are the population default curve,
	// used whenever a user lacks enough qualifying history.
	PopulationR0 = 1.0
	PopulationK  = 0.14

	// minQualifyingReviews gates the individual fit.
	minQualifyingReviews = 50

	// forgettingThreshold is the retention level treated as "forgotten".
	forgettingThreshold = 0.5
	// optimalSpacingThreshold is the retention level at which a review
	// is ideally scheduled.
	optimalSpacingThreshold = 0.7

	// maxHorizonDays caps forgetting horizons for non-decaying curves.
	maxHorizonDays = 365
)

// retentionBuckets are the fixed day offsets for interval analysis.
var retentionBuckets = []int{1, 3, 7, 14, 30, 90}

// Parameters are fitted (or default) forgetting curve parameters.
type Parameters struct {
	// R0 is the initial retention in [0,1].
	R0 float64
	// K is the decay rate per day, >= 0. K of 0 means no decay.
	K float64
	// HalfLifeDays is ln2/K, +Inf when K is 0.
	HalfLifeDays float64
	// Confidence is in [0,1] and grows with qualifying sample count.
	Confidence float64
	// SampleCount is the number of qualifying reviews behind the fit.
	SampleCount int
	// Note explains deviations such as a default fallback.
	Note string
}

// IntervalRetention is mean observed retention at one day-offset bucket.
type IntervalRetention struct {
	Days          int
	MeanRetention float64
	SampleCount   int
}

// Prediction is the retention outlook for one objective.
type Prediction struct {
	// CurrentRetention is the modeled retention right now, in [0,1].
	CurrentRetention float64
	// DaysUntilForgetting is days until retention crosses 0.5.
	DaysUntilForgetting float64
	// RecommendedReviewInDays is days until retention crosses the
	// optimal spacing threshold.
	RecommendedReviewInDays float64
	RecommendedReviewAt     time.Time
	Confidence              float64
}

// RetentionScorer estimates the retention a review demonstrated, in
// [0,1], from its rating and the elapsed interval. It is a pluggable
// collaborator; DefaultRetentionScorer is used when nil.
type RetentionScorer func(rating store.Rating, intervalDays float64) float64

// DefaultRetentionScorer maps ratings to observed-retention proxies.
func DefaultRetentionScorer(rating store.Rating, _ float64) float64 {
	switch rating {
	case store.RatingAgain:
		return 0.15
	case store.RatingHard:
		return 0.50
	case store.RatingGood:
		return 0.85
	case store.RatingEasy:
		return 0.97
	default:
		return 0
	}
}

// Analyzer fits forgetting curves from review history. It is stateless
// and safe for concurrent use.
type Analyzer struct {
	reviews store.ReviewStore
	scorer  RetentionScorer
	logger  *slog.Logger
	now     func() time.Time
}

// NewAnalyzer creates an analyzer. A nil scorer selects the default.
func NewAnalyzer(reviews store.ReviewStore, scorer RetentionScorer, logger *slog.Logger) *Analyzer {
	if scorer == nil {
		scorer = DefaultRetentionScorer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		reviews: reviews,
		scorer:  scorer,
		logger:  logger,
		now:     time.Now,
	}
}

// observation is one derived (interval, retention) sample.
type observation struct {
	days      float64
	retention float64
}

// FitCurve fits the user's forgetting curve. With fewer than 50
// qualifying reviews (drawn from cards with at least 2 reviews each) it
// returns the population default with reduced confidence. Store read
// failures propagate: a wrong silent curve is worse than an explicit
// error here.
func (a *Analyzer) FitCurve(ctx context.Context, userID int32, objectiveID string) (*Parameters, error) {
	events, err := a.reviews.ListReviewEvents(ctx, userID, objectiveID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read review history")
	}
	return a.fit(events), nil
}

func (a *Analyzer) fit(events []*store.ReviewEvent) *Parameters {
	byCard := groupByCard(events)

	qualifying := 0
	for _, cardEvents := range byCard {
		if len(cardEvents) >= 2 {
			qualifying += len(cardEvents)
		}
	}

	if qualifying < minQualifyingReviews {
		return defaultParameters(qualifying)
	}

	observations := a.deriveObservations(byCard)
	params, ok := fitLogLinear(observations)
	if !ok {
		a.logger.Debug("curve fit degenerate, using population default",
			"qualifying_reviews", qualifying)
		return defaultParameters(qualifying)
	}

	params.SampleCount = qualifying
	params.Confidence = fitConfidence(qualifying)
	return params
}

// deriveObservations turns each card's consecutive review pairs into
// (interval, retention) samples, discarding non-positive retention
// before log-linearization.
func (a *Analyzer) deriveObservations(byCard map[string][]*store.ReviewEvent) []observation {
	observations := []observation{}
	for _, cardEvents := range byCard {
		if len(cardEvents) < 2 {
			continue
		}
		for i := 1; i < len(cardEvents); i++ {
			days := cardEvents[i].ReviewedAt.Sub(cardEvents[i-1].ReviewedAt).Hours() / 24
			if days <= 0 {
				continue
			}
			retention := a.scorer(cardEvents[i].Rating, days)
			if retention <= 0 {
				continue
			}
			observations = append(observations, observation{days: days, retention: retention})
		}
	}
	return observations
}

// fitLogLinear least-squares fits ln R = ln R0 - k*t.
func fitLogLinear(observations []observation) (*Parameters, bool) {
	if len(observations) < 2 {
		return nil, false
	}

	n := float64(len(observations))
	var sumX, sumY, sumXY, sumXX float64
	for _, obs := range observations {
		x := obs.days
		y := math.Log(obs.retention)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil, false
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	k := -slope
	if k < 0 {
		// Retention improving with interval; model as no decay.
		k = 0
	}
	r0 := math.Exp(intercept)
	if r0 > 1 {
		r0 = 1
	}
	if r0 < 0 {
		r0 = 0
	}

	return &Parameters{
		R0:           r0,
		K:            k,
		HalfLifeDays: halfLife(k),
	}, true
}

func defaultParameters(qualifying int) *Parameters {
	return &Parameters{
		R0:           PopulationR0,
		K:            PopulationK,
		HalfLifeDays: halfLife(PopulationK),
		Confidence:   fallbackConfidence(qualifying),
		SampleCount:  qualifying,
		Note:         "insufficient review history for an individual fit; using population defaults",
	}
}

func halfLife(k float64) float64 {
	if k == 0 {
		return math.Inf(1)
	}
	return math.Ln2 / k
}

// fitConfidence grows monotonically with sample count and saturates
// below 1.0.
func fitConfidence(n int) float64 {
	return math.Min(0.95, float64(n)/(float64(n)+25))
}

// fallbackConfidence is the reduced confidence reported with the
// population default, still monotone in what little history exists.
func fallbackConfidence(n int) float64 {
	return 0.1 + 0.4*math.Min(1, float64(n)/minQualifyingReviews)
}

func groupByCard(events []*store.ReviewEvent) map[string][]*store.ReviewEvent {
	byCard := map[string][]*store.ReviewEvent{}
	for _, event := range events {
		byCard[event.CardID] = append(byCard[event.CardID], event)
	}
	return byCard
}

// AnalyzeRetentionByTimeInterval buckets retention observations into the
// fixed day offsets {1,3,7,14,30,90} by nearest offset, excluding cards
// with fewer than 2 reviews. It returns an empty slice when no data
// qualifies.
func (a *Analyzer) AnalyzeRetentionByTimeInterval(ctx context.Context, userID int32) ([]IntervalRetention, error) {
	events, err := a.reviews.ListReviewEvents(ctx, userID, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read review history")
	}

	observations := a.deriveObservations(groupByCard(events))

	sums := map[int]float64{}
	counts := map[int]int{}
	for _, obs := range observations {
		bucket := nearestBucket(obs.days)
		sums[bucket] += obs.retention
		counts[bucket]++
	}

	result := []IntervalRetention{}
	for _, days := range retentionBuckets {
		if counts[days] == 0 {
			continue
		}
		result = append(result, IntervalRetention{
			Days:          days,
			MeanRetention: sums[days] / float64(counts[days]),
			SampleCount:   counts[days],
		})
	}
	return result, nil
}

func nearestBucket(days float64) int {
	best := retentionBuckets[0]
	bestDist := math.Abs(days - float64(best))
	for _, b := range retentionBuckets[1:] {
		if dist := math.Abs(days - float64(b)); dist < bestDist {
			best = b
			bestDist = dist
		}
	}
	return best
}

// PredictRetentionDecay combines the user's fitted curve with the
// objective's most recent review to forecast retention. With zero
// history it returns an all-zero, zero-confidence prediction.
func (a *Analyzer) PredictRetentionDecay(ctx context.Context, userID int32, objectiveID string) (*Prediction, error) {
	events, err := a.reviews.ListReviewEvents(ctx, userID, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read review history")
	}

	var lastReview time.Time
	for _, event := range events {
		if objectiveID != "" && event.ObjectiveID != objectiveID {
			continue
		}
		if event.ReviewedAt.After(lastReview) {
			lastReview = event.ReviewedAt
		}
	}
	if lastReview.IsZero() {
		return &Prediction{}, nil
	}

	params := a.fit(events)
	now := a.now()
	elapsed := now.Sub(lastReview).Hours() / 24

	current := params.R0 * math.Exp(-params.K*elapsed)
	if current > 1 {
		current = 1
	}

	forgetting := remainingDays(params, elapsed, forgettingThreshold)
	recommended := remainingDays(params, elapsed, optimalSpacingThreshold)

	return &Prediction{
		CurrentRetention:        current,
		DaysUntilForgetting:     forgetting,
		RecommendedReviewInDays: recommended,
		RecommendedReviewAt:     now.Add(time.Duration(recommended * 24 * float64(time.Hour))),
		Confidence:              params.Confidence,
	}, nil
}

// remainingDays returns how many days from now until retention crosses
// the threshold, 0 when it already has, and the capped horizon when the
// curve never decays below it.
func remainingDays(params *Parameters, elapsedDays, threshold float64) float64 {
	if params.R0 <= threshold {
		return 0
	}
	if params.K == 0 {
		// Constant retention above the threshold never crosses it.
		return maxHorizonDays
	}
	crossing := math.Log(params.R0/threshold) / params.K
	remaining := crossing - elapsedDays
	if remaining < 0 {
		return 0
	}
	return remaining
}
