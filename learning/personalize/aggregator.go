package personalize

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cadencelearn/cadence/learning/metrics"
	"github.com/cadencelearn/cadence/learning/observability/logging"
	"github.com/cadencelearn/cadence/store"
)

const loadAverageWindow = 7 * 24 * time.Hour

// Engine aggregates insight families and derives per-context configs.
type Engine struct {
	insights store.InsightStore
	loads    store.LoadMetricStore
	exporter *metrics.Exporter
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine wires an Engine over the given stores. exporter may be nil.
func NewEngine(insights store.InsightStore, loads store.LoadMetricStore, exporter *metrics.Exporter) *Engine {
	return &Engine{
		insights: insights,
		loads:    loads,
		exporter: exporter,
		logger:   logging.ForComponent("personalize"),
		now:      time.Now,
	}
}

// AggregateInsights reads the four signal families concurrently. A family
// that cannot be read is marked unavailable and the rest proceed; the call
// itself never fails. Quality is the fraction of families available.
func (e *Engine) AggregateInsights(ctx context.Context, userID int32) *Insights {
	out := &Insights{UserID: userID, GeneratedAt: e.now()}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := e.insights.GetLearningProfile(gctx, userID)
		if err != nil {
			e.familyMiss(gctx, "patterns", err)
			return nil
		}
		out.Patterns = PatternsInsight{Available: true, Profile: profile}
		return nil
	})

	g.Go(func() error {
		preds, err := e.insights.ListStrugglePredictions(gctx, userID, predictionConfidence)
		if err != nil {
			e.familyMiss(gctx, "predictions", err)
			return nil
		}
		out.Predictions = PredictionsInsight{Available: true, Predictions: preds}
		return nil
	})

	g.Go(func() error {
		rec, err := e.insights.GetOrchestrationRecommendation(gctx, userID)
		if err != nil {
			e.familyMiss(gctx, "orchestration", err)
			return nil
		}
		out.Orchestration = OrchestrationInsight{Available: true, Recommendation: rec}
		return nil
	})

	g.Go(func() error {
		current, err := e.loads.GetLatestLoadMetric(gctx, userID)
		if err != nil {
			e.familyMiss(gctx, "cognitive_load", err)
			return nil
		}
		fam := CognitiveLoadInsight{Available: true, Current: current}
		if recent, err := e.loads.ListLoadMetrics(gctx, userID, loadAverageWindow); err == nil && len(recent) > 0 {
			var sum float64
			for _, m := range recent {
				sum += m.LoadScore
			}
			fam.WeekAverage = sum / float64(len(recent))
		} else if err != nil {
			e.logger.WarnContext(gctx, "load history read failed", "user_id", userID, "error", err)
		}
		if burnout, err := e.insights.GetBurnoutAssessment(gctx, userID); err == nil {
			fam.Burnout = burnout.Risk
		} else if !errors.Is(err, store.ErrNotFound) {
			e.logger.WarnContext(gctx, "burnout read failed", "user_id", userID, "error", err)
		}
		if patterns, err := e.insights.ListStressPatterns(gctx, userID, 0.6); err == nil {
			fam.StressPatterns = patterns
		} else {
			e.logger.WarnContext(gctx, "stress pattern read failed", "user_id", userID, "error", err)
		}
		out.CognitiveLoad = fam
		return nil
	})

	// Closures always return nil, so Wait cannot fail.
	_ = g.Wait()

	available := 0
	for _, ok := range []bool{
		out.Patterns.Available,
		out.Predictions.Available,
		out.Orchestration.Available,
		out.CognitiveLoad.Available,
	} {
		if ok {
			available++
		}
	}
	out.Quality = float64(available) / familyCount
	return out
}

func (e *Engine) familyMiss(ctx context.Context, family string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	e.logger.WarnContext(ctx, "insight family unavailable", "family", family, "error", err)
	if e.exporter != nil {
		e.exporter.IncFamilyFailures(family)
	}
}
