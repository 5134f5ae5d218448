package personalize

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/cadencelearn/cadence/store"
)

func TestApplyMissionAdoptsOrchestration(t *testing.T) {
	insights := fullInsightStore()
	insights.profile.SessionConfidence = 0.5 // keep the optimal-length override out
	e := NewEngine(insights, calmLoadStore(), nil)

	cfg := e.Apply(context.Background(), 1, ContextMission)

	require.NotNil(t, cfg.Mission)
	require.Equal(t, "19:30", cfg.Mission.StartTime)
	require.Equal(t, 40, cfg.Mission.DurationMin)
	require.Equal(t, IntensityModerate, cfg.Mission.Intensity)
	require.Equal(t, 1.0, cfg.Confidence)
	require.Empty(t, cfg.Warnings)
	require.NotEmpty(t, cfg.Reasoning)
}

func TestApplyMissionBurnoutCapsDuration(t *testing.T) {
	insights := fullInsightStore()
	insights.profile.SessionConfidence = 0.5
	insights.burnout = &store.BurnoutAssessment{Risk: store.RiskHigh}
	e := NewEngine(insights, calmLoadStore(), nil)

	cfg := e.Apply(context.Background(), 1, ContextMission)

	require.Equal(t, IntensityLow, cfg.Mission.Intensity)
	require.LessOrEqual(t, cfg.Mission.DurationMin, 30)
}

func TestApplyMissionHighLoadCutsDuration(t *testing.T) {
	insights := fullInsightStore()
	insights.profile.SessionConfidence = 0.5
	loads := calmLoadStore()
	loads.latest.LoadScore = 72
	e := NewEngine(insights, loads, nil)

	cfg := e.Apply(context.Background(), 1, ContextMission)

	// Orchestration's 40 minutes cut by 30%.
	require.Equal(t, 28, cfg.Mission.DurationMin)
}

func TestApplyMissionOptimalLengthOverride(t *testing.T) {
	e := NewEngine(fullInsightStore(), calmLoadStore(), nil)

	cfg := e.Apply(context.Background(), 1, ContextMission)

	// SessionConfidence 0.8 wins over the orchestration duration.
	require.Equal(t, 35, cfg.Mission.DurationMin)
}

func TestApplyMissionAttachesInterventions(t *testing.T) {
	insights := fullInsightStore()
	insights.predictions = []*store.StrugglePrediction{
		{
			Topic:       "algebra",
			Probability: 0.9,
			Confidence:  0.9,
			Interventions: []store.Intervention{
				{Action: "a", Priority: 10},
				{Action: "b", Priority: 9},
				{Action: "c", Priority: 8},
				{Action: "d", Priority: 7},
				{Action: "too-low", Priority: 6},
			},
		},
	}
	e := NewEngine(insights, calmLoadStore(), nil)

	cfg := e.Apply(context.Background(), 1, ContextMission)

	require.Len(t, cfg.Mission.Interventions, 3)
	require.Equal(t, 10, cfg.Mission.Interventions[0].Priority)
	for _, iv := range cfg.Mission.Interventions {
		require.GreaterOrEqual(t, iv.Priority, 7)
	}
}

func TestApplyContentRules(t *testing.T) {
	e := NewEngine(fullInsightStore(), calmLoadStore(), nil)

	cfg := e.Apply(context.Background(), 1, ContextContent)

	require.NotNil(t, cfg.Content)
	require.InDelta(t, 0.7, cfg.Content.StyleWeights.Visual, 1e-9)
	require.Equal(t, []string{"calculus-limits"}, cfg.Content.PriorityTopics)
	// 140 / 4.95 day half-life, rounded.
	require.Equal(t, 28, cfg.Content.ReviewItemsPerDay)
}

func TestApplyContentReviewFrequencyBounds(t *testing.T) {
	insights := fullInsightStore()
	loads := calmLoadStore()

	insights.profile.Curve.HalfLifeDays = 0.5 // would be 280/day unbounded
	e := NewEngine(insights, loads, nil)
	cfg := e.Apply(context.Background(), 1, ContextContent)
	require.Equal(t, maxReviewItemsDay, cfg.Content.ReviewItemsPerDay)

	insights.profile.Curve.HalfLifeDays = 60
	cfg = e.Apply(context.Background(), 1, ContextContent)
	require.Equal(t, minReviewItemsDay, cfg.Content.ReviewItemsPerDay)
}

func TestApplyAssessmentRules(t *testing.T) {
	insights := fullInsightStore()
	loads := calmLoadStore()
	e := NewEngine(insights, loads, nil)

	// Half-life 4.95 is mid-band; load 30 is low.
	cfg := e.Apply(context.Background(), 1, ContextAssessment)
	require.Equal(t, FrequencyModerate, cfg.Assessment.ValidationFrequency)
	require.Equal(t, ProgressionAggressive, cfg.Assessment.Progression)
	require.Equal(t, FeedbackStandard, cfg.Assessment.FeedbackDetail)

	insights.profile.Curve.HalfLifeDays = 2
	loads.latest.LoadScore = 75
	insights.predictions = []*store.StrugglePrediction{
		{Topic: "a", Probability: 0.8}, {Topic: "b", Probability: 0.8}, {Topic: "c", Probability: 0.8},
	}
	cfg = e.Apply(context.Background(), 1, ContextAssessment)
	require.Equal(t, FrequencyHigh, cfg.Assessment.ValidationFrequency)
	require.Equal(t, ProgressionGradual, cfg.Assessment.Progression)
	require.Equal(t, FeedbackComprehensive, cfg.Assessment.FeedbackDetail)

	insights.profile.Curve.HalfLifeDays = 12
	cfg = e.Apply(context.Background(), 1, ContextAssessment)
	require.Equal(t, FrequencyLow, cfg.Assessment.ValidationFrequency)
}

func TestApplySessionRules(t *testing.T) {
	insights := fullInsightStore()
	insights.stress = []*store.StressPattern{
		{Type: store.PatternAttentionCycle, Confidence: 0.8},
	}
	loads := calmLoadStore()
	loads.latest.LoadScore = 70
	e := NewEngine(insights, loads, nil)

	cfg := e.Apply(context.Background(), 1, ContextSession)

	require.NotNil(t, cfg.Session)
	require.Equal(t, 15, cfg.Session.BreakIntervalMin)
	require.Equal(t, 3, cfg.Session.BreakDurationMin)
	require.True(t, cfg.Session.ContentMixing) // visual share 0.7 dominates
	require.True(t, cfg.Session.AttentionCycleAdaptation)
}

func TestApplySessionDefaults(t *testing.T) {
	insights := fullInsightStore()
	insights.profile.Style = store.LearningStyleProfile{Visual: 0.3, Auditory: 0.3, Reading: 0.2, Kinesthetic: 0.2}
	e := NewEngine(insights, calmLoadStore(), nil)

	cfg := e.Apply(context.Background(), 1, ContextSession)

	require.Equal(t, defaultBreakIntervalMin, cfg.Session.BreakIntervalMin)
	require.Equal(t, defaultBreakDurationMin, cfg.Session.BreakDurationMin)
	require.False(t, cfg.Session.ContentMixing)
	require.False(t, cfg.Session.AttentionCycleAdaptation)
}

func TestApplyNeverFailsWithEverythingDown(t *testing.T) {
	insights := &fakeInsightStore{
		profileErr:     errors.New("down"),
		predictionsErr: errors.New("down"),
		recErr:         errors.New("down"),
	}
	loads := &fakeLoadStore{latestErr: errors.New("down")}
	e := NewEngine(insights, loads, nil)

	for _, c := range []Context{ContextMission, ContextContent, ContextAssessment, ContextSession} {
		cfg := e.Apply(context.Background(), 1, c)
		require.NotNil(t, cfg, "context %s", c)
		require.Equal(t, 0.5, cfg.Confidence)
		require.Len(t, cfg.Warnings, 4)
	}

	cfg := e.Apply(context.Background(), 1, ContextMission)
	require.Equal(t, IntensityModerate, cfg.Mission.Intensity)
	require.Equal(t, defaultDurationMin, cfg.Mission.DurationMin)
	require.Empty(t, cfg.Mission.StartTime)
}

func TestApplyConfidenceWeights(t *testing.T) {
	// Only patterns and cognitive load available.
	insights := fullInsightStore()
	insights.predictionsErr = errors.New("down")
	insights.recErr = errors.New("down")
	e := NewEngine(insights, calmLoadStore(), nil)

	cfg := e.Apply(context.Background(), 1, ContextContent)

	require.InDelta(t, 0.5+0.30+0.20, cfg.Confidence, 1e-9)
	require.Len(t, cfg.Warnings, 2)
}

func TestApplyUnknownContextFallsBackToMission(t *testing.T) {
	e := NewEngine(fullInsightStore(), calmLoadStore(), nil)

	cfg := e.Apply(context.Background(), 1, Context("bogus"))
	require.Equal(t, ContextMission, cfg.Context)
	require.NotNil(t, cfg.Mission)
}
