// Package personalize aggregates the analytics signal families into
// concrete configuration for mission generation, content selection,
// assessment cadence, and session pacing. It is the terminal aggregator:
// it degrades gracefully when any upstream signal is missing and never
// fails a request.
package personalize

import (
	"time"

	"github.com/cadencelearn/cadence/store"
)

// Context selects which consumer the configuration is built for.
type Context string

const (
	ContextMission    Context = "mission"
	ContextContent    Context = "content"
	ContextAssessment Context = "assessment"
	ContextSession    Context = "session"
)

// IsValid reports whether c names a known consumption context.
func (c Context) IsValid() bool {
	switch c {
	case ContextMission, ContextContent, ContextAssessment, ContextSession:
		return true
	}
	return false
}

// familyCount is the number of aggregated signal families.
const familyCount = 4

// Confidence weights per available family; the base is 0.5.
const (
	baseConfidence        = 0.50
	weightPatterns        = 0.30
	weightPredictions     = 0.25
	weightOrchestration   = 0.25
	weightCognitiveLoad   = 0.20
	predictionConfidence  = 0.7
	interventionsAttached = 3
	interventionPriority  = 7
)

// PatternsInsight is the learning-patterns family: profile summary plus
// forgetting curve snapshot.
type PatternsInsight struct {
	Available bool
	Profile   *store.LearningProfile
}

// PredictionsInsight is the active struggle-prediction family.
type PredictionsInsight struct {
	Available   bool
	Predictions []*store.StrugglePrediction
}

// OrchestrationInsight is the session-orchestration family.
type OrchestrationInsight struct {
	Available      bool
	Recommendation *store.OrchestrationRecommendation
}

// CognitiveLoadInsight is the cognitive-load family: the latest metric,
// the trailing 7-day average, burnout risk, and detected stress patterns.
type CognitiveLoadInsight struct {
	Available      bool
	Current        *store.CognitiveLoadMetric
	WeekAverage    float64
	Burnout        store.RiskLevel
	StressPatterns []*store.StressPattern
}

// Insights is the aggregated read-model over all signal families.
type Insights struct {
	UserID        int32
	Patterns      PatternsInsight
	Predictions   PredictionsInsight
	Orchestration OrchestrationInsight
	CognitiveLoad CognitiveLoadInsight
	// Quality is (#available families) / 4.
	Quality     float64
	GeneratedAt time.Time
}

// Intensity grades mission effort.
type Intensity string

const (
	IntensityLow      Intensity = "LOW"
	IntensityModerate Intensity = "MODERATE"
	IntensityHigh     Intensity = "HIGH"
)

// Frequency grades assessment validation cadence.
type Frequency string

const (
	FrequencyLow      Frequency = "LOW"
	FrequencyModerate Frequency = "MODERATE"
	FrequencyHigh     Frequency = "HIGH"
)

// Progression grades how fast assessment difficulty ramps.
type Progression string

const (
	ProgressionGradual    Progression = "GRADUAL"
	ProgressionSteady     Progression = "STEADY"
	ProgressionAggressive Progression = "AGGRESSIVE"
)

// FeedbackDetail grades assessment feedback verbosity.
type FeedbackDetail string

const (
	FeedbackStandard      FeedbackDetail = "STANDARD"
	FeedbackComprehensive FeedbackDetail = "COMPREHENSIVE"
)

// MissionConfig configures mission generation.
type MissionConfig struct {
	Intensity Intensity
	// StartTime is a clock time like "19:30", empty when unadvised.
	StartTime     string
	DurationMin   int
	Interventions []store.Intervention
}

// ContentConfig configures content selection.
type ContentConfig struct {
	StyleWeights      store.LearningStyleProfile
	PriorityTopics    []string
	ReviewItemsPerDay int
}

// AssessmentConfig configures assessment scheduling.
type AssessmentConfig struct {
	ValidationFrequency Frequency
	Progression         Progression
	FeedbackDetail      FeedbackDetail
}

// SessionConfig configures live session pacing.
type SessionConfig struct {
	BreakIntervalMin         int
	BreakDurationMin         int
	ContentMixing            bool
	AttentionCycleAdaptation bool
}

// Config is the confidence-annotated personalization output. Only the
// sub-config matching the requested context is populated.
type Config struct {
	UserID     int32
	Context    Context
	Mission    *MissionConfig
	Content    *ContentConfig
	Assessment *AssessmentConfig
	Session    *SessionConfig
	// Confidence is 0.5 base plus a weight per available family, capped at 1.
	Confidence float64
	// Reasoning records each adjustment in application order.
	Reasoning []string
	// Warnings records unavailable families.
	Warnings    []string
	GeneratedAt time.Time
}
