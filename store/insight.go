package store

import (
	"context"
	"time"
)

// RiskLevel classifies sustained overload risk across sessions.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// LearningStyleProfile is the learner's style distribution. The four
// shares are expected to sum to roughly 1.
type LearningStyleProfile struct {
	Visual      float64 `json:"visual"`
	Auditory    float64 `json:"auditory"`
	Reading     float64 `json:"reading"`
	Kinesthetic float64 `json:"kinesthetic"`
}

// Dominant returns the largest style share and its name. A share above
// 0.6 indicates a strongly dominant preference.
func (p *LearningStyleProfile) Dominant() (string, float64) {
	name, share := "visual", p.Visual
	if p.Auditory > share {
		name, share = "auditory", p.Auditory
	}
	if p.Reading > share {
		name, share = "reading", p.Reading
	}
	if p.Kinesthetic > share {
		name, share = "kinesthetic", p.Kinesthetic
	}
	return name, share
}

// ForgettingCurveSnapshot is a cached copy of fitted curve parameters,
// refreshed by the profile pipeline.
type ForgettingCurveSnapshot struct {
	R0           float64 `json:"r0"`
	K            float64 `json:"k"`
	HalfLifeDays float64 `json:"half_life_days"`
}

// LearningProfile summarizes a user's learned study patterns.
type LearningProfile struct {
	UserID int32
	// DataQuality scores how much history backs the profile, in [0,1].
	DataQuality float64
	// OptimalSessionMin is the learned optimal session length in minutes.
	OptimalSessionMin float64
	// SessionConfidence is the confidence in OptimalSessionMin, in [0,1].
	SessionConfidence float64
	// PreferredTimes are study times like "09:00", ordered by preference.
	PreferredTimes []string
	Style          LearningStyleProfile
	Curve          ForgettingCurveSnapshot
	// ContentPreferences are preferred content kinds, ordered by preference.
	ContentPreferences []string
	// AttentionCycleMin is the detected attention cycle length in
	// minutes, or 0 when no cycle pattern was detected.
	AttentionCycleMin float64
	UpdatedAt         time.Time
}

// Intervention is a remediation action attached to a struggle prediction.
type Intervention struct {
	Action string `json:"action"`
	// Priority orders interventions, 10 highest.
	Priority int `json:"priority"`
}

// StrugglePrediction is an upstream forecast that the user will
// struggle with a topic.
type StrugglePrediction struct {
	ID     int64
	UserID int32
	Topic  string
	// Probability that the struggle materializes, in [0,1].
	Probability float64
	// Confidence in the prediction itself, in [0,1].
	Confidence    float64
	Interventions []Intervention
	CreatedAt     time.Time
}

// OrchestrationRecommendation is the session orchestrator's current
// scheduling advice for a user.
type OrchestrationRecommendation struct {
	UserID int32
	// RecommendedStart is a clock time like "19:30".
	RecommendedStart       string
	RecommendedDurationMin int
	Confidence             float64
	// AdherenceRate is how often the user recently followed advice, in [0,1].
	AdherenceRate float64
	UpdatedAt     time.Time
}

// BurnoutAssessment is the orchestrator's burnout risk classification.
type BurnoutAssessment struct {
	UserID     int32
	Risk       RiskLevel
	AssessedAt time.Time
}

// StressPattern is a recurring behavioral pattern detected upstream,
// e.g. an attention cycle or a time-of-day stress spike.
type StressPattern struct {
	ID         int64
	UserID     int32
	Type       string
	Confidence float64
	DetectedAt time.Time
}

// PatternAttentionCycle marks a detected periodic attention dip.
const PatternAttentionCycle = "attention_cycle"

// InsightStore reads the externally-maintained signal families the
// personalization engine aggregates.
type InsightStore interface {
	// GetLearningProfile returns the user's profile, or ErrNotFound.
	GetLearningProfile(ctx context.Context, userID int32) (*LearningProfile, error)

	// ListStrugglePredictions returns active predictions at or above the
	// confidence floor, most probable first.
	ListStrugglePredictions(ctx context.Context, userID int32, confidenceFloor float64) ([]*StrugglePrediction, error)

	// GetOrchestrationRecommendation returns the current recommendation,
	// or ErrNotFound.
	GetOrchestrationRecommendation(ctx context.Context, userID int32) (*OrchestrationRecommendation, error)

	// GetBurnoutAssessment returns the current assessment, or ErrNotFound.
	GetBurnoutAssessment(ctx context.Context, userID int32) (*BurnoutAssessment, error)

	// ListStressPatterns returns detected patterns at or above the
	// confidence floor.
	ListStressPatterns(ctx context.Context, userID int32, confidenceFloor float64) ([]*StressPattern, error)
}
