package store

import (
	"context"
	"time"
)

// Severity classifies how strongly a stress indicator fired.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// StressIndicator is one detected stress signal within a session.
type StressIndicator struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	// Value is the raw measurement the indicator fired on.
	Value float64 `json:"value"`
	// Contribution is the weighted share this signal added to the load score.
	Contribution float64 `json:"contribution"`
}

// CognitiveLoadMetric is a persisted per-session load summary.
type CognitiveLoadMetric struct {
	ID        string
	UserID    int32
	SessionID string
	// LoadScore is the composite load estimate in [0,100].
	LoadScore  float64
	Indicators []StressIndicator
	// Confidence is the monitor's confidence in the score, in [0,1].
	Confidence float64
	CreatedAt  time.Time
}

// OverloadEvent records a session crossing the overload threshold.
type OverloadEvent struct {
	ID        string
	UserID    int32
	SessionID string
	LoadScore float64
	CreatedAt time.Time
}

// LoadMetricStore persists and queries cognitive load metrics.
type LoadMetricStore interface {
	// SaveLoadMetric persists a load metric record.
	SaveLoadMetric(ctx context.Context, metric *CognitiveLoadMetric) error

	// SaveOverloadEvent persists an overload event.
	SaveOverloadEvent(ctx context.Context, event *OverloadEvent) error

	// GetLatestLoadMetric returns the user's most recent metric, or ErrNotFound.
	GetLatestLoadMetric(ctx context.Context, userID int32) (*CognitiveLoadMetric, error)

	// ListLoadMetrics returns metrics recorded within the trailing window,
	// newest first.
	ListLoadMetrics(ctx context.Context, userID int32, window time.Duration) ([]*CognitiveLoadMetric, error)
}
