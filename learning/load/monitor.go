// Package load implements the cognitive load monitor. It scores one
// session's behavioral telemetry into a composite load estimate with
// stress indicators, confidence, and pacing recommendations.
package load

import (
	"log/slog"
	"math"
	"time"

	"github.com/cadencelearn/cadence/learning/metrics"
	"github.com/cadencelearn/cadence/store"
)

// LoadLevel buckets the composite load score.
type LoadLevel string

const (
	LevelLow      LoadLevel = "LOW"
	LevelModerate LoadLevel = "MODERATE"
	LevelHigh     LoadLevel = "HIGH"
	LevelCritical LoadLevel = "CRITICAL"
)

// Factor weights. They sum to 1.0.
const (
	weightLatency     = 0.30
	weightErrorRate   = 0.25
	weightEngagement  = 0.20
	weightPerformance = 0.15
	weightDuration    = 0.10
)

// defaultBaselineLatencyMs is assumed when the sample carries no baseline.
const defaultBaselineLatencyMs = 2000.0

// overloadScoreThreshold declares overload on raw score alone.
const overloadScoreThreshold = 80.0

// Stress indicator types.
const (
	IndicatorResponseSlowing    = "RESPONSE_SLOWING"
	IndicatorErrorSpike         = "ERROR_SPIKE"
	IndicatorEngagementDrop     = "ENGAGEMENT_DROP"
	IndicatorPerformanceDecline = "PERFORMANCE_DECLINE"
	IndicatorExtendedSession    = "EXTENDED_SESSION"
)

// EngagementMetrics is optional interaction telemetry for a session.
type EngagementMetrics struct {
	PauseCount       int
	PauseDurationMin float64
	InteractionCount int
}

// Baseline is the learner's personal reference point. When absent the
// population default latency is used and confidence drops sharply.
type Baseline struct {
	AvgLatencyMs float64
	Performance  float64
}

// BehavioralSample is one session tick's raw telemetry. It is never
// persisted; the monitor summarizes it into a CognitiveLoadMetric.
type BehavioralSample struct {
	UserID    int32
	SessionID string
	// LatenciesMs are response latencies in milliseconds, oldest first.
	LatenciesMs []float64
	// ErrorRate is the share of incorrect answers, in [0,1].
	ErrorRate  float64
	Engagement *EngagementMetrics
	// PerformanceScores are recent scores in [0,1], oldest first.
	PerformanceScores  []float64
	SessionDurationMin float64
	Baseline           *Baseline
}

// Assessment is the monitor's output for one sample.
type Assessment struct {
	LoadScore       float64
	Level           LoadLevel
	Indicators      []store.StressIndicator
	Confidence      float64
	Recommendations []string
	Overload        bool
}

// Config tunes the monitor.
type Config struct {
	// Budget is the soft latency budget for one assessment. Exceeding it
	// is logged, never treated as a failure.
	Budget time.Duration
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{Budget: 100 * time.Millisecond}
}

// Monitor scores behavioral samples. It is stateless across samples and
// safe for concurrent use.
type Monitor struct {
	persister *Persister
	exporter  *metrics.Exporter
	logger    *slog.Logger
	cfg       Config
	now       func() time.Time
}

// NewMonitor creates a monitor. The persister may be nil, in which case
// assessments are returned without being persisted. The exporter may be
// nil to disable metrics.
func NewMonitor(persister *Persister, exporter *metrics.Exporter, cfg Config, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultConfig().Budget
	}
	return &Monitor{
		persister: persister,
		exporter:  exporter,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Assess scores one behavioral sample. It never returns an error: a
// malformed sample or internal panic yields the neutral fallback
// (score 50, MODERATE, confidence 0). The metric write is asynchronous
// and never blocks the returned score.
func (m *Monitor) Assess(sample *BehavioralSample) (assessment *Assessment) {
	started := m.now()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("load assessment panicked, returning neutral fallback",
				"session_id", sample.SessionID, "panic", r)
			assessment = m.fallback()
		}
		elapsed := time.Since(started)
		if m.exporter != nil {
			m.exporter.ObserveMonitorLatency(elapsed.Seconds())
		}
		if elapsed > m.cfg.Budget {
			m.logger.Warn("load assessment exceeded soft budget",
				"session_id", sample.SessionID,
				"elapsed_ms", elapsed.Milliseconds(),
				"budget_ms", m.cfg.Budget.Milliseconds())
		}
	}()

	if sample == nil || !sample.valid() {
		m.logger.Warn("malformed behavioral sample, returning neutral fallback")
		return m.fallback()
	}

	latency := latencyScore(sample)
	errRate := errorScore(sample)
	engagement := engagementScore(sample)
	performance := performanceScore(sample)
	duration := durationScore(sample)

	score := weightLatency*latency +
		weightErrorRate*errRate +
		weightEngagement*engagement +
		weightPerformance*performance +
		weightDuration*duration
	score = clamp(score, 0, 100)

	indicators := detectIndicators(sample, latency, errRate, engagement, performance, duration)

	highCount := 0
	for _, ind := range indicators {
		if ind.Severity == store.SeverityHigh {
			highCount++
		}
	}
	overload := score > overloadScoreThreshold || highCount >= 2

	level := levelForScore(score)
	if overload {
		// A session tripping the overload rule is critical regardless of
		// where the blended score landed.
		level = LevelCritical
	}

	assessment = &Assessment{
		LoadScore:       score,
		Level:           level,
		Indicators:      indicators,
		Confidence:      confidence(sample),
		Recommendations: recommendations(indicators, overload),
		Overload:        overload,
	}

	if m.exporter != nil {
		m.exporter.ObserveLoadScore(score)
	}
	if m.persister != nil {
		m.persister.EnqueueAssessment(sample.UserID, sample.SessionID, assessment, m.now())
	}

	return assessment
}

// fallback is the documented neutral result used whenever scoring cannot
// be trusted.
func (m *Monitor) fallback() *Assessment {
	if m.exporter != nil {
		m.exporter.IncMonitorFallbacks()
	}
	return &Assessment{
		LoadScore:  50,
		Level:      LevelModerate,
		Indicators: []store.StressIndicator{},
		Confidence: 0,
		Recommendations: []string{
			"Load estimate is a neutral default; session telemetry was unusable.",
		},
	}
}

func (s *BehavioralSample) valid() bool {
	if s.ErrorRate < 0 || s.ErrorRate > 1 || math.IsNaN(s.ErrorRate) {
		return false
	}
	if s.SessionDurationMin < 0 || math.IsNaN(s.SessionDurationMin) || math.IsInf(s.SessionDurationMin, 0) {
		return false
	}
	for _, l := range s.LatenciesMs {
		if l < 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return false
		}
	}
	for _, p := range s.PerformanceScores {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return false
		}
	}
	if s.Engagement != nil && (s.Engagement.PauseCount < 0 || s.Engagement.PauseDurationMin < 0) {
		return false
	}
	return true
}

// latencyIncrease returns the relative latency increase over baseline,
// or 0 when no latencies were recorded.
func latencyIncrease(s *BehavioralSample) float64 {
	if len(s.LatenciesMs) == 0 {
		return 0
	}
	baseline := defaultBaselineLatencyMs
	if s.Baseline != nil && s.Baseline.AvgLatencyMs > 0 {
		baseline = s.Baseline.AvgLatencyMs
	}
	return (mean(s.LatenciesMs) - baseline) / baseline
}

func latencyScore(s *BehavioralSample) float64 {
	increase := latencyIncrease(s)
	switch {
	case increase > 0.50:
		return 100
	case increase > 0.30:
		return 75
	case increase > 0.15:
		return 50
	case increase > 0.05:
		return 25
	default:
		return 0
	}
}

func errorScore(s *BehavioralSample) float64 {
	return math.Min(s.ErrorRate*100, 100)
}

func engagementScore(s *BehavioralSample) float64 {
	if s.Engagement == nil {
		return 0
	}
	score := 10 * float64(s.Engagement.PauseCount)
	if s.SessionDurationMin > 0 {
		score += 50 * (s.Engagement.PauseDurationMin / s.SessionDurationMin)
	}
	return math.Min(score, 100)
}

// performanceDrop returns the relative drop of the mean of the last 5
// performance scores versus baseline, or 0 when fewer than 5 samples or
// no usable baseline exist.
func performanceDrop(s *BehavioralSample) float64 {
	if len(s.PerformanceScores) < 5 {
		return 0
	}
	recent := mean(s.PerformanceScores[len(s.PerformanceScores)-5:])

	var baseline float64
	switch {
	case s.Baseline != nil && s.Baseline.Performance > 0:
		baseline = s.Baseline.Performance
	case len(s.PerformanceScores) > 5:
		baseline = mean(s.PerformanceScores[:len(s.PerformanceScores)-5])
	default:
		return 0
	}
	if baseline <= 0 {
		return 0
	}
	drop := (baseline - recent) / baseline
	if drop < 0 {
		return 0
	}
	return drop
}

func performanceScore(s *BehavioralSample) float64 {
	drop := performanceDrop(s)
	// A decline only contributes once it is substantial.
	if drop < 0.20 {
		return 0
	}
	return math.Min(drop*100, 100)
}

// durationScore maps session duration stress points {0,10,25} onto the
// common 0-100 factor scale so the weighted blend spans the full range.
func durationScore(s *BehavioralSample) float64 {
	points := durationPoints(s.SessionDurationMin)
	return points * 4
}

func durationPoints(durationMin float64) float64 {
	switch {
	case durationMin < 60:
		return 0
	case durationMin <= 90:
		return 10
	default:
		return 25
	}
}

func levelForScore(score float64) LoadLevel {
	switch {
	case score < 40:
		return LevelLow
	case score < 60:
		return LevelModerate
	case score < 80:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// confidence starts at 1.0 and is discounted for each missing or sparse
// input family.
func confidence(s *BehavioralSample) float64 {
	c := 1.0
	if len(s.LatenciesMs) < 5 {
		c *= 0.7
	}
	if len(s.PerformanceScores) < 5 {
		c *= 0.8
	}
	if s.Engagement == nil {
		c *= 0.9
	}
	if s.Baseline == nil {
		c *= 0.6
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
