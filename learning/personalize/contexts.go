package personalize

import (
	"context"
	"fmt"
	"sort"

	"github.com/cadencelearn/cadence/store"
)

// Safe defaults applied before any family-driven adjustment.
const (
	defaultDurationMin      = 45
	defaultReviewItemsDay   = 20
	minReviewItemsDay       = 10
	maxReviewItemsDay       = 50
	defaultBreakIntervalMin = 25
	defaultBreakDurationMin = 5
	burnoutDurationCapMin   = 30
	highLoadScore           = 60.0
	lowLoadScore            = 40.0
	dominantStyleShare      = 0.6
)

// Apply builds the configuration for the given context. It starts from
// hard-coded safe defaults and layers adjustments from whatever signal
// families are available; it never returns an error.
func (e *Engine) Apply(ctx context.Context, userID int32, c Context) *Config {
	if !c.IsValid() {
		c = ContextMission
	}
	if e.exporter != nil {
		e.exporter.IncPersonalizationRequests(string(c))
	}

	ins := e.AggregateInsights(ctx, userID)

	cfg := &Config{
		UserID:      userID,
		Context:     c,
		GeneratedAt: e.now(),
	}
	cfg.Confidence = confidenceFor(ins)
	cfg.Warnings = warningsFor(ins)

	switch c {
	case ContextMission:
		cfg.Mission = e.missionConfig(ins, cfg)
	case ContextContent:
		cfg.Content = e.contentConfig(ins, cfg)
	case ContextAssessment:
		cfg.Assessment = e.assessmentConfig(ins, cfg)
	case ContextSession:
		cfg.Session = e.sessionConfig(ins, cfg)
	}

	e.logger.InfoContext(ctx, "personalization applied",
		"user_id", userID,
		"context", string(c),
		"confidence", cfg.Confidence,
		"data_quality", ins.Quality,
		"adjustments", len(cfg.Reasoning))
	return cfg
}

func confidenceFor(ins *Insights) float64 {
	conf := baseConfidence
	if ins.Patterns.Available {
		conf += weightPatterns
	}
	if ins.Predictions.Available {
		conf += weightPredictions
	}
	if ins.Orchestration.Available {
		conf += weightOrchestration
	}
	if ins.CognitiveLoad.Available {
		conf += weightCognitiveLoad
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

func warningsFor(ins *Insights) []string {
	var warnings []string
	if !ins.Patterns.Available {
		warnings = append(warnings, "learning patterns unavailable; using defaults")
	}
	if !ins.Predictions.Available {
		warnings = append(warnings, "struggle predictions unavailable; using defaults")
	}
	if !ins.Orchestration.Available {
		warnings = append(warnings, "orchestration recommendation unavailable; using defaults")
	}
	if !ins.CognitiveLoad.Available {
		warnings = append(warnings, "cognitive load unavailable; using defaults")
	}
	return warnings
}

func (e *Engine) missionConfig(ins *Insights, cfg *Config) *MissionConfig {
	m := &MissionConfig{
		Intensity:   IntensityModerate,
		DurationMin: defaultDurationMin,
	}

	if ins.Orchestration.Available {
		rec := ins.Orchestration.Recommendation
		if rec.Confidence >= 0.7 {
			m.StartTime = rec.RecommendedStart
			m.DurationMin = rec.RecommendedDurationMin
			cfg.note("adopted orchestration start %s and duration %d min (confidence %.2f)",
				rec.RecommendedStart, rec.RecommendedDurationMin, rec.Confidence)
		}
	}

	if ins.CognitiveLoad.Available {
		switch ins.CognitiveLoad.Burnout {
		case store.RiskHigh, store.RiskCritical:
			m.Intensity = IntensityLow
			if m.DurationMin > burnoutDurationCapMin {
				m.DurationMin = burnoutDurationCapMin
			}
			cfg.note("burnout risk %s: forced LOW intensity, duration capped at %d min",
				ins.CognitiveLoad.Burnout, burnoutDurationCapMin)
		}
		if ins.CognitiveLoad.Current.LoadScore >= highLoadScore {
			m.DurationMin = int(float64(m.DurationMin) * 0.7)
			cfg.note("cognitive load %.0f: duration cut by 30%% to %d min",
				ins.CognitiveLoad.Current.LoadScore, m.DurationMin)
		}
	}

	if ins.Predictions.Available && len(ins.Predictions.Predictions) > 0 {
		m.Interventions = topInterventions(ins.Predictions.Predictions)
		if len(m.Interventions) > 0 {
			cfg.note("attached %d high-priority interventions from struggle predictions", len(m.Interventions))
		}
	}

	if ins.Patterns.Available {
		p := ins.Patterns.Profile
		if p.SessionConfidence >= 0.7 && p.OptimalSessionMin > 0 {
			m.DurationMin = int(p.OptimalSessionMin)
			cfg.note("overrode duration with learned optimal session length %d min (confidence %.2f)",
				m.DurationMin, p.SessionConfidence)
		}
	}
	return m
}

func (e *Engine) contentConfig(ins *Insights, cfg *Config) *ContentConfig {
	c := &ContentConfig{
		StyleWeights: store.LearningStyleProfile{
			Visual: 0.25, Auditory: 0.25, Reading: 0.25, Kinesthetic: 0.25,
		},
		ReviewItemsPerDay: defaultReviewItemsDay,
	}

	if ins.Patterns.Available {
		p := ins.Patterns.Profile
		c.StyleWeights = p.Style
		name, _ := p.Style.Dominant()
		cfg.note("adopted learned style weights (dominant %s)", name)
		if hl := p.Curve.HalfLifeDays; hl > 0 {
			items := int(140.0/hl + 0.5)
			if items < minReviewItemsDay {
				items = minReviewItemsDay
			}
			if items > maxReviewItemsDay {
				items = maxReviewItemsDay
			}
			c.ReviewItemsPerDay = items
			cfg.note("set review frequency to %d items/day from %.1f day half-life", items, hl)
		}
	}

	if ins.Predictions.Available {
		for _, p := range ins.Predictions.Predictions {
			if p.Probability >= 0.7 {
				c.PriorityTopics = append(c.PriorityTopics, p.Topic)
			}
		}
		if len(c.PriorityTopics) > 0 {
			cfg.note("prioritized %d at-risk topics from struggle predictions", len(c.PriorityTopics))
		}
	}
	return c
}

func (e *Engine) assessmentConfig(ins *Insights, cfg *Config) *AssessmentConfig {
	a := &AssessmentConfig{
		ValidationFrequency: FrequencyModerate,
		Progression:         ProgressionSteady,
		FeedbackDetail:      FeedbackStandard,
	}

	if ins.Patterns.Available {
		switch hl := ins.Patterns.Profile.Curve.HalfLifeDays; {
		case hl > 0 && hl < 3:
			a.ValidationFrequency = FrequencyHigh
			cfg.note("half-life %.1f days below 3: HIGH validation frequency", hl)
		case hl > 7:
			a.ValidationFrequency = FrequencyLow
			cfg.note("half-life %.1f days above 7: LOW validation frequency", hl)
		}
	}

	if ins.CognitiveLoad.Available {
		switch score := ins.CognitiveLoad.Current.LoadScore; {
		case score >= highLoadScore:
			a.Progression = ProgressionGradual
			cfg.note("cognitive load %.0f: GRADUAL difficulty progression", score)
		case score < lowLoadScore:
			a.Progression = ProgressionAggressive
			cfg.note("cognitive load %.0f: AGGRESSIVE difficulty progression", score)
		}
	}

	if ins.Predictions.Available && len(ins.Predictions.Predictions) >= 3 {
		a.FeedbackDetail = FeedbackComprehensive
		cfg.note("%d active struggle predictions: COMPREHENSIVE feedback", len(ins.Predictions.Predictions))
	}
	return a
}

func (e *Engine) sessionConfig(ins *Insights, cfg *Config) *SessionConfig {
	s := &SessionConfig{
		BreakIntervalMin: defaultBreakIntervalMin,
		BreakDurationMin: defaultBreakDurationMin,
	}

	if ins.CognitiveLoad.Available {
		if ins.CognitiveLoad.Current.LoadScore >= highLoadScore || ins.CognitiveLoad.WeekAverage >= highLoadScore {
			s.BreakIntervalMin = 15
			s.BreakDurationMin = 3
			cfg.note("elevated load (current %.0f, 7-day avg %.0f): more frequent, shorter breaks",
				ins.CognitiveLoad.Current.LoadScore, ins.CognitiveLoad.WeekAverage)
		}
		for _, p := range ins.CognitiveLoad.StressPatterns {
			if p.Type == store.PatternAttentionCycle {
				s.AttentionCycleAdaptation = true
				cfg.note("attention-cycle pattern detected (confidence %.2f): enabled cycle adaptation", p.Confidence)
				break
			}
		}
	}

	if ins.Patterns.Available {
		if name, share := ins.Patterns.Profile.Style.Dominant(); share > dominantStyleShare {
			s.ContentMixing = true
			cfg.note("dominant %s style at %.0f%%: enabled content mixing", name, share*100)
		}
	}
	return s
}

func topInterventions(preds []*store.StrugglePrediction) []store.Intervention {
	var all []store.Intervention
	for _, p := range preds {
		for _, iv := range p.Interventions {
			if iv.Priority >= interventionPriority {
				all = append(all, iv)
			}
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Priority > all[j].Priority })
	if len(all) > interventionsAttached {
		all = all[:interventionsAttached]
	}
	return all
}

func (c *Config) note(format string, args ...any) {
	c.Reasoning = append(c.Reasoning, fmt.Sprintf(format, args...))
}
