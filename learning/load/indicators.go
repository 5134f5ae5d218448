package load

import (
	"github.com/cadencelearn/cadence/store"
)

// detectIndicators runs the stress detectors. They use slightly looser
// thresholds than the factor scores so an indicator can fire before the
// blended score moves much.
func detectIndicators(s *BehavioralSample, latency, errRate, engagement, performance, duration float64) []store.StressIndicator {
	indicators := []store.StressIndicator{}

	if increase := latencyIncrease(s); increase > 0.15 {
		severity := store.SeverityLow
		switch {
		case increase > 0.50:
			severity = store.SeverityHigh
		case increase > 0.30:
			severity = store.SeverityMedium
		}
		indicators = append(indicators, store.StressIndicator{
			Type:         IndicatorResponseSlowing,
			Severity:     severity,
			Value:        increase,
			Contribution: weightLatency * latency,
		})
	}

	if s.ErrorRate >= 0.20 {
		severity := store.SeverityLow
		switch {
		case s.ErrorRate >= 0.50:
			severity = store.SeverityHigh
		case s.ErrorRate >= 0.35:
			severity = store.SeverityMedium
		}
		indicators = append(indicators, store.StressIndicator{
			Type:         IndicatorErrorSpike,
			Severity:     severity,
			Value:        s.ErrorRate,
			Contribution: weightErrorRate * errRate,
		})
	}

	if s.Engagement != nil && s.Engagement.PauseCount >= 3 {
		severity := store.SeverityLow
		switch {
		case s.Engagement.PauseCount >= 8:
			severity = store.SeverityHigh
		case s.Engagement.PauseCount >= 5:
			severity = store.SeverityMedium
		}
		indicators = append(indicators, store.StressIndicator{
			Type:         IndicatorEngagementDrop,
			Severity:     severity,
			Value:        float64(s.Engagement.PauseCount),
			Contribution: weightEngagement * engagement,
		})
	}

	if drop := performanceDrop(s); drop >= 0.10 {
		severity := store.SeverityLow
		switch {
		case drop >= 0.35:
			severity = store.SeverityHigh
		case drop >= 0.20:
			severity = store.SeverityMedium
		}
		indicators = append(indicators, store.StressIndicator{
			Type:         IndicatorPerformanceDecline,
			Severity:     severity,
			Value:        drop,
			Contribution: weightPerformance * performance,
		})
	}

	if s.SessionDurationMin >= 60 {
		severity := store.SeverityLow
		switch {
		case s.SessionDurationMin >= 90:
			severity = store.SeverityHigh
		case s.SessionDurationMin >= 75:
			severity = store.SeverityMedium
		}
		indicators = append(indicators, store.StressIndicator{
			Type:         IndicatorExtendedSession,
			Severity:     severity,
			Value:        s.SessionDurationMin,
			Contribution: weightDuration * duration,
		})
	}

	return indicators
}

// recommendations maps triggered indicators to concrete pacing advice.
func recommendations(indicators []store.StressIndicator, overload bool) []string {
	recs := []string{}
	if overload {
		recs = append(recs, "Cognitive load is critical; end the session soon and take a longer break.")
	}
	for _, ind := range indicators {
		switch ind.Type {
		case IndicatorResponseSlowing:
			recs = append(recs, "Responses are slowing down; consider a short pause before the next item.")
		case IndicatorErrorSpike:
			recs = append(recs, "Error rate is elevated; drop difficulty or revisit fundamentals for this topic.")
		case IndicatorEngagementDrop:
			recs = append(recs, "Frequent pauses detected; switching content format may help re-engage.")
		case IndicatorPerformanceDecline:
			recs = append(recs, "Recent scores are declining; easier review items may rebuild momentum.")
		case IndicatorExtendedSession:
			recs = append(recs, "The session has run long; a break will protect retention.")
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "Load is nominal; keep the current pace.")
	}
	return recs
}
