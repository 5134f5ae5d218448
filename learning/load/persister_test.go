package load

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cadencelearn/cadence/store"
)

func overloadAssessment() *Assessment {
	return &Assessment{
		LoadScore: 92,
		Level:     LevelCritical,
		Indicators: []store.StressIndicator{
			{Type: IndicatorErrorSpike, Severity: store.SeverityHigh, Value: 0.6},
		},
		Confidence: 0.8,
		Overload:   true,
	}
}

func TestPersisterWritesMetric(t *testing.T) {
	fake := &fakeLoadMetricStore{}
	p := NewPersister(fake, nil, 16, time.Minute, nil)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ok := p.EnqueueAssessment(42, "s-1", overloadAssessment(), at)
	require.True(t, ok)
	require.NoError(t, p.Close(2*time.Second))

	metrics := fake.savedMetrics()
	require.Len(t, metrics, 1)
	m := metrics[0]
	require.NotEmpty(t, m.ID)
	require.Equal(t, int32(42), m.UserID)
	require.Equal(t, "s-1", m.SessionID)
	require.Equal(t, 92.0, m.LoadScore)
	require.Equal(t, 0.8, m.Confidence)
	require.Equal(t, at, m.CreatedAt)
	require.Len(t, m.Indicators, 1)
}

func TestPersisterThrottlesOverloadEvents(t *testing.T) {
	fake := &fakeLoadMetricStore{}
	p := NewPersister(fake, nil, 16, time.Hour, nil)

	at := time.Now()
	for i := 0; i < 5; i++ {
		p.EnqueueAssessment(42, "s-stuck", overloadAssessment(), at)
	}
	// A different session gets its own throttle window.
	p.EnqueueAssessment(42, "s-other", overloadAssessment(), at)
	require.NoError(t, p.Close(2*time.Second))

	require.Len(t, fake.savedMetrics(), 6)
	overloads := fake.savedOverloads()
	require.Len(t, overloads, 2)
	sessions := map[string]bool{}
	for _, e := range overloads {
		sessions[e.SessionID] = true
	}
	require.True(t, sessions["s-stuck"])
	require.True(t, sessions["s-other"])
}

func TestPersisterNoOverloadEventBelowThreshold(t *testing.T) {
	fake := &fakeLoadMetricStore{}
	p := NewPersister(fake, nil, 16, time.Minute, nil)

	a := overloadAssessment()
	a.Overload = false
	p.EnqueueAssessment(7, "s-calm", a, time.Now())
	require.NoError(t, p.Close(2*time.Second))

	require.Len(t, fake.savedMetrics(), 1)
	require.Empty(t, fake.savedOverloads())
}

func TestPersisterCloseIsIdempotent(t *testing.T) {
	p := NewPersister(&fakeLoadMetricStore{}, nil, 16, time.Minute, nil)
	require.NoError(t, p.Close(time.Second))
	require.NoError(t, p.Close(time.Second))
}

func TestMonitorPersistsAssessments(t *testing.T) {
	fake := &fakeLoadMetricStore{}
	p := NewPersister(fake, nil, 16, time.Minute, nil)
	m := NewMonitor(p, nil, DefaultConfig(), nil)

	sample := calmSample()
	m.Assess(sample)
	require.NoError(t, p.Close(2*time.Second))

	metrics := fake.savedMetrics()
	require.Len(t, metrics, 1)
	require.Equal(t, sample.UserID, metrics[0].UserID)
	require.Equal(t, sample.SessionID, metrics[0].SessionID)
}
