package load

import (
	"context"
	"sync"
	"time"

	"github.com/cadencelearn/cadence/store"
)

// fakeLoadMetricStore records writes in memory for assertions.
type fakeLoadMetricStore struct {
	mu        sync.Mutex
	metrics   []*store.CognitiveLoadMetric
	overloads []*store.OverloadEvent
	saveErr   error
}

func (f *fakeLoadMetricStore) SaveLoadMetric(_ context.Context, m *store.CognitiveLoadMetric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.metrics = append(f.metrics, m)
	return nil
}

func (f *fakeLoadMetricStore) SaveOverloadEvent(_ context.Context, e *store.OverloadEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.overloads = append(f.overloads, e)
	return nil
}

func (f *fakeLoadMetricStore) GetLatestLoadMetric(context.Context, int32) (*store.CognitiveLoadMetric, error) {
	return nil, store.ErrNotFound
}

func (f *fakeLoadMetricStore) ListLoadMetrics(context.Context, int32, time.Duration) ([]*store.CognitiveLoadMetric, error) {
	return nil, nil
}

func (f *fakeLoadMetricStore) savedMetrics() []*store.CognitiveLoadMetric {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*store.CognitiveLoadMetric, len(f.metrics))
	copy(out, f.metrics)
	return out
}

func (f *fakeLoadMetricStore) savedOverloads() []*store.OverloadEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*store.OverloadEvent, len(f.overloads))
	copy(out, f.overloads)
	return out
}
