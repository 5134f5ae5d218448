package load

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cadencelearn/cadence/learning/metrics"
	"github.com/cadencelearn/cadence/store"
)

// persistTimeout bounds a single store write.
const persistTimeout = 5 * time.Second

// Persister handles async persistence of load metrics and overload
// events. Writes are fire-and-forget relative to the assessing caller;
// failures are logged, never escalated.
type Persister struct {
	store    store.LoadMetricStore
	exporter *metrics.Exporter
	queue    chan persistItem
	wg       sync.WaitGroup
	logger   *slog.Logger
	stopCh   chan struct{}
	once     sync.Once

	// overloadLimiters throttles overload events per session so a stuck
	// overloaded session does not flood the store.
	overloadLimiters sync.Map // map[string]*rate.Limiter
	overloadEvery    time.Duration
}

type persistItem struct {
	metric   *store.CognitiveLoadMetric
	overload *store.OverloadEvent
}

// NewPersister creates a new async persister. The exporter may be nil.
func NewPersister(st store.LoadMetricStore, exporter *metrics.Exporter, queueSize int, overloadEvery time.Duration, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if overloadEvery <= 0 {
		overloadEvery = 30 * time.Second
	}

	p := &Persister{
		store:         st,
		exporter:      exporter,
		queue:         make(chan persistItem, queueSize),
		logger:        logger,
		stopCh:        make(chan struct{}),
		overloadEvery: overloadEvery,
	}
	p.wg.Add(1)
	go p.processQueue()
	return p
}

// EnqueueAssessment converts an assessment into a metric record and
// queues it. On overload it also queues a throttled overload event.
// Returns false if the queue was full and the metric was dropped.
func (p *Persister) EnqueueAssessment(userID int32, sessionID string, assessment *Assessment, at time.Time) bool {
	metric := &store.CognitiveLoadMetric{
		ID:         uuid.NewString(),
		UserID:     userID,
		SessionID:  sessionID,
		LoadScore:  assessment.LoadScore,
		Indicators: assessment.Indicators,
		Confidence: assessment.Confidence,
		CreatedAt:  at,
	}

	var overload *store.OverloadEvent
	if assessment.Overload && p.allowOverloadEvent(sessionID) {
		overload = &store.OverloadEvent{
			ID:        uuid.NewString(),
			UserID:    userID,
			SessionID: sessionID,
			LoadScore: assessment.LoadScore,
			CreatedAt: at,
		}
		if p.exporter != nil {
			p.exporter.IncOverloadEvents()
		}
	}

	select {
	case p.queue <- persistItem{metric: metric, overload: overload}:
		return true
	default:
		p.logger.Warn("load persister queue full, dropping metric",
			"session_id", sessionID,
			"queue_size", len(p.queue))
		return false
	}
}

func (p *Persister) allowOverloadEvent(sessionID string) bool {
	limiter, _ := p.overloadLimiters.LoadOrStore(sessionID, rate.NewLimiter(rate.Every(p.overloadEvery), 1))
	return limiter.(*rate.Limiter).Allow()
}

// QueueSize returns the number of queued, unwritten items.
func (p *Persister) QueueSize() int {
	return len(p.queue)
}

func (p *Persister) processQueue() {
	defer p.wg.Done()

	for {
		select {
		case item := <-p.queue:
			p.save(item)
		case <-p.stopCh:
			// Drain remaining items before exiting.
			for {
				select {
				case item := <-p.queue:
					p.save(item)
				default:
					return
				}
			}
		}
	}
}

func (p *Persister) save(item persistItem) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if item.metric != nil {
		if err := p.store.SaveLoadMetric(ctx, item.metric); err != nil {
			p.logger.Error("failed to save load metric",
				"session_id", item.metric.SessionID,
				"error", err)
		}
	}
	if item.overload != nil {
		if err := p.store.SaveOverloadEvent(ctx, item.overload); err != nil {
			p.logger.Error("failed to save overload event",
				"session_id", item.overload.SessionID,
				"error", err)
		}
	}
}

// Close stops the worker after draining the queue, waiting at most the
// given timeout.
func (p *Persister) Close(timeout time.Duration) error {
	p.once.Do(func() {
		close(p.stopCh)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		p.logger.Warn("load persister close timed out", "queued", len(p.queue))
		return context.DeadlineExceeded
	}
}
