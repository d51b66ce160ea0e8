package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
	"CosmicClock/internal/services/patterns"
)

type fakeMetrics struct {
	mu        sync.Mutex
	detected  map[string]int
	exported  map[string]int
	errors    []string
	cacheHits int
	cacheMiss int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{detected: map[string]int{}, exported: map[string]int{}}
}

func (m *fakeMetrics) RecordPatternDetected(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detected[id]++
}

func (m *fakeMetrics) RecordEventExported(backend, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exported[backend+"/"+id]++
}

func (m *fakeMetrics) RecordSearchExhausted(string) {}

func (m *fakeMetrics) RecordCacheResult(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMiss++
	}
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

type fakePublisher struct {
	events []*models.PatternEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e *models.PatternEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) PublishBatch(ctx context.Context, events []*models.PatternEvent) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeArchive struct {
	mu     sync.Mutex
	events []*models.PatternEvent
	err    error
}

func (a *fakeArchive) Init(context.Context) error { return nil }

func (a *fakeArchive) Store(_ context.Context, e *models.PatternEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, e)
	return nil
}

func (a *fakeArchive) StoreBatch(ctx context.Context, events []*models.PatternEvent) error {
	for _, e := range events {
		if err := a.Store(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (a *fakeArchive) Stats(context.Context, time.Time, time.Time, domrepo.Granularity) ([]models.PatternCount, error) {
	return nil, errors.New("not implemented")
}

func (a *fakeArchive) Health(context.Context) error { return nil }
func (a *fakeArchive) Close() error { return nil }

type countingPredictor struct {
	mu    sync.Mutex
	calls int
	inner *patterns.Predictor
}

func (p *countingPredictor) Predict(from models.TimeSample, opts patterns.PredictOptions) []models.PredictedOccurrence {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.inner.Predict(from, opts)
}

type fakeHub struct {
	mu    sync.Mutex
	kinds []string
}

func (h *fakeHub) Broadcast(kind string, _ interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.kinds = append(h.kinds, kind)
}
