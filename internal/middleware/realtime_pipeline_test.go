package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CosmicClock/internal/domain/models"
)

type nopMetrics struct {
	mu     sync.Mutex
	errors []string
}

func (m *nopMetrics) RecordPatternDetected(string) {}
func (m *nopMetrics) RecordEventExported(string, string) {}
func (m *nopMetrics) RecordSearchExhausted(string) {}
func (m *nopMetrics) RecordCacheResult(bool) {}
func (m *nopMetrics) RecordLatency(string, float64) {}
func (m *nopMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

type recordingProc struct {
	mu      sync.Mutex
	fail    bool
	events  []*models.PatternEvent
	batches []int
}

func (p *recordingProc) Process(_ context.Context, e *models.PatternEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("backend down")
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingProc) ProcessBatch(_ context.Context, events []*models.PatternEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("backend down")
	}
	p.events = append(p.events, events...)
	p.batches = append(p.batches, len(events))
	return nil
}

func (p *recordingProc) batchSizes() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.batches...)
}

func (p *recordingProc) setFail(v bool) {
	p.mu.Lock()
	p.fail = v
	p.mu.Unlock()
}

func (p *recordingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func leetAt(at time.Time) *models.PatternEvent {
	return &models.PatternEvent{EventID: at.String(), PatternID: "leet", Name: "Leet Time", DetectedAt: at}
}

func TestPipelineThrottlesPerName(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, &nopMetrics{})
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 13, 37, 0, 0, time.UTC)

	for s := 0; s < 60; s++ {
		require.NoError(t, p.Process(ctx, leetAt(base.Add(time.Duration(s)*time.Second))))
	}
	assert.Equal(t, 1, proc.count(), "one export per minute of leet time")

	other := &models.PatternEvent{EventID: "x", PatternID: "palindrome", Name: "Palindrome", DetectedAt: base}
	require.NoError(t, p.Process(ctx, other))
	assert.Equal(t, 2, proc.count(), "names are throttled independently")

	require.NoError(t, p.Process(ctx, leetAt(base.Add(time.Minute))))
	assert.Equal(t, 3, proc.count())
}

func TestPipelineRejectsInvalid(t *testing.T) {
	m := &nopMetrics{}
	p := NewRealtimePipeline(&recordingProc{}, m)
	assert.Error(t, p.Process(context.Background(), nil))
	assert.Error(t, p.Process(context.Background(), &models.PatternEvent{PatternID: "leet", Name: "Leet Time"}))
	assert.Equal(t, []string{"pipeline_validate", "pipeline_validate"}, m.errors)
}

func TestPipelineBuffersAndFlushes(t *testing.T) {
	proc := &recordingProc{fail: true}
	p := NewRealtimePipeline(proc, &nopMetrics{},
		WithThrottleWindow(0),
		WithBufferSize(4),
		WithRetryBackoff(time.Millisecond, 5*time.Millisecond))
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	err := p.Process(context.Background(), leetAt(base))
	require.Error(t, err)
	assert.Equal(t, 1, p.Buffered())

	proc.setFail(false)
	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return proc.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, p.Buffered())
	assert.Equal(t, []int{1}, proc.batchSizes())
}

func TestPipelineFlushesBufferAsBatches(t *testing.T) {
	proc := &recordingProc{fail: true}
	p := NewRealtimePipeline(proc, &nopMetrics{},
		WithThrottleWindow(0),
		WithBufferSize(10),
		WithFlushBatch(3),
		WithRetryBackoff(time.Millisecond, 5*time.Millisecond))
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for s := 0; s < 5; s++ {
		require.Error(t, p.Process(context.Background(), leetAt(base.Add(time.Duration(s)*time.Second))))
	}
	require.Equal(t, 5, p.Buffered())

	proc.setFail(false)
	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return proc.count() == 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{3, 2}, proc.batchSizes())
}

func TestPipelineRequeuesFailedBatch(t *testing.T) {
	proc := &recordingProc{fail: true}
	m := &nopMetrics{}
	p := NewRealtimePipeline(proc, m,
		WithThrottleWindow(0),
		WithBufferSize(10),
		WithRetryBackoff(time.Millisecond, 2*time.Millisecond))
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for s := 0; s < 2; s++ {
		_ = p.Process(context.Background(), leetAt(base.Add(time.Duration(s)*time.Second)))
	}

	p.Start(context.Background())
	assert.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, k := range m.errors {
			if k == "pipeline_flush" {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)
	p.Stop()

	assert.Equal(t, 2, p.Buffered())
	assert.Equal(t, 0, proc.count())
}

func TestPipelineBufferFull(t *testing.T) {
	m := &nopMetrics{}
	p := NewRealtimePipeline(&recordingProc{fail: true}, m, WithThrottleWindow(0), WithBufferSize(1))
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	_ = p.Process(context.Background(), leetAt(base))
	_ = p.Process(context.Background(), leetAt(base.Add(time.Second)))
	assert.Equal(t, 1, p.Buffered())
	assert.Contains(t, m.errors, "pipeline_buffer_full")
}
