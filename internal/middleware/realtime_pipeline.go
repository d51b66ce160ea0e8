package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs. Live events go
// through Process; buffered events are drained through ProcessBatch.
type Proc interface {
	Process(ctx context.Context, e *models.PatternEvent) error
	ProcessBatch(ctx context.Context, events []*models.PatternEvent) error
}

// RealtimePipeline sits between the sampler and the exporter.
// It validates, throttles per pattern name and buffers while downstream fails.
type RealtimePipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	window   time.Duration
	bufSize  int
	bufCh    chan *models.PatternEvent
	batch    int
	retryMin time.Duration
	retryMax time.Duration

	mu       sync.Mutex
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}
	lastSeen map[string]time.Time // per-name last admitted detection time
}

type PipelineOption func(*RealtimePipeline)

// WithThrottleWindow admits each pattern name at most once per window. Zero disables.
func WithThrottleWindow(d time.Duration) PipelineOption {
	return func(p *RealtimePipeline) {
		if d >= 0 {
			p.window = d
		}
	}
}

// WithBufferSize sets the buffer size used while downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithFlushBatch caps how many buffered events one flush exports together.
func WithFlushBatch(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.batch = n
		}
	}
}

// WithRetryBackoff sets the flush loop backoff range.
func WithRetryBackoff(min, max time.Duration) PipelineOption {
	return func(p *RealtimePipeline) {
		if min > 0 && max >= min {
			p.retryMin, p.retryMax = min, max
		}
	}
}

func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:     proc,
		metrics:  metrics,
		window:   time.Minute,
		bufSize:  1000,
		batch:    100,
		retryMin: 50 * time.Millisecond,
		retryMax: 2 * time.Second,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.PatternEvent, p.bufSize)
	return p
}

// Start launches the flush loop for buffered events.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.flushLoop(ctx)
}

// Stop ends the flush loop. Buffered events that were not flushed are dropped.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	cancel()
	<-done
}

// Buffered reports events waiting for retry.
func (p *RealtimePipeline) Buffered() int {
	return len(p.bufCh)
}

func (p *RealtimePipeline) flushLoop(ctx context.Context) {
	defer close(p.done)
	backoff := p.retryMin
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-p.bufCh:
			batch := p.drain(e)
			err := p.proc.ProcessBatch(ctx, batch)
			if err == nil {
				backoff = p.retryMin
				continue
			}
			p.metrics.RecordError("pipeline_flush")
			for _, ev := range batch {
				select {
				case p.bufCh <- ev:
				default:
					p.metrics.RecordError("pipeline_buffer_drop")
				}
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff *= 2; backoff > p.retryMax {
				backoff = p.retryMax
			}
		}
	}
}

// drain collects first plus whatever is already buffered, up to the flush batch size.
func (p *RealtimePipeline) drain(first *models.PatternEvent) []*models.PatternEvent {
	batch := []*models.PatternEvent{first}
	for len(batch) < p.batch {
		select {
		case e := <-p.bufCh:
			batch = append(batch, e)
		default:
			return batch
		}
	}
	return batch
}

// Process validates, throttles and forwards e. A downstream failure buffers
// the event and returns the error; a throttled event is dropped with nil.
func (p *RealtimePipeline) Process(ctx context.Context, e *models.PatternEvent) error {
	start := time.Now()
	if err := validateEvent(e); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(e.Name, e.DetectedAt) {
		return nil
	}

	if err := p.proc.Process(ctx, e); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- e:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateEvent(e *models.PatternEvent) error {
	switch {
	case e == nil:
		return fmt.Errorf("event nil")
	case e.PatternID == "" || e.Name == "":
		return fmt.Errorf("pattern id/name empty")
	case e.DetectedAt.IsZero():
		return fmt.Errorf("detected_at missing")
	}
	return nil
}

func (p *RealtimePipeline) allow(name string, at time.Time) bool {
	if p.window <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if last, ok := p.lastSeen[name]; ok && at.Sub(last) < p.window && !at.Before(last) {
		return false
	}
	p.lastSeen[name] = at
	return true
}
