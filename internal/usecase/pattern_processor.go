package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"CosmicClock/internal/domain/models"
	drepo "CosmicClock/internal/domain/repository"
)

// Export backends.
const (
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
	BackendPostgres   = "postgres"
	BackendNone       = "none"
)

// NewPatternEvent wraps a detection with a fresh event id.
func NewPatternEvent(p models.DetectedPattern, timezone string) *models.PatternEvent {
	return &models.PatternEvent{
		EventID:     uuid.NewString(),
		PatternID:   p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		DetectedAt:  p.Timestamp,
		Timezone:    timezone,
	}
}

// PatternProcessor routes detection events to the configured backend.
type PatternProcessor struct {
	pub     drepo.PatternPublisher
	archive drepo.PatternArchive
	metrics drepo.Metrics
	backend string
}

func NewPatternProcessor(pub drepo.PatternPublisher, archive drepo.PatternArchive, metrics drepo.Metrics, backend string) *PatternProcessor {
	return &PatternProcessor{pub: pub, archive: archive, metrics: metrics, backend: backend}
}

// Backend returns the configured backend name.
func (p *PatternProcessor) Backend() string { return p.backend }

func (p *PatternProcessor) Process(ctx context.Context, e *models.PatternEvent) error {
	if e == nil {
		return fmt.Errorf("event is nil")
	}
	start := time.Now()

	var err error
	switch p.backend {
	case BackendKafka:
		if p.pub == nil {
			return fmt.Errorf("backend %s not configured", p.backend)
		}
		err = p.pub.Publish(ctx, e)
	case BackendClickHouse, BackendPostgres:
		if p.archive == nil {
			return fmt.Errorf("backend %s not configured", p.backend)
		}
		err = p.archive.Store(ctx, e)
	case BackendNone:
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("export_" + p.backend)
		return fmt.Errorf("export event: %w", err)
	}

	p.metrics.RecordEventExported(p.backend, e.PatternID)
	p.metrics.RecordLatency("export", time.Since(start).Seconds())
	return nil
}

// ProcessBatch exports events in one call to the backend. Nil events are skipped.
func (p *PatternProcessor) ProcessBatch(ctx context.Context, events []*models.PatternEvent) error {
	batch := make([]*models.PatternEvent, 0, len(events))
	for _, e := range events {
		if e != nil {
			batch = append(batch, e)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	start := time.Now()

	var err error
	switch p.backend {
	case BackendKafka:
		if p.pub == nil {
			return fmt.Errorf("backend %s not configured", p.backend)
		}
		err = p.pub.PublishBatch(ctx, batch)
	case BackendClickHouse, BackendPostgres:
		if p.archive == nil {
			return fmt.Errorf("backend %s not configured", p.backend)
		}
		err = p.archive.StoreBatch(ctx, batch)
	case BackendNone:
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("export_batch_" + p.backend)
		return fmt.Errorf("export batch: %w", err)
	}
	for _, e := range batch {
		p.metrics.RecordEventExported(p.backend, e.PatternID)
	}
	p.metrics.RecordLatency("export_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *PatternProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.archive != nil {
		_ = p.archive.Close()
	}
}
