package repository

import (
	"context"
	"time"

	"CosmicClock/internal/domain/models"
)

// PatternPublisher ships detection events to a broker.
type PatternPublisher interface {
	Publish(ctx context.Context, e *models.PatternEvent) error
	PublishBatch(ctx context.Context, events []*models.PatternEvent) error
	Close() error
}

// PatternArchive is an append-only store of detection events.
type PatternArchive interface {
	Init(ctx context.Context) error // ensure tables
	Store(ctx context.Context, e *models.PatternEvent) error
	StoreBatch(ctx context.Context, events []*models.PatternEvent) error
	Stats(ctx context.Context, from, to time.Time, g Granularity) ([]models.PatternCount, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordPatternDetected(id string)
	RecordEventExported(backend, id string)
	RecordSearchExhausted(id string)
	RecordCacheResult(hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
