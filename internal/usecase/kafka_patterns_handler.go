package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
	pkgkafka "CosmicClock/pkg/kafka"
)

// KafkaPatternsHandler consumes detection events and appends them to the archive.
type KafkaPatternsHandler struct {
	topic   string
	archive domrepo.PatternArchive
	metrics domrepo.Metrics
}

var _ pkgkafka.MessageHandler = (*KafkaPatternsHandler)(nil)

func NewKafkaPatternsHandler(topic string, archive domrepo.PatternArchive, metrics domrepo.Metrics) *KafkaPatternsHandler {
	return &KafkaPatternsHandler{topic: topic, archive: archive, metrics: metrics}
}

func (h *KafkaPatternsHandler) Topic() string { return h.topic }

func (h *KafkaPatternsHandler) Handle(ctx context.Context, b []byte) error {
	var e models.PatternEvent
	if err := json.Unmarshal(b, &e); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode pattern event: %w", err)
	}
	if e.EventID == "" || e.PatternID == "" {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("pattern event missing ids")
	}
	if !e.DetectedAt.IsZero() {
		h.metrics.RecordLatency("ingest_e2e", time.Since(e.DetectedAt).Seconds())
	}

	start := time.Now()
	err := h.archive.Store(ctx, &e)
	h.metrics.RecordLatency("archive_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordEventExported("archive", e.PatternID)
	return nil
}
