package repository

import (
	"context"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
	pkgkafka "CosmicClock/pkg/kafka"
)

// KafkaPublisher implements PatternPublisher. Events are keyed by pattern id
// so one pattern's events stay ordered on a partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.PatternPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *models.PatternEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.PatternID), e)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, events []*models.PatternEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(e.PatternID), Value: e})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
