package repository

import (
	"context"

	"FundLens/internal/domain/models"
	pkgkafka "FundLens/pkg/kafka"
)

// KafkaPublisher emits analysis events to a Kafka topic, keyed by ticker
// so per-ticker ordering is preserved.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *models.AnalysisEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.Ticker), e)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
