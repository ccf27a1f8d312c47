package queue

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/config"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each message synchronously to one topic.
type KafkaPublisher struct {
	writer kafkaWriter
	topic  string
}

// NewKafkaPublisher creates a writer for cfg.Topic. Messages are not
// batched: every Publish is its own produce request.
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    1,
	}

	log.Infof("Publishing to Kafka topic %s via %v", cfg.Topic, cfg.Brokers)
	return &KafkaPublisher{writer: w, topic: cfg.Topic}, nil
}

// Publish writes msg keyed by msg.Key with attributes as headers.
func (p *KafkaPublisher) Publish(ctx context.Context, msg Message) error {
	km := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Body,
	}
	for k, v := range msg.Attributes {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := p.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("kafka write %s to %s: %w", msg.Key, p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
