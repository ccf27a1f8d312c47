// Package queue publishes asteroid records to a message queue destination.
package queue

import (
	"context"
	"fmt"

	logging "github.com/ipfs/go-log/v2"

	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/config"
)

var log = logging.Logger("queue")

// Message is one queue submission.
type Message struct {
	// Key identifies the record; used as the Kafka partition key.
	Key  string
	Body []byte
	// Attributes travel as SQS message attributes or Kafka headers.
	Attributes map[string]string
}

// Publisher submits one message per call.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Open builds the publisher selected by cfg.Backend.
func Open(ctx context.Context, cfg config.QueueConfig) (Publisher, error) {
	switch cfg.Backend {
	case config.BackendSQS, "":
		p, err := DialSQS(ctx, cfg.SQS)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendKafka:
		p, err := NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendP2P:
		p, err := NewP2PPublisher(ctx, cfg.P2P)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
	}
}
