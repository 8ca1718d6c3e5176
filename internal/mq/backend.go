package mq

import (
	"context"
	"fmt"

	"github.com/portfolio-web/apiserver/config"
)

// NewFromConfig builds the MQ selected by cfg.Backend. The "none" backend
// yields a disabled MQ.
func NewFromConfig(ctx context.Context, cfg config.MQConfig) (*MQ, error) {
	switch cfg.Backend {
	case config.MQBackendPubSub:
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return New(client), nil
	case config.MQBackendRabbitMQ:
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return New(client), nil
	case config.MQBackendKafka:
		client, err := NewKafkaClient(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return New(client), nil
	case config.MQBackendNone, "":
		return New(nil), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}
