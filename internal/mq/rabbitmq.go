package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/portfolio-web/apiserver/config"
)

const rabbitAppID = "portfolio-apiserver"

// RabbitMQClient publishes to and consumes from RabbitMQ queues on the
// default exchange. Channels map to queue names.
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	durable bool
	cleanup bool
}

// NewRabbitMQClient dials the broker and opens a channel with the
// configured prefetch.
func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("set rabbitmq prefetch: %w", err)
		}
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: ch,
		durable: cfg.QueueDurable,
		cleanup: cfg.QueueAutoDelete,
	}, nil
}

// Publish sends data to the named queue, declaring it first.
func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("rabbitmq channel is required")
	}
	if err := r.declare(channel); err != nil {
		return "", err
	}

	msg := newPublishing(data, attrs, r.durable)
	if err := r.channel.PublishWithContext(ctx, "", channel, false, false, msg); err != nil {
		return "", err
	}
	return msg.MessageId, nil
}

// Subscribe consumes the named queue until ctx is done. A failed handler
// requeues the delivery once; a second failure drops it.
func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}
	if err := r.declare(channel); err != nil {
		return err
	}

	consumerTag := "worker-" + uuid.NewString()
	deliveries, err := r.channel.ConsumeWithContext(ctx, channel, consumerTag, false, false, false, false, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.channel.Cancel(consumerTag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			if err := handler(ctx, deliveryToMessage(delivery)); err != nil {
				_ = delivery.Nack(false, !delivery.Redelivered)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

// Close closes the channel and the connection.
func (r *RabbitMQClient) Close() error {
	var errs []error
	if r.channel != nil {
		errs = append(errs, r.channel.Close())
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}
	return errors.Join(errs...)
}

func (r *RabbitMQClient) declare(queue string) error {
	_, err := r.channel.QueueDeclare(queue, r.durable, r.cleanup, false, false, nil)
	return err
}

// newPublishing builds the AMQP envelope. The content and event type
// attributes are promoted to their AMQP properties and kept as headers.
func newPublishing(data []byte, attrs map[string]string, persistent bool) amqp.Publishing {
	headers := make(amqp.Table, len(attrs))
	for key, value := range attrs {
		headers[key] = value
	}

	contentType := attrs[AttrContentType]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	mode := amqp.Transient
	if persistent {
		mode = amqp.Persistent
	}

	return amqp.Publishing{
		MessageId:    uuid.NewString(),
		AppId:        rabbitAppID,
		Timestamp:    time.Now().UTC(),
		ContentType:  contentType,
		Type:         attrs[AttrEventType],
		DeliveryMode: mode,
		Headers:      headers,
		Body:         data,
	}
}

// deliveryToMessage restores the attributes of a delivery, falling back to
// the AMQP properties for publishers that did not set headers.
func deliveryToMessage(d amqp.Delivery) Message {
	attrs := headersToAttributes(d.Headers)
	if attrs == nil {
		attrs = make(map[string]string, 2)
	}
	if _, ok := attrs[AttrEventType]; !ok && d.Type != "" {
		attrs[AttrEventType] = d.Type
	}
	if _, ok := attrs[AttrContentType]; !ok && d.ContentType != "" {
		attrs[AttrContentType] = d.ContentType
	}
	return Message{ID: d.MessageId, Data: d.Body, Attributes: attrs}
}

func headersToAttributes(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for key, value := range headers {
		switch typed := value.(type) {
		case string:
			attrs[key] = typed
		case []byte:
			attrs[key] = string(typed)
		default:
			attrs[key] = fmt.Sprint(value)
		}
	}
	return attrs
}
