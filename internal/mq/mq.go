package mq

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrDisabled is returned when no broker is configured.
var ErrDisabled = errors.New("message queue is not configured")

const (
	// AttrContentType carries the payload media type.
	AttrContentType = "content-type"
	// AttrEventType names the event carried by the payload.
	AttrEventType = "event-type"

	contentTypeJSON = "application/json"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ wraps a backend with a stable API. An MQ without a backend reports
// ErrDisabled.
type MQ struct {
	backend Backend
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Enabled reports whether a broker is configured.
func (m *MQ) Enabled() bool {
	return m != nil && m.backend != nil
}

// Publish sends a message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}
	return m.backend.Publish(ctx, channel, data, attrs)
}

// PublishEvent JSON-encodes event and publishes it tagged with eventType.
func (m *MQ) PublishEvent(ctx context.Context, channel, eventType string, event any) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return m.Publish(ctx, channel, data, map[string]string{
		AttrContentType: contentTypeJSON,
		AttrEventType:   eventType,
	})
}

// Subscribe consumes messages from the named channel.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if !m.Enabled() {
		return ErrDisabled
	}
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	if !m.Enabled() {
		return nil
	}
	return m.backend.Close()
}
