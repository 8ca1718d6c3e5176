package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var (
	// ErrInvalidInput marks a request rejected by validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedMediaType marks an upload of the wrong kind of file.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// BlobStore is the subset of object storage used by the services.
type BlobStore interface {
	Enabled() bool
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	DeleteURL(ctx context.Context, publicURL string) error
}

// EventPublisher publishes domain events to the message queue.
type EventPublisher interface {
	Enabled() bool
	PublishEvent(ctx context.Context, channel, eventType string, event any) (string, error)
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func requireContentType(upload Upload, allowed func(string) bool) error {
	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !allowed(contentType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, upload.ContentType)
	}
	return nil
}

func isImage(contentType string) bool {
	switch contentType {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func isPDF(contentType string) bool {
	return contentType == "application/pdf"
}
