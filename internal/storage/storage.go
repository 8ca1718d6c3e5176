package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrDisabled is returned by upload operations when no blob storage backend
// is configured.
var ErrDisabled = errors.New("object storage is not configured")

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	Bucket() string
}

// Storage wraps an ObjectStorage backend with a stable API. A Storage with a
// nil backend reports ErrDisabled.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// Enabled reports whether a backend is configured.
func (s *Storage) Enabled() bool {
	return s != nil && s.backend != nil
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	return s.backend.EnsureBucket(ctx)
}

// Put uploads an object to the configured bucket.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Upload stores r under key and returns its public URL.
func (s *Storage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := s.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return s.backend.PublicURL(key), nil
}

// Get opens a reader for an object in the configured bucket.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	return s.backend.Get(ctx, key)
}

// Delete removes an object from the configured bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	return s.backend.Delete(ctx, key)
}

// DeleteURL removes the object behind a public URL produced by this storage.
// URLs that do not belong to the bucket are ignored.
func (s *Storage) DeleteURL(ctx context.Context, publicURL string) error {
	key, ok := s.KeyFromURL(publicURL)
	if !ok {
		return nil
	}
	return s.Delete(ctx, key)
}

// KeyFromURL recovers the object key of a public URL produced by this storage.
func (s *Storage) KeyFromURL(publicURL string) (string, bool) {
	if !s.Enabled() || publicURL == "" {
		return "", false
	}
	prefix := s.backend.PublicURL("")
	if prefix == "" || !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	if !s.Enabled() {
		return ""
	}
	return s.backend.Bucket()
}

// Close releases backend resources for backends that hold any.
func (s *Storage) Close() error {
	if !s.Enabled() {
		return nil
	}
	if closer, ok := s.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Objects are written once under unique keys and may be cached forever.
const publicCacheControl = "public, max-age=31536000, immutable"

// ObjectKey builds a unique key "<kind>/<owner>/<uuid><ext>" for an upload.
func ObjectKey(kind, owner, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	owner = strings.Trim(strings.ReplaceAll(owner, "/", "_"), ".")
	if owner == "" {
		owner = "shared"
	}
	return path.Join(kind, owner, uuid.NewString()+ext)
}

func joinPublicURL(base, bucket, key string) string {
	base = strings.TrimRight(base, "/")
	if bucket != "" {
		base += "/" + bucket
	}
	return base + "/" + key
}
