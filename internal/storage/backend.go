package storage

import (
	"context"
	"fmt"

	"github.com/portfolio-web/apiserver/config"
)

// NewFromConfig builds the Storage selected by cfg.Backend. The "none"
// backend yields a disabled Storage.
func NewFromConfig(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	switch cfg.Backend {
	case config.StorageBackendMinio:
		client, err := NewMinioClient(cfg.Minio, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return NewStorage(client), nil
	case config.StorageBackendGCS:
		client, err := NewGCSClient(ctx, cfg.GCS, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return NewStorage(client), nil
	case config.StorageBackendNone, "":
		return NewStorage(nil), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
