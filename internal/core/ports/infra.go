package ports

import (
	"context"
	"time"
)

type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// PhotoStorage uploads raw image bytes and returns a durable public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, photo Photo) (string, error)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Lease is a best-effort cross-process lock with expiry.
type Lease interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
