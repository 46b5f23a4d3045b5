package ports

import (
	"context"
	"time"
)

// Port: a best-effort cache for computed report payloads.
type ReportCache interface {
	// Decode the cached value for key into dst. Reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}
