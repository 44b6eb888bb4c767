package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const mediaDedupTTL = 24 * time.Hour

// MediaDedup guards media completion callbacks against replays.
// Key format: media:<category>:<target_id>:<source_path>
type MediaDedup struct {
	client *redis.Client
}

// NewMediaDedup creates a MediaDedup wrapping the given Redis client.
func NewMediaDedup(client *redis.Client) *MediaDedup {
	return &MediaDedup{client: client}
}

// IsProcessed reports whether this callback has already been applied.
func (d *MediaDedup) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("media dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this callback has been applied (expires after
// mediaDedupTTL; the callbacks themselves are idempotent, the key only
// saves pointless writes).
func (d *MediaDedup) Mark(ctx context.Context, key string) error {
	return d.client.Set(ctx, d.key(key), "1", mediaDedupTTL).Err()
}

func (d *MediaDedup) key(key string) string {
	return "media:" + key
}
