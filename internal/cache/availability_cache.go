package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "availability"
	versionKey = keyPrefix + ":version"
)

// AvailabilityCache stores availability snapshots per window. Entries are
// keyed by a version counter, so Invalidate orphans every cached snapshot at
// once and the orphans expire on their TTL.
//
// Get reports the version it looked under and Set writes under that same
// version. A snapshot computed across an Invalidate is therefore filed under
// the old version and never served.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache returns a cache backed by client. A nil client yields
// a cache whose reads always miss and whose writes do nothing.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func (c *AvailabilityCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get decodes the snapshot for [start, end) into dst and reports whether one
// was found, along with the cache version it read. Pass that version to Set
// when storing a snapshot computed after a miss.
func (c *AvailabilityCache) Get(ctx context.Context, start, end time.Time, dst any) (int64, bool, error) {
	if !c.Enabled() {
		return 0, false, nil
	}
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, fmt.Errorf("redis get version: %w", err)
	}
	raw, err := c.client.Get(ctx, snapshotKey(version, start, end)).Bytes()
	if errors.Is(err, redis.Nil) {
		return version, false, nil
	}
	if err != nil {
		return version, false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return version, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return version, true, nil
}

// Set stores v under version, the value Get returned before v was computed.
func (c *AvailabilityCache) Set(ctx context.Context, version int64, start, end time.Time, v any) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(version, start, end), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate bumps the version so no earlier snapshot is served again.
func (c *AvailabilityCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	return nil
}

func snapshotKey(version int64, start, end time.Time) string {
	return fmt.Sprintf("%s:v%d:%d:%d", keyPrefix, version, start.UTC().Unix(), end.UTC().Unix())
}

// NewRedisClient connects to addr and pings it. An empty addr returns a nil
// client, which disables caching.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
