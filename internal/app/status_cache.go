/**
 * @description
 * Redis-backed cache for the transfer status polling endpoint. Clients poll
 * status aggressively while a transfer is in flight, so the hot projection
 * (status + message) is cached under a short TTL and invalidated on every
 * transition.
 *
 * The cache is strictly best-effort: a Redis outage degrades polling to
 * database reads, it never fails a request.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9: Redis client.
 * - internal/domain: The cached projection type.
 */

package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xfer/transfer-service/internal/domain"
)

// StatusCache is the read-through cache the service uses for status polling.
// Implementations must be safe to call with a dead backend.
type StatusCache interface {
	GetStatus(ctx context.Context, transferID uuid.UUID) (*domain.TransferStatusProjection, bool)
	SetStatus(ctx context.Context, transferID uuid.UUID, projection domain.TransferStatusProjection)
	Invalidate(ctx context.Context, transferID uuid.UUID)
}

// RedisStatusCache implements StatusCache on Redis. A nil receiver or nil
// client is a no-op cache, which lets the service run without Redis.
type RedisStatusCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStatusCache creates a status cache with the given entry TTL.
func NewRedisStatusCache(client redis.UniversalClient, ttl time.Duration) *RedisStatusCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisStatusCache{client: client, ttl: ttl}
}

func statusCacheKey(transferID uuid.UUID) string {
	return "transfer_status:" + transferID.String()
}

// GetStatus returns the cached projection and whether it was present.
func (c *RedisStatusCache) GetStatus(ctx context.Context, transferID uuid.UUID) (*domain.TransferStatusProjection, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, statusCacheKey(transferID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("level=warn component=status_cache msg=\"cache read failed\" transfer_id=%s error=%q", transferID, err)
		}
		return nil, false
	}
	var projection domain.TransferStatusProjection
	if err := json.Unmarshal(raw, &projection); err != nil {
		log.Printf("level=warn component=status_cache msg=\"cache entry corrupt, dropping\" transfer_id=%s error=%q", transferID, err)
		c.Invalidate(ctx, transferID)
		return nil, false
	}
	return &projection, true
}

// SetStatus stores the projection under the cache TTL.
func (c *RedisStatusCache) SetStatus(ctx context.Context, transferID uuid.UUID, projection domain.TransferStatusProjection) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(projection)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusCacheKey(transferID), raw, c.ttl).Err(); err != nil {
		log.Printf("level=warn component=status_cache msg=\"cache write failed\" transfer_id=%s error=%q", transferID, err)
	}
}

// Invalidate removes the cached projection after a status transition.
func (c *RedisStatusCache) Invalidate(ctx context.Context, transferID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, statusCacheKey(transferID)).Err(); err != nil {
		log.Printf("level=warn component=status_cache msg=\"cache invalidation failed\" transfer_id=%s error=%q", transferID, err)
	}
}
