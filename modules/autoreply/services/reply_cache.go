package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplyCache memoizes generated replies in Redis so repeated delivery
// of the same inbound message does not trigger a second generation
// call. Keys include the knowledge base revision, so edits invalidate
// cached replies naturally.
type ReplyCache struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func NewReplyCache(redis *redis.Client, prefix string, ttl time.Duration) *ReplyCache {
	return &ReplyCache{redis: redis, prefix: prefix, ttl: ttl}
}

func (c *ReplyCache) Get(ctx context.Context, key string) (string, bool) {
	result, err := c.redis.Get(ctx, c.prefix+":"+key).Result()
	if err != nil {
		return "", false
	}
	return result, true
}

func (c *ReplyCache) Set(ctx context.Context, key, value string) error {
	return c.redis.Set(ctx, c.prefix+":"+key, value, c.ttl).Err()
}

func replyCacheKey(kbID string, kbUpdatedAt time.Time, prompt string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", kbID, kbUpdatedAt.UnixNano(), prompt)))
	return hex.EncodeToString(sum[:])
}
