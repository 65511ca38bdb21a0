package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce tries to acquire a dedup lock for a given handler + event key.
// Returns true if this is the FIRST time processing, false for a duplicate.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, eventKey string) bool {
	key := fmt.Sprintf("dedup:%s:%s", handler, eventKey)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// Redis 挂了？为了安全：当 redis 不可用时，不阻止处理，返回 true
		return true
	}
	return ok
}

// Release drops the dedup key so the same handler + event key can be
// processed again. Called when handling fails and the message goes back
// to the queue.
func (d *Deduper) Release(ctx context.Context, handler string, eventKey string) {
	key := fmt.Sprintf("dedup:%s:%s", handler, eventKey)
	d.rdb.Del(ctx, key)
}
