package webhook

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper claims event keys so a redelivered meeting is processed once.
type Deduper interface {
	// Claim returns true the first time key is seen within the TTL.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets a claim so a failed delivery can be retried.
	Release(ctx context.Context, key string) error
}

// MemoryDeduper keeps claims in process memory.
type MemoryDeduper struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryDeduper creates a deduper whose claims expire after ttl.
func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	return &MemoryDeduper{ttl: ttl, now: time.Now, seen: map[string]time.Time{}}
}

// Claim implements Deduper.
func (d *MemoryDeduper) Claim(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for k, exp := range d.seen {
		if now.After(exp) {
			delete(d.seen, k)
		}
	}
	if _, ok := d.seen[key]; ok {
		return false, nil
	}
	d.seen[key] = now.Add(d.ttl)
	return true, nil
}

// Release implements Deduper.
func (d *MemoryDeduper) Release(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
	return nil
}

type redisClaimer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDeduper shares claims between instances through Redis SETNX.
type RedisDeduper struct {
	client redisClaimer
	prefix string
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper on an existing client.
func NewRedisDeduper(client *redis.Client, prefix string, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, prefix: prefix, ttl: ttl}
}

// Claim implements Deduper.
func (d *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, d.prefix+key, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
}

// Release implements Deduper.
func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.prefix+key).Err()
}
