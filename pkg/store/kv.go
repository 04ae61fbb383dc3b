package store

import (
	"context"

	"github.com/lumera-stats/lumerawatch/pkg/redis"
	"github.com/puzpuzpuz/xsync/v4"
)

// KV is the keyed text storage the history and wallet stores persist into.
// Get reports a missing key with ok=false and a nil error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryKV is a process-local KV. It is safe for concurrent use.
type MemoryKV struct {
	m *xsync.Map[string, string]
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: xsync.NewMap[string, string]()}
}

func (kv *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := kv.m.Load(key)
	return v, ok, nil
}

func (kv *MemoryKV) Set(_ context.Context, key, value string) error {
	kv.m.Store(key, value)
	return nil
}

// RedisKV persists keys in Redis under a common prefix.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV returns a KV storing every key as prefix+key.
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

func (kv *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	return kv.client.Get(ctx, kv.prefix+key)
}

func (kv *RedisKV) Set(ctx context.Context, key, value string) error {
	return kv.client.Set(ctx, kv.prefix+key, value)
}

var (
	_ KV = (*MemoryKV)(nil)
	_ KV = (*RedisKV)(nil)
)
