package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyspace prefixes every entry so the auth state coexists with other
// services on a shared Redis.
const keyspace = "authcore:"

// maxRetention bounds entries written without an explicit TTL; peek codes
// and similar short-lived auth state must never persist unexpired.
const maxRetention = time.Hour

// KV is the Redis-backed core.EphemeralStore used for the dev OTP peek when
// authd runs more than one replica.
type KV struct {
	rdb *redis.Client
}

func NewKV(rdb *redis.Client) *KV {
	return &KV{rdb: rdb}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := k.rdb.Get(ctx, keyspace+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > maxRetention {
		ttl = maxRetention
	}
	return k.rdb.Set(ctx, keyspace+key, value, ttl).Err()
}

func (k *KV) Del(ctx context.Context, key string) error {
	return k.rdb.Del(ctx, keyspace+key).Err()
}
