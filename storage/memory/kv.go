package memorystore

import (
	"context"
	"sync"
	"time"
)

// maxRetention bounds entries written without an explicit TTL. The store
// holds short-lived auth state (the dev OTP peek); nothing in it may outlive
// the hour regardless of what the caller passed.
const maxRetention = time.Hour

type entry struct {
	payload  []byte
	deadline time.Time
}

// KV is the in-memory core.EphemeralStore backing the dev OTP peek in
// single-process deployments. Expiry is lazy: entries are dropped when read
// past their deadline and swept opportunistically on writes, so no background
// goroutine is involved.
type KV struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewKV() *KV {
	return &KV{entries: make(map[string]entry)}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.deadline) {
		delete(k.entries, key)
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = ctx
	if ttl <= 0 || ttl > maxRetention {
		ttl = maxRetention
	}
	now := time.Now()
	k.mu.Lock()
	defer k.mu.Unlock()
	for stale, e := range k.entries {
		if now.After(e.deadline) {
			delete(k.entries, stale)
		}
	}
	k.entries[key] = entry{
		payload:  append([]byte(nil), value...),
		deadline: now.Add(ttl),
	}
	return nil
}

func (k *KV) Del(ctx context.Context, key string) error {
	_ = ctx
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.entries, key)
	return nil
}
