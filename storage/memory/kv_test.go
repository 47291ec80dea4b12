package memorystore_test

import (
	"context"
	"testing"
	"time"

	memorystore "github.com/gharkaam/authcore/storage/memory"
)

func TestKVRoundTrip(t *testing.T) {
	kv := memorystore.NewKV()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("missing key: (%v, %v), want miss", ok, err)
	}

	if err := kv.Set(ctx, "k", []byte("4321"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	b, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok || string(b) != "4321" {
		t.Fatalf("Get = (%q, %v, %v)", b, ok, err)
	}

	if err := kv.Del(ctx, "k"); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Fatal("key survived Del")
	}
}

func TestKVExpiry(t *testing.T) {
	kv := memorystore.NewKV()
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(25 * time.Millisecond)
	if _, ok, err := kv.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expired key: (%v, %v), want miss", ok, err)
	}

	// A non-positive TTL still stores the entry (bounded retention applies
	// internally rather than rejecting the write).
	if err := kv.Set(ctx, "z", []byte("v"), 0); err != nil {
		t.Fatalf("Set with zero TTL failed: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "z"); !ok {
		t.Fatal("zero-TTL entry should be readable until the retention bound")
	}
}

func TestKVCopiesValue(t *testing.T) {
	kv := memorystore.NewKV()
	ctx := context.Background()

	v := []byte("1234")
	if err := kv.Set(ctx, "k", v, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v[0] = 'X'
	b, _, _ := kv.Get(ctx, "k")
	if string(b) != "1234" {
		t.Fatalf("stored value aliased the caller's slice: %q", b)
	}
}
