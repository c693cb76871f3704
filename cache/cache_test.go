package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewCache(client)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	if err := c.Set(ctx, "patients_cache:2024-06-01", `[{"id":1}]`, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := c.Get(ctx, "patients_cache:2024-06-01")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != `[{"id":1}]` {
		t.Errorf("unexpected value %q", got)
	}

	mr.FastForward(2 * time.Minute)
	got, err = c.Get(ctx, "patients_cache:2024-06-01")
	if err != nil {
		t.Fatalf("get after expiry failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected expired key to miss, got %q", got)
	}
}

func TestCache_GetMissingKey(t *testing.T) {
	c, _ := newTestCache(t)
	got, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
}

func TestCache_DeleteAll(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	for _, key := range []string{"patients_cache:a", "patients_cache:b", "statistics_cache:a"} {
		if err := c.Set(ctx, key, "x", time.Minute); err != nil {
			t.Fatalf("set %s failed: %v", key, err)
		}
	}

	if err := c.DeleteAll(ctx, "patients_cache:*"); err != nil {
		t.Fatalf("delete all failed: %v", err)
	}

	if mr.Exists("patients_cache:a") || mr.Exists("patients_cache:b") {
		t.Error("expected patients_cache keys to be removed")
	}
	if !mr.Exists("statistics_cache:a") {
		t.Error("expected statistics_cache key to survive")
	}
}

func TestCache_Counter(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	got, err := c.GetInt64(ctx, "registry_gen")
	if err != nil || got != 0 {
		t.Fatalf("expected 0 for missing counter, got %d, %v", got, err)
	}

	for want := int64(1); want <= 2; want++ {
		n, err := c.Incr(ctx, "registry_gen")
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if n != want {
			t.Errorf("expected %d after incr, got %d", want, n)
		}
	}

	got, err = c.GetInt64(ctx, "registry_gen")
	if err != nil || got != 2 {
		t.Errorf("expected counter 2, got %d, %v", got, err)
	}
}

func TestCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := NewCache(nil)

	if c.Enabled() {
		t.Fatal("expected cache without client to be disabled")
	}
	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set on disabled cache: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || got != "" {
		t.Fatalf("expected miss on disabled cache, got %q, %v", got, err)
	}
	if err := c.DeleteAll(ctx, "*"); err != nil {
		t.Fatalf("delete all on disabled cache: %v", err)
	}
	if n, err := c.Incr(ctx, "gen"); err != nil || n != 0 {
		t.Fatalf("incr on disabled cache: %d, %v", n, err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on disabled cache: %v", err)
	}
}
