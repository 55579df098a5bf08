package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodcircle/foodcircle-backend/pkg/config"
)

type fakeStore struct {
	values  map[string]string
	expires map[string]time.Duration
	incrs   map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:  map[string]string{},
		expires: map[string]time.Duration{},
		incrs:   map[string]int64{},
	}
}

func (f *fakeStore) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = toString(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = toString(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.incrs[key]++
	return redis.NewIntResult(f.incrs[key], nil)
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func TestClientKeyNamespacing(t *testing.T) {
	client := &Client{store: newFakeStore()}
	if got := client.RateLimitKey("login:email:a@b.c"); got != "fc:rate_limit:login:email:a@b.c" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.AccessSessionKey("abc"); got != "fc:session:access:abc" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.LockKey("cron-worker:dev"); got != "fc:lock:cron-worker:dev" {
		t.Fatalf("unexpected lock key %s", got)
	}
}

func TestFixedWindowAllow(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "login", 3, time.Minute)
		if err != nil {
			t.Fatalf("fixed window: %v", err)
		}
		if !allowed {
			t.Fatalf("expected attempt %d to be allowed", i+1)
		}
		if count != int64(i+1) {
			t.Fatalf("unexpected count %d", count)
		}
	}

	allowed, _, err := client.FixedWindowAllow(ctx, "login", 3, time.Minute)
	if err != nil {
		t.Fatalf("fixed window: %v", err)
	}
	if allowed {
		t.Fatal("expected fourth attempt to be rejected")
	}

	if ttl := store.expires[client.RateLimitKey("login")]; ttl != time.Minute {
		t.Fatalf("expected ttl applied on first increment, got %s", ttl)
	}
}

func TestSetNXAndDel(t *testing.T) {
	client := &Client{store: newFakeStore()}
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "fc:lock:x", "owner", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first setnx should succeed: ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "fc:lock:x", "other", time.Minute)
	if err != nil || ok {
		t.Fatalf("second setnx should fail: ok=%v err=%v", ok, err)
	}
	if err := client.Del(ctx, "fc:lock:x"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, "fc:lock:x"); err == nil {
		t.Fatal("expected redis.Nil after delete")
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when url and address missing")
	}
}

func TestOptionsFromConfigAddress(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		Address:  "localhost:6379",
		Password: "secret",
		DB:       2,
		PoolSize: 10,
	})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.Password != "secret" || opts.DB != 2 || opts.PoolSize != 10 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
