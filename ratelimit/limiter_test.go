package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInMemoryLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewInMemory(time.Minute)
	limiter.now = func() time.Time { return now }
	key := "login:127.0.0.1:a@example.com"

	first := limiter.Allow(ctx, key, 2)
	if !first.Allowed || first.Count != 1 || first.Remaining != 1 {
		t.Fatalf("unexpected first decision: %+v", first)
	}
	second := limiter.Allow(ctx, key, 2)
	if !second.Allowed || second.Remaining != 0 {
		t.Fatalf("unexpected second decision: %+v", second)
	}
	third := limiter.Allow(ctx, key, 2)
	if third.Allowed || third.Count != 3 {
		t.Fatalf("unexpected third decision: %+v", third)
	}
	if got := third.RetryAfter(now); got != time.Minute {
		t.Fatalf("expected retry after 1m, got %s", got)
	}

	other := limiter.Allow(ctx, "login:127.0.0.1:b@example.com", 2)
	if !other.Allowed || other.Count != 1 {
		t.Fatalf("keys must be counted separately: %+v", other)
	}

	now = now.Add(time.Minute)
	reset := limiter.Allow(ctx, key, 2)
	if !reset.Allowed || reset.Count != 1 {
		t.Fatalf("expected counter reset after window, got %+v", reset)
	}
}

func TestInMemoryLimiterDefaults(t *testing.T) {
	limiter := NewInMemory(0)
	if limiter.window != time.Minute {
		t.Fatalf("expected default 1 minute window, got %v", limiter.window)
	}
	decision := limiter.Allow(context.Background(), "k", 0)
	if !decision.Allowed || decision.Limit != 1 {
		t.Fatalf("expected limit floor of 1, got %+v", decision)
	}
}

func TestRedisLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	limiter := NewRedis(client, time.Minute, quietLogger())

	for i := 1; i <= 3; i++ {
		d := limiter.Allow(ctx, "login:k", 3)
		if !d.Allowed || d.Count != i {
			t.Fatalf("attempt %d: unexpected decision %+v", i, d)
		}
	}
	blocked := limiter.Allow(ctx, "login:k", 3)
	if blocked.Allowed || blocked.Remaining != 0 {
		t.Fatalf("expected block on 4th attempt, got %+v", blocked)
	}
	if !blocked.ResetAt.After(time.Now().UTC()) {
		t.Fatalf("expected reset in the future, got %v", blocked.ResetAt)
	}

	// Counters are shared by every limiter on the same redis.
	peer := NewRedis(client, time.Minute, quietLogger())
	if d := peer.Allow(ctx, "login:k", 3); d.Allowed {
		t.Fatalf("peer limiter must see shared counter, got %+v", d)
	}

	mr.FastForward(time.Minute + time.Second)
	if d := limiter.Allow(ctx, "login:k", 3); !d.Allowed || d.Count != 1 {
		t.Fatalf("expected fresh window after expiry, got %+v", d)
	}
}

func TestRedisLimiterFallsBackWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  5 * time.Millisecond,
		ReadTimeout:  5 * time.Millisecond,
		WriteTimeout: 5 * time.Millisecond,
		MaxRetries:   0,
	})
	defer client.Close()

	limiter := NewRedis(client, time.Minute, quietLogger())
	ctx := context.Background()
	if d := limiter.Allow(ctx, "k", 1); !d.Allowed || d.Count != 1 {
		t.Fatalf("expected in-memory fallback to allow first attempt, got %+v", d)
	}
	if d := limiter.Allow(ctx, "k", 1); d.Allowed {
		t.Fatalf("expected in-memory fallback to enforce limit, got %+v", d)
	}
}

func TestRedisLimiterWithoutClientOrFallbackAllows(t *testing.T) {
	limiter := &RedisLimiter{Window: time.Second, Logger: quietLogger()}
	d := limiter.Allow(context.Background(), "k", 2)
	if !d.Allowed || d.Limit != 2 || d.Count != 0 {
		t.Fatalf("expected permissive decision, got %+v", d)
	}
}
