package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"truthbot/internal/config"
	"truthbot/internal/models"
	"truthbot/pkg/fingerprint"
)

func sampleResponse() *models.FactCheckResponse {
	return &models.FactCheckResponse{
		Claim:              "The Great Wall is visible from space",
		SearchResultsCount: 4,
		Verdict:            "**VERDICT:** FALSE",
		Success:            true,
	}
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	key := fingerprint.CacheKey("The Great Wall is visible from space")

	if _, ok, _ := m.Get(ctx, key); ok {
		t.Fatal("Expected miss on empty cache")
	}

	if err := m.Set(ctx, key, sampleResponse()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := m.Get(ctx, fingerprint.CacheKey("  the great wall is VISIBLE from space? "))
	if err != nil || !ok {
		t.Fatalf("Expected hit for normalized claim, got ok=%v err=%v", ok, err)
	}

	if got.Verdict != "**VERDICT:** FALSE" || got.SearchResultsCount != 4 {
		t.Errorf("Unexpected cached response: %+v", got)
	}

	got.Verdict = "mutated"

	again, _, _ := m.Get(ctx, key)
	if again.Verdict != "**VERDICT:** FALSE" {
		t.Error("Expected cache to hand out copies")
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m := NewMemory(time.Hour)
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "k", sampleResponse()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatal("Expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("Expected miss after expiry")
	}

	if m.Len() != 0 {
		t.Errorf("Expected expired entry evicted, got %d entries", m.Len())
	}
}

func TestNew_Backends(t *testing.T) {
	c, err := New(config.CacheConfig{Enabled: false})
	if err != nil || c != nil {
		t.Fatalf("Expected nil cache when disabled, got %v, %v", c, err)
	}

	c, err = New(config.CacheConfig{Enabled: true, Backend: "memory", TTLSec: 10})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, ok := c.(*Memory); !ok {
		t.Errorf("Expected *Memory, got %T", c)
	}

	c, err = New(config.CacheConfig{Enabled: true, Backend: "redis", TTLSec: 10, Redis: config.RedisConfig{Addr: "localhost:6379"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if r, ok := c.(*Redis); !ok {
		t.Errorf("Expected *Redis, got %T", c)
	} else {
		_ = r.Close()
	}

	if _, err := New(config.CacheConfig{Enabled: true, Backend: "memcached"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
}

func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	r := NewRedis(config.RedisConfig{Addr: addr}, time.Minute)
	defer r.Close()

	if err := r.Ping(ctx); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	key := fingerprint.CacheKey("redis round trip " + time.Now().String())

	if _, ok, err := r.Get(ctx, key); err != nil || ok {
		t.Fatalf("Expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := r.Set(ctx, key, sampleResponse()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Expected hit, got ok=%v err=%v", ok, err)
	}

	if got.Claim != sampleResponse().Claim {
		t.Errorf("Unexpected claim %q", got.Claim)
	}
}
