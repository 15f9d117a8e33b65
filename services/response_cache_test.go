package services_test

import (
	"testing"
	"time"

	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/services"
)

func TestResponseCacheRoundTrip(t *testing.T) {
	cache := services.NewResponseCache(15 * time.Minute)

	response := models.RawResponse{Content: "cached answer", TokensUsed: 10, Model: "gpt-4.1"}
	cache.Put("gpt-4.1", "What are the best plumbers?", response)

	got, ok := cache.Get("gpt-4.1", "What are the best plumbers?")
	if !ok {
		t.Fatalf("Get() miss after Put")
	}
	if got.Content != "cached answer" || got.TokensUsed != 10 {
		t.Errorf("Get() = %+v, want stored response", got)
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}
}

func TestResponseCacheMissOnDifferentKey(t *testing.T) {
	cache := services.NewResponseCache(15 * time.Minute)
	cache.Put("gpt-4.1", "prompt", models.RawResponse{Content: "a"})

	if _, ok := cache.Get("claude-sonnet-4-20250514", "prompt"); ok {
		t.Errorf("Get() hit across models, want miss")
	}
	if _, ok := cache.Get("gpt-4.1", "other prompt"); ok {
		t.Errorf("Get() hit across prompts, want miss")
	}
}

func TestResponseCacheExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cache := services.NewResponseCacheWithClock(10*time.Minute, clock)

	cache.Put("gpt-4.1", "prompt", models.RawResponse{Content: "fresh"})

	now = now.Add(9 * time.Minute)
	if _, ok := cache.Get("gpt-4.1", "prompt"); !ok {
		t.Errorf("Get() miss before TTL elapsed")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("gpt-4.1", "prompt"); ok {
		t.Errorf("Get() hit after TTL elapsed")
	}
	if cache.Size() != 0 {
		t.Errorf("Size() = %d after expiry read, want 0", cache.Size())
	}
}

func TestResponseCacheOverwrite(t *testing.T) {
	cache := services.NewResponseCache(15 * time.Minute)

	cache.Put("gpt-4.1", "prompt", models.RawResponse{Content: "first"})
	cache.Put("gpt-4.1", "prompt", models.RawResponse{Content: "second"})

	got, ok := cache.Get("gpt-4.1", "prompt")
	if !ok || got.Content != "second" {
		t.Errorf("Get() = %+v, want overwritten response", got)
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}
}

func TestResponseCacheGetReturnsCopy(t *testing.T) {
	cache := services.NewResponseCache(15 * time.Minute)
	cache.Put("gpt-4.1", "prompt", models.RawResponse{Content: "original"})

	first, _ := cache.Get("gpt-4.1", "prompt")
	first.Content = "mutated"
	first.Cached = true

	second, _ := cache.Get("gpt-4.1", "prompt")
	if second.Content != "original" || second.Cached {
		t.Errorf("Get() = %+v, caller mutation leaked into the cache", second)
	}
}
