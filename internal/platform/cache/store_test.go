package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg conc.WaitGroup
	for range workers {
		wg.Go(func() {
			<-start
			got, err := store.GetOrLoad(t.Context(), "same-key", loader)
			if err != nil || got != "value" {
				t.Errorf("unexpected load result: %q err=%v", got, err)
			}
		})
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore[int](time.Minute)
	store.now = func() time.Time { return now }

	store.Set("k", 1)
	if got, ok := store.Get("k"); !ok || got != 1 {
		t.Fatalf("expected cached value, got %d ok=%v", got, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := store.Get("k"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
}

func TestStore_GetOrLoad_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	store := NewStore[string](0)
	boom := errors.New("boom")

	if _, err := store.GetOrLoad(t.Context(), "k", func(context.Context) (string, error) {
		return "", boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := store.GetOrLoad(t.Context(), "k", func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("expected reload after failure, got %q err=%v", got, err)
	}

	store.Invalidate("k")
	if _, ok := store.Get("k"); ok {
		t.Fatalf("expected entry removed after invalidate")
	}
}
