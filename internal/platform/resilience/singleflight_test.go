package resilience

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
)

func TestSingleFlight_DoSharesInFlightCall(t *testing.T) {
	t.Parallel()

	var g SingleFlight[string]
	var calls atomic.Int32
	var shared atomic.Int32

	const workers = 20
	start := make(chan struct{})
	var wg conc.WaitGroup
	for range workers {
		wg.Go(func() {
			<-start
			got, wasShared, err := g.Do("heroes", func() (string, error) {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil || got != "ok" {
				t.Errorf("unexpected result: %q err=%v", got, err)
			}
			if wasShared {
				shared.Add(1)
			}
		})
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
	if got := shared.Load(); got != workers-1 {
		t.Fatalf("expected %d shared results, got %d", workers-1, got)
	}
}

func TestSingleFlight_DoPropagatesErrorAndForgetsKey(t *testing.T) {
	t.Parallel()

	var g SingleFlight[int]
	boom := errors.New("boom")

	if _, _, err := g.Do("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, shared, err := g.Do("k", func() (int, error) { return 7, nil })
	if err != nil || got != 7 || shared {
		t.Fatalf("expected a fresh call after failure, got %d shared=%v err=%v", got, shared, err)
	}
}
