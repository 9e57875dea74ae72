package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute, 0)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "permissions", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute, 0)
	var calls atomic.Int32
	failing := func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("store down")
	}

	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(context.Background(), "k", failing); err == nil {
			t.Fatalf("expected loader error")
		}
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2", got)
	}
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewStore[string](time.Minute, 0)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", "v")
	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(61 * time.Second)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStore_MaxEntriesEvictsOldest(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewStore[int](time.Minute, 2)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "a", 1)
	now = now.Add(time.Second)
	store.Set(context.Background(), "b", 2)
	now = now.Add(time.Second)
	store.Set(context.Background(), "c", 3)

	if store.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", store.Len())
	}
	if _, ok := store.Get(context.Background(), "a"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore[int](0, 0)
	store.Set(context.Background(), "team:alpha", 1)
	store.Set(context.Background(), "team:beta", 2)
	store.Set(context.Background(), "config:flags", 3)

	store.DeletePrefix(context.Background(), "team:")
	if store.Len() != 1 {
		t.Fatalf("expected only config entry to remain, got %d", store.Len())
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
