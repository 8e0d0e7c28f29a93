package kafka

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ---------------------------------------------------------------------------
// MemoryIdempotencyStore tests
// ---------------------------------------------------------------------------

func TestMemoryIdempotencyStore_AddAndContains(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)
	ctx := context.Background()

	if err := store.Add(ctx, "evt-1"); err != nil {
		t.Fatalf("Add() returned error: %v", err)
	}

	got, err := store.Contains(ctx, "evt-1")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if !got {
		t.Error("Contains(evt-1) = false, want true after Add")
	}
}

func TestMemoryIdempotencyStore_ContainsUnknown(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	got, err := store.Contains(context.Background(), "evt-unknown")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if got {
		t.Error("Contains(evt-unknown) = true, want false for unknown ID")
	}
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(10 * time.Millisecond)
	ctx := context.Background()

	if err := store.Add(ctx, "evt-expire"); err != nil {
		t.Fatalf("Add() returned error: %v", err)
	}

	got, err := store.Contains(ctx, "evt-expire")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if !got {
		t.Error("Contains(evt-expire) = false immediately after Add, want true")
	}

	time.Sleep(20 * time.Millisecond)

	got, err = store.Contains(ctx, "evt-expire")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if got {
		t.Error("Contains(evt-expire) = true after TTL expiry, want false")
	}
}

func TestMemoryIdempotencyStore_Len(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)
	ctx := context.Background()

	if store.Len() != 0 {
		t.Errorf("Len() = %d for new store, want 0", store.Len())
	}

	_ = store.Add(ctx, "a")
	_ = store.Add(ctx, "b")
	_ = store.Add(ctx, "c")

	if store.Len() != 3 {
		t.Errorf("Len() = %d after 3 adds, want 3", store.Len())
	}
}

func TestMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_ = store.Add(ctx, "evt-concurrent")
			_, _ = store.Contains(ctx, "evt-concurrent")
		}()
	}

	wg.Wait()

	if store.Len() != 1 {
		t.Errorf("Len() = %d after concurrent adds of same key, want 1", store.Len())
	}
}

// ---------------------------------------------------------------------------
// IdempotentHandler tests
// ---------------------------------------------------------------------------

// savedEvent builds an Event directly rather than through NewEvent, so the
// event ID is deterministic.
func savedEvent(eventID string) *Event {
	return &Event{
		EventID:     eventID,
		EventType:   "prepped.wishlist.saved",
		AggregateID: "wl-123",
	}
}

func TestIdempotentHandler_FirstCall_ProcessesMessage(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var callCount int32
	inner := func(ctx context.Context, event *Event) error {
		atomic.AddInt32(&callCount, 1)
		return nil
	}

	handler := IdempotentHandler(store, inner, testLogger())

	if err := handler(context.Background(), savedEvent("evt-first")); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if atomic.LoadInt32(&callCount) != 1 {
		t.Errorf("inner handler called %d times, want 1", atomic.LoadInt32(&callCount))
	}
}

func TestIdempotentHandler_DuplicateCall_SkipsMessage(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var callCount int32
	inner := func(ctx context.Context, event *Event) error {
		atomic.AddInt32(&callCount, 1)
		return nil
	}

	handler := IdempotentHandler(store, inner, testLogger())
	event := savedEvent("evt-dup")

	if err := handler(context.Background(), event); err != nil {
		t.Fatalf("first call returned error: %v", err)
	}
	if err := handler(context.Background(), event); err != nil {
		t.Fatalf("second call returned error: %v", err)
	}

	if atomic.LoadInt32(&callCount) != 1 {
		t.Errorf("inner handler called %d times, want 1 (duplicate should be skipped)", atomic.LoadInt32(&callCount))
	}
}

func TestIdempotentHandler_EmptyEventID_PassesThrough(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var callCount int32
	inner := func(ctx context.Context, event *Event) error {
		atomic.AddInt32(&callCount, 1)
		return nil
	}

	handler := IdempotentHandler(store, inner, testLogger())

	// No ID means no deduplication; every delivery is processed.
	event := savedEvent("")
	for i := 0; i < 3; i++ {
		if err := handler(context.Background(), event); err != nil {
			t.Fatalf("call %d returned error: %v", i+1, err)
		}
	}

	if atomic.LoadInt32(&callCount) != 3 {
		t.Errorf("inner handler called %d times, want 3", atomic.LoadInt32(&callCount))
	}
}

func TestIdempotentHandler_HandlerError_DoesNotMarkProcessed(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	handlerErr := errors.New("summary invalidation failed")
	var callCount int32
	inner := func(ctx context.Context, event *Event) error {
		atomic.AddInt32(&callCount, 1)
		return handlerErr
	}

	handler := IdempotentHandler(store, inner, testLogger())
	event := savedEvent("evt-err")

	if err := handler(context.Background(), event); !errors.Is(err, handlerErr) {
		t.Fatalf("expected handlerErr, got: %v", err)
	}

	exists, storeErr := store.Contains(context.Background(), "evt-err")
	if storeErr != nil {
		t.Fatalf("store.Contains() returned error: %v", storeErr)
	}
	if exists {
		t.Error("event ID was stored despite handler error, want not stored")
	}

	// Redelivery after a failure must process again.
	if err := handler(context.Background(), event); !errors.Is(err, handlerErr) {
		t.Fatalf("expected handlerErr on retry, got: %v", err)
	}

	if atomic.LoadInt32(&callCount) != 2 {
		t.Errorf("inner handler called %d times, want 2", atomic.LoadInt32(&callCount))
	}
}

func TestIdempotentHandler_StoreError_ProcessesAnyway(t *testing.T) {
	var callCount int32
	inner := func(ctx context.Context, event *Event) error {
		atomic.AddInt32(&callCount, 1)
		return nil
	}

	handler := IdempotentHandler(&failingIdempotencyStore{}, inner, testLogger())

	// Lookup failure fails open: the message is still processed.
	if err := handler(context.Background(), savedEvent("evt-store-fail")); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if atomic.LoadInt32(&callCount) != 1 {
		t.Errorf("inner handler called %d times, want 1", atomic.LoadInt32(&callCount))
	}
}

func TestIdempotentHandler_DifferentEventIDs_BothProcessed(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var callCount int32
	inner := func(ctx context.Context, event *Event) error {
		atomic.AddInt32(&callCount, 1)
		return nil
	}

	handler := IdempotentHandler(store, inner, testLogger())

	if err := handler(context.Background(), savedEvent("evt-aaa")); err != nil {
		t.Fatalf("handler(evt-aaa) returned error: %v", err)
	}
	if err := handler(context.Background(), savedEvent("evt-bbb")); err != nil {
		t.Fatalf("handler(evt-bbb) returned error: %v", err)
	}

	if atomic.LoadInt32(&callCount) != 2 {
		t.Errorf("inner handler called %d times, want 2", atomic.LoadInt32(&callCount))
	}

	for _, id := range []string{"evt-aaa", "evt-bbb"} {
		exists, err := store.Contains(context.Background(), id)
		if err != nil {
			t.Fatalf("store.Contains(%q) error: %v", id, err)
		}
		if !exists {
			t.Errorf("store.Contains(%q) = false, want true", id)
		}
	}
}

type failingIdempotencyStore struct{}

func (f *failingIdempotencyStore) Contains(_ context.Context, _ string) (bool, error) {
	return false, errors.New("store unavailable")
}

func (f *failingIdempotencyStore) Add(_ context.Context, _ string) error {
	return errors.New("store unavailable")
}
