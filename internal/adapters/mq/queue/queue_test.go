package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/bidhub/internal/domain/model"
)

func newEvent(i int) model.Event {
	return model.NewEvent(model.EventBidPlaced, fmt.Sprintf("bid-%d", i), "admin-1", time.Now())
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if q.Cap() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Cap())
	}

	if !q.Enqueue(ctx, newEvent(1)) {
		t.Fatal("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	event := <-q.Dequeue(ctx)
	if event.ID != "bid_placed:bid-1" {
		t.Errorf("expected bid_placed:bid-1, got %v", event.ID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_CapacityLimit(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !q.Enqueue(ctx, newEvent(i)) {
			t.Fatalf("enqueue %d should succeed", i)
		}
	}
	if q.Enqueue(ctx, newEvent(3)) {
		t.Error("enqueue past capacity should be rejected")
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, newEvent(1)) {
		t.Error("enqueue with a cancelled context should be rejected")
	}
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(5))
	ctx := context.Background()

	q.Enqueue(ctx, newEvent(1))
	q.Enqueue(ctx, newEvent(2))
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	if !q.IsClosed() {
		t.Error("queue should report closed")
	}
	if q.Enqueue(ctx, newEvent(3)) {
		t.Error("enqueue after close should be rejected")
	}

	var got int
	for range q.Dequeue(ctx) {
		got++
	}
	if got != 2 {
		t.Errorf("expected the 2 queued events to remain readable, got %d", got)
	}
}

func TestInMemoryQueue_ConcurrentEnqueue(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Enqueue(ctx, newEvent(w*100+i))
			}
		}(w)
	}
	wg.Wait()

	if l := q.Len(ctx); l != 1000 {
		t.Errorf("expected 1000 queued events, got %d", l)
	}
}
