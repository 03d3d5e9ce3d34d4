package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()

	for _, v := range []string{"a", "b"} {
		if err := q.Enqueue(ctx, "jobs", map[string]string{"v": v}); err != nil {
			t.Fatal(err)
		}
	}
	if q.Len("jobs") != 2 || q.Len("other") != 0 {
		t.Fatalf("unexpected lengths: %d, %d", q.Len("jobs"), q.Len("other"))
	}

	for _, want := range []string{`{"v":"a"}`, `{"v":"b"}`} {
		got, err := q.Dequeue(ctx, "jobs")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}
}

func TestQueue_DequeueHonoursContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Dequeue(ctx, "jobs"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestQueue_Full(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()
	for i := 0; i < queueCapacity; i++ {
		if err := q.Enqueue(ctx, "jobs", i); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := q.Enqueue(ctx, "jobs", "overflow"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestLimiter_FixedWindow(t *testing.T) {
	l := NewLimiter()
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "punch:u1", 3, 10*time.Second)
		if err != nil || !ok {
			t.Fatalf("request %d: expected allowed, got %v, %v", i, ok, err)
		}
	}

	now = now.Add(4 * time.Second)
	ok, retry, _ := l.Allow(ctx, "punch:u1", 3, 10*time.Second)
	if ok {
		t.Fatal("expected fourth request to be limited")
	}
	if retry != 6*time.Second {
		t.Errorf("expected retry after 6s, got %v", retry)
	}

	if ok, _, _ := l.Allow(ctx, "punch:u2", 3, 10*time.Second); !ok {
		t.Error("keys must be limited independently")
	}

	now = now.Add(6 * time.Second)
	if ok, _, _ := l.Allow(ctx, "punch:u1", 3, 10*time.Second); !ok {
		t.Error("expected new window to allow requests")
	}
}
