package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestStore_PingConcurrentWithFailOn(t *testing.T) {
	s := New()
	ctx := context.Background()
	down := errors.New("down")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.FailOn("Ping", down)
			s.FailOn("Ping", nil)
		}()
		go func() {
			defer wg.Done()
			if err := s.Ping(ctx); err != nil && !errors.Is(err, down) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.FailOn("Ping", down)
	if err := s.Ping(ctx); !errors.Is(err, down) {
		t.Errorf("expected injected failure, got %v", err)
	}
}
