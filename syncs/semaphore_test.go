package syncs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSemaphore(t *testing.T) {
	sem := NewSemaphore(1)
	if err := sem.Acquire(t.Context()); err != nil {
		t.Fatal(err)
	}
	if sem.Held() != 1 {
		t.Fatalf("got %v", sem.Held())
	}

	ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond*10)
	defer cancel()
	if err := sem.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v", err)
	}

	sem.Release()
	if err := sem.Acquire(t.Context()); err != nil {
		t.Fatal(err)
	}
	sem.Release()
}

func TestUnboundedSemaphore(t *testing.T) {
	sem := NewSemaphore(0)
	for range 100 {
		if err := sem.Acquire(t.Context()); err != nil {
			t.Fatal(err)
		}
	}
	sem.Release()
	if sem.Held() != 0 {
		t.Fatal()
	}
}
