package util

import (
	"errors"
	"sync"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[string]()
	for _, s := range []string{"a", "b", "c"} {
		if err := q.Push(s); err != nil {
			t.Fatal(err)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("expected len 3, got %d", q.Len())
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.TryPop()
		if !ok || got != want {
			t.Fatalf("TryPop = %q,%v, want %q", got, ok, want)
		}
	}
	if _, ok := q.TryPop(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue[int]()
	_ = q.Push(1)
	q.Close()

	if err := q.Push(2); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
	// Items queued before Close are still delivered.
	if v, ok := q.TryPop(); !ok || v != 1 {
		t.Fatalf("TryPop = %d,%v, want 1,true", v, ok)
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()
	const producers, each = 8, 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				_ = q.Push(i)
			}
		}()
	}
	wg.Wait()

	n := 0
	for {
		if _, ok := q.TryPop(); !ok {
			break
		}
		n++
	}
	if n != producers*each {
		t.Fatalf("drained %d items, want %d", n, producers*each)
	}
}
