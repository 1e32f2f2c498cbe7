package queue

import (
	"sync"
	"testing"
)

// testItem is a simple struct for testing the generic queue
type testItem struct {
	ID   int
	Name string
}

func TestQueue_New(t *testing.T) {
	q := New[testItem](0)
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_PushPop(t *testing.T) {
	q := New[testItem](0)

	if _, ok := q.Pop(); ok {
		t.Error("expected empty pop to report false")
	}

	q.Push(testItem{ID: 1, Name: "first"})
	q.Push(testItem{ID: 2, Name: "second"})

	first, ok := q.Pop()
	if !ok || first.ID != 1 || first.Name != "first" {
		t.Errorf("expected {1, first}, got %+v", first)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_Limit(t *testing.T) {
	q := New[int](2)

	if !q.Push(1) || !q.Push(2) {
		t.Fatal("expected pushes under the limit to succeed")
	}
	if q.Push(3) {
		t.Error("expected push at the limit to fail")
	}
	if q.Len() != 2 {
		t.Errorf("expected length 2, got %d", q.Len())
	}

	q.Pop()
	if !q.Push(3) {
		t.Error("expected room after pop")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New[testItem](0)
	q.Push(testItem{ID: 1})
	q.Push(testItem{ID: 2})

	q.Clear()

	if q.Len() != 0 {
		t.Errorf("expected empty queue after clear, got %d", q.Len())
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[testItem](0)
	q.Push(testItem{ID: 1})
	q.Push(testItem{ID: 2})
	q.Push(testItem{ID: 3})

	items := q.Drain()

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, item := range items {
		if item.ID != i+1 {
			t.Errorf("expected ID %d at index %d, got %d", i+1, i, item.ID)
		}
	}
	if q.Len() != 0 {
		t.Error("expected empty queue after Drain")
	}

	q.Push(testItem{ID: 4})
	if items[0].ID != 1 {
		t.Error("drained batch must not alias the live queue")
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[int](0)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.Push(n)
		}(i)
	}

	wg.Wait()

	if q.Len() != 100 {
		t.Errorf("expected length 100, got %d", q.Len())
	}
}
