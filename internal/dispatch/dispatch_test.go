package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsTasks(t *testing.T) {
	d := New(Config{Workers: 2, QueueBound: 8})
	defer d.Close()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		ok := d.Submit(func() {
			count.Add(1)
			wg.Done()
		})
		if !ok {
			t.Fatal("Submit rejected while open")
		}
	}
	wg.Wait()

	if got := count.Load(); got != 20 {
		t.Errorf("ran %d tasks, want 20", got)
	}
}

func TestSubmitAfterCloseDrops(t *testing.T) {
	var drops atomic.Int32
	d := New(Config{Workers: 1, QueueBound: 1, OnDrop: func() { drops.Add(1) }})
	d.Close()

	if d.Submit(func() {}) {
		t.Error("Submit should report false after Close")
	}
	if drops.Load() != 1 {
		t.Errorf("drops = %d, want 1", drops.Load())
	}
}

func TestCloseIdempotent(t *testing.T) {
	d := New(Config{Workers: 1, QueueBound: 1})
	d.Close()
	d.Close()
}

func TestPanicRecovered(t *testing.T) {
	d := New(Config{Workers: 1, QueueBound: 4})
	defer d.Close()

	d.Submit(func() { panic("listener blew up") })

	// The worker must survive the panic and keep serving.
	done := make(chan struct{})
	d.Submit(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}
}
