package transfers

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGate_FirstAcquireSucceeds(t *testing.T) {
	g := NewGate()
	done := make(chan struct{})
	go func() {
		g.Acquire()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("first Acquire did not return on a fresh gate")
	}
}

func TestGate_AcquireWaitsForRelease(t *testing.T) {
	g := NewGate()
	g.Acquire()

	var released atomic.Bool
	done := make(chan struct{})
	go func() {
		g.Acquire()
		if !released.Load() {
			t.Error("Acquire returned before Release")
		}
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	released.Store(true)
	g.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after Release")
	}
}

func TestGate_DoubleReleasePanics(t *testing.T) {
	g := NewGate()
	defer func() {
		if recover() == nil {
			t.Fatal("no panic on releasing an open gate")
		}
	}()
	g.Release()
}
