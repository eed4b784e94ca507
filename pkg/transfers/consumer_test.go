package transfers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Streams several frames through the assembler into a deliberately slow
// consumer. Because the shared buffer is handed off under the gate, every
// delivered frame must still carry its own bytes, not the next frame's.
func TestConsumer_SerializesBufferHandoff(t *testing.T) {
	gate := NewGate()
	consumer := NewConsumer(gate, discardLogger())
	abort := &atomic.Bool{}
	a := NewFrameAssembler(gate, consumer, 16, 0, abort)

	var mu sync.Mutex
	var got [][]byte

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(func(data []byte, seq uint32) error {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			got = append(got, append([]byte(nil), data...))
			mu.Unlock()
			return nil
		})
	}()

	frames := [][]byte{[]byte("frame-aa"), []byte("frame-bb"), []byte("frame-cc")}
	for i, f := range frames {
		a.Process(Completion{Packets: []PacketResult{packet(uint8(i), f)}})
	}
	// A final toggle flushes frame-cc.
	a.Process(Completion{Packets: []PacketResult{packet(3, []byte("tail"))}})

	consumer.Close()
	wg.Wait()

	if len(got) != 3 {
		t.Fatalf("consumed %d frames, want 3", len(got))
	}
	for i, f := range frames {
		if !bytes.Equal(got[i], f) {
			t.Errorf("frame %d = %q, want %q", i, got[i], f)
		}
	}
}

func TestConsumer_FrameErrorDoesNotStopRun(t *testing.T) {
	gate := NewGate()
	consumer := NewConsumer(gate, discardLogger())

	var calls int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(func(data []byte, seq uint32) error {
			calls++
			if seq == 0 {
				return errors.New("disk full")
			}
			return nil
		})
	}()

	gate.Acquire()
	consumer.ConsumeFrame([]byte("x"), 0)
	gate.Acquire()
	consumer.ConsumeFrame([]byte("y"), 1)
	gate.Acquire() // both frames fully processed once this returns
	gate.Release()

	consumer.Close()
	wg.Wait()

	if calls != 2 {
		t.Fatalf("FrameFunc called %d times, want 2", calls)
	}
}
