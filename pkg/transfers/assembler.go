package transfers

import (
	"fmt"
	"sync/atomic"
)

// FrameSink receives completed frames from the assembler. The data slice
// aliases the assembler's frame buffer; ownership travels with the call and
// returns to the assembler only when the gate is released.
type FrameSink interface {
	ConsumeFrame(data []byte, seq uint32)
}

// FrameAssembler folds isochronous completions back into video frames. The
// device marks frame boundaries solely by flipping the header toggle bit,
// so the assembler tracks the last seen value and flushes the accumulated
// buffer whenever it changes. The boundary packet's own payload already
// belongs to the new frame.
//
// A single frame buffer is reused across frames, serialized through the
// gate: the assembler holds the gate while filling, hands it off with the
// frame, and re-acquires it before the next frame's first byte.
type FrameAssembler struct {
	gate *Gate
	sink FrameSink

	buf     []byte
	offset  int
	fid     bool
	holding bool

	seq       uint32
	remaining int
	abort     *atomic.Bool
}

// NewFrameAssembler builds an assembler over a frame buffer of frameBytes.
// After frameCount frames have been flushed the abort flag is raised and
// the transfer ring winds down; frameCount <= 0 streams without limit.
func NewFrameAssembler(gate *Gate, sink FrameSink, frameBytes, frameCount int, abort *atomic.Bool) *FrameAssembler {
	return &FrameAssembler{
		gate:      gate,
		sink:      sink,
		buf:       make([]byte, frameBytes),
		remaining: frameCount,
		abort:     abort,
	}
}

// Process consumes one completed transfer, packet by packet. Failed packets
// and header-only padding packets are dropped without affecting reassembly
// state; in particular a padding packet never triggers a boundary, whatever
// its toggle bit says.
func (a *FrameAssembler) Process(c Completion) {
	for _, p := range c.Packets {
		if len(p.Data) <= HeaderLength {
			continue
		}
		if !p.OK {
			continue
		}
		if fid := p.Header().FrameID(); fid != a.fid {
			a.fid = fid
			a.flush()
		}
		a.append(p.Payload())
	}
}

// flush hands the accumulated frame to the sink and starts a new one. The
// gate is acquired first if this frame never saw a payload byte, so the
// token count stays balanced even for degenerate empty frames.
func (a *FrameAssembler) flush() {
	if !a.holding {
		a.gate.Acquire()
	}
	a.sink.ConsumeFrame(a.buf[:a.offset], a.seq)
	a.holding = false
	a.offset = 0
	a.seq++
	if a.remaining > 0 {
		a.remaining--
		if a.remaining == 0 {
			a.abort.Store(true)
		}
	}
}

func (a *FrameAssembler) append(payload []byte) {
	if !a.holding {
		a.gate.Acquire()
		a.holding = true
	}
	if a.offset+len(payload) > len(a.buf) {
		// The buffer is sized for the negotiated frame; overrunning it
		// means reassembly lost sync with the device.
		panic(fmt.Sprintf("transfers: frame overrun: %d+%d exceeds %d-byte buffer",
			a.offset, len(payload), len(a.buf)))
	}
	copy(a.buf[a.offset:], payload)
	a.offset += len(payload)
}
