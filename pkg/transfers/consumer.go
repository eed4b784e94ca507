package transfers

import "log/slog"

// Handoff is one completed frame in flight from the assembler to the
// consumer goroutine. Data aliases the shared frame buffer.
type Handoff struct {
	Data []byte
	Seq  uint32
}

// FrameFunc processes a completed frame. It runs on the consumer goroutine
// while the gate is held, so the data slice is stable for the whole call.
type FrameFunc func(data []byte, seq uint32) error

// Consumer runs the frame processing pipeline on a dedicated goroutine,
// fed one frame at a time through a capacity-one channel. Because the gate
// is released only after FrameFunc returns, a slow pipeline stalls the
// assembler instead of racing it.
type Consumer struct {
	gate   *Gate
	frames chan Handoff
	log    *slog.Logger
}

func NewConsumer(gate *Gate, log *slog.Logger) *Consumer {
	return &Consumer{
		gate:   gate,
		frames: make(chan Handoff, 1),
		log:    log,
	}
}

// ConsumeFrame implements FrameSink. Called from the completion path with
// the gate held; the send blocks until the consumer has drained the
// previous handoff.
func (c *Consumer) ConsumeFrame(data []byte, seq uint32) {
	c.frames <- Handoff{Data: data, Seq: seq}
}

// Run drains handoffs until Close. A failing FrameFunc loses that one
// frame; the stream itself keeps going.
func (c *Consumer) Run(fn FrameFunc) {
	for h := range c.frames {
		if err := fn(h.Data, h.Seq); err != nil {
			c.log.Error("frame dropped", "seq", h.Seq, "error", err)
		}
		c.gate.Release()
	}
}

// Close ends Run once the in-flight handoff, if any, has been processed.
// No ConsumeFrame may follow.
func (c *Consumer) Close() {
	close(c.frames)
}
