package transfers

// Gate is the binary handoff semaphore serializing the single frame buffer
// between the assembler (producer) and the consumer. The assembler acquires
// the gate before the first payload write of each frame and surrenders
// ownership at the frame boundary; the consumer releases it only after the
// frame has been fully processed. While held, the buffer belongs to exactly
// one side.
type Gate struct {
	tokens chan struct{}
}

// NewGate returns an open gate: the first Acquire succeeds immediately.
func NewGate() *Gate {
	g := &Gate{tokens: make(chan struct{}, 1)}
	g.tokens <- struct{}{}
	return g
}

// Acquire blocks until the gate is released by the consumer. Called from
// the completion path, so a slow consumer back-pressures the producer here.
func (g *Gate) Acquire() {
	<-g.tokens
}

// Release returns the buffer to the producer. Releasing an already open
// gate is a protocol violation, not a recoverable condition.
func (g *Gate) Release() {
	select {
	case g.tokens <- struct{}{}:
	default:
		panic("transfers: gate released twice")
	}
}
