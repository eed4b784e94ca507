package transfers

// HeaderLength is the stream header size the device prepends to every
// isochronous packet that carries stream data. A packet whose reported
// length equals HeaderLength is padding: header only, no payload.
const HeaderLength = 12

// StreamHeader is the bitfield in the second byte of the stream header.
type StreamHeader uint8

// FrameID is the toggle bit: it flips exactly once per video frame and is
// the only frame-boundary signal the device provides.
func (h StreamHeader) FrameID() bool {
	return h&0b00000001 != 0
}

func (h StreamHeader) EndOfFrame() bool {
	return h&0b00000010 != 0
}

func (h StreamHeader) Error() bool {
	return h&0b01000000 != 0
}

func (h StreamHeader) EndOfHeader() bool {
	return h&0b10000000 != 0
}

// PacketResult is one packet of a completed isochronous transfer, handed
// from the completion context to the frame assembler. Data is a view over
// the transfer buffer sized to the packet's actual length, header included.
// OK mirrors the packet's completion status; payload of a failed packet is
// dropped by the assembler without marking the frame.
type PacketResult struct {
	Data []byte
	OK   bool
}

// Header returns the packet's stream header bitfield. Only valid when the
// packet is long enough to carry one.
func (p PacketResult) Header() StreamHeader {
	return StreamHeader(p.Data[1])
}

// Payload returns the bytes following the stream header.
func (p PacketResult) Payload() []byte {
	return p.Data[HeaderLength:]
}

// Completion carries all packets of one completed transfer, in packet
// order, from the transfer ring to the assembler.
type Completion struct {
	Packets []PacketResult
}
