package descriptors

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// StreamControlSize is the byte length of the probe/commit exchange buffer.
// The device expects the full buffer on every SET_CUR and fills it back on
// GET_CUR, so the same backing slice is reused across the whole negotiation.
const StreamControlSize = 26

// DefaultPayloadSize is what the device reports when asked for the
// configuration negotiated here (944 bytes per isochronous transaction).
const DefaultPayloadSize = 944

// StreamControl is the streaming parameter block exchanged during the
// probe/commit negotiation. Only the leading fields are proposed by the
// host; everything past them is owned by the device and round-tripped
// untouched between GET_CUR and the commit SET_CUR.
type StreamControl struct {
	IntervalSelector uint8
	Format           FormatType
	Resolution       Resolution
	FrameInterval    FrameInterval

	// PayloadSize is the device's negotiated maximum byte count per
	// isochronous transaction, read back from the probe GET_CUR.
	PayloadSize uint32
}

// MarshalInto writes the host-proposed fields into buf. The tail of the
// buffer is deliberately left as-is: after a probe GET_CUR it holds the
// device's clamped values, which the commit SET_CUR must echo back.
func (sc *StreamControl) MarshalInto(buf []byte) error {
	if len(buf) < StreamControlSize {
		return io.ErrShortBuffer
	}
	buf[0] = sc.IntervalSelector
	buf[1] = 0 // reserved
	buf[2] = byte(sc.Format)
	buf[3] = byte(sc.Resolution)
	buf[4] = byte(sc.FrameInterval)
	buf[5] = byte(sc.FrameInterval >> 8)
	buf[6] = byte(sc.FrameInterval >> 16)
	return nil
}

func (sc *StreamControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, StreamControlSize)
	return buf, sc.MarshalInto(buf)
}

func (sc *StreamControl) UnmarshalBinary(buf []byte) error {
	if len(buf) < StreamControlSize {
		return io.ErrShortBuffer
	}
	sc.IntervalSelector = buf[0]
	sc.Format = FormatType(buf[2])
	sc.Resolution = Resolution(buf[3])
	sc.FrameInterval = FrameInterval(uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16)
	sc.PayloadSize = binary.LittleEndian.Uint32(buf[22:26])
	return nil
}

// FrameInterval is a frame period in 100 ns units, little-endian 24 bits
// on the wire.
type FrameInterval uint32

// Frame-interval presets supported by the device. Values are literal
// 100 ns counts, e.g. 333333 * 100 ns = 33.33 ms for 30 fps.
const (
	FrameInterval30FPS FrameInterval = 0x051615
	FrameInterval15FPS FrameInterval = 0x0A2C2A
	FrameInterval10FPS FrameInterval = 0x0F4240
	FrameInterval5FPS  FrameInterval = 0x1E8480
)

func (fi FrameInterval) Duration() time.Duration {
	return time.Duration(fi) * 100 * time.Nanosecond
}

// IntervalForRate maps a frame rate to its preset. Only the rates the
// device advertises are accepted; anything else is a configuration error,
// not something to round.
func IntervalForRate(fps int) (FrameInterval, error) {
	switch fps {
	case 5:
		return FrameInterval5FPS, nil
	case 10:
		return FrameInterval10FPS, nil
	case 15:
		return FrameInterval15FPS, nil
	case 30:
		return FrameInterval30FPS, nil
	}
	return 0, fmt.Errorf("unsupported frame rate: %d fps", fps)
}

// FormatType selects the payload format class.
type FormatType uint8

const FormatUncompressed FormatType = 0x00

// Resolution selects one of the device's fixed frame sizes.
type Resolution uint8

const (
	ResolutionQQVGA Resolution = 0x02 // 160x120
	ResolutionQVGA  Resolution = 0x04 // 320x240
)

func (r Resolution) Dimensions() (width, height int) {
	switch r {
	case ResolutionQQVGA:
		return 160, 120
	case ResolutionQVGA:
		return 320, 240
	}
	return 0, 0
}

// FrameBytes returns the byte count of one uncompressed YUV 4:2:2 frame at
// this resolution (two bytes per pixel).
func (r Resolution) FrameBytes() int {
	w, h := r.Dimensions()
	return w * h * 2
}

func (r Resolution) String() string {
	w, h := r.Dimensions()
	if w == 0 {
		return fmt.Sprintf("Resolution(0x%02x)", uint8(r))
	}
	return fmt.Sprintf("%dx%d", w, h)
}
