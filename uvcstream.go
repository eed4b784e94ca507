// Package uvcstream drives a fixed-function UVC webcam over a raw usbfs
// file descriptor: it negotiates the stream parameters, keeps a pool of
// isochronous transfers in flight, and reassembles the packet stream into
// complete video frames.
package uvcstream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	usb "github.com/kevmo314/go-usb"

	"github.com/hostcam/uvcstream/internal/logging"
	"github.com/hostcam/uvcstream/pkg/descriptors"
	"github.com/hostcam/uvcstream/pkg/transfers"
)

// Config selects what the session negotiates and how deep the transfer
// pool runs. The zero value is filled in with the device's defaults.
type Config struct {
	// Interface is the video streaming interface number.
	Interface uint8
	// Endpoint is the isochronous IN endpoint address.
	Endpoint uint8
	// Resolution and FrameRate are proposed during negotiation; the
	// device may clamp them.
	Resolution descriptors.Resolution
	FrameRate  int
	// FrameCount stops the stream after that many frames; <= 0 streams
	// until the context ends.
	FrameCount int
	// Transfers is the number of isochronous transfers kept in flight,
	// each carrying Packets packets.
	Transfers int
	Packets   int
}

func (c *Config) applyDefaults() {
	if c.Interface == 0 {
		c.Interface = 1
	}
	if c.Endpoint == 0 {
		c.Endpoint = 0x81
	}
	if c.Resolution == 0 {
		c.Resolution = descriptors.ResolutionQVGA
	}
	if c.FrameRate == 0 {
		c.FrameRate = 15
	}
	if c.Transfers == 0 {
		c.Transfers = 5
	}
	if c.Packets == 0 {
		c.Packets = 12
	}
}

// Driver owns the device lifecycle: it attaches sessions to raw device
// file descriptors and tears them down again.
type Driver struct {
	log *slog.Logger
}

func NewDriver() *Driver {
	return &Driver{log: logging.GetLogger("driver")}
}

// Session is one attached device streaming under one negotiated
// configuration. A session is built by [Driver.Attach] and is good for a
// single Stream call.
type Session struct {
	ID      uuid.UUID
	handle  *usb.DeviceHandle
	cfg     Config
	control *descriptors.StreamControl
	abort   atomic.Bool
	closed  atomic.Bool
	log     *slog.Logger
}

// Attach wraps an already open usbfs file descriptor, claims the streaming
// interface and runs the probe/commit negotiation. A negotiation failure
// is terminal: the handle is closed and the caller gets
// [ErrNegotiationFailed], never a partially configured session.
func (d *Driver) Attach(fd uintptr, cfg Config) (*Session, error) {
	cfg.applyDefaults()

	handle, err := usb.WrapSysDevice(int(fd))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap device fd: %w", err)
	}

	s := &Session{
		ID:     uuid.New(),
		handle: handle,
		cfg:    cfg,
	}
	s.log = logging.GetLogger("session").With("session_id", s.ID)

	control, err := s.negotiate()
	if err != nil {
		handle.Close()
		d.log.Error("attach failed", "error", err)
		return nil, err
	}
	s.control = control
	s.log.Info("device attached",
		"resolution", control.Resolution.String(),
		"interval", control.FrameInterval.Duration(),
		"payload_size", control.PayloadSize)

	return s, nil
}

// Remove tears the session down in response to device removal.
func (d *Driver) Remove(s *Session) error {
	return s.Close()
}

// Suspend is invoked when the host suspends the bus. The device keeps its
// negotiated state, so there is nothing to tear down.
func (d *Driver) Suspend(s *Session) {
	s.log.Info("device suspended")
}

// Resume is the counterpart of Suspend.
func (d *Driver) Resume(s *Session) {
	s.log.Info("device resumed")
}

// Control returns the negotiated stream parameters.
func (s *Session) Control() descriptors.StreamControl {
	return *s.control
}

// Stream captures frames and hands each completed one to fn on a dedicated
// consumer goroutine. The producer and fn share one frame buffer,
// serialized so the next frame's first byte is not written until fn has
// returned. Stream returns once FrameCount frames have been captured, the
// context ends, or a transfer cannot be resubmitted.
func (s *Session) Stream(ctx context.Context, fn transfers.FrameFunc) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	gate := transfers.NewGate()
	consumer := transfers.NewConsumer(gate, s.log)
	assembler := transfers.NewFrameAssembler(gate, consumer,
		s.control.Resolution.FrameBytes(), s.cfg.FrameCount, &s.abort)

	ring, err := transfers.NewTransferRing(s.handle, s.cfg.Endpoint,
		s.cfg.Transfers, s.cfg.Packets, int(s.control.PayloadSize), &s.abort)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(fn)
	}()

	s.log.Info("streaming started", "transfers", s.cfg.Transfers, "packets", s.cfg.Packets)
	runErr := ring.Run(ctx, assembler.Process)
	ring.Close()
	consumer.Close()
	wg.Wait()

	if runErr != nil {
		s.log.Error("streaming stopped", "error", runErr)
		return runErr
	}
	s.log.Info("streaming finished")
	return nil
}

// Close releases the streaming interface and the underlying handle. Safe
// to call more than once.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.abort.Store(true)
	if err := s.handle.ReleaseInterface(s.cfg.Interface); err != nil {
		s.log.Debug("failed to release interface", "error", err)
	}
	s.log.Info("device removed")
	return s.handle.Close()
}
