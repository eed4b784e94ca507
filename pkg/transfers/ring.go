package transfers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	usb "github.com/kevmo314/go-usb"
)

// ErrSubmitFailed marks a transfer that could not be returned to the
// device. The ring cannot recover from it: the pipeline halts.
var ErrSubmitFailed = errors.New("failed to resubmit isochronous transfer")

// isoTransfer is the slice of *usb.IsochronousTransfer the ring drives,
// kept narrow so the recycle logic is testable without a device.
type isoTransfer interface {
	Submit() error
	Wait() error
	Cancel() error
	Packets() []usb.IsoPacketDescriptor
	IsoPacketBuffer(i int) ([]byte, error)
}

// TransferRing keeps a fixed pool of isochronous transfers in flight
// against the streaming endpoint. Completions are delivered in submit
// order, one transfer at a time, synchronously on the Run goroutine; the
// transfer is resubmitted only after its completion has been fully
// consumed, so packet views stay valid for the whole delivery.
type TransferRing struct {
	transfers []isoTransfer
	abort     *atomic.Bool
}

// NewTransferRing creates and submits depth transfers of packets packets of
// packetSize bytes each. On failure every already submitted transfer is
// cancelled before returning.
func NewTransferRing(handle *usb.DeviceHandle, endpoint uint8, depth, packets, packetSize int, abort *atomic.Bool) (*TransferRing, error) {
	r := &TransferRing{
		transfers: make([]isoTransfer, depth),
		abort:     abort,
	}

	for i := 0; i < depth; i++ {
		tx, err := handle.NewIsochronousTransfer(endpoint, packets, packetSize)
		if err != nil {
			for j := 0; j < i; j++ {
				r.transfers[j].Cancel()
			}
			return nil, fmt.Errorf("failed to create isochronous transfer: %w", err)
		}
		if err := tx.Submit(); err != nil {
			for j := 0; j < i; j++ {
				r.transfers[j].Cancel()
			}
			return nil, fmt.Errorf("failed to submit isochronous transfer: %w", err)
		}
		r.transfers[i] = tx
	}

	return r, nil
}

// Run services completions round-robin until the abort flag is raised, the
// context ends, or a transfer cannot be resubmitted. deliver is called once
// per completed transfer with bounds-checked packet views over the transfer
// buffer; the views are invalid after deliver returns.
func (r *TransferRing) Run(ctx context.Context, deliver func(Completion)) error {
	for i := 0; ; i = (i + 1) % len(r.transfers) {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := r.transfers[i]
		if err := tx.Wait(); err != nil {
			return fmt.Errorf("isochronous transfer failed: %w", err)
		}

		deliver(r.completion(tx))

		if r.abort.Load() {
			return nil
		}
		if err := tx.Submit(); err != nil {
			return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
		}
	}
}

// completion snapshots a finished transfer into per-packet views. A packet
// whose reported length overruns its buffer, or whose buffer cannot be
// mapped, is carried as a failed packet rather than a truncated one.
func (r *TransferRing) completion(tx isoTransfer) Completion {
	packets := tx.Packets()
	c := Completion{Packets: make([]PacketResult, len(packets))}
	for i, pkt := range packets {
		pr := PacketResult{OK: pkt.Status == 0}
		if pkt.ActualLength > 0 {
			data, err := tx.IsoPacketBuffer(i)
			switch {
			case err != nil:
				pr.OK = false
			case int(pkt.ActualLength) > len(data):
				pr.OK = false
			default:
				pr.Data = data[:pkt.ActualLength]
			}
		}
		c.Packets[i] = pr
	}
	return c
}

// Close cancels every in-flight transfer and waits for the cancellations
// to land.
func (r *TransferRing) Close() error {
	for _, tx := range r.transfers {
		tx.Cancel()
	}
	for _, tx := range r.transfers {
		tx.Wait() // Ignore error - we're closing
	}
	return nil
}
