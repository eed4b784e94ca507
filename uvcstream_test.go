package uvcstream

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hostcam/uvcstream/pkg/descriptors"
)

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.applyDefaults()

	if c.Interface != 1 {
		t.Errorf("Interface = %d, want 1", c.Interface)
	}
	if c.Endpoint != 0x81 {
		t.Errorf("Endpoint = %#x, want 0x81", c.Endpoint)
	}
	if c.Resolution != descriptors.ResolutionQVGA {
		t.Errorf("Resolution = %#x, want QVGA", c.Resolution)
	}
	if c.FrameRate != 15 {
		t.Errorf("FrameRate = %d, want 15", c.FrameRate)
	}
	if c.Transfers != 5 || c.Packets != 12 {
		t.Errorf("pool = %d transfers x %d packets, want 5x12", c.Transfers, c.Packets)
	}
}

func TestConfigDefaults_KeepsExplicitValues(t *testing.T) {
	c := Config{
		Interface:  2,
		Endpoint:   0x82,
		Resolution: descriptors.ResolutionQQVGA,
		FrameRate:  30,
		FrameCount: 100,
		Transfers:  3,
		Packets:    8,
	}
	c.applyDefaults()

	if c.Interface != 2 || c.Endpoint != 0x82 || c.FrameRate != 30 {
		t.Errorf("explicit values overwritten: %+v", c)
	}
	if c.Transfers != 3 || c.Packets != 8 || c.FrameCount != 100 {
		t.Errorf("explicit pool sizing overwritten: %+v", c)
	}
}

func TestErrNegotiationFailedWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: probe set failed: %w", ErrNegotiationFailed, errors.New("pipe stall"))
	if !errors.Is(wrapped, ErrNegotiationFailed) {
		t.Error("wrapped error does not match ErrNegotiationFailed")
	}
}
