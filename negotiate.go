package uvcstream

import (
	"fmt"
	"time"

	usb "github.com/kevmo314/go-usb"

	"github.com/hostcam/uvcstream/pkg/descriptors"
	"github.com/hostcam/uvcstream/pkg/requests"
)

const controlTimeout = time.Second

// negotiate runs the probe/commit exchange on the streaming interface and
// selects the alternate setting whose endpoint can carry the negotiated
// payload. Any failure here is fatal for the session; nothing is retried
// and the device is left as the failing step left it.
func (s *Session) negotiate() (*descriptors.StreamControl, error) {
	// Reading the configuration and setting it back moves the device out
	// of the default/addressed state.
	cfg, err := s.handle.GetConfiguration()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read configuration: %w", ErrNegotiationFailed, err)
	}
	if cfg == 0 {
		cfg = 1
	}
	if err := s.handle.SetConfiguration(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to set configuration: %w", ErrNegotiationFailed, err)
	}

	if err := s.handle.DetachKernelDriver(s.cfg.Interface); err != nil {
		// Expected when no kernel driver is bound.
		s.log.Debug("kernel driver not detached", "interface", s.cfg.Interface, "error", err)
	}
	if err := s.handle.ClaimInterface(s.cfg.Interface); err != nil {
		return nil, fmt.Errorf("%w: failed to claim interface %d: %w", ErrNegotiationFailed, s.cfg.Interface, err)
	}

	interval, err := descriptors.IntervalForRate(s.cfg.FrameRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNegotiationFailed, err)
	}
	sc := &descriptors.StreamControl{
		IntervalSelector: 0x01,
		Format:           descriptors.FormatUncompressed,
		Resolution:       s.cfg.Resolution,
		FrameInterval:    interval,
	}

	// One buffer for the whole exchange: the probe GET_CUR fills in the
	// device's clamped values and the commit SET_CUR echoes them back.
	buf := make([]byte, descriptors.StreamControlSize)
	if err := sc.MarshalInto(buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNegotiationFailed, err)
	}

	if err := s.controlRequest(requests.RequestTypeVideoInterfaceSetRequest, requests.RequestCodeSetCur, requests.VideoStreamingControlSelectorProbeControl, buf); err != nil {
		return nil, fmt.Errorf("%w: probe set failed: %w", ErrNegotiationFailed, err)
	}
	if err := s.controlRequest(requests.RequestTypeVideoInterfaceGetRequest, requests.RequestCodeGetCur, requests.VideoStreamingControlSelectorProbeControl, buf); err != nil {
		return nil, fmt.Errorf("%w: probe get failed: %w", ErrNegotiationFailed, err)
	}
	if err := sc.UnmarshalBinary(buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNegotiationFailed, err)
	}
	if sc.PayloadSize == 0 {
		sc.PayloadSize = descriptors.DefaultPayloadSize
	}
	if err := s.controlRequest(requests.RequestTypeVideoInterfaceSetRequest, requests.RequestCodeSetCur, requests.VideoStreamingControlSelectorCommitControl, buf); err != nil {
		return nil, fmt.Errorf("%w: commit set failed: %w", ErrNegotiationFailed, err)
	}

	alt, err := s.findAltSetting(int(sc.PayloadSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNegotiationFailed, err)
	}
	if err := s.handle.SetInterfaceAltSetting(s.cfg.Interface, alt); err != nil {
		return nil, fmt.Errorf("%w: failed to set alternate setting %d: %w", ErrNegotiationFailed, alt, err)
	}
	s.log.Debug("streaming alternate setting selected", "interface", s.cfg.Interface, "alt", alt, "payload_size", sc.PayloadSize)

	return sc, nil
}

func (s *Session) controlRequest(requestType requests.RequestType, request requests.RequestCode, selector requests.VideoStreamingControlSelector, buf []byte) error {
	_, err := s.handle.ControlTransfer(
		uint8(requestType),
		uint8(request),
		selector.Value(),
		uint16(s.cfg.Interface),
		buf,
		controlTimeout,
	)
	return err
}

// findAltSetting picks the lowest-bandwidth alternate setting of the
// streaming interface whose isochronous endpoint still fits payloadSize.
// Zero-endpoint settings are the idle ones and never qualify.
func (s *Session) findAltSetting(payloadSize int) (uint8, error) {
	configDesc, err := s.handle.ConfigDescriptorByValue(0)
	if err != nil {
		return 0, fmt.Errorf("failed to get config descriptor: %w", err)
	}
	iface := configDesc.Interface(s.cfg.Interface)
	if iface == nil {
		return 0, fmt.Errorf("interface %d not found in config descriptor", s.cfg.Interface)
	}
	return selectAltSetting(iface, s.cfg.Endpoint, payloadSize)
}

func selectAltSetting(iface *usb.Interface, endpoint uint8, payloadSize int) (uint8, error) {
	var fallback *usb.InterfaceAltSetting
	for i := range iface.AltSettings {
		alt := &iface.AltSettings[i]
		if alt.NumEndpoints == 0 || len(alt.Endpoints) == 0 {
			continue
		}
		ep := &alt.Endpoints[0]
		if ep.EndpointAddr != endpoint {
			continue
		}
		fallback = alt
		if int(ep.MaxPacketSize&0x07ff) >= payloadSize {
			return alt.AlternateSetting, nil
		}
	}
	if fallback != nil {
		return fallback.AlternateSetting, nil
	}
	return 0, fmt.Errorf("no streaming alternate setting with endpoint 0x%02x", endpoint)
}
