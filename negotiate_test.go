package uvcstream

import (
	"testing"

	usb "github.com/kevmo314/go-usb"
)

// streamingConfigDescriptor mirrors the shape of the camera's streaming
// interface: alt 0 is the idle zero-bandwidth setting, the others step up
// in endpoint packet size.
func streamingConfigDescriptor() *usb.ConfigDescriptor {
	altSetting := func(alt uint8, maxPacket uint16) usb.InterfaceAltSetting {
		return usb.InterfaceAltSetting{
			InterfaceNumber:  1,
			AlternateSetting: alt,
			NumEndpoints:     1,
			Endpoints: []usb.Endpoint{
				{EndpointAddr: 0x81, Attributes: 0x05, MaxPacketSize: maxPacket},
			},
		}
	}
	return &usb.ConfigDescriptor{
		ConfigurationValue: 1,
		NumInterfaces:      2,
		Interfaces: []usb.Interface{
			{AltSettings: []usb.InterfaceAltSetting{
				{InterfaceNumber: 0, AlternateSetting: 0},
			}},
			{AltSettings: []usb.InterfaceAltSetting{
				{InterfaceNumber: 1, AlternateSetting: 0, NumEndpoints: 0},
				altSetting(1, 128),
				altSetting(2, 256),
				altSetting(3, 512),
				altSetting(6, 944),
			}},
		},
	}
}

func TestSelectAltSetting_PicksFirstFit(t *testing.T) {
	iface := streamingConfigDescriptor().Interface(1)
	if iface == nil {
		t.Fatal("Interface(1) = nil")
	}

	alt, err := selectAltSetting(iface, 0x81, 944)
	if err != nil {
		t.Fatalf("selectAltSetting failed: %v", err)
	}
	if alt != 6 {
		t.Errorf("alt = %d, want 6 for a 944-byte payload", alt)
	}

	alt, err = selectAltSetting(iface, 0x81, 200)
	if err != nil {
		t.Fatalf("selectAltSetting failed: %v", err)
	}
	if alt != 2 {
		t.Errorf("alt = %d, want 2 for a 200-byte payload", alt)
	}
}

func TestSelectAltSetting_SkipsIdleSetting(t *testing.T) {
	iface := streamingConfigDescriptor().Interface(1)

	// A payload that fits every setting must still land past the
	// zero-bandwidth alt 0.
	alt, err := selectAltSetting(iface, 0x81, 1)
	if err != nil {
		t.Fatalf("selectAltSetting failed: %v", err)
	}
	if alt != 1 {
		t.Errorf("alt = %d, want 1", alt)
	}
}

func TestSelectAltSetting_FallsBackToLargest(t *testing.T) {
	iface := streamingConfigDescriptor().Interface(1)

	// Nothing fits a payload clamped above every endpoint; the scan falls
	// back to the last (largest) matching setting.
	alt, err := selectAltSetting(iface, 0x81, 4096)
	if err != nil {
		t.Fatalf("selectAltSetting failed: %v", err)
	}
	if alt != 6 {
		t.Errorf("alt = %d, want fallback 6", alt)
	}
}

func TestSelectAltSetting_NoMatchingEndpoint(t *testing.T) {
	iface := streamingConfigDescriptor().Interface(1)
	if _, err := selectAltSetting(iface, 0x82, 944); err == nil {
		t.Fatal("selected an alternate setting for an absent endpoint")
	}
}
