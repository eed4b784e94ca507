package requests

type RequestType uint8

const (
	RequestTypeVideoInterfaceSetRequest RequestType = 0b00100001
	RequestTypeVideoInterfaceGetRequest RequestType = 0b10100001
)

type RequestCode uint8

const (
	RequestCodeUndefined RequestCode = 0x00
	RequestCodeSetCur    RequestCode = 0x01
	RequestCodeGetCur    RequestCode = 0x81
	RequestCodeGetMin    RequestCode = 0x82
	RequestCodeGetMax    RequestCode = 0x83
	RequestCodeGetDef    RequestCode = 0x87
)

// VideoStreamingControlSelector is carried in the high byte of wValue on
// streaming interface control requests.
type VideoStreamingControlSelector uint16

const (
	VideoStreamingControlSelectorUndefined     VideoStreamingControlSelector = 0x00
	VideoStreamingControlSelectorProbeControl  VideoStreamingControlSelector = 0x01
	VideoStreamingControlSelectorCommitControl VideoStreamingControlSelector = 0x02
)

// Value returns the wValue encoding for this selector.
func (s VideoStreamingControlSelector) Value() uint16 {
	return uint16(s) << 8
}
