package decode

import "fmt"

// ConvertYUY2 expands packed YUY2 (Y0 U Y1 V, two pixels per four bytes)
// into packed RGB24. Every output byte is overwritten, so dst needs no
// clearing between frames. dst must hold exactly 3 bytes for every 2 bytes
// of src.
func ConvertYUY2(dst, src []byte) error {
	if len(src)%4 != 0 {
		return fmt.Errorf("yuy2 frame length %d is not a whole number of macropixels", len(src))
	}
	if len(dst) != len(src)/2*3 {
		return fmt.Errorf("rgb buffer is %d bytes, want %d for %d bytes of yuy2", len(dst), len(src)/2*3, len(src))
	}
	for i, j := 0, 0; i < len(src); i, j = i+4, j+6 {
		y0, u, y1, v := src[i], src[i+1], src[i+2], src[i+3]
		dst[j+0], dst[j+1], dst[j+2] = yuvToRGB(y0, u, v)
		dst[j+3], dst[j+4], dst[j+5] = yuvToRGB(y1, u, v)
	}
	return nil
}

// yuvToRGB applies the fixed-point BT.601 studio-swing matrix.
func yuvToRGB(y, u, v uint8) (r, g, b uint8) {
	c := int(y) - 16
	d := int(u) - 128
	e := int(v) - 128
	r = clamp((298*c + 409*e + 128) >> 8)
	g = clamp((298*c - 100*d - 208*e + 128) >> 8)
	b = clamp((298*c + 516*d + 128) >> 8)
	return
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
