package decode

import (
	"image"
	"image/color"
	"testing"
)

// Converts a 2x2 frame into an RGB image and reads it back through the
// image.Image surface, the way an encoder consuming the type would.
func TestRGBThroughImageInterface(t *testing.T) {
	// Top row black, bottom row white, neutral chroma throughout.
	src := []byte{
		16, 128, 16, 128,
		235, 128, 235, 128,
	}
	img := NewRGB(2, 2)
	if err := ConvertYUY2(img.Pix, src); err != nil {
		t.Fatalf("ConvertYUY2 failed: %v", err)
	}

	var i image.Image = img
	if got := i.Bounds(); got != image.Rect(0, 0, 2, 2) {
		t.Errorf("Bounds() = %v, want (0,0)-(2,2)", got)
	}
	if i.ColorModel() != color.RGBAModel {
		t.Error("ColorModel() is not color.RGBAModel")
	}

	for x := 0; x < 2; x++ {
		r, g, b, a := i.At(x, 0).RGBA()
		if r != 0 || g != 0 || b != 0 {
			t.Errorf("At(%d, 0) = %v, want black", x, i.At(x, 0))
		}
		if a != 0xffff {
			t.Errorf("At(%d, 0) alpha = %#x, want opaque", x, a)
		}
		if c := img.RGBAAt(x, 1); c.R != 255 || c.G != 255 || c.B != 255 {
			t.Errorf("RGBAAt(%d, 1) = %+v, want white", x, c)
		}
	}

	// Out-of-bounds reads are zero values, not panics.
	if c := img.RGBAAt(5, 5); c != (color.RGBA{}) {
		t.Errorf("RGBAAt(5, 5) = %+v, want zero", c)
	}
}
