// Package ppm writes binary PPM (P6) image files.
package ppm

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer emits one numbered P6 file per frame into a fixed directory. The
// header is built once at construction since every frame of a session
// shares the same geometry.
type Writer struct {
	dir    string
	prefix string
	header []byte
	size   int
}

// NewWriter prepares a writer for w by h RGB24 frames. comment is embedded
// in each file's header line; empty is fine.
func NewWriter(dir, prefix, comment string, w, h int) *Writer {
	return &Writer{
		dir:    dir,
		prefix: prefix,
		header: []byte(fmt.Sprintf("P6\n#%s\n%d %d\n255\n", comment, w, h)),
		size:   w * h * 3,
	}
}

// Filename returns the path the frame with the given sequence tag is
// written to. Tags are zero-padded to eight digits so files sort in
// capture order.
func (w *Writer) Filename(seq uint32) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s%08d.ppm", w.prefix, seq))
}

// WriteFrame writes one frame's pixels under its sequence tag, replacing
// any previous file with the same tag.
func (w *Writer) WriteFrame(rgb []byte, seq uint32) error {
	if len(rgb) != w.size {
		return fmt.Errorf("frame is %d bytes, want %d", len(rgb), w.size)
	}
	f, err := os.Create(w.Filename(seq))
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if _, err := f.Write(w.header); err != nil {
		f.Close()
		return fmt.Errorf("failed to write frame header: %w", err)
	}
	if _, err := f.Write(rgb); err != nil {
		f.Close()
		return fmt.Errorf("failed to write frame pixels: %w", err)
	}
	return f.Close()
}
