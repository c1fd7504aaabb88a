package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Saver writes RGBA8 texture readbacks as PNG files named after the moment
// they were taken.
type Saver struct {
	Dir string
	Now func() time.Time

	mu   sync.Mutex
	last int64
}

// NewSaver returns a Saver writing into dir.
func NewSaver(dir string) *Saver {
	return &Saver{Dir: dir, Now: time.Now}
}

// stamp returns a nanosecond timestamp strictly greater than any previously
// returned, so two captures in the same clock tick never share a name.
func (s *Saver) stamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now
	if now == nil {
		now = time.Now
	}
	t := now().UnixNano()
	if t <= s.last {
		t = s.last + 1
	}
	s.last = t
	return t
}

// Path returns the file name a capture taken now would be written to.
func (s *Saver) Path() string {
	return filepath.Join(s.Dir, fmt.Sprintf("az_shot_%d.png", s.stamp()))
}

// Save encodes a size x size RGBA8 image, bottom row first as GL returns it,
// and writes it to a new file. The path is returned even on failure.
func (s *Saver) Save(pixels []byte, size int) (string, error) {
	path := s.Path()
	if len(pixels) != size*size*4 {
		return path, fmt.Errorf("got %d bytes for a %dx%d RGBA image", len(pixels), size, size)
	}

	img := vflip(&image.RGBA{
		Pix:    pixels,
		Stride: size * 4,
		Rect:   image.Rect(0, 0, size, size),
	})

	f, err := os.Create(path)
	if err != nil {
		return path, err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return path, err
	}
	return path, f.Close()
}

// vflip vertically flips the provided RGBA image. GL reads rows from the
// bottom up; PNG stores them top down.
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(bounds)
	height := bounds.Dy()

	rowSize := bounds.Dx() * 4 // 4 bytes per pixel (RGBA)
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}
