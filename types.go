package fitsview

import (
	"errors"
	"math"
)

// ImageData holds a 2-D numeric array with optional metadata. The pipeline
// references it, it never copies pixel storage. Invalid pixels are marked
// with NaN and excluded from statistics.
type ImageData struct {
	Width  int
	Height int
	Pix    []float32 // row-major, len == Width*Height
	Meta   map[string]string

	generation uint64
}

// NewImageData wraps an existing pixel buffer. The buffer length must be
// width*height.
func NewImageData(width, height int, pix []float32) (*ImageData, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("image dimensions must be positive")
	}
	if len(pix) != width*height {
		return nil, errors.New("pixel buffer length does not match dimensions")
	}
	return &ImageData{Width: width, Height: height, Pix: pix, generation: 1}, nil
}

// At returns the value at (x, y). Out-of-bounds coordinates return NaN.
func (d *ImageData) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return float32(math.NaN())
	}
	return d.Pix[y*d.Width+x]
}

// Touch marks the pixel content as changed, invalidating any derived caches
// (histogram equalization tables) on the next use.
func (d *ImageData) Touch() {
	d.generation++
}

// Generation returns the content revision counter.
func (d *ImageData) Generation() uint64 {
	if d == nil {
		return 0
	}
	return d.generation
}

// CutLevels is the (lo, hi) data-value range mapped onto the full display
// intensity range. Lo <= Hi always holds; when they are equal, every value
// at or above Lo maps to the top of the range.
type CutLevels struct {
	Lo float64
	Hi float64
}

// ErrNoValidPixels is reported by cut-level estimators when the input
// contains no finite values to derive statistics from.
var ErrNoValidPixels = errors.New("no valid pixels")
