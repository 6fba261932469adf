package fitsview

import (
	"image"
	"image/color"
	"math"
	"runtime"

	xdraw "golang.org/x/image/draw"
	"seehuhn.de/go/geom/vec"
)

// Sampling selects how data values are sampled when window pixels are
// inverse-mapped into data space.
type Sampling int

const (
	// SamplingNearest picks the nearest data pixel.
	SamplingNearest Sampling = iota
	// SamplingBilinear blends the four surrounding data pixels. A NaN
	// neighbour poisons the blend, so bilinear falls back to nearest at
	// invalid-pixel borders.
	SamplingBilinear
)

// RenderFrame produces a window-sized RGBA frame: every window pixel is
// mapped back to data space through the viewport and colored through the
// mapper. Window pixels falling outside the data are transparent.
//
// When the transform is scale-only (no flips, no swap, no rotation) the
// frame is instead produced by mapping the data once and rescaling it with
// the x/image bilinear scaler, which is considerably cheaper at large zoom.
func RenderFrame(m *RGBMapper, v *Viewport, sampling Sampling) *image.RGBA {
	w, h := v.WindowSize()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	d := m.Data()
	if d == nil || w <= 0 || h <= 0 {
		return out
	}

	flipX, flipY, swapXY := v.Transforms()
	if sampling == SamplingBilinear && !flipX && !flipY && !swapXY && v.Rotation() == 0 {
		renderScaled(m, v, out)
		return out
	}

	m.activeDist() // build any histeq table before the workers start

	workers := runtime.NumCPU()
	sem := make(chan struct{}, workers)
	rowsPerBatch := (h + 8*workers - 1) / (8 * workers)
	if rowsPerBatch < 1 {
		rowsPerBatch = 1
	}
	for y0 := 0; y0 < h; y0 += rowsPerBatch {
		y1 := y0 + rowsPerBatch
		if y1 > h {
			y1 = h
		}
		sem <- struct{}{}
		go func(y0, y1 int) {
			defer func() { <-sem }()
			for wy := y0; wy < y1; wy++ {
				for wx := 0; wx < w; wx++ {
					p := v.WindowToData(vec.Vec2{X: float64(wx) + 0.5, Y: float64(wy) + 0.5})
					val, ok := sampleData(d, p.X, p.Y, sampling)
					if !ok {
						out.SetRGBA(wx, wy, color.RGBA{})
						continue
					}
					c := m.Map(val)
					out.SetRGBA(wx, wy, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
				}
			}
		}(y0, y1)
	}
	for i := 0; i < workers; i++ {
		sem <- struct{}{}
	}
	return out
}

// renderScaled maps the full data once, then scales the result into the
// window around the pan point.
func renderScaled(m *RGBMapper, v *Viewport, out *image.RGBA) {
	src := m.MapImage()
	w, h := v.WindowSize()

	// Window rectangle of the data bounds under the current transform.
	tl := v.DataToWindow(vec.Vec2{X: 0, Y: 0})
	br := v.DataToWindow(vec.Vec2{X: float64(src.Rect.Dx()), Y: float64(src.Rect.Dy())})
	dstRect := image.Rect(
		int(math.Floor(tl.X)), int(math.Floor(tl.Y)),
		int(math.Ceil(br.X)), int(math.Ceil(br.Y)),
	).Intersect(image.Rect(0, 0, w, h))
	if dstRect.Empty() {
		return
	}

	// Source rectangle corresponding to the clipped window rectangle.
	sTL := v.WindowToData(vec.Vec2{X: float64(dstRect.Min.X), Y: float64(dstRect.Min.Y)})
	sBR := v.WindowToData(vec.Vec2{X: float64(dstRect.Max.X), Y: float64(dstRect.Max.Y)})
	srcRect := image.Rect(
		int(math.Floor(sTL.X)), int(math.Floor(sTL.Y)),
		int(math.Ceil(sBR.X)), int(math.Ceil(sBR.Y)),
	).Intersect(src.Rect)
	if srcRect.Empty() {
		return
	}

	xdraw.BiLinear.Scale(out, dstRect, src, srcRect, xdraw.Src, nil)
}

// sampleData reads the data value at a fractional coordinate. ok is false
// outside the array or on invalid pixels.
func sampleData(d *ImageData, x, y float64, sampling Sampling) (float64, bool) {
	if sampling == SamplingBilinear {
		x0 := int(math.Floor(x - 0.5))
		y0 := int(math.Floor(y - 0.5))
		fx := (x - 0.5) - float64(x0)
		fy := (y - 0.5) - float64(y0)
		v00 := d.At(x0, y0)
		v10 := d.At(x0+1, y0)
		v01 := d.At(x0, y0+1)
		v11 := d.At(x0+1, y0+1)
		if isFinite(v00) && isFinite(v10) && isFinite(v01) && isFinite(v11) {
			top := float64(v00)*(1-fx) + float64(v10)*fx
			bot := float64(v01)*(1-fx) + float64(v11)*fx
			return top*(1-fy) + bot*fy, true
		}
		// fall through to nearest
	}
	xi := int(math.Floor(x))
	yi := int(math.Floor(y))
	v := d.At(xi, yi)
	if !isFinite(v) {
		return 0, false
	}
	return float64(v), true
}
