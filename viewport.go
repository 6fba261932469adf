package fitsview

import (
	"fmt"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Viewport owns scale, pan, flip/swap and rotation state and converts
// between data coordinates and window coordinates.
//
// The forward transform composes, in this fixed order: translate so the pan
// point is the origin, negate flipped axes, exchange axes if swapped, rotate,
// scale, then translate the origin to the window center. The inverse applies
// the inverse operations in reverse order. The order is a contract: changing
// it changes what "rotate before swap" means on screen.
type Viewport struct {
	scaleX, scaleY     float64
	minScale, maxScale float64
	panX, panY         float64
	flipX, flipY       bool
	swapXY             bool
	rotDeg             float64
	winW, winH         int
	limits             rect.Rect
	wcs                WCS

	fwd matrix.Matrix
	inv matrix.Matrix

	OnScaleChanged []func(sx, sy float64)
	OnPanChanged   []func(p vec.Vec2)
}

// NewViewport returns a viewport at 1:1 scale with no flips or rotation and
// default scale limits.
func NewViewport(winW, winH int) *Viewport {
	v := &Viewport{
		scaleX:   1,
		scaleY:   1,
		minScale: defaultMinScale,
		maxScale: defaultMaxScale,
		winW:     winW,
		winH:     winH,
	}
	v.recompose()
	return v
}

// SetWCS attaches a sky-coordinate backend used by the wcs coordinate space.
func (v *Viewport) SetWCS(w WCS) { v.wcs = w }

// SetWindowSize updates the window dimensions the transform centers on.
func (v *Viewport) SetWindowSize(w, h int) {
	v.winW, v.winH = w, h
	v.recompose()
}

// WindowSize returns the current window dimensions.
func (v *Viewport) WindowSize() (w, h int) { return v.winW, v.winH }

// SetScaleLimits bounds future scale values. Existing scales are re-clamped.
func (v *Viewport) SetScaleLimits(min, max float64) error {
	if min <= 0 || max <= 0 || min > max {
		return fmt.Errorf("invalid scale limits (%g, %g)", min, max)
	}
	v.minScale, v.maxScale = min, max
	v.SetScale(v.scaleX, v.scaleY)
	return nil
}

// ScaleLimits returns the configured scale bounds.
func (v *Viewport) ScaleLimits() (min, max float64) { return v.minScale, v.maxScale }

// SetScale sets per-axis scale factors, silently clamping each axis into
// the configured limits. Out-of-range requests are an aberrant viewing
// condition, not an error.
func (v *Viewport) SetScale(sx, sy float64) {
	v.scaleX = clampf(sx, v.minScale, v.maxScale)
	v.scaleY = clampf(sy, v.minScale, v.maxScale)
	v.recompose()
	for _, fn := range v.OnScaleChanged {
		fn(v.scaleX, v.scaleY)
	}
}

// ScaleXY returns the per-axis scale factors.
func (v *Viewport) ScaleXY() (sx, sy float64) { return v.scaleX, v.scaleY }

// ScaleMax returns the larger of the two axis scales.
func (v *Viewport) ScaleMax() float64 {
	if v.scaleX > v.scaleY {
		return v.scaleX
	}
	return v.scaleY
}

// SetPan centers the viewport on a point given in data or WCS space.
func (v *Viewport) SetPan(p vec.Vec2, space CoordSpace) error {
	if space == CoordWCS {
		if v.wcs == nil {
			return ErrNoWCS
		}
		x, y, err := v.wcs.RadecToPix(p.X, p.Y)
		if err != nil {
			return fmt.Errorf("pan point: %w", err)
		}
		p = vec.Vec2{X: x, Y: y}
	}
	v.panX, v.panY = p.X, p.Y
	v.recompose()
	for _, fn := range v.OnPanChanged {
		fn(vec.Vec2{X: v.panX, Y: v.panY})
	}
	return nil
}

// Pan returns the pan point in the requested coordinate space.
func (v *Viewport) Pan(space CoordSpace) (vec.Vec2, error) {
	if space == CoordWCS {
		if v.wcs == nil {
			return vec.Vec2{}, ErrNoWCS
		}
		ra, dec, err := v.wcs.PixToRadec(v.panX, v.panY)
		if err != nil {
			return vec.Vec2{}, fmt.Errorf("pan point: %w", err)
		}
		return vec.Vec2{X: ra, Y: dec}, nil
	}
	return vec.Vec2{X: v.panX, Y: v.panY}, nil
}

// SetTransforms sets the axis flips and the axis swap.
func (v *Viewport) SetTransforms(flipX, flipY, swapXY bool) {
	v.flipX, v.flipY, v.swapXY = flipX, flipY, swapXY
	v.recompose()
}

// Transforms returns the axis flips and the axis swap.
func (v *Viewport) Transforms() (flipX, flipY, swapXY bool) {
	return v.flipX, v.flipY, v.swapXY
}

// Rotate sets the absolute rotation in degrees, normalized to [0, 360).
func (v *Viewport) Rotate(deg float64) {
	v.rotDeg = normDeg(deg)
	v.recompose()
}

// RotateBy adds to the current rotation.
func (v *Viewport) RotateBy(deg float64) {
	v.Rotate(v.rotDeg + deg)
}

// Rotation returns the rotation in degrees, in [0, 360).
func (v *Viewport) Rotation() float64 { return v.rotDeg }

// SetLimits sets the data-space bounding box used by zoom-to-fit.
func (v *Viewport) SetLimits(box rect.Rect) { v.limits = box }

// Limits returns the data-space bounding box.
func (v *Viewport) Limits() rect.Rect { return v.limits }

// DataToWindow maps a data-space point to a window pixel.
func (v *Viewport) DataToWindow(p vec.Vec2) vec.Vec2 {
	x, y := v.fwd.Apply(p.X, p.Y)
	return vec.Vec2{X: x, Y: y}
}

// WindowToData maps a window pixel back to data space.
func (v *Viewport) WindowToData(p vec.Vec2) vec.Vec2 {
	x, y := v.inv.Apply(p.X, p.Y)
	return vec.Vec2{X: x, Y: y}
}

func (v *Viewport) recompose() {
	m := matrix.Translate(-v.panX, -v.panY)
	fx, fy := 1.0, 1.0
	if v.flipX {
		fx = -1
	}
	if v.flipY {
		fy = -1
	}
	if fx != 1 || fy != 1 {
		m = m.Mul(matrix.Scale(fx, fy))
	}
	if v.swapXY {
		m = m.Mul(matrix.Matrix{0, 1, 1, 0, 0, 0})
	}
	if v.rotDeg != 0 {
		m = m.Mul(matrix.RotateDeg(v.rotDeg))
	}
	m = m.Mul(matrix.Scale(v.scaleX, v.scaleY))
	m = m.Mul(matrix.Translate(float64(v.winW)/2, float64(v.winH)/2))
	v.fwd = m
	// Always invertible: scales are bounded away from zero and the
	// remaining factors are orthogonal.
	v.inv = m.Inv()
}
