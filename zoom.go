package fitsview

import "math"

// ZoomAlgorithm is an invertible mapping between an integer zoom level and
// a continuous scale factor. Level 0 is exactly 1:1 and ScaleAt is strictly
// increasing in the level.
type ZoomAlgorithm interface {
	Name() string
	ScaleAt(level int) float64
	LevelFor(scale float64) int
}

// StepZoom zooms in integer multiples: levels 0, 1, 2, ... give scales
// 1, 2, 3, ... and levels -1, -2, ... give 1/2, 1/3, ...
type StepZoom struct{}

// Name implements ZoomAlgorithm.
func (StepZoom) Name() string { return "step" }

// ScaleAt implements ZoomAlgorithm.
func (StepZoom) ScaleAt(level int) float64 {
	if level >= 0 {
		return float64(level + 1)
	}
	return 1 / float64(1-level)
}

// LevelFor implements ZoomAlgorithm.
func (StepZoom) LevelFor(scale float64) int {
	if scale >= 1 {
		return int(math.Round(scale)) - 1
	}
	return 1 - int(math.Round(1/scale))
}

// RateZoom zooms geometrically: scale = Rate^level. Rate must be greater
// than 1; the zero value is replaced by the default rate sqrt(2).
type RateZoom struct {
	Rate float64
}

// Name implements ZoomAlgorithm.
func (RateZoom) Name() string { return "rate" }

func (z RateZoom) rate() float64 {
	if z.Rate > 1 {
		return z.Rate
	}
	return defaultZoomRate
}

// ScaleAt implements ZoomAlgorithm.
func (z RateZoom) ScaleAt(level int) float64 {
	if level == 0 {
		return 1.0
	}
	return math.Pow(z.rate(), float64(level))
}

// LevelFor implements ZoomAlgorithm.
func (z RateZoom) LevelFor(scale float64) int {
	if scale <= 0 {
		return 0
	}
	return int(math.Round(math.Log(scale) / math.Log(z.rate())))
}
