package fitsview

import "math"

const lutSize = 256

// Distribution function shape constants. The log scale and hyperbolic
// softening factors are display-tuning values, not physical constants.
const (
	logScale          = 1000.0
	asinhSoft         = 10.0
	sinhSoft          = 3.0
	defaultPowerGamma = 3.0
)

const (
	defaultStdDevSigma     = 2.5
	defaultMedianSpread    = 2.5
	defaultHistogramBins   = 2048
	defaultHistogramPct    = 0.90
	defaultZScaleContrast  = 0.25
	defaultZScaleSamples   = 1000
	defaultZScaleMaxIter   = 5
	defaultZScaleKrej      = 2.5
	defaultZScaleMinPixels = 5
	defaultHistEqBins      = 1024
	defaultHistEqSamples   = 65536
)

const (
	defaultMinScale = 1e-5
	defaultMaxScale = 1e5
)

var defaultZoomRate = math.Sqrt2
