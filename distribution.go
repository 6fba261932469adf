package fitsview

import (
	"fmt"
	"math"
	"strings"
)

// Distribution is a monotonic non-decreasing transfer function on [0, 1]
// with f(0) = 0 and f(1) = 1, applied to normalized pixel values before
// index quantization. The input is clamped by the caller, so implementations
// never see values outside the unit interval.
type Distribution interface {
	Name() string
	Apply(x float64) float64
}

var distributionNames = []string{
	"linear", "log", "power", "sqrt", "squared", "asinh", "sinh", "histeq",
}

// newDistribution returns the stateless distribution for name. The "histeq"
// distribution is data-dependent and constructed by the RGBMapper instead.
func newDistribution(name string) (Distribution, error) {
	switch name {
	case "linear":
		return linearDist{}, nil
	case "log":
		return logDist{}, nil
	case "power":
		return powerDist{gamma: defaultPowerGamma}, nil
	case "sqrt":
		return sqrtDist{}, nil
	case "squared":
		return squaredDist{}, nil
	case "asinh":
		return asinhDist{}, nil
	case "sinh":
		return sinhDist{}, nil
	default:
		return nil, fmt.Errorf("unknown distribution %q (recognized: %s)",
			name, strings.Join(distributionNames, ", "))
	}
}

// DistributionNames lists the recognized distribution algorithm names.
func DistributionNames() []string {
	out := make([]string, len(distributionNames))
	copy(out, distributionNames)
	return out
}

type linearDist struct{}

func (linearDist) Name() string          { return "linear" }
func (linearDist) Apply(x float64) float64 { return x }

type logDist struct{}

func (logDist) Name() string { return "log" }

func (logDist) Apply(x float64) float64 {
	return math.Log1p(logScale*x) / math.Log1p(logScale)
}

type powerDist struct {
	gamma float64
}

func (powerDist) Name() string            { return "power" }
func (p powerDist) Apply(x float64) float64 { return math.Pow(x, p.gamma) }

type sqrtDist struct{}

func (sqrtDist) Name() string            { return "sqrt" }
func (sqrtDist) Apply(x float64) float64 { return math.Sqrt(x) }

type squaredDist struct{}

func (squaredDist) Name() string            { return "squared" }
func (squaredDist) Apply(x float64) float64 { return x * x }

type asinhDist struct{}

func (asinhDist) Name() string { return "asinh" }

func (asinhDist) Apply(x float64) float64 {
	return math.Asinh(asinhSoft*x) / math.Asinh(asinhSoft)
}

type sinhDist struct{}

func (sinhDist) Name() string { return "sinh" }

func (sinhDist) Apply(x float64) float64 {
	return math.Sinh(sinhSoft*x) / math.Sinh(sinhSoft)
}

// histEqDist maps a normalized value to its cumulative histogram fraction,
// computed from a decimated sample of the data within the cut levels. It is
// the only data-dependent distribution and the natural caching point of the
// pipeline: rebuilding it costs a pass over the sample, so the RGBMapper
// keeps it until the data, the cut levels or the algorithm change.
type histEqDist struct {
	cdf []float64 // cdf[i] = fraction of sample below bin i's upper edge
}

func (*histEqDist) Name() string { return "histeq" }

func (h *histEqDist) Apply(x float64) float64 {
	if len(h.cdf) == 0 {
		return x
	}
	pos := x * float64(len(h.cdf)-1)
	i := int(pos)
	if i >= len(h.cdf)-1 {
		return h.cdf[len(h.cdf)-1]
	}
	frac := pos - float64(i)
	return h.cdf[i]*(1-frac) + h.cdf[i+1]*frac
}

// buildHistEq computes the equalization table for data normalized into
// [0, 1] by cuts. Sampling is strided and deterministic. With no valid
// pixels in range the table degenerates to the identity mapping.
func buildHistEq(d *ImageData, cuts CutLevels) *histEqDist {
	counts := make([]int, defaultHistEqBins)
	total := 0
	if d != nil {
		span := cuts.Hi - cuts.Lo
		stride := sampleStride(len(d.Pix), defaultHistEqSamples)
		for i := 0; i < len(d.Pix); i += stride {
			v := d.Pix[i]
			if !isFinite(v) {
				continue
			}
			var x float64
			if span <= 0 {
				if float64(v) < cuts.Lo {
					x = 0
				} else {
					x = 1
				}
			} else {
				x = clamp01((float64(v) - cuts.Lo) / span)
			}
			idx := int(x * float64(defaultHistEqBins-1))
			counts[idx]++
			total++
		}
	}

	cdf := make([]float64, defaultHistEqBins)
	if total == 0 {
		for i := range cdf {
			cdf[i] = float64(i) / float64(defaultHistEqBins-1)
		}
		return &histEqDist{cdf: cdf}
	}
	acc := 0
	for i, c := range counts {
		acc += c
		cdf[i] = float64(acc) / float64(total)
	}
	// Pin the endpoints so the boundary guarantee (lo -> 0, hi -> max index)
	// holds regardless of how the sample fell into the first and last bins.
	cdf[0] = 0
	cdf[len(cdf)-1] = 1
	return &histEqDist{cdf: cdf}
}
