package fitsview

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// AutoCuts estimates display cut levels from raw image data. Estimators are
// deterministic for a fixed input: subsampling of large arrays uses a stride
// derived from the input size, never a random source. All estimators skip
// NaN/Inf pixels and report ErrNoValidPixels when nothing remains.
type AutoCuts interface {
	Name() string
	Estimate(d *ImageData) (CutLevels, error)
}

var autoCutsRegistry = map[string]func() AutoCuts{}

// RegisterAutoCuts makes a cut-level estimator available by name.
func RegisterAutoCuts(name string, factory func() AutoCuts) {
	autoCutsRegistry[name] = factory
}

// NewAutoCuts returns a fresh estimator with default parameters, or a
// configuration error naming the recognized algorithms.
func NewAutoCuts(name string) (AutoCuts, error) {
	factory, ok := autoCutsRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown autocuts algorithm %q (recognized: %s)",
			name, strings.Join(sortedNames(maps.Keys(autoCutsRegistry)), ", "))
	}
	return factory(), nil
}

// AutoCutsNames lists the registered estimator names, sorted.
func AutoCutsNames() []string {
	return sortedNames(maps.Keys(autoCutsRegistry))
}

func sortedNames(names []string) []string {
	sort.Strings(names)
	return names
}

func init() {
	RegisterAutoCuts("minmax", func() AutoCuts { return &MinMaxCuts{} })
	RegisterAutoCuts("median", func() AutoCuts { return &MedianCuts{Spread: defaultMedianSpread} })
	RegisterAutoCuts("stddev", func() AutoCuts { return &StdDevCuts{Sigma: defaultStdDevSigma} })
	RegisterAutoCuts("histogram", func() AutoCuts {
		return &HistogramCuts{NumBins: defaultHistogramBins, Pct: defaultHistogramPct}
	})
	RegisterAutoCuts("zscale", func() AutoCuts {
		return &ZScaleCuts{Contrast: defaultZScaleContrast, MaxSamples: defaultZScaleSamples}
	})
}

// MinMaxCuts uses the exact data minimum and maximum.
type MinMaxCuts struct{}

// Name implements AutoCuts.
func (*MinMaxCuts) Name() string { return "minmax" }

// Estimate implements AutoCuts.
func (*MinMaxCuts) Estimate(d *ImageData) (CutLevels, error) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	valid := false
	for _, v := range d.Pix {
		if !isFinite(v) {
			continue
		}
		valid = true
		f := float64(v)
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	if !valid {
		return CutLevels{}, ErrNoValidPixels
	}
	return CutLevels{Lo: lo, Hi: hi}, nil
}

// MedianCuts centers the cut range on the median, with a half-width of
// Spread times the mean absolute deviation from the median.
type MedianCuts struct {
	Spread float64
}

// Name implements AutoCuts.
func (*MedianCuts) Name() string { return "median" }

// Estimate implements AutoCuts.
func (c *MedianCuts) Estimate(d *ImageData) (CutLevels, error) {
	sample := collectFinite(d.Pix, 0)
	if len(sample) == 0 {
		return CutLevels{}, ErrNoValidPixels
	}
	sort.Float64s(sample)
	med := sample[len(sample)/2]
	dev := 0.0
	for _, v := range sample {
		dev += math.Abs(v - med)
	}
	dev /= float64(len(sample))
	spread := c.Spread
	if spread <= 0 {
		spread = defaultMedianSpread
	}
	return CutLevels{Lo: med - spread*dev, Hi: med + spread*dev}, nil
}

// StdDevCuts uses mean +/- Sigma standard deviations.
type StdDevCuts struct {
	Sigma float64
}

// Name implements AutoCuts.
func (*StdDevCuts) Name() string { return "stddev" }

// Estimate implements AutoCuts.
func (c *StdDevCuts) Estimate(d *ImageData) (CutLevels, error) {
	var sum, sumSq float64
	n := 0
	for _, v := range d.Pix {
		if !isFinite(v) {
			continue
		}
		f := float64(v)
		sum += f
		sumSq += f * f
		n++
	}
	if n == 0 {
		return CutLevels{}, ErrNoValidPixels
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	sigma := c.Sigma
	if sigma <= 0 {
		sigma = defaultStdDevSigma
	}
	dev := sigma * math.Sqrt(variance)
	return CutLevels{Lo: mean - dev, Hi: mean + dev}, nil
}

// HistogramCuts builds a NumBins histogram over the full data range and
// keeps the central Pct of the mass; the cut levels are the bin edges
// bounding the retained mass.
type HistogramCuts struct {
	NumBins int
	Pct     float64
}

// Name implements AutoCuts.
func (*HistogramCuts) Name() string { return "histogram" }

// Estimate implements AutoCuts.
func (c *HistogramCuts) Estimate(d *ImageData) (CutLevels, error) {
	mm, err := (&MinMaxCuts{}).Estimate(d)
	if err != nil {
		return CutLevels{}, err
	}
	if mm.Lo == mm.Hi {
		return mm, nil
	}
	nbins := c.NumBins
	if nbins <= 0 {
		nbins = defaultHistogramBins
	}
	pct := c.Pct
	if pct <= 0 || pct > 1 {
		pct = defaultHistogramPct
	}

	counts := make([]int, nbins)
	total := 0
	scale := float64(nbins) / (mm.Hi - mm.Lo)
	for _, v := range d.Pix {
		if !isFinite(v) {
			continue
		}
		idx := int((float64(v) - mm.Lo) * scale)
		if idx >= nbins {
			idx = nbins - 1
		}
		counts[idx]++
		total++
	}

	// Trim (1-pct)/2 of the mass from each tail.
	tail := int(float64(total) * (1 - pct) / 2)
	loBin, hiBin := 0, nbins-1
	for acc := 0; loBin < nbins-1; loBin++ {
		acc += counts[loBin]
		if acc > tail {
			break
		}
	}
	for acc := 0; hiBin > loBin; hiBin-- {
		acc += counts[hiBin]
		if acc > tail {
			break
		}
	}
	binWidth := (mm.Hi - mm.Lo) / float64(nbins)
	return CutLevels{
		Lo: mm.Lo + float64(loBin)*binWidth,
		Hi: mm.Lo + float64(hiBin+1)*binWidth,
	}, nil
}

// ZScaleCuts implements the IRAF zscale estimator: a decimated sample of the
// data is sorted and a sigma-clipped line is fitted to the sample-vs-rank
// relation; the cut levels follow from the fitted slope, the Contrast
// parameter and the sample median, clipped to the sample extrema.
type ZScaleCuts struct {
	Contrast   float64
	MaxSamples int
}

// Name implements AutoCuts.
func (*ZScaleCuts) Name() string { return "zscale" }

// Estimate implements AutoCuts.
func (c *ZScaleCuts) Estimate(d *ImageData) (CutLevels, error) {
	limit := c.MaxSamples
	if limit <= 0 {
		limit = defaultZScaleSamples
	}
	sample := collectFinite(d.Pix, limit)
	if len(sample) == 0 {
		return CutLevels{}, ErrNoValidPixels
	}
	sort.Float64s(sample)

	npix := len(sample)
	zmin := sample[0]
	zmax := sample[npix-1]
	median := sample[npix/2]
	if npix < defaultZScaleMinPixels || zmin == zmax {
		return CutLevels{Lo: zmin, Hi: zmax}, nil
	}

	slope, ok := fitLineClipped(sample)
	if !ok {
		return CutLevels{Lo: zmin, Hi: zmax}, nil
	}

	contrast := c.Contrast
	if contrast <= 0 {
		contrast = defaultZScaleContrast
	}
	slope /= contrast
	center := float64(npix-1) / 2
	lo := math.Max(zmin, median-center*slope)
	hi := math.Min(zmax, median+center*slope)
	return CutLevels{Lo: lo, Hi: hi}, nil
}

// fitLineClipped fits value = intercept + slope*rank by least squares with
// iterative k-sigma rejection. Ranks are recentered on the sample midpoint.
// Reports ok=false when too few points survive clipping.
func fitLineClipped(sorted []float64) (slope float64, ok bool) {
	n := len(sorted)
	center := float64(n-1) / 2
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	var intercept float64
	for iter := 0; iter < defaultZScaleMaxIter; iter++ {
		var sx, sy, sxx, sxy float64
		m := 0
		for i, v := range sorted {
			if !keep[i] {
				continue
			}
			x := float64(i) - center
			sx += x
			sy += v
			sxx += x * x
			sxy += x * v
			m++
		}
		if m < defaultZScaleMinPixels {
			return 0, false
		}
		det := float64(m)*sxx - sx*sx
		if det == 0 {
			return 0, false
		}
		slope = (float64(m)*sxy - sx*sy) / det
		intercept = (sy*sxx - sx*sxy) / det

		// Reject samples more than krej sigma from the fit.
		var ss float64
		for i, v := range sorted {
			if !keep[i] {
				continue
			}
			r := v - (intercept + slope*(float64(i)-center))
			ss += r * r
		}
		sigma := math.Sqrt(ss / float64(m))
		if sigma == 0 {
			break
		}
		rejected := 0
		for i, v := range sorted {
			if !keep[i] {
				continue
			}
			r := math.Abs(v - (intercept + slope*(float64(i)-center)))
			if r > defaultZScaleKrej*sigma {
				keep[i] = false
				rejected++
			}
		}
		if rejected == 0 {
			break
		}
	}
	return slope, true
}

// collectFinite gathers finite values as float64, decimated to at most limit
// entries (0 = no limit) at a deterministic stride.
func collectFinite(pix []float32, limit int) []float64 {
	stride := sampleStride(len(pix), limit)
	out := make([]float64, 0, len(pix)/stride+1)
	for i := 0; i < len(pix); i += stride {
		if isFinite(pix[i]) {
			out = append(out, float64(pix[i]))
		}
	}
	if len(out) == 0 && stride > 1 {
		// The strided walk may have hit only NaN pixels; fall back to a
		// full scan before declaring the data invalid.
		for _, v := range pix {
			if isFinite(v) {
				out = append(out, float64(v))
				if limit > 0 && len(out) >= limit {
					break
				}
			}
		}
	}
	return out
}
