package fitsview

import (
	"image"
	"image/color"
	"runtime"
)

// RGBMapper turns raw data values into RGB through four stages:
// normalization against the cut levels, a color distribution function, a
// contrast/shift adjustment, and quantization through the intensity and
// color lookup tables.
//
// A value equal to the low cut always yields color index 0 and a value
// equal to the high cut always yields the top index, for every distribution
// algorithm. An RGBMapper is mutated only through its setters and is not
// safe for concurrent mutation; MapImage parallelizes internally over
// immutable state.
type RGBMapper struct {
	data *ImageData

	cuts     CutLevels
	distName string
	dist     Distribution
	contrast float64
	shift    float64
	cmap     *ColorMap
	imap     *IntensityMap

	// histeq cache, valid for (histGen, histCuts) only.
	histeq   *histEqDist
	histGen  uint64
	histCuts CutLevels

	// Typed observers, invoked synchronously after the corresponding
	// parameter change.
	OnCutLevelsChanged    []func(CutLevels)
	OnDistributionChanged []func(name string)
	OnColorMapChanged     []func(name string)
}

// NewRGBMapper returns a mapper with linear distribution, gray color map,
// ramp intensity map and identity contrast/shift. Cut levels default to
// (0, 0) until set explicitly or via an estimator.
func NewRGBMapper(data *ImageData) *RGBMapper {
	cmap, _ := GetColorMap("gray")
	imap, _ := GetIntensityMap("ramp")
	return &RGBMapper{
		data:     data,
		distName: "linear",
		dist:     linearDist{},
		contrast: 1,
		cmap:     cmap,
		imap:     imap,
	}
}

// SetData points the mapper at new pixel content. Any histogram
// equalization table is rebuilt on next use.
func (m *RGBMapper) SetData(data *ImageData) {
	m.data = data
	m.histeq = nil
}

// Data returns the referenced pixel content.
func (m *RGBMapper) Data() *ImageData { return m.data }

// SetCutLevels updates the display range. A reversed pair is auto-swapped
// rather than rejected. Changing the cuts invalidates the histogram
// equalization cache but not the LUT stages.
func (m *RGBMapper) SetCutLevels(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	m.cuts = CutLevels{Lo: lo, Hi: hi}
	m.histeq = nil
	for _, fn := range m.OnCutLevelsChanged {
		fn(m.cuts)
	}
}

// CutLevels returns the current display range.
func (m *RGBMapper) CutLevels() CutLevels { return m.cuts }

// SetDistribution selects the color distribution algorithm by name.
func (m *RGBMapper) SetDistribution(name string) error {
	if name == m.distName {
		return nil
	}
	if name == "histeq" {
		m.distName = name
		m.dist = nil // built lazily against current data and cuts
		m.histeq = nil
	} else {
		dist, err := newDistribution(name)
		if err != nil {
			return err
		}
		m.distName = name
		m.dist = dist
		m.histeq = nil
	}
	for _, fn := range m.OnDistributionChanged {
		fn(name)
	}
	return nil
}

// Distribution returns the active algorithm name.
func (m *RGBMapper) Distribution() string { return m.distName }

// SetContrastShift sets the stage-3 parameters; contrast 1 and shift 0 are
// the identity. These never touch the histogram equalization cache.
func (m *RGBMapper) SetContrastShift(contrast, shift float64) {
	m.contrast = contrast
	m.shift = shift
}

// ContrastShift returns the stage-3 parameters.
func (m *RGBMapper) ContrastShift() (contrast, shift float64) {
	return m.contrast, m.shift
}

// SetColorMap selects the final color table by registered name.
func (m *RGBMapper) SetColorMap(name string) error {
	cm, err := GetColorMap(name)
	if err != nil {
		return err
	}
	m.cmap = cm
	for _, fn := range m.OnColorMapChanged {
		fn(name)
	}
	return nil
}

// ColorMapName returns the active color map name.
func (m *RGBMapper) ColorMapName() string { return m.cmap.Name() }

// SetIntensityMap selects the index curve by registered name.
func (m *RGBMapper) SetIntensityMap(name string) error {
	im, err := GetIntensityMap(name)
	if err != nil {
		return err
	}
	m.imap = im
	return nil
}

// IntensityMapName returns the active intensity map name.
func (m *RGBMapper) IntensityMapName() string { return m.imap.Name() }

// activeDist returns the distribution to apply, building the histogram
// equalization table if it is stale.
func (m *RGBMapper) activeDist() Distribution {
	if m.distName != "histeq" {
		return m.dist
	}
	gen := m.data.Generation()
	if m.histeq == nil || m.histGen != gen || m.histCuts != m.cuts {
		m.histeq = buildHistEq(m.data, m.cuts)
		m.histGen = gen
		m.histCuts = m.cuts
	}
	return m.histeq
}

// Index maps a raw value to its final color index in [0, 255].
func (m *RGBMapper) Index(v float64) int {
	var x float64
	switch {
	case m.cuts.Hi > m.cuts.Lo:
		x = clamp01((v - m.cuts.Lo) / (m.cuts.Hi - m.cuts.Lo))
	case v >= m.cuts.Lo:
		x = 1
	default:
		x = 0
	}
	y := m.activeDist().Apply(x)
	z := clamp01((y-0.5)*m.contrast + 0.5 + m.shift)
	return m.imap.At(int(z*float64(lutSize-1) + 0.5))
}

// Map maps a raw value to its final color.
func (m *RGBMapper) Map(v float64) RGB {
	return m.cmap.At(m.Index(v))
}

// MapImage renders the full referenced data through the pipeline into an
// RGBA image. Rows are mapped in parallel batches. Invalid (NaN) pixels
// come out fully transparent.
func (m *RGBMapper) MapImage() *image.RGBA {
	d := m.data
	out := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	m.activeDist() // force the cache build outside the workers

	workers := runtime.NumCPU()
	sem := make(chan struct{}, workers)
	rowsPerBatch := (d.Height + 8*workers - 1) / (8 * workers)
	if rowsPerBatch < 1 {
		rowsPerBatch = 1
	}
	for y0 := 0; y0 < d.Height; y0 += rowsPerBatch {
		y1 := y0 + rowsPerBatch
		if y1 > d.Height {
			y1 = d.Height
		}
		sem <- struct{}{}
		go func(y0, y1 int) {
			defer func() { <-sem }()
			for y := y0; y < y1; y++ {
				row := d.Pix[y*d.Width : (y+1)*d.Width]
				for x, v := range row {
					if !isFinite(v) {
						out.SetRGBA(x, y, color.RGBA{})
						continue
					}
					c := m.cmap.At(m.Index(float64(v)))
					out.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
				}
			}
		}(y0, y1)
	}
	for i := 0; i < workers; i++ {
		sem <- struct{}{}
	}
	return out
}
