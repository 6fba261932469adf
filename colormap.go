package fitsview

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// RGB is one color-map entry.
type RGB struct {
	R, G, B uint8
}

// ColorMap is a fixed 256-entry table mapping a color index to RGB.
// Maps are immutable once registered; selecting a different map swaps the
// reference atomically from the pipeline's point of view.
type ColorMap struct {
	name string
	clut [lutSize]RGB
}

// Name returns the registered map name.
func (m *ColorMap) Name() string { return m.name }

// At returns the color for index i, clamped to the table bounds.
func (m *ColorMap) At(i int) RGB {
	if i < 0 {
		i = 0
	}
	if i >= lutSize {
		i = lutSize - 1
	}
	return m.clut[i]
}

// IntensityMap is a fixed 256-entry index curve applied before the color
// map, used to reshape or invert the intensity response without touching
// the distribution stage.
type IntensityMap struct {
	name string
	imap [lutSize]uint8
}

// Name returns the registered map name.
func (m *IntensityMap) Name() string { return m.name }

// At returns the remapped index for i, clamped to the table bounds.
func (m *IntensityMap) At(i int) int {
	if i < 0 {
		i = 0
	}
	if i >= lutSize {
		i = lutSize - 1
	}
	return int(m.imap[i])
}

var (
	colorMapRegistry     = map[string]*ColorMap{}
	intensityMapRegistry = map[string]*IntensityMap{}
)

// RegisterColorMap adds m to the registry, replacing any map with the same
// name.
func RegisterColorMap(m *ColorMap) {
	colorMapRegistry[m.name] = m
}

// RegisterIntensityMap adds m to the registry, replacing any map with the
// same name.
func RegisterIntensityMap(m *IntensityMap) {
	intensityMapRegistry[m.name] = m
}

// GetColorMap looks up a registered color map, or reports a configuration
// error naming the recognized maps.
func GetColorMap(name string) (*ColorMap, error) {
	m, ok := colorMapRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown color map %q (recognized: %s)",
			name, strings.Join(ColorMapNames(), ", "))
	}
	return m, nil
}

// GetIntensityMap looks up a registered intensity map, or reports a
// configuration error naming the recognized maps.
func GetIntensityMap(name string) (*IntensityMap, error) {
	m, ok := intensityMapRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown intensity map %q (recognized: %s)",
			name, strings.Join(IntensityMapNames(), ", "))
	}
	return m, nil
}

// ColorMapNames lists registered color maps, sorted.
func ColorMapNames() []string {
	names := maps.Keys(colorMapRegistry)
	sort.Strings(names)
	return names
}

// IntensityMapNames lists registered intensity maps, sorted.
func IntensityMapNames() []string {
	names := maps.Keys(intensityMapRegistry)
	sort.Strings(names)
	return names
}

// GradientStop is one control point for NewGradientColorMap.
type GradientStop struct {
	Pos   float64 // in [0, 1]
	Color RGB
}

// NewGradientColorMap builds a color map by piecewise-linear interpolation
// between control stops, ordered by position.
func NewGradientColorMap(name string, stops []GradientStop) *ColorMap {
	m := &ColorMap{name: name}
	if len(stops) == 0 {
		return m
	}
	for i := 0; i < lutSize; i++ {
		x := float64(i) / float64(lutSize-1)
		m.clut[i] = gradientAt(stops, x)
	}
	return m
}

func gradientAt(stops []GradientStop, x float64) RGB {
	if x <= stops[0].Pos {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if x >= last.Pos {
		return last.Color
	}
	for i := 1; i < len(stops); i++ {
		if x > stops[i].Pos {
			continue
		}
		a, b := stops[i-1], stops[i]
		span := b.Pos - a.Pos
		t := 0.0
		if span > 0 {
			t = (x - a.Pos) / span
		}
		return RGB{
			R: uint8(float64(a.Color.R)*(1-t) + float64(b.Color.R)*t + 0.5),
			G: uint8(float64(a.Color.G)*(1-t) + float64(b.Color.G)*t + 0.5),
			B: uint8(float64(a.Color.B)*(1-t) + float64(b.Color.B)*t + 0.5),
		}
	}
	return last.Color
}

func newCurveIntensityMap(name string, f func(x float64) float64) *IntensityMap {
	m := &IntensityMap{name: name}
	for i := 0; i < lutSize; i++ {
		x := float64(i) / float64(lutSize-1)
		m.imap[i] = uint8(clamp01(f(x))*float64(lutSize-1) + 0.5)
	}
	return m
}

func init() {
	RegisterColorMap(NewGradientColorMap("gray", []GradientStop{
		{0, RGB{0, 0, 0}}, {1, RGB{255, 255, 255}},
	}))
	RegisterColorMap(NewGradientColorMap("heat", []GradientStop{
		{0, RGB{0, 0, 0}}, {0.35, RGB{128, 0, 0}}, {0.7, RGB{255, 64, 0}},
		{0.9, RGB{255, 200, 0}}, {1, RGB{255, 255, 255}},
	}))
	RegisterColorMap(NewGradientColorMap("cool", []GradientStop{
		{0, RGB{0, 0, 64}}, {0.5, RGB{0, 128, 255}}, {1, RGB{255, 255, 255}},
	}))
	RegisterColorMap(NewGradientColorMap("rainbow", []GradientStop{
		{0, RGB{64, 0, 128}}, {0.2, RGB{0, 0, 255}}, {0.4, RGB{0, 255, 255}},
		{0.6, RGB{0, 255, 0}}, {0.8, RGB{255, 255, 0}}, {1, RGB{255, 0, 0}},
	}))
	RegisterColorMap(NewGradientColorMap("red", []GradientStop{
		{0, RGB{0, 0, 0}}, {1, RGB{255, 0, 0}},
	}))
	RegisterColorMap(NewGradientColorMap("green", []GradientStop{
		{0, RGB{0, 0, 0}}, {1, RGB{0, 255, 0}},
	}))
	RegisterColorMap(NewGradientColorMap("blue", []GradientStop{
		{0, RGB{0, 0, 0}}, {1, RGB{0, 0, 255}},
	}))

	RegisterIntensityMap(newCurveIntensityMap("ramp", func(x float64) float64 { return x }))
	RegisterIntensityMap(newCurveIntensityMap("neg", func(x float64) float64 { return 1 - x }))
	RegisterIntensityMap(newCurveIntensityMap("stairs", func(x float64) float64 {
		// 16 flat steps; keeps the endpoints exact.
		return float64(int(x*16)) / 15
	}))
}
