package fitsview

import (
	"math"
	"testing"
)

func TestZoomScaleAtUnity(t *testing.T) {
	algs := []ZoomAlgorithm{StepZoom{}, RateZoom{}, RateZoom{Rate: 2}}
	for _, alg := range algs {
		if got := alg.ScaleAt(0); got != 1.0 {
			t.Errorf("%s: ScaleAt(0) = %g, want exactly 1.0", alg.Name(), got)
		}
	}
}

func TestZoomMonotonic(t *testing.T) {
	algs := []ZoomAlgorithm{StepZoom{}, RateZoom{}, RateZoom{Rate: 3}}
	for _, alg := range algs {
		prev := alg.ScaleAt(-20)
		for n := -19; n <= 20; n++ {
			s := alg.ScaleAt(n)
			if s <= prev {
				t.Fatalf("%s: ScaleAt not strictly increasing at level %d", alg.Name(), n)
			}
			prev = s
		}
	}
}

func TestStepZoomValues(t *testing.T) {
	cases := []struct {
		level int
		scale float64
	}{
		{-3, 1.0 / 4}, {-2, 1.0 / 3}, {-1, 1.0 / 2},
		{0, 1}, {1, 2}, {2, 3}, {4, 5},
	}
	var z StepZoom
	for _, tc := range cases {
		if got := z.ScaleAt(tc.level); got != tc.scale {
			t.Errorf("ScaleAt(%d) = %g, want %g", tc.level, got, tc.scale)
		}
		if got := z.LevelFor(tc.scale); got != tc.level {
			t.Errorf("LevelFor(%g) = %d, want %d", tc.scale, got, tc.level)
		}
	}
}

func TestRateZoomRoundTrip(t *testing.T) {
	z := RateZoom{Rate: math.Sqrt2}
	for n := -12; n <= 12; n++ {
		if got := z.LevelFor(z.ScaleAt(n)); got != n {
			t.Fatalf("LevelFor(ScaleAt(%d)) = %d", n, got)
		}
	}
}

func TestRateZoomDefaultRate(t *testing.T) {
	var z RateZoom
	if got := z.ScaleAt(2); math.Abs(got-2) > 1e-12 {
		t.Fatalf("default rate: ScaleAt(2) = %g, want 2", got)
	}
}
