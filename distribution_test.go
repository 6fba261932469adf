package fitsview

import (
	"math"
	"strings"
	"testing"
)

func TestDistributionEndpoints(t *testing.T) {
	for _, name := range DistributionNames() {
		if name == "histeq" {
			continue
		}
		dist, err := newDistribution(name)
		if err != nil {
			t.Fatal(err)
		}
		if got := dist.Apply(0); got != 0 {
			t.Errorf("%s: f(0) = %g, want 0", name, got)
		}
		if got := dist.Apply(1); math.Abs(got-1) > 1e-12 {
			t.Errorf("%s: f(1) = %g, want 1", name, got)
		}
	}
}

func TestDistributionMonotonic(t *testing.T) {
	const steps = 1000
	for _, name := range DistributionNames() {
		if name == "histeq" {
			continue
		}
		dist, err := newDistribution(name)
		if err != nil {
			t.Fatal(err)
		}
		prev := dist.Apply(0)
		for i := 1; i <= steps; i++ {
			y := dist.Apply(float64(i) / steps)
			if y < prev {
				t.Fatalf("%s: not monotonic at x=%g", name, float64(i)/steps)
			}
			if y < 0 || y > 1 {
				t.Fatalf("%s: f(%g) = %g outside [0,1]", name, float64(i)/steps, y)
			}
			prev = y
		}
	}
}

func TestDistributionUnknown(t *testing.T) {
	_, err := newDistribution("gamma")
	if err == nil {
		t.Fatal("expected error for unknown distribution")
	}
	if !strings.Contains(err.Error(), "asinh") {
		t.Fatalf("error should name the recognized set, got: %v", err)
	}
}

func TestHistEqEndpointsAndMonotonic(t *testing.T) {
	d := randomIntImage(t, 200, 200, 5000, 4)
	h := buildHistEq(d, CutLevels{Lo: 0, Hi: 5000})

	if got := h.Apply(0); got != 0 {
		t.Fatalf("histeq f(0) = %g, want 0", got)
	}
	if got := h.Apply(1); got != 1 {
		t.Fatalf("histeq f(1) = %g, want 1", got)
	}
	prev := 0.0
	for i := 0; i <= 500; i++ {
		y := h.Apply(float64(i) / 500)
		if y < prev {
			t.Fatalf("histeq not monotonic at x=%g", float64(i)/500)
		}
		prev = y
	}
}

func TestHistEqEmptyDataIsIdentity(t *testing.T) {
	nan := float32(math.NaN())
	d, err := NewImageData(2, 1, []float32{nan, nan})
	if err != nil {
		t.Fatal(err)
	}
	h := buildHistEq(d, CutLevels{Lo: 0, Hi: 1})
	for _, x := range []float64{0, 0.25, 0.5, 0.75, 1} {
		if got := h.Apply(x); math.Abs(got-x) > 1e-9 {
			t.Fatalf("identity fallback: f(%g) = %g", x, got)
		}
	}
}
