package fitsview

import (
	"errors"
	"math"
	"testing"
	"time"

	"seehuhn.de/go/geom/vec"
)

func newTestViewer(t *testing.T, opts ...func(*ViewerOptions)) *Viewer {
	t.Helper()
	v := NewViewer(opts...)
	t.Cleanup(v.Close)
	return v
}

func TestZoomToStepAlgorithm(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Zoom = StepZoom{}
		o.Settings = Settings{AutoCuts: OptionOff, AutoZoom: OptionOff, AutoCenter: OptionOff}
	})

	v.ZoomTo(4)
	if got := v.Zoom(); got != 4 {
		t.Fatalf("Zoom() = %d, want 4", got)
	}
	if got := v.ScaleMax(); got != 5.0 {
		t.Fatalf("ScaleMax() = %g, want 5.0", got)
	}

	v.ZoomIn(1)
	if got := v.ScaleMax(); got != 6.0 {
		t.Fatalf("after ZoomIn: ScaleMax() = %g, want 6.0", got)
	}
	v.ZoomOut(2)
	if got := v.ScaleMax(); got != 4.0 {
		t.Fatalf("after ZoomOut(2): ScaleMax() = %g, want 4.0", got)
	}
}

func TestZoomFit(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Width = 500
		o.Height = 500
		o.Zoom = StepZoom{}
		o.Settings = Settings{AutoCuts: OptionOff, AutoZoom: OptionOff, AutoCenter: OptionOff}
	})
	d := gradientImage(t, 1000, 2000)
	if err := v.SetImage(d); err != nil {
		t.Fatal(err)
	}

	v.ZoomFit()
	sx, sy := v.ScaleXY()
	if sx != 0.25 || sy != 0.25 {
		t.Fatalf("fit scale = (%g, %g), want (0.25, 0.25)", sx, sy)
	}
	// The nearest discrete level is still reported.
	if got := v.Zoom(); got != (StepZoom{}).LevelFor(0.25) {
		t.Fatalf("Zoom() = %d after fit", got)
	}
}

func TestRedrawCoalescing(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Settings = Settings{AutoCuts: OptionOff, AutoZoom: OptionOff, AutoCenter: OptionOff}
	})
	if err := v.SetImage(gradientImage(t, 8, 8)); err != nil {
		t.Fatal(err)
	}
	_ = v.RenderFrame()

	requests := 0
	v.OnRedrawRequested = append(v.OnRedrawRequested, func() { requests++ })

	// Rapid parameter changes: a single pending redraw.
	for i := 0; i < 25; i++ {
		v.ZoomIn(1)
	}
	if requests != 1 {
		t.Fatalf("redraw notifications = %d, want 1 (coalesced)", requests)
	}
	if !v.RedrawPending() {
		t.Fatal("redraw should be pending")
	}
	_ = v.RenderFrame()
	if v.RedrawPending() {
		t.Fatal("render did not clear the pending redraw")
	}

	v.ZoomOut(1)
	if requests != 2 {
		t.Fatalf("redraw notifications = %d, want 2 after servicing", requests)
	}
}

func TestAutoLevelsAsyncAppliesOnRender(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Settings = Settings{AutoCuts: OptionOff, AutoZoom: OptionOff, AutoCenter: OptionOff}
	})
	if err := v.SetImage(gradientImage(t, 64, 64)); err != nil {
		t.Fatal(err)
	}
	v.SetCutLevels(0, 1)

	if err := v.AutoLevelsAsync("minmax"); err != nil {
		t.Fatal(err)
	}
	waitForPendingCuts(t, v)

	_ = v.RenderFrame()
	cuts := v.CutLevels()
	if cuts.Lo != 0 || cuts.Hi != 4095 {
		t.Fatalf("async cuts = (%g, %g), want (0, 4095)", cuts.Lo, cuts.Hi)
	}
}

func TestSetImageDiscardsStaleEstimation(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Settings = Settings{AutoCuts: OptionOff, AutoZoom: OptionOff, AutoCenter: OptionOff}
	})
	if err := v.SetImage(gradientImage(t, 64, 64)); err != nil {
		t.Fatal(err)
	}
	v.SetCutLevels(0, 1)

	if err := v.AutoLevelsAsync("minmax"); err != nil {
		t.Fatal(err)
	}
	waitForPendingCuts(t, v)

	// Switching images cancels the in-flight result.
	if err := v.SetImage(gradientImage(t, 8, 8)); err != nil {
		t.Fatal(err)
	}
	v.SetCutLevels(0, 1)
	_ = v.RenderFrame()
	cuts := v.CutLevels()
	if cuts.Hi == 4095 {
		t.Fatal("stale background estimation applied after image switch")
	}
}

func waitForPendingCuts(t *testing.T, v *Viewer) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		v.mu.Lock()
		done := v.bgCuts != nil
		v.mu.Unlock()
		if done {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("background estimation did not finish")
}

func TestAutoLevelsAsyncNotifiesRedraw(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Settings = Settings{AutoCuts: OptionOff, AutoZoom: OptionOff, AutoCenter: OptionOff}
	})
	if err := v.SetImage(gradientImage(t, 64, 64)); err != nil {
		t.Fatal(err)
	}
	_ = v.RenderFrame()

	notified := make(chan struct{}, 1)
	v.OnRedrawRequested = append(v.OnRedrawRequested, func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})

	if err := v.AutoLevelsAsync("minmax"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("background estimation did not request a redraw")
	}
	if !v.RedrawPending() {
		t.Fatal("redraw should be pending after the background result")
	}
}

func TestAutoCutsOnceDowngradesToOff(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Settings = Settings{
			AutoCuts:          OptionOnce,
			AutoZoom:          OptionOff,
			AutoCenter:        OptionOff,
			AutoCutsAlgorithm: "minmax",
		}
	})
	if err := v.SetImage(gradientImage(t, 16, 16)); err != nil {
		t.Fatal(err)
	}
	if got := v.CutLevels(); got.Hi != 255 {
		t.Fatalf("first image: cuts = (%g, %g), want hi 255", got.Lo, got.Hi)
	}
	if got := v.Settings().AutoCuts; got != OptionOff {
		t.Fatalf("AutoCuts = %v after once, want off", got)
	}

	if err := v.SetImage(gradientImage(t, 64, 64)); err != nil {
		t.Fatal(err)
	}
	if got := v.CutLevels(); got.Hi != 255 {
		t.Fatalf("second image re-ran autocuts: cuts hi = %g", got.Hi)
	}
}

func TestSetImageAutomaticsSurviveCutsError(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Width = 500
		o.Height = 500
		o.Settings = Settings{
			AutoCuts:          OptionOn,
			AutoZoom:          OptionOn,
			AutoCenter:        OptionOn,
			AutoCutsAlgorithm: "minmax",
		}
	})
	pix := make([]float32, 1000*2000)
	nan := float32(math.NaN())
	for i := range pix {
		pix[i] = nan
	}
	d, err := NewImageData(1000, 2000, pix)
	if err != nil {
		t.Fatal(err)
	}
	_ = v.RenderFrame()

	err = v.SetImage(d)
	if !errors.Is(err, ErrNoValidPixels) {
		t.Fatalf("SetImage error = %v, want ErrNoValidPixels", err)
	}
	if sx, sy := v.ScaleXY(); sx != 0.25 || sy != 0.25 {
		t.Fatalf("auto zoom skipped on cuts error: scale = (%g, %g)", sx, sy)
	}
	p, err := v.Pan(CoordData)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 500 || p.Y != 1000 {
		t.Fatalf("auto center skipped on cuts error: pan = %v", p)
	}
	if !v.RedrawPending() {
		t.Fatal("redraw not requested on cuts error")
	}
}

func TestAutoCutsOnRespectsManualOverride(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Settings = Settings{
			AutoCuts:          OptionOn,
			AutoZoom:          OptionOff,
			AutoCenter:        OptionOff,
			AutoCutsAlgorithm: "minmax",
		}
	})
	if err := v.SetImage(gradientImage(t, 16, 16)); err != nil {
		t.Fatal(err)
	}
	v.SetCutLevels(10, 20)

	if err := v.SetImage(gradientImage(t, 16, 16)); err != nil {
		t.Fatal(err)
	}
	if got := v.CutLevels(); got != (CutLevels{Lo: 10, Hi: 20}) {
		t.Fatalf("OptionOn overrode manual cuts: %+v", got)
	}
}

func TestDefaultScrollBindingZooms(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Zoom = StepZoom{}
		o.Settings = Settings{AutoCuts: OptionOff, AutoZoom: OptionOff, AutoCenter: OptionOff}
	})
	v.ZoomTo(0)
	if !v.Dispatch(Event{Kind: Scroll, Action: "scroll-up"}) {
		t.Fatal("scroll not handled by default bindings")
	}
	if got := v.ScaleMax(); got != 2.0 {
		t.Fatalf("scroll zoom: scale = %g, want 2.0", got)
	}
}

func TestViewerCoordinateScenario(t *testing.T) {
	v := newTestViewer(t, func(o *ViewerOptions) {
		o.Settings = Settings{AutoCuts: OptionOff, AutoZoom: OptionOff, AutoCenter: OptionOff}
	})
	if err := v.SetImage(gradientImage(t, 100, 100)); err != nil {
		t.Fatal(err)
	}
	if err := v.SetPan(vec.Vec2{X: 500.0, Y: 1500.0}, CoordData); err != nil {
		t.Fatal(err)
	}
	p, err := v.Pan(CoordData)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 500.0 || p.Y != 1500.0 {
		t.Fatalf("pan = %v, want (500, 1500)", p)
	}

	v.SetTransforms(true, false, true)
	fx, fy, sw := v.Transforms()
	if !fx || fy || !sw {
		t.Fatalf("transforms = (%v, %v, %v), want (true, false, true)", fx, fy, sw)
	}
}
