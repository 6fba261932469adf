package fitsview

import (
	"context"
	"image"
	"sync"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// ViewerOptions configures a new Viewer.
type ViewerOptions struct {
	Width    int
	Height   int
	Zoom     ZoomAlgorithm
	Sampling Sampling
	Settings Settings
}

// Viewer is the external surface of the core: it owns one RGBMapper, one
// Viewport and one Dispatcher and keeps zoom level, scale and settings
// consistent. All mutation is synchronous on the caller's goroutine; only
// cut-level estimation may run in the background, and its result is applied
// atomically when the next frame is requested. OnRedrawRequested callbacks
// may therefore fire from the estimation goroutine and must be safe to call
// off the input thread.
type Viewer struct {
	mapper     *RGBMapper
	viewport   *Viewport
	dispatcher *Dispatcher
	zoomAlg    ZoomAlgorithm
	zoomLevel  int
	sampling   Sampling
	settings   Settings

	userCuts bool // user set cut levels manually; respected by OptionOn

	mu            sync.Mutex // guards bgCancel, bgCuts and redrawPending
	bgCancel      context.CancelFunc
	bgCuts        *CutLevels // computed in background, not yet applied
	redrawPending bool

	OnRedrawRequested []func()
}

// NewViewer builds a viewer with a 512x512 window, rate zoom, nearest
// sampling and default settings unless overridden.
func NewViewer(opts ...func(*ViewerOptions)) *Viewer {
	opt := ViewerOptions{
		Width:    512,
		Height:   512,
		Zoom:     RateZoom{},
		Sampling: SamplingNearest,
		Settings: DefaultSettings(),
	}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	v := &Viewer{
		mapper:     NewRGBMapper(nil),
		viewport:   NewViewport(opt.Width, opt.Height),
		dispatcher: NewDispatcher(),
		zoomAlg:    opt.Zoom,
		sampling:   opt.Sampling,
		settings:   opt.Settings,
	}
	v.installDefaultBindings()
	return v
}

// Mapper exposes the color pipeline.
func (v *Viewer) Mapper() *RGBMapper { return v.mapper }

// Viewport exposes the coordinate transform.
func (v *Viewer) Viewport() *Viewport { return v.viewport }

// Dispatcher exposes the input-mode state machine.
func (v *Viewer) Dispatcher() *Dispatcher { return v.dispatcher }

// Settings returns the viewer's automatic-behavior configuration.
func (v *Viewer) Settings() Settings { return v.settings }

// SetSettings replaces the automatic-behavior configuration.
func (v *Viewer) SetSettings(s Settings) { v.settings = s }

// SetImage points the viewer at new data, cancelling any in-flight
// background estimation for the previous image, and applies the automatic
// behaviors the settings ask for. A cut-level estimation failure (for
// example data with no finite pixels) keeps the previous levels and is
// returned after the remaining automatic behaviors have still been applied.
func (v *Viewer) SetImage(d *ImageData) error {
	v.cancelBackground()
	v.mapper.SetData(d)
	v.viewport.SetLimits(rect.Rect{URx: float64(d.Width), URy: float64(d.Height)})

	var cutsErr error
	if applyNow, next := shouldApply(v.settings.AutoCuts, v.userCuts); applyNow {
		v.settings.AutoCuts = next
		cutsErr = v.AutoLevels(v.settings.AutoCutsAlgorithm)
	}
	if applyNow, next := shouldApply(v.settings.AutoZoom, false); applyNow {
		v.settings.AutoZoom = next
		v.ZoomFit()
	}
	if applyNow, next := shouldApply(v.settings.AutoCenter, false); applyNow {
		v.settings.AutoCenter = next
		_ = v.SetPan(vec.Vec2{X: float64(d.Width) / 2, Y: float64(d.Height) / 2}, CoordData)
	}
	v.RequestRedraw()
	return cutsErr
}

// shouldApply evaluates an OptionMode against a manual-override flag and
// returns the mode's next value (Once degrades to Off).
func shouldApply(m OptionMode, userOverrode bool) (bool, OptionMode) {
	switch m {
	case OptionOn:
		return !userOverrode, m
	case OptionOverride:
		return true, m
	case OptionOnce:
		return true, OptionOff
	}
	return false, m
}

// SetCutLevels sets the display range manually. A reversed pair is swapped.
func (v *Viewer) SetCutLevels(lo, hi float64) {
	v.userCuts = true
	v.mapper.SetCutLevels(lo, hi)
	v.RequestRedraw()
}

// CutLevels returns the current display range.
func (v *Viewer) CutLevels() CutLevels { return v.mapper.CutLevels() }

// AutoLevels estimates and applies cut levels with the named algorithm.
// On ErrNoValidPixels the previous levels are kept and the error returned.
func (v *Viewer) AutoLevels(algorithm string) error {
	ac, err := NewAutoCuts(algorithm)
	if err != nil {
		return err
	}
	cuts, err := ac.Estimate(v.mapper.Data())
	if err != nil {
		return err
	}
	v.mapper.SetCutLevels(cuts.Lo, cuts.Hi)
	v.userCuts = false
	v.RequestRedraw()
	return nil
}

// AutoLevelsAsync runs the estimator in the background. The result is
// applied when the next frame is rendered; switching images or closing the
// viewer discards it. Only one background estimation runs at a time; a new
// request supersedes the previous one.
func (v *Viewer) AutoLevelsAsync(algorithm string) error {
	ac, err := NewAutoCuts(algorithm)
	if err != nil {
		return err
	}
	v.cancelBackground()
	ctx, cancel := context.WithCancel(context.Background())
	data := v.mapper.Data()

	v.mu.Lock()
	v.bgCancel = cancel
	v.mu.Unlock()

	go func() {
		cuts, err := ac.Estimate(data)
		v.mu.Lock()
		if err != nil || ctx.Err() != nil {
			v.mu.Unlock()
			return
		}
		v.bgCuts = &cuts
		v.mu.Unlock()
		v.RequestRedraw()
	}()
	return nil
}

func (v *Viewer) cancelBackground() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.bgCancel != nil {
		v.bgCancel()
		v.bgCancel = nil
	}
	v.bgCuts = nil
}

// Close cancels background work. The viewer must not be used afterwards.
func (v *Viewer) Close() {
	v.cancelBackground()
}

// SetDistribution selects the color distribution algorithm.
func (v *Viewer) SetDistribution(name string) error {
	if err := v.mapper.SetDistribution(name); err != nil {
		return err
	}
	v.RequestRedraw()
	return nil
}

// SetColorMap selects the color lookup table.
func (v *Viewer) SetColorMap(name string) error {
	if err := v.mapper.SetColorMap(name); err != nil {
		return err
	}
	v.RequestRedraw()
	return nil
}

// SetIntensityMap selects the intensity lookup table.
func (v *Viewer) SetIntensityMap(name string) error {
	if err := v.mapper.SetIntensityMap(name); err != nil {
		return err
	}
	v.RequestRedraw()
	return nil
}

// SetScale sets the per-axis scale, clamped to the viewport limits, and
// re-derives the zoom level from the applied scale.
func (v *Viewer) SetScale(sx, sy float64) {
	v.viewport.SetScale(sx, sy)
	v.zoomLevel = v.zoomAlg.LevelFor(v.viewport.ScaleMax())
	v.RequestRedraw()
}

// ScaleXY returns the per-axis scale factors.
func (v *Viewer) ScaleXY() (sx, sy float64) { return v.viewport.ScaleXY() }

// ScaleMax returns the larger axis scale.
func (v *Viewer) ScaleMax() float64 { return v.viewport.ScaleMax() }

// ZoomTo jumps to a zoom level of the active algorithm.
func (v *Viewer) ZoomTo(level int) {
	v.zoomLevel = level
	s := v.zoomAlg.ScaleAt(level)
	v.viewport.SetScale(s, s)
	v.RequestRedraw()
}

// ZoomIn raises the zoom level by steps.
func (v *Viewer) ZoomIn(steps int) { v.ZoomTo(v.zoomLevel + steps) }

// ZoomOut lowers the zoom level by steps.
func (v *Viewer) ZoomOut(steps int) { v.ZoomTo(v.zoomLevel - steps) }

// ZoomFit scales so the data limits fit the window. The scale is set
// directly; Zoom reports the nearest discrete level for display.
func (v *Viewer) ZoomFit() {
	lim := v.viewport.Limits()
	w, h := v.viewport.WindowSize()
	dw := lim.URx - lim.LLx
	dh := lim.URy - lim.LLy
	if dw <= 0 || dh <= 0 {
		return
	}
	s := float64(w) / dw
	if fy := float64(h) / dh; fy < s {
		s = fy
	}
	v.viewport.SetScale(s, s)
	v.zoomLevel = v.zoomAlg.LevelFor(v.viewport.ScaleMax())
	v.RequestRedraw()
}

// Zoom returns the zoom level corresponding to the current scale.
func (v *Viewer) Zoom() int { return v.zoomAlg.LevelFor(v.viewport.ScaleMax()) }

// SetPan centers the view on a point in the given coordinate space.
func (v *Viewer) SetPan(p vec.Vec2, space CoordSpace) error {
	if err := v.viewport.SetPan(p, space); err != nil {
		return err
	}
	v.RequestRedraw()
	return nil
}

// Pan returns the pan point in the given coordinate space.
func (v *Viewer) Pan(space CoordSpace) (vec.Vec2, error) { return v.viewport.Pan(space) }

// SetTransforms sets the axis flips and swap.
func (v *Viewer) SetTransforms(flipX, flipY, swapXY bool) {
	v.viewport.SetTransforms(flipX, flipY, swapXY)
	v.RequestRedraw()
}

// Transforms returns the axis flips and swap.
func (v *Viewer) Transforms() (flipX, flipY, swapXY bool) { return v.viewport.Transforms() }

// Rotate sets the absolute rotation in degrees.
func (v *Viewer) Rotate(deg float64) {
	v.viewport.Rotate(deg)
	v.RequestRedraw()
}

// Rotation returns the rotation in degrees, normalized to [0, 360).
func (v *Viewer) Rotation() float64 { return v.viewport.Rotation() }

// DataToWindow maps a data-space point to a window pixel.
func (v *Viewer) DataToWindow(p vec.Vec2) vec.Vec2 { return v.viewport.DataToWindow(p) }

// WindowToData maps a window pixel to data space.
func (v *Viewer) WindowToData(p vec.Vec2) vec.Vec2 { return v.viewport.WindowToData(p) }

// Dispatch feeds an input event to the mode dispatcher.
func (v *Viewer) Dispatch(ev Event) bool { return v.dispatcher.Dispatch(ev) }

// RequestRedraw marks the viewer as needing a repaint. Requests coalesce:
// many rapid parameter changes leave a single pending redraw and a single
// notification.
func (v *Viewer) RequestRedraw() {
	v.mu.Lock()
	first := !v.redrawPending
	v.redrawPending = true
	v.mu.Unlock()
	if first {
		for _, fn := range v.OnRedrawRequested {
			fn()
		}
	}
}

// RedrawPending reports whether a repaint is outstanding.
func (v *Viewer) RedrawPending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.redrawPending
}

// RenderFrame services the pending redraw: any background estimation result
// is applied first, then a window-sized frame is produced.
func (v *Viewer) RenderFrame() *image.RGBA {
	v.mu.Lock()
	cuts := v.bgCuts
	v.bgCuts = nil
	v.redrawPending = false
	v.mu.Unlock()
	if cuts != nil {
		v.mapper.SetCutLevels(cuts.Lo, cuts.Hi)
	}
	return RenderFrame(v.mapper, v.viewport, v.sampling)
}

// installDefaultBindings populates the modeless table with the baseline
// bindings: scroll zooms, backquote resets zoom.
func (v *Viewer) installDefaultBindings() {
	d := v.dispatcher.Defaults()
	_ = d.Set("*+scroll-up", func(Event) bool { v.ZoomIn(1); return true })
	_ = d.Set("*+scroll-down", func(Event) bool { v.ZoomOut(1); return true })
	_ = d.Set("*+backquote", func(Event) bool { v.ZoomTo(0); return true })
}
