package fitsview

import "fmt"

// ModeType defines how a mode exits once entered.
type ModeType int

const (
	// ModeHeld stays active only while the activation key is held down.
	ModeHeld ModeType = iota
	// ModeOneshot exits after one complete cursor drag (down to up).
	ModeOneshot
	// ModeLocked persists until its own activation key is pressed again.
	ModeLocked
	// ModeSoftLock persists until a different mode's key is pressed.
	ModeSoftLock
)

// Mode is a temporary rebinding of input events to a set of viewer
// operations, entered by its activation key.
type Mode struct {
	Name          string
	Type          ModeType
	ActivationKey string

	Bindings *BindingTable
}

// NewMode returns a mode with an empty binding table.
func NewMode(name string, typ ModeType, activationKey string) *Mode {
	return &Mode{Name: name, Type: typ, ActivationKey: activationKey, Bindings: NewBindingTable()}
}

// CanvasHandler is the second resolution tier: the currently focused
// interactive canvas object may claim events no mode has claimed.
type CanvasHandler interface {
	HandleEvent(ev Event) bool
}

// Dispatcher resolves input events against the active mode, the focused
// canvas and the modeless default bindings, in that order; the first
// handler claiming the event stops resolution.
//
// "escape" unconditionally exits any active mode before bindings are
// consulted, whatever its lock type: lock is a persistence preference, not
// an override of explicit exit.
type Dispatcher struct {
	modes    map[string]*Mode
	byKey    map[string]*Mode
	active   *Mode
	canvas   CanvasHandler
	defaults *BindingTable

	dragging bool

	OnModeChanged []func(name string)
}

// NewDispatcher returns a dispatcher with no modes and an empty default
// table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		modes:    map[string]*Mode{},
		byKey:    map[string]*Mode{},
		defaults: NewBindingTable(),
	}
}

// RegisterMode makes a mode enterable. Activation keys must be unique.
func (d *Dispatcher) RegisterMode(m *Mode) error {
	if _, ok := d.modes[m.Name]; ok {
		return fmt.Errorf("mode %q already registered", m.Name)
	}
	if other, ok := d.byKey[m.ActivationKey]; ok {
		return fmt.Errorf("activation key %q already taken by mode %q", m.ActivationKey, other.Name)
	}
	d.modes[m.Name] = m
	d.byKey[m.ActivationKey] = m
	return nil
}

// SetCanvas installs the focused canvas handler (tier two). Nil clears it.
func (d *Dispatcher) SetCanvas(c CanvasHandler) { d.canvas = c }

// Defaults exposes the modeless binding table (tier three).
func (d *Dispatcher) Defaults() *BindingTable { return d.defaults }

// SetBinding routes a trigger to the named mode's table, or to the modeless
// defaults when the trigger carries no mode field.
func (d *Dispatcher) SetBinding(trigger string, fn HandlerFunc) error {
	t, err := ParseTrigger(trigger)
	if err != nil {
		return err
	}
	if t.Mode == "" {
		d.defaults.set(t, fn)
		return nil
	}
	m, ok := d.modes[t.Mode]
	if !ok {
		return fmt.Errorf("trigger %q names unregistered mode %q", trigger, t.Mode)
	}
	m.Bindings.set(t, fn)
	return nil
}

// ActiveMode returns the active mode's name, or "" when no mode is active.
func (d *Dispatcher) ActiveMode() string {
	if d.active == nil {
		return ""
	}
	return d.active.Name
}

func (d *Dispatcher) setActive(m *Mode) {
	if d.active == m {
		return
	}
	d.active = m
	name := ""
	if m != nil {
		name = m.Name
	}
	for _, fn := range d.OnModeChanged {
		fn(name)
	}
}

// Dispatch resolves one event. It reports whether anything consumed the
// event, counting mode entry/exit transitions as consumption.
func (d *Dispatcher) Dispatch(ev Event) bool {
	switch ev.Kind {
	case KeyDown:
		if ev.Action == "escape" {
			if d.active != nil {
				d.setActive(nil)
				d.dragging = false
				return true
			}
			break
		}
		if m, ok := d.byKey[ev.Action]; ok {
			return d.activationKey(m, ev)
		}
	case KeyUp:
		if d.active != nil && d.active.Type == ModeHeld && ev.Action == d.active.ActivationKey {
			d.setActive(nil)
			return true
		}
	case ButtonDown:
		d.dragging = true
	case ButtonUp:
		defer d.finishDrag()
	}

	return d.resolve(ev)
}

// activationKey handles a press of a registered mode's activation key.
func (d *Dispatcher) activationKey(m *Mode, ev Event) bool {
	switch {
	case d.active == nil:
		d.setActive(m)
	case d.active == m:
		// Re-pressing the key of the active mode toggles locked and
		// softlock modes off; held and oneshot ignore the repeat.
		if m.Type == ModeLocked || m.Type == ModeSoftLock {
			d.setActive(nil)
		}
	case d.active.Type == ModeLocked:
		// A locked mode holds against other modes' activation keys;
		// only its own key or escape exits it. The press resolves as
		// an ordinary event instead.
		return d.resolve(ev)
	default:
		// Switching modes: a held, oneshot or softlock mode is exited.
		d.setActive(m)
	}
	return true
}

// finishDrag exits a oneshot mode after a complete down-to-up drag.
func (d *Dispatcher) finishDrag() {
	wasDragging := d.dragging
	d.dragging = false
	if wasDragging && d.active != nil && d.active.Type == ModeOneshot {
		d.setActive(nil)
	}
}

// resolve walks the three binding tiers.
func (d *Dispatcher) resolve(ev Event) bool {
	if d.active != nil && d.active.Bindings.dispatch(ev) {
		return true
	}
	if d.canvas != nil && d.canvas.HandleEvent(ev) {
		return true
	}
	return d.defaults.dispatch(ev)
}
