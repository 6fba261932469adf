package fitsview

import (
	"fmt"
	"strings"
)

// EventKind classifies input events delivered to the dispatcher.
type EventKind int

const (
	// KeyDown is a keyboard press.
	KeyDown EventKind = iota
	// KeyUp is a keyboard release.
	KeyUp
	// ButtonDown is a cursor button press.
	ButtonDown
	// ButtonMove is cursor motion with a button held.
	ButtonMove
	// ButtonUp is a cursor button release.
	ButtonUp
	// Scroll is a wheel event; Delta carries the amount.
	Scroll
)

// Event is one keyboard/cursor/scroll event. Action names the key, button
// or wheel gesture ("q", "left", "scroll-up"); Modifier is the held
// modifier combination ("", "shift", "ctrl").
type Event struct {
	Kind     EventKind
	Action   string
	Modifier string
	X, Y     float64
	Delta    float64
}

// HandlerFunc consumes an event. Returning true marks the event handled and
// stops further resolution.
type HandlerFunc func(ev Event) bool

// Trigger is a parsed binding trigger of the form
// "<mode>+<modifier>+<action>" where the mode and modifier parts are
// optional and "*" matches any modifier.
type Trigger struct {
	Mode     string
	Modifier string
	Action   string
}

// ParseTrigger parses a trigger string. Malformed triggers are load-time
// parse errors; callers are expected to keep their built-in bindings when
// one is reported.
func ParseTrigger(s string) (Trigger, error) {
	parts := strings.Split(s, "+")
	var t Trigger
	switch len(parts) {
	case 1:
		t.Action = parts[0]
	case 2:
		t.Modifier, t.Action = parts[0], parts[1]
	case 3:
		t.Mode, t.Modifier, t.Action = parts[0], parts[1], parts[2]
	default:
		return Trigger{}, fmt.Errorf("malformed trigger %q: at most three +-separated fields", s)
	}
	if t.Action == "" {
		return Trigger{}, fmt.Errorf("malformed trigger %q: empty action", s)
	}
	if t.Mode == "*" {
		return Trigger{}, fmt.Errorf("malformed trigger %q: mode field cannot be a wildcard", s)
	}
	return t, nil
}

// String reassembles the trigger in canonical form.
func (t Trigger) String() string {
	if t.Mode != "" {
		return t.Mode + "+" + t.Modifier + "+" + t.Action
	}
	if t.Modifier != "" {
		return t.Modifier + "+" + t.Action
	}
	return t.Action
}

// BindingTable maps modifier+action pairs to handlers. A "*" modifier entry
// matches any modifier combination but loses to an exact match.
type BindingTable struct {
	entries map[string]HandlerFunc
}

// NewBindingTable returns an empty table.
func NewBindingTable() *BindingTable {
	return &BindingTable{entries: map[string]HandlerFunc{}}
}

// Set binds a trigger string. The mode field must be empty; mode-qualified
// triggers are routed by Dispatcher.SetBinding instead.
func (b *BindingTable) Set(trigger string, fn HandlerFunc) error {
	t, err := ParseTrigger(trigger)
	if err != nil {
		return err
	}
	if t.Mode != "" {
		return fmt.Errorf("trigger %q names mode %q; bind it through the dispatcher", trigger, t.Mode)
	}
	b.set(t, fn)
	return nil
}

func (b *BindingTable) set(t Trigger, fn HandlerFunc) {
	b.entries[t.Modifier+"+"+t.Action] = fn
}

// lookup resolves an event to a handler, preferring an exact modifier match
// over the wildcard.
func (b *BindingTable) lookup(ev Event) HandlerFunc {
	if fn, ok := b.entries[ev.Modifier+"+"+ev.Action]; ok {
		return fn
	}
	if fn, ok := b.entries["*+"+ev.Action]; ok {
		return fn
	}
	return nil
}

// dispatch runs the matching handler, if any.
func (b *BindingTable) dispatch(ev Event) bool {
	if fn := b.lookup(ev); fn != nil {
		return fn(ev)
	}
	return false
}
