package fitsview

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// GeometryKind tags the shape of a canvas object.
type GeometryKind int

const (
	// GeomPoint is a single marker point.
	GeomPoint GeometryKind = iota
	// GeomLine is a two-point segment.
	GeomLine
	// GeomBox is an axis-aligned rectangle given by two corners.
	GeomBox
	// GeomCircle is a center point plus one radius.
	GeomCircle
	// GeomEllipse is a center point plus two radii and an angle.
	GeomEllipse
)

// CanvasObject is a drawable overlay element in data space. Shape variants
// share one parameter set (points, radii, angle) selected by Kind instead
// of a type hierarchy.
type CanvasObject struct {
	Kind   GeometryKind
	Points []vec.Vec2
	Radii  []float64
	Angle  float64 // degrees, used by GeomEllipse
}

// Contains reports whether a data-space point falls inside the object. For
// points and lines a small data-space slop distance counts as inside.
func (o *CanvasObject) Contains(p vec.Vec2, slop float64) bool {
	switch o.Kind {
	case GeomPoint:
		return len(o.Points) >= 1 && dist(o.Points[0], p) <= slop
	case GeomLine:
		if len(o.Points) < 2 {
			return false
		}
		return segmentDist(o.Points[0], o.Points[1], p) <= slop
	case GeomBox:
		if len(o.Points) < 2 {
			return false
		}
		x0, x1 := minMax(o.Points[0].X, o.Points[1].X)
		y0, y1 := minMax(o.Points[0].Y, o.Points[1].Y)
		return p.X >= x0 && p.X <= x1 && p.Y >= y0 && p.Y <= y1
	case GeomCircle:
		return len(o.Points) >= 1 && len(o.Radii) >= 1 && dist(o.Points[0], p) <= o.Radii[0]
	case GeomEllipse:
		if len(o.Points) < 1 || len(o.Radii) < 2 || o.Radii[0] == 0 || o.Radii[1] == 0 {
			return false
		}
		// Rotate the query point into the ellipse frame.
		sin, cos := math.Sincos(-o.Angle * math.Pi / 180)
		dx := p.X - o.Points[0].X
		dy := p.Y - o.Points[0].Y
		rx := (dx*cos - dy*sin) / o.Radii[0]
		ry := (dx*sin + dy*cos) / o.Radii[1]
		return rx*rx+ry*ry <= 1
	}
	return false
}

// WindowPoints maps the object's defining points through the viewport.
func (o *CanvasObject) WindowPoints(v *Viewport) []vec.Vec2 {
	out := make([]vec.Vec2, len(o.Points))
	for i, p := range o.Points {
		out[i] = v.DataToWindow(p)
	}
	return out
}

func dist(a, b vec.Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func minMax(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}

func segmentDist(a, b, p vec.Vec2) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return dist(a, p)
	}
	t := clamp01(((p.X-a.X)*abx + (p.Y-a.Y)*aby) / l2)
	return dist(vec.Vec2{X: a.X + t*abx, Y: a.Y + t*aby}, p)
}

// Canvas holds overlay objects shared by one or more viewers. Mutation
// notifies every observing viewer so each recomputes its own
// transform-dependent view. A canvas also acts as the dispatcher's second
// resolution tier through its binding table.
type Canvas struct {
	objects  []*CanvasObject
	Bindings *BindingTable

	observers []func()
}

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{Bindings: NewBindingTable()}
}

// AddObserver registers a change notification callback.
func (c *Canvas) AddObserver(fn func()) {
	c.observers = append(c.observers, fn)
}

func (c *Canvas) notify() {
	for _, fn := range c.observers {
		fn()
	}
}

// Add appends an object and broadcasts the change.
func (c *Canvas) Add(o *CanvasObject) {
	c.objects = append(c.objects, o)
	c.notify()
}

// Remove deletes an object, if present, and broadcasts the change.
func (c *Canvas) Remove(o *CanvasObject) {
	for i, obj := range c.objects {
		if obj == o {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			c.notify()
			return
		}
	}
}

// Objects returns the current object list.
func (c *Canvas) Objects() []*CanvasObject { return c.objects }

// HitTest returns the topmost object containing the data-space point.
func (c *Canvas) HitTest(p vec.Vec2, slop float64) *CanvasObject {
	for i := len(c.objects) - 1; i >= 0; i-- {
		if c.objects[i].Contains(p, slop) {
			return c.objects[i]
		}
	}
	return nil
}

// HandleEvent implements CanvasHandler via the canvas binding table.
func (c *Canvas) HandleEvent(ev Event) bool {
	return c.Bindings.dispatch(ev)
}
