package fitsview

import "errors"

// WCS converts between data pixel coordinates and sky coordinates. Any
// world-coordinate backend can plug into the viewport transform by
// implementing these two methods; the transform depends on nothing else.
type WCS interface {
	PixToRadec(x, y float64) (ra, dec float64, err error)
	RadecToPix(ra, dec float64) (x, y float64, err error)
}

// CoordSpace selects the coordinate space of a pan point.
type CoordSpace int

const (
	// CoordData addresses points in data pixel space.
	CoordData CoordSpace = iota
	// CoordWCS addresses points in sky coordinates via the attached WCS.
	CoordWCS
)

// ErrNoWCS is reported when a WCS coordinate space is requested but no WCS
// backend is attached to the viewport.
var ErrNoWCS = errors.New("no WCS backend attached")
