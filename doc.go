// Package fitsview implements the pixel-mapping and viewport-transform core
// of a scientific-image viewer.
//
// Raw data values flow through cut levels, a selectable color distribution
// function, a contrast/shift stage and two lookup tables (intensity map and
// color map) to produce RGB output. An invertible affine viewport transform
// relates data coordinates to window coordinates under zoom, pan, rotation
// and axis flips, and a mode dispatcher resolves keyboard/cursor/scroll
// events into parameter changes on those two pipelines.
//
// The package does not rasterize to any particular toolkit surface and does
// not parse image files; it maps numbers to colors and coordinates to
// coordinates.
package fitsview
