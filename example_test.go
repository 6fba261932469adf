package fitsview_test

import (
	"fmt"

	"github.com/vearutop/fitsview"
)

func ExampleNewAutoCuts() {
	pix := make([]float32, 100*100)
	for i := range pix {
		pix[i] = float32(i % 1000)
	}
	data, err := fitsview.NewImageData(100, 100, pix)
	if err != nil {
		return
	}

	ac, err := fitsview.NewAutoCuts("minmax")
	if err != nil {
		return
	}
	cuts, err := ac.Estimate(data)
	if err != nil {
		return
	}
	fmt.Printf("lo=%g hi=%g\n", cuts.Lo, cuts.Hi)
	// Output:
	// lo=0 hi=999
}

func ExampleNewViewer() {
	pix := make([]float32, 64*64)
	for i := range pix {
		pix[i] = float32(i)
	}
	data, err := fitsview.NewImageData(64, 64, pix)
	if err != nil {
		return
	}

	v := fitsview.NewViewer(func(o *fitsview.ViewerOptions) {
		o.Width = 256
		o.Height = 256
		o.Zoom = fitsview.StepZoom{}
	})
	defer v.Close()

	if err := v.SetImage(data); err != nil {
		return
	}
	v.ZoomTo(4)
	fmt.Printf("zoom=%d scale=%g\n", v.Zoom(), v.ScaleMax())

	frame := v.RenderFrame()
	fmt.Println(frame.Rect.Dx(), frame.Rect.Dy())
	// Output:
	// zoom=4 scale=5
	// 256 256
}

func ExampleRGBMapper_Map() {
	pix := []float32{0, 50, 100, 150}
	data, err := fitsview.NewImageData(2, 2, pix)
	if err != nil {
		return
	}

	m := fitsview.NewRGBMapper(data)
	m.SetCutLevels(0, 150)
	if err := m.SetDistribution("sqrt"); err != nil {
		return
	}

	c := m.Map(150)
	fmt.Println(c.R, c.G, c.B)
	// Output:
	// 255 255 255
}
