package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	_ "image/jpeg"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"

	"github.com/vearutop/fitsview"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "render":
		if err := runRender(os.Args[2:]); err != nil {
			fail(err)
		}
	case "cuts":
		if err := runCuts(os.Args[2:]); err != nil {
			fail(err)
		}
	case "thumb":
		if err := runThumb(os.Args[2:]); err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: fitsview <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  render -in input.png -out output.png [-cuts zscale] [-dist linear] [-cmap gray] [-imap ramp]")
	fmt.Fprintln(os.Stderr, "         [-w 512] [-h 512] [-zoom 0] [-rot 0] [-flipx] [-flipy] [-swapxy] [-bilinear]")
	fmt.Fprintln(os.Stderr, "  cuts   -in input.png [-algorithm zscale]")
	fmt.Fprintln(os.Stderr, "  thumb  -in input.png -out thumb.png [-cuts zscale] [-cmap gray] [-w 256] [-h 256]")
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	inPath := fs.String("in", "", "input PNG/JPEG")
	outPath := fs.String("out", "", "output PNG")
	cuts := fs.String("cuts", "zscale", "autocuts algorithm")
	dist := fs.String("dist", "linear", "distribution algorithm")
	cmap := fs.String("cmap", "gray", "color map")
	imap := fs.String("imap", "ramp", "intensity map")
	width := fs.Int("w", 512, "window width")
	height := fs.Int("h", 512, "window height")
	zoom := fs.Int("zoom", 0, "zoom level (rate algorithm)")
	rot := fs.Float64("rot", 0, "rotation in degrees")
	flipX := fs.Bool("flipx", false, "flip X axis")
	flipY := fs.Bool("flipy", false, "flip Y axis")
	swapXY := fs.Bool("swapxy", false, "swap axes")
	bilinear := fs.Bool("bilinear", false, "bilinear sampling")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}

	data, err := loadData(*inPath)
	if err != nil {
		return err
	}

	sampling := fitsview.SamplingNearest
	if *bilinear {
		sampling = fitsview.SamplingBilinear
	}
	v := fitsview.NewViewer(func(o *fitsview.ViewerOptions) {
		o.Width = *width
		o.Height = *height
		o.Sampling = sampling
		o.Settings.AutoCutsAlgorithm = *cuts
	})
	defer v.Close()

	if err := v.SetImage(data); err != nil {
		return err
	}
	if err := v.SetDistribution(*dist); err != nil {
		return err
	}
	if err := v.SetColorMap(*cmap); err != nil {
		return err
	}
	if err := v.SetIntensityMap(*imap); err != nil {
		return err
	}
	if *zoom != 0 {
		v.ZoomTo(*zoom)
	}
	if *rot != 0 {
		v.Rotate(*rot)
	}
	if *flipX || *flipY || *swapXY {
		v.SetTransforms(*flipX, *flipY, *swapXY)
	}

	return writePNG(*outPath, v.RenderFrame())
}

func runCuts(args []string) error {
	fs := flag.NewFlagSet("cuts", flag.ContinueOnError)
	inPath := fs.String("in", "", "input PNG/JPEG")
	algorithm := fs.String("algorithm", "zscale", "autocuts algorithm")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("missing required arguments")
	}

	data, err := loadData(*inPath)
	if err != nil {
		return err
	}
	ac, err := fitsview.NewAutoCuts(*algorithm)
	if err != nil {
		return err
	}
	levels, err := ac.Estimate(data)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(map[string]any{
		"algorithm": *algorithm,
		"lo":        levels.Lo,
		"hi":        levels.Hi,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runThumb(args []string) error {
	fs := flag.NewFlagSet("thumb", flag.ContinueOnError)
	inPath := fs.String("in", "", "input PNG/JPEG")
	outPath := fs.String("out", "", "output PNG")
	cuts := fs.String("cuts", "zscale", "autocuts algorithm")
	cmap := fs.String("cmap", "gray", "color map")
	width := fs.Uint("w", 256, "thumbnail width")
	height := fs.Uint("h", 256, "thumbnail height")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}

	data, err := loadData(*inPath)
	if err != nil {
		return err
	}
	m := fitsview.NewRGBMapper(data)
	if err := m.SetColorMap(*cmap); err != nil {
		return err
	}
	ac, err := fitsview.NewAutoCuts(*cuts)
	if err != nil {
		return err
	}
	levels, err := ac.Estimate(data)
	if err != nil {
		return err
	}
	m.SetCutLevels(levels.Lo, levels.Hi)

	full := m.MapImage()
	thumb := resize.Thumbnail(*width, *height, full, resize.Lanczos3)
	return writePNG(*outPath, thumb)
}

// loadData decodes a PNG or JPEG and converts it to grayscale float data.
func loadData(path string) (*fitsview.ImageData, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	b := img.Bounds()
	pix := make([]float32, b.Dx()*b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			pix[i] = float32(g.Y)
			i++
		}
	}
	return fitsview.NewImageData(b.Dx(), b.Dy(), pix)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
