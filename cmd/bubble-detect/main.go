// Command bubble-detect runs bubble-marker detection on one image from the
// command line and prints one "index x y r" row per circle.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/bubble-region-mcp/internal/config"
	"github.com/ironsheep/bubble-region-mcp/internal/coords"
	"github.com/ironsheep/bubble-region-mcp/internal/imaging"
	"github.com/ironsheep/bubble-region-mcp/internal/selection"
)

var errUsage = errors.New("usage")

func main() {
	os.Exit(report(os.Stderr, run(os.Args[1:], os.Stdout, os.Stderr)))
}

// report prints err for the user and returns the process exit code. Bad
// arguments exit with 2.
func report(stderr io.Writer, err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	log.New(stderr, "bubble-detect: ", 0).Print(err)
	if errors.Is(err, errUsage) {
		return 2
	}
	return 1
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bubble-detect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	imagePath := fs.String("image", "", "Image file to scan (required)")
	rect := fs.String("rect", "", "Selection on the preview as left,top,width,height (default: whole image)")
	displayWidth := fs.Int("display-width", 0, "Width of the preview the selection was drawn on (default from config)")
	preset := fs.String("preset", "", "Detection preset: marker or auto (default from config)")
	configPath := fs.String("config", os.Getenv(config.EnvConfigPath), "YAML config file")
	out := fs.String("out", "", "Write the image with the selection and circles drawn on it as PNG")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *imagePath == "" {
		fs.Usage()
		return fmt.Errorf("%w: -image is required", errUsage)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *preset != "" {
		cfg.Preset = *preset
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	img, err := imaging.NewImageCache().Load(*imagePath)
	if err != nil {
		return err
	}
	b := img.Bounds()

	req := selection.Request{
		Rect:   coords.DisplayRect{Width: float64(b.Dx()), Height: float64(b.Dy())},
		Scale:  1,
		Params: params,
	}
	if *rect != "" {
		if req.Rect, err = parseRect(*rect); err != nil {
			return err
		}
		width := *displayWidth
		if width == 0 {
			width = cfg.DisplayWidth
		}
		if req.Scale, err = coords.ComputeScale(b.Dx(), width); err != nil {
			return err
		}
	}

	result, err := selection.Run(img, req)
	if err != nil {
		return err
	}
	if result.Status == selection.StatusInvalidRegion {
		return fmt.Errorf("selection %s lies outside the %dx%d image", *rect, b.Dx(), b.Dy())
	}

	printResult(stdout, result)

	if *out != "" {
		drawn, err := imaging.Annotate(img, result.ImageCircles(), cfg.Overlay)
		if err != nil {
			return err
		}
		if *rect != "" {
			if drawn, err = imaging.DrawRect(drawn, result.Rect, cfg.Overlay); err != nil {
				return err
			}
		}
		if err := imgio.Save(*out, drawn, imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("writing %s: %w", *out, err)
		}
	}
	return nil
}

// parseRect reads "left,top,width,height".
func parseRect(s string) (coords.DisplayRect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return coords.DisplayRect{}, fmt.Errorf("%w: -rect wants left,top,width,height, got %q", errUsage, s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return coords.DisplayRect{}, fmt.Errorf("%w: -rect: %v", errUsage, err)
		}
		v[i] = f
	}
	return coords.DisplayRect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}

func printResult(w io.Writer, result *selection.Result) {
	r := result.Rect
	fmt.Fprintf(w, "# region %d,%d %dx%d: %s\n", r.Left, r.Top, r.Width, r.Height, result.Status)
	for _, c := range result.Circles {
		fmt.Fprintf(w, "%d %d %d %d\n", c.Index, c.X, c.Y, c.R)
	}
}
