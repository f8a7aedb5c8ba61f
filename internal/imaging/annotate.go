package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
)

// OverlayStyle controls how detected circles are drawn.
type OverlayStyle struct {
	// Color is a hex colour such as "#00ff00" or "#0f0".
	Color string `json:"color" yaml:"color"`

	// Thickness is the ring stroke width in pixels.
	Thickness int `json:"thickness" yaml:"thickness"`

	// Labels draws the 1-based circle index next to each ring.
	Labels bool `json:"labels" yaml:"labels"`
}

// DefaultOverlayStyle returns a 2 px green ring with index labels.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{Color: "#00ff00", Thickness: 2, Labels: true}
}

// Validate reports whether the style can be drawn.
func (s OverlayStyle) Validate() error {
	if _, err := colorful.Hex(s.Color); err != nil {
		return fmt.Errorf("invalid overlay color %q: %w", s.Color, err)
	}
	if s.Thickness < 1 {
		return fmt.Errorf("invalid overlay thickness %d: must be >= 1", s.Thickness)
	}
	return nil
}

// Annotate draws circles onto a copy of img.
//
// Circles are in original image coordinates, relative to the top-left pixel
// of img. Rings partly outside the image are clipped. The source image is
// not modified.
func Annotate(img image.Image, circles []coords.ImageCircle, style OverlayStyle) (*image.NRGBA, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	ringColor := toNRGBA(style.Color)

	out := imaging.Clone(img)
	for _, c := range circles {
		drawRing(out, c, style.Thickness, ringColor)
	}

	if style.Labels {
		fg := color.NRGBA{255, 255, 255, 255}
		bg := color.NRGBA{0, 0, 0, 180}
		for i, c := range circles {
			drawLabel(out, c.X+c.R+2, c.Y-c.R, strconv.Itoa(i+1), fg, bg)
		}
	}

	return out, nil
}

// DrawRect outlines r on a copy of img.
func DrawRect(img image.Image, r coords.ImageRect, style OverlayStyle) (*image.NRGBA, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	c := toNRGBA(style.Color)
	out := imaging.Clone(img)
	t := style.Thickness
	bands := []image.Rectangle{
		image.Rect(r.Left, r.Top, r.Right(), r.Top+t),
		image.Rect(r.Left, r.Bottom()-t, r.Right(), r.Bottom()),
		image.Rect(r.Left, r.Top, r.Left+t, r.Bottom()),
		image.Rect(r.Right()-t, r.Top, r.Right(), r.Bottom()),
	}
	for _, b := range bands {
		draw.Draw(out, b.Intersect(out.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
	}
	return out, nil
}

// toNRGBA expects a colour string that already passed Validate.
func toNRGBA(hex string) color.NRGBA {
	c, _ := colorful.Hex(hex)
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// drawRing paints every pixel whose centre lies within thickness/2 of the
// circle outline.
func drawRing(img *image.NRGBA, c coords.ImageCircle, thickness int, col color.NRGBA) {
	half := float64(thickness) / 2
	outer := float64(c.R) + half
	reach := int(math.Ceil(outer))

	box := image.Rect(c.X-reach, c.Y-reach, c.X+reach+1, c.Y+reach+1).Intersect(img.Bounds())
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			d := math.Hypot(float64(x-c.X), float64(y-c.Y))
			if math.Abs(d-float64(c.R)) <= half {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}

// drawLabel writes text with its top-left corner at (x, y) on a filled box.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
	}

	width := d.MeasureString(text).Ceil()
	height := face.Height
	box := image.Rect(x-1, y-1, x+width+1, y+height+1).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y+face.Ascent)
	d.DrawString(text)
}
