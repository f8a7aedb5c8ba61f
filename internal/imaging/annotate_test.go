package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
)

func TestAnnotate_DrawsRing(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	circle := coords.ImageCircle{X: 50, Y: 50, R: 20}

	out, err := Annotate(img, []coords.ImageCircle{circle}, OverlayStyle{Color: "#00ff00", Thickness: 2})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	green := color.NRGBA{0, 255, 0, 255}
	onRing := []image.Point{{70, 50}, {30, 50}, {50, 70}, {50, 30}}
	for _, p := range onRing {
		if got := out.NRGBAAt(p.X, p.Y); got != green {
			t.Errorf("pixel %v on ring: got %v, want green", p, got)
		}
	}

	white := color.NRGBA{255, 255, 255, 255}
	offRing := []image.Point{{50, 50}, {60, 50}, {75, 50}, {5, 5}}
	for _, p := range offRing {
		if got := out.NRGBAAt(p.X, p.Y); got != white {
			t.Errorf("pixel %v off ring: got %v, want white", p, got)
		}
	}
}

func TestAnnotate_DoesNotModifySource(t *testing.T) {
	src := createPatternImage(60, 60)
	before := make([]uint8, len(src.Pix))
	copy(before, src.Pix)

	if _, err := Annotate(src, []coords.ImageCircle{{X: 30, Y: 30, R: 10}}, DefaultOverlayStyle()); err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatalf("source pixel byte %d changed", i)
		}
	}
}

func TestAnnotate_ClipsAtEdges(t *testing.T) {
	img := createInMemoryImage(40, 40, color.White)
	circles := []coords.ImageCircle{{X: 0, Y: 0, R: 15}, {X: 39, Y: 39, R: 30}}

	out, err := Annotate(img, circles, DefaultOverlayStyle())
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 40, 40) {
		t.Errorf("bounds: got %v, want (0,0)-(40,40)", out.Bounds())
	}
}

func TestAnnotate_Labels(t *testing.T) {
	img := createInMemoryImage(120, 80, color.White)
	circles := []coords.ImageCircle{{X: 30, Y: 40, R: 12}}

	plain, err := Annotate(img, circles, OverlayStyle{Color: "#ff0000", Thickness: 1})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	labelled, err := Annotate(img, circles, OverlayStyle{Color: "#ff0000", Thickness: 1, Labels: true})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	// Label text starts at (X+R+2, Y-R) with a one pixel background margin
	p := image.Point{X: 30 + 12 + 2 - 1, Y: 40 - 12 - 1}
	if plain.NRGBAAt(p.X, p.Y) == labelled.NRGBAAt(p.X, p.Y) {
		t.Errorf("expected label background at %v", p)
	}
}

func TestAnnotate_NoCircles(t *testing.T) {
	img := createInMemoryImage(10, 10, color.Black)
	out, err := Annotate(img, nil, DefaultOverlayStyle())
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if got := out.NRGBAAt(5, 5); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("pixel changed with no circles: %v", got)
	}
}

func TestOverlayStyle_Validate(t *testing.T) {
	tests := []struct {
		name    string
		style   OverlayStyle
		wantErr bool
	}{
		{"default", DefaultOverlayStyle(), false},
		{"short hex", OverlayStyle{Color: "#f00", Thickness: 1}, false},
		{"no hash", OverlayStyle{Color: "00ff00", Thickness: 1}, true},
		{"named colour", OverlayStyle{Color: "green", Thickness: 1}, true},
		{"zero thickness", OverlayStyle{Color: "#00ff00", Thickness: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.style.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnnotate_InvalidStyle(t *testing.T) {
	img := createInMemoryImage(10, 10, color.Black)
	if _, err := Annotate(img, nil, OverlayStyle{Color: "bogus", Thickness: 2}); err == nil {
		t.Error("Annotate should fail for an invalid colour")
	}
}

func TestDrawRect(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	r := coords.ImageRect{Left: 10, Top: 10, Width: 20, Height: 20}

	out, err := DrawRect(img, r, OverlayStyle{Color: "#0000ff", Thickness: 1})
	if err != nil {
		t.Fatalf("DrawRect failed: %v", err)
	}

	blue := color.NRGBA{0, 0, 255, 255}
	for _, p := range []image.Point{{10, 10}, {29, 10}, {10, 29}, {29, 29}, {20, 10}} {
		if got := out.NRGBAAt(p.X, p.Y); got != blue {
			t.Errorf("edge pixel %v: got %v, want blue", p, got)
		}
	}
	if got := out.NRGBAAt(20, 20); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("interior pixel changed: %v", got)
	}
}

func TestScaleToWidth(t *testing.T) {
	img := createInMemoryImage(1600, 1200, color.White)

	preview, scale, err := ScaleToWidth(img, 800)
	if err != nil {
		t.Fatalf("ScaleToWidth failed: %v", err)
	}
	if scale != 0.5 {
		t.Errorf("scale: got %v, want 0.5", scale)
	}
	if preview.Bounds().Dx() != 800 || preview.Bounds().Dy() != 600 {
		t.Errorf("preview size: got %v, want 800x600", preview.Bounds())
	}
}

func TestScaleToWidth_InvalidWidth(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	for _, w := range []int{0, -5} {
		if _, _, err := ScaleToWidth(img, w); err == nil {
			t.Errorf("ScaleToWidth(%d) should fail", w)
		}
	}
}
