package imaging

import (
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ironsheep/bubble-region-mcp/internal/coords"
)

func rect(left, top, width, height int) coords.ImageRect {
	return coords.ImageRect{Left: left, Top: top, Width: width, Height: height}
}

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := Crop(img, rect(0, 0, 50, 50), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if result.Width != 50 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}

	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	if result.Rect != rect(0, 0, 50, 50) {
		t.Errorf("Rect: got %+v", result.Rect)
	}

	// Verify base64 can be decoded
	if _, err := base64.StdEncoding.DecodeString(result.ImageBase64); err != nil {
		t.Errorf("failed to decode base64: %v", err)
	}
}

func TestCrop_WithScale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name         string
		r            coords.ImageRect
		scale        float64
		wantW, wantH int
	}{
		{"scale up", rect(0, 0, 50, 50), 2.0, 100, 100},
		{"scale down", rect(0, 0, 100, 100), 0.5, 50, 50},
		{"never below one pixel", rect(0, 0, 4, 4), 0.01, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, tt.r, tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("scaled dimensions: got %dx%d, want %dx%d",
					result.Width, result.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCrop_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		r    coords.ImageRect
	}{
		{"left negative", rect(-1, 0, 50, 50)},
		{"top negative", rect(0, -1, 50, 50)},
		{"right too large", rect(60, 0, 41, 50)},
		{"bottom too large", rect(0, 60, 50, 41)},
		{"all out of bounds", rect(-1, -1, 200, 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, tt.r, 1.0)
			if !errors.Is(err, ErrRegionOutOfBounds) {
				t.Errorf("Crop error: got %v, want ErrRegionOutOfBounds", err)
			}
		})
	}
}

func TestCrop_EmptyRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	for _, r := range []coords.ImageRect{rect(10, 10, 0, 5), rect(10, 10, 5, 0), rect(10, 10, -3, 5)} {
		if _, err := Crop(img, r, 1.0); !errors.Is(err, coords.ErrEmptyRegion) {
			t.Errorf("Crop(%+v) error: got %v, want ErrEmptyRegion", r, err)
		}
	}
}

func TestCrop_VerifyContent(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name    string
		r       coords.ImageRect
		wantHex string
	}{
		{"top-left", rect(0, 0, 50, 50), "#FF0000"},
		{"top-right", rect(50, 0, 50, 50), "#00FF00"},
		{"bottom-left", rect(0, 50, 50, 50), "#0000FF"},
		{"bottom-right", rect(50, 50, 50, 50), "#FFFFFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, tt.r, 1.0)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}

			decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
			if err != nil {
				t.Fatalf("failed to decode base64: %v", err)
			}
			croppedImg, err := png.Decode(strings.NewReader(string(decoded)))
			if err != nil {
				t.Fatalf("failed to decode PNG: %v", err)
			}

			r, g, b, _ := croppedImg.At(result.Width/2, result.Height/2).RGBA()
			gotHex := "#" + toHex(uint8(r>>8)) + toHex(uint8(g>>8)) + toHex(uint8(b>>8))
			if gotHex != tt.wantHex {
				t.Errorf("color: got %s, want %s", gotHex, tt.wantHex)
			}
		})
	}
}

func toHex(b uint8) string {
	const hex = "0123456789ABCDEF"
	return string([]byte{hex[b>>4], hex[b&0xf]})
}

func TestCropGray(t *testing.T) {
	img := createPatternImage(100, 100)

	gray, err := CropGray(img, rect(50, 0, 50, 50))
	if err != nil {
		t.Fatalf("CropGray failed: %v", err)
	}

	if gray.Bounds() != image.Rect(0, 0, 50, 50) {
		t.Errorf("bounds: got %v, want (0,0)-(50,50)", gray.Bounds())
	}

	// BT.601 luma of pure green: (19595*0 + 38470*65535 + 7471*0 + 1<<15) >> 24
	want := uint8((38470*0xffff + 1<<15) >> 24)
	if got := gray.GrayAt(25, 25).Y; got != want {
		t.Errorf("green luma: got %d, want %d", got, want)
	}
}

func TestCropGray_Luma(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want uint8
	}{
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"red", color.RGBA{255, 0, 0, 255}, 76},
		{"blue", color.RGBA{0, 0, 255, 255}, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(4, 4, tt.c)
			gray, err := CropGray(img, rect(0, 0, 4, 4))
			if err != nil {
				t.Fatalf("CropGray failed: %v", err)
			}
			if got := gray.GrayAt(1, 1).Y; got != tt.want {
				t.Errorf("luma: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCropGray_SubImageOrigin(t *testing.T) {
	base := createPatternImage(100, 100)
	// Bottom-right quadrant has Bounds().Min == (50,50)
	sub := base.SubImage(image.Rect(50, 50, 100, 100))

	gray, err := CropGray(sub, rect(0, 0, 10, 10))
	if err != nil {
		t.Fatalf("CropGray failed: %v", err)
	}
	if got := gray.GrayAt(5, 5).Y; got != 255 {
		t.Errorf("expected white from bottom-right quadrant, got %d", got)
	}

	if _, err := CropGray(sub, rect(45, 45, 10, 10)); !errors.Is(err, ErrRegionOutOfBounds) {
		t.Errorf("region past sub-image edge: got %v, want ErrRegionOutOfBounds", err)
	}
}

func TestCropGray_DoesNotModifySource(t *testing.T) {
	img := createPatternImage(20, 20)
	before := make([]uint8, len(img.Pix))
	copy(before, img.Pix)

	gray, err := CropGray(img, rect(0, 0, 20, 20))
	if err != nil {
		t.Fatalf("CropGray failed: %v", err)
	}
	gray.Pix[0] = 7

	for i := range before {
		if img.Pix[i] != before[i] {
			t.Fatalf("source pixel byte %d changed", i)
		}
	}
}

func TestCropGray_WholeImage(t *testing.T) {
	gray, err := CropGray(createInMemoryImage(7, 3, color.White), coords.ImageRect{Width: 7, Height: 3})
	if err != nil {
		t.Fatalf("CropGray failed: %v", err)
	}
	if gray.Bounds() != image.Rect(0, 0, 7, 3) {
		t.Errorf("bounds: got %v", gray.Bounds())
	}
}

func TestCropGray_ZeroSizeImage(t *testing.T) {
	// An empty image has no whole-image rectangle; the error must surface.
	gray, err := CropGray(image.NewRGBA(image.Rect(0, 0, 0, 0)), coords.ImageRect{})
	if !errors.Is(err, coords.ErrEmptyRegion) {
		t.Errorf("expected ErrEmptyRegion, got %v", err)
	}
	if gray != nil {
		t.Errorf("expected no buffer, got %v", gray.Bounds())
	}
}

func TestEncodePNGBase64(t *testing.T) {
	encoded, err := EncodePNGBase64(createInMemoryImage(3, 2, color.Black))
	if err != nil {
		t.Fatalf("EncodePNGBase64 failed: %v", err)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("output is not a decodable image: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("dimensions: got %v", img.Bounds())
	}
}
