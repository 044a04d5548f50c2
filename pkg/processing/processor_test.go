package processing

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/menta2k/rect-transform/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				// Central bright region
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

func TestImageSize(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(320, 240)

	size := p.ImageSize(img)
	if size.Width != 320 || size.Height != 240 {
		t.Errorf("ImageSize = %+v, want 320x240", size)
	}
}

func TestExtractRectAxisAligned(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(200, 100)

	r := types.NormalizedRect{XCenter: 0.5, YCenter: 0.5, Width: 0.4, Height: 0.6}
	cropped, err := p.ExtractRect(img, r)
	if err != nil {
		t.Fatalf("ExtractRect failed: %v", err)
	}

	b := cropped.Bounds()
	if b.Dx() != 80 || b.Dy() != 60 {
		t.Errorf("cropped size = %dx%d, want 80x60", b.Dx(), b.Dy())
	}
}

func TestExtractRectRotated(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(200, 200)

	r := types.NormalizedRect{XCenter: 0.5, YCenter: 0.5, Width: 0.3, Height: 0.2, Rotation: math.Pi / 6}
	cropped, err := p.ExtractRect(img, r)
	if err != nil {
		t.Fatalf("ExtractRect failed: %v", err)
	}

	b := cropped.Bounds()
	if absDiff(b.Dx(), 60) > 1 || absDiff(b.Dy(), 40) > 1 {
		t.Errorf("cropped size = %dx%d, want ~60x40", b.Dx(), b.Dy())
	}
}

func TestExtractRectEmpty(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(100, 100)

	if _, err := p.ExtractRect(img, types.NormalizedRect{XCenter: 0.5, YCenter: 0.5}); err == nil {
		t.Error("expected error for zero-size rect")
	}

	outside := types.NormalizedRect{XCenter: 5, YCenter: 5, Width: 0.1, Height: 0.1}
	if _, err := p.ExtractRect(img, outside); err == nil {
		t.Error("expected error for rect outside the image")
	}
}

func TestExtractAndFit(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(200, 200)

	r := types.NormalizedRect{XCenter: 0.5, YCenter: 0.5, Width: 0.5, Height: 0.5}
	out, err := p.ExtractAndFit(img, r, 64, 48)
	if err != nil {
		t.Fatalf("ExtractAndFit failed: %v", err)
	}

	b := out.Bounds()
	if b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("fitted size = %dx%d, want 64x48", b.Dx(), b.Dy())
	}
}

func TestCreateDebugOverlay(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(160, 120)

	input := types.NormalizedRect{XCenter: 0.5, YCenter: 0.5, Width: 0.3, Height: 0.3}
	transformed := types.NormalizedRect{XCenter: 0.6, YCenter: 0.4, Width: 0.5, Height: 0.5, Rotation: 0.4}

	overlay := p.CreateDebugOverlay(img, input, transformed)
	if overlay == nil {
		t.Fatal("CreateDebugOverlay returned nil")
	}

	b := overlay.Bounds()
	if b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("overlay size = %dx%d, want 160x120", b.Dx(), b.Dy())
	}
}

func TestSaveAndLoadImage(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(50, 40)
	dir := t.TempDir()

	for _, format := range []string{"png", "jpg", "webp"} {
		path := filepath.Join(dir, "out."+format)
		if err := p.SaveImage(img, path, format, 90, false); err != nil {
			t.Fatalf("SaveImage(%s) failed: %v", format, err)
		}

		loaded, err := p.LoadImage(path)
		if err != nil {
			t.Fatalf("LoadImage(%s) failed: %v", format, err)
		}

		b := loaded.Bounds()
		if b.Dx() != 50 || b.Dy() != 40 {
			t.Errorf("%s roundtrip size = %dx%d, want 50x40", format, b.Dx(), b.Dy())
		}
	}
}

func TestPrepareImageForModel(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(400, 200)

	b64, err := p.PrepareImageForModel(img, "jpg", 100, 85)
	if err != nil {
		t.Fatalf("PrepareImageForModel failed: %v", err)
	}
	if b64 == "" {
		t.Error("expected non-empty base64 output")
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
