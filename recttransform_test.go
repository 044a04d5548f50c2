package recttransform

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/menta2k/rect-transform/pkg/transform"
	"github.com/menta2k/rect-transform/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

func TestNew(t *testing.T) {
	engine, err := New(transform.DefaultConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if engine == nil {
		t.Fatal("New() returned nil engine")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(transform.Config{SquareLong: true, SquareShort: true})
	if err == nil {
		t.Error("expected error for conflicting squaring options")
	}

	_, err = New(transform.Config{
		Rotation:        transform.Float64(1),
		RotationDegrees: transform.Float64(90),
	})
	if err == nil {
		t.Error("expected error for conflicting rotation options")
	}
}

func TestTransformRequiresExactlyOneVariant(t *testing.T) {
	engine, err := New(transform.DefaultConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := engine.Transform(Request{}); err == nil {
		t.Error("expected error for empty request")
	}

	both := Request{
		Rect:     &types.Rect{Width: 10, Height: 10},
		NormRect: &types.NormalizedRect{Width: 0.1, Height: 0.1},
	}
	if _, err := engine.Transform(both); err == nil {
		t.Error("expected error for both variants set")
	}

	noSize := Request{NormRect: &types.NormalizedRect{Width: 0.1, Height: 0.1}}
	if _, err := engine.Transform(noSize); err == nil {
		t.Error("expected error for normalized rect without image size")
	}
}

func TestTransformDispatch(t *testing.T) {
	engine, err := New(transform.Config{ScaleX: 2, ScaleY: 2})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	res, err := engine.Transform(Request{Rect: &types.Rect{Width: 10, Height: 20}})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if res.Rect == nil || res.NormRect != nil {
		t.Fatal("expected absolute rect result")
	}
	if res.Rect.Width != 20 || res.Rect.Height != 40 {
		t.Errorf("scaled size = %vx%v, want 20x40", res.Rect.Width, res.Rect.Height)
	}

	size := types.ImageSize{Width: 100, Height: 100}
	res, err = engine.Transform(Request{
		NormRect:  &types.NormalizedRect{XCenter: 0.5, YCenter: 0.5, Width: 0.2, Height: 0.2},
		ImageSize: &size,
	})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if res.NormRect == nil || res.Rect != nil {
		t.Fatal("expected normalized rect result")
	}
	if math.Abs(res.NormRect.Width-0.4) > 1e-9 {
		t.Errorf("scaled width = %v, want 0.4", res.NormRect.Width)
	}
}

func TestTransformAndExtract(t *testing.T) {
	engine, err := New(transform.Config{SquareLong: true})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	img := createTestImage(200, 100)
	detected := types.NormalizedRect{XCenter: 0.5, YCenter: 0.5, Width: 0.2, Height: 0.2}

	cropped, out, err := engine.TransformAndExtract(img, detected)
	if err != nil {
		t.Fatalf("TransformAndExtract failed: %v", err)
	}

	// square_long on a 200x100 image: 40px wide, 20px tall input; long
	// side is 40px, so the output region is 40x40 pixels.
	pxW := out.Width * 200
	pxH := out.Height * 100
	if math.Abs(pxW-40) > 1e-9 || math.Abs(pxH-40) > 1e-9 {
		t.Errorf("transformed pixel size = %vx%v, want 40x40", pxW, pxH)
	}

	b := cropped.Bounds()
	if b.Dx() != 40 || b.Dy() != 40 {
		t.Errorf("cropped size = %dx%d, want 40x40", b.Dx(), b.Dy())
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("GetVersion() = %q, want %q", GetVersion(), Version)
	}
}
