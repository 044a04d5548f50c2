package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/rect-transform/pkg/transform"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestValidateConflictingTransform(t *testing.T) {
	cfg := Default()
	rot := 0.5
	deg := 45.0
	cfg.Transform.Rotation = &rot
	cfg.Transform.RotationDegrees = &deg

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for conflicting rotation options")
	}

	cfg = Default()
	cfg.Transform.SquareLong = true
	cfg.Transform.SquareShort = true

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for conflicting squaring options")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Detector.Backend = "mystery"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg = Default()
	cfg.Output.Quality = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero output quality")
	}

	cfg = Default()
	cfg.Output.Format = "bmp"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported output format")
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	cfg := Default()
	deg := 90.0
	cfg.Transform.RotationDegrees = &deg
	cfg.Transform.ShiftY = -0.5
	cfg.Transform.SquareLong = true
	cfg.Transform.ScaleX = 2.6
	cfg.Transform.ScaleY = 2.6

	path := filepath.Join(t.TempDir(), "config.json")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if loaded.Transform.RotationDegrees == nil || *loaded.Transform.RotationDegrees != 90 {
		t.Errorf("rotation_degrees did not survive roundtrip: %+v", loaded.Transform)
	}
	if loaded.Transform.Rotation != nil {
		t.Error("rotation should stay unset after roundtrip")
	}
	if !loaded.Transform.SquareLong || loaded.Transform.ScaleX != 2.6 {
		t.Errorf("transform options did not survive roundtrip: %+v", loaded.Transform)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"transform": {"shift_y": -0.5, "square_long": true}}`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if loaded.Transform.ShiftY != -0.5 || !loaded.Transform.SquareLong {
		t.Errorf("file values not applied: %+v", loaded.Transform)
	}
	if loaded.Transform.ScaleX != 1 || loaded.Transform.ScaleY != 1 {
		t.Errorf("default scales lost: %+v", loaded.Transform)
	}
	if loaded.Output.Quality != 90 || loaded.Detector.Backend != "saliency" {
		t.Errorf("defaults lost for sections missing from the file: %+v", loaded)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("partial file failed validation: %v", err)
	}
}

func TestToTransform(t *testing.T) {
	cfg := Default()
	cfg.Transform.ShiftX = 0.3

	tc := cfg.Transform.ToTransform()
	if _, err := transform.New(tc); err != nil {
		t.Errorf("transform.New rejected converted config: %v", err)
	}
	if tc.ShiftX != 0.3 {
		t.Errorf("ShiftX = %v, want 0.3", tc.ShiftX)
	}
}
