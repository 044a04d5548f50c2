package transform

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestNormalizeRadiansRange(t *testing.T) {
	angles := []float64{
		0, 1, -1, math.Pi - 0.001, -math.Pi, 3.5, -3.5,
		10 * math.Pi, -10 * math.Pi, 123.456, -987.654,
	}

	for _, a := range angles {
		got := NormalizeRadians(a)
		if got < -math.Pi || got >= math.Pi {
			t.Errorf("NormalizeRadians(%v) = %v, outside [-Pi, Pi)", a, got)
		}
	}
}

func TestNormalizeRadiansPeriodicity(t *testing.T) {
	angles := []float64{0, 0.5, -0.5, 2.0, -2.0, 3.0}
	ks := []int{-3, -1, 1, 2, 5}

	for _, a := range angles {
		want := NormalizeRadians(a)
		for _, k := range ks {
			shifted := a + 2*math.Pi*float64(k)
			got := NormalizeRadians(shifted)
			// Tolerance grows with the magnitude of the wrapped input.
			tol := 1e-9 * math.Max(1, math.Abs(shifted))
			if math.Abs(got-want) > tol {
				t.Errorf("NormalizeRadians(%v + 2*Pi*%d) = %v, want %v", a, k, got, want)
			}
		}
	}
}

func TestNormalizeRadiansBoundary(t *testing.T) {
	// -Pi is in range and maps to itself; +Pi wraps to -Pi.
	if got := NormalizeRadians(-math.Pi); math.Abs(got-(-math.Pi)) > epsilon {
		t.Errorf("NormalizeRadians(-Pi) = %v, want -Pi", got)
	}
	if got := NormalizeRadians(math.Pi); math.Abs(got-(-math.Pi)) > epsilon {
		t.Errorf("NormalizeRadians(Pi) = %v, want -Pi", got)
	}
}

func TestResolveRotationRadians(t *testing.T) {
	cfg := Config{Rotation: Float64(math.Pi / 2)}

	got := cfg.resolveRotation(math.Pi / 2)
	if math.Abs(got-math.Pi) > epsilon && math.Abs(got-(-math.Pi)) > epsilon {
		t.Errorf("resolveRotation(Pi/2) = %v, want +/-Pi", got)
	}

	got = cfg.resolveRotation(0)
	if math.Abs(got-math.Pi/2) > epsilon {
		t.Errorf("resolveRotation(0) = %v, want Pi/2", got)
	}
}

func TestResolveRotationDegrees(t *testing.T) {
	cfg := Config{RotationDegrees: Float64(90)}

	got := cfg.resolveRotation(0)
	if math.Abs(got-math.Pi/2) > epsilon {
		t.Errorf("resolveRotation(0) with 90 degrees = %v, want Pi/2", got)
	}

	cfg = Config{RotationDegrees: Float64(-450)}
	got = cfg.resolveRotation(0)
	if math.Abs(got-(-math.Pi/2)) > epsilon {
		t.Errorf("resolveRotation(0) with -450 degrees = %v, want -Pi/2", got)
	}
}

func TestResolveRotationNoDelta(t *testing.T) {
	// Without a delta the resolver still normalizes.
	cfg := Config{}
	got := cfg.resolveRotation(3 * math.Pi)
	if math.Abs(got-(-math.Pi)) > 1e-8 && math.Abs(got-math.Pi) > 1e-8 {
		t.Errorf("resolveRotation(3*Pi) = %v, want wrapped to +/-Pi", got)
	}
}
