package transform

import (
	"fmt"
)

// Config holds the transformation parameters. A Config is validated once
// when a Transformer is constructed and never changes afterwards.
type Config struct {
	// Rotation adds a delta in radians to the rect's rotation. At most
	// one of Rotation and RotationDegrees may be set.
	Rotation *float64

	// RotationDegrees adds a delta in degrees to the rect's rotation.
	RotationDegrees *float64

	// ShiftX and ShiftY move the center along the rect's own axes, as
	// fractions of the rect's width and height. Applied before resizing.
	ShiftX float64
	ShiftY float64

	// SquareLong grows the short side to match the long side. SquareShort
	// shrinks the long side to match the short side. At most one may be
	// set; if neither, the aspect ratio is kept.
	SquareLong  bool
	SquareShort bool

	// ScaleX and ScaleY multiply the width and height after squaring.
	// Zero means 1.0 (no scaling).
	ScaleX float64
	ScaleY float64
}

// DefaultConfig returns a configuration that leaves rects unchanged.
func DefaultConfig() Config {
	return Config{
		ScaleX: 1.0,
		ScaleY: 1.0,
	}
}

// Validate checks the mutually-exclusive option pairs.
func (c Config) Validate() error {
	if c.Rotation != nil && c.RotationDegrees != nil {
		return fmt.Errorf("rotation and rotation_degrees are mutually exclusive")
	}
	if c.SquareLong && c.SquareShort {
		return fmt.Errorf("square_long and square_short are mutually exclusive")
	}
	return nil
}

// hasRotationDelta reports whether a rotation delta is configured.
func (c Config) hasRotationDelta() bool {
	return c.Rotation != nil || c.RotationDegrees != nil
}

// Float64 returns a pointer to v, for use with the optional Config fields.
func Float64(v float64) *float64 {
	return &v
}
