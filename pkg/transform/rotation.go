package transform

import (
	"math"
)

// NormalizeRadians wraps an angle to the half-open interval [-Pi, Pi).
// Wrap-around, not clamping: any finite input lands in range, including
// values many multiples of 2*Pi away.
func NormalizeRadians(angle float64) float64 {
	return angle - 2*math.Pi*math.Floor((angle-(-math.Pi))/(2*math.Pi))
}

// resolveRotation combines the configured rotation delta with the rect's
// current rotation and normalizes the result.
func (c Config) resolveRotation(rotation float64) float64 {
	if c.Rotation != nil {
		rotation += *c.Rotation
	} else if c.RotationDegrees != nil {
		rotation += math.Pi * *c.RotationDegrees / 180
	}
	return NormalizeRadians(rotation)
}
