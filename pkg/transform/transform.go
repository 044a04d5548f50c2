// Package transform applies geometric transformations to rotated
// rectangles: a rotation delta, a shift along the rect's own axes,
// optional squaring of the aspect ratio, and per-axis scaling.
//
// Rects come in two coordinate spaces. An absolute Rect carries pixel
// units; a NormalizedRect carries fractions of an accompanying image's
// width and height. The two spaces share the same transformation steps,
// but shift and squaring on a normalized rect must be computed in
// pixel-equivalent units, because a fractional width and a fractional
// height only represent the same physical length when the image is
// square.
package transform

import (
	"math"

	"github.com/menta2k/rect-transform/pkg/types"
)

// Transformer applies a validated Config to rects. Each call is a pure
// function of its inputs; a Transformer is safe for concurrent use.
type Transformer struct {
	config Config
}

// New creates a Transformer, rejecting configs that set both forms of a
// mutually-exclusive option pair.
func New(config Config) (*Transformer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.ScaleX == 0 {
		config.ScaleX = 1.0
	}
	if config.ScaleY == 0 {
		config.ScaleY = 1.0
	}
	return &Transformer{config: config}, nil
}

// Config returns the transformer's configuration.
func (t *Transformer) Config() Config {
	return t.config
}

// TransformRect transforms a rect in absolute pixel coordinates.
func (t *Transformer) TransformRect(r types.Rect) types.Rect {
	xc, yc, w, h, rot := t.apply(r.XCenter, r.YCenter, r.Width, r.Height, r.Rotation, 1, 1)
	return types.Rect{XCenter: xc, YCenter: yc, Width: w, Height: h, Rotation: rot}
}

// TransformNormalizedRect transforms a rect whose coordinates are
// fractions of the given image size.
func (t *Transformer) TransformNormalizedRect(r types.NormalizedRect, size types.ImageSize) types.NormalizedRect {
	pxW, pxH := float64(size.Width), float64(size.Height)
	xc, yc, w, h, rot := t.apply(r.XCenter, r.YCenter, r.Width, r.Height, r.Rotation, pxW, pxH)
	return types.NormalizedRect{XCenter: xc, YCenter: yc, Width: w, Height: h, Rotation: rot}
}

// apply runs the shared shift/square/scale sequence. pxW and pxH give the
// pixel length of one width unit and one height unit: 1 for absolute
// rects, the image dimensions for normalized ones.
//
// Width, height and rotation are captured up front; squaring always works
// on the pre-shift size, and the shift direction uses whichever rotation
// value is current after the conditional recompute.
func (t *Transformer) apply(xc, yc, width, height, rotation, pxW, pxH float64) (float64, float64, float64, float64, float64) {
	c := t.config

	if c.hasRotationDelta() {
		rotation = c.resolveRotation(rotation)
	}

	if rotation == 0 {
		// Exact zero keeps axis-aligned shifts free of trig round-off.
		xc += width * c.ShiftX
		yc += height * c.ShiftY
	} else {
		sin, cos := math.Sincos(rotation)
		xShift := (pxW*width*c.ShiftX*cos - pxH*height*c.ShiftY*sin) / pxW
		yShift := (pxW*width*c.ShiftX*sin + pxH*height*c.ShiftY*cos) / pxH
		xc += xShift
		yc += yShift
	}

	if c.SquareLong {
		longSide := math.Max(width*pxW, height*pxH)
		width = longSide / pxW
		height = longSide / pxH
	} else if c.SquareShort {
		shortSide := math.Min(width*pxW, height*pxH)
		width = shortSide / pxW
		height = shortSide / pxH
	}

	return xc, yc, width * c.ScaleX, height * c.ScaleY, rotation
}
