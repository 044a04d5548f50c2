// Package recttransform provides geometric transformation of rotated
// rectangles and extraction of the resulting regions from images.
//
// Given a rectangle described by center, size and rotation, the engine
// produces a new rectangle by applying, in a fixed order, a rotation
// delta, a shift expressed in the rectangle's own frame, an optional
// squaring of the aspect ratio, and independent per-axis scaling. Rects
// exist in two coordinate spaces: absolute pixel space, and normalized
// space where all fields are fractions of an accompanying image's
// dimensions. The typical use is expanding a detector's bounding box
// into a stable crop region.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		recttransform "github.com/menta2k/rect-transform"
//		"github.com/menta2k/rect-transform/pkg/transform"
//		"github.com/menta2k/rect-transform/pkg/types"
//	)
//
//	func main() {
//		// Square the detection box and grow it 2.6x, nudged upwards —
//		// the classic detection-to-crop expansion.
//		engine, err := recttransform.New(transform.Config{
//			ShiftY:     -0.5,
//			SquareLong: true,
//			ScaleX:     2.6,
//			ScaleY:     2.6,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		detected := types.NormalizedRect{XCenter: 0.5, YCenter: 0.4, Width: 0.2, Height: 0.3}
//		size := types.ImageSize{Width: 1920, Height: 1080}
//
//		crop := engine.TransformNormalizedRect(detected, size)
//		log.Printf("crop region: %+v", crop)
//	}
//
// The package consists of three main components:
//
// 1. Transform (pkg/transform): The pure transformation mathematics
// 2. Processing (pkg/processing): Image loading, saving and rect extraction
// 3. Detection (pkg/detection, pkg/vision): Subject localization producing input rects
package recttransform

import (
	"fmt"
	"image"

	"github.com/menta2k/rect-transform/pkg/processing"
	"github.com/menta2k/rect-transform/pkg/transform"
	"github.com/menta2k/rect-transform/pkg/types"
)

// Version of the rect-transform library
const Version = "1.0.0"

// Engine combines the rect transformer with the image processor
type Engine struct {
	transformer *transform.Transformer
	processor   *processing.Processor
}

// New creates an Engine from a transform configuration. The
// configuration is validated once; conflicting option pairs are rejected
// here, before any transform runs.
func New(cfg transform.Config) (*Engine, error) {
	transformer, err := transform.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid transform config: %w", err)
	}

	return &Engine{
		transformer: transformer,
		processor:   processing.NewProcessor(),
	}, nil
}

// Request carries exactly one rect variant. The normalized variant must
// be accompanied by the image size it refers to.
type Request struct {
	Rect      *types.Rect
	NormRect  *types.NormalizedRect
	ImageSize *types.ImageSize
}

// Result carries the transformed rect in the same variant as the request.
type Result struct {
	Rect     *types.Rect
	NormRect *types.NormalizedRect
}

// Transform applies the configured transformation to the rect variant
// present in the request.
func (e *Engine) Transform(req Request) (Result, error) {
	if (req.Rect == nil) == (req.NormRect == nil) {
		return Result{}, fmt.Errorf("exactly one of Rect and NormRect must be set")
	}

	if req.Rect != nil {
		out := e.transformer.TransformRect(*req.Rect)
		return Result{Rect: &out}, nil
	}

	if req.ImageSize == nil {
		return Result{}, fmt.Errorf("NormRect requires ImageSize")
	}
	out := e.transformer.TransformNormalizedRect(*req.NormRect, *req.ImageSize)
	return Result{NormRect: &out}, nil
}

// TransformRect transforms a rect in absolute pixel coordinates.
func (e *Engine) TransformRect(r types.Rect) types.Rect {
	return e.transformer.TransformRect(r)
}

// TransformNormalizedRect transforms a rect given as fractions of the
// image size.
func (e *Engine) TransformNormalizedRect(r types.NormalizedRect, size types.ImageSize) types.NormalizedRect {
	return e.transformer.TransformNormalizedRect(r, size)
}

// ExtractRect crops the region described by a normalized rect out of the
// image.
func (e *Engine) ExtractRect(img image.Image, r types.NormalizedRect) (image.Image, error) {
	return e.processor.ExtractRect(img, r)
}

// TransformAndExtract transforms a normalized rect against the image's
// own dimensions and crops the resulting region. It returns the crop and
// the transformed rect.
func (e *Engine) TransformAndExtract(img image.Image, r types.NormalizedRect) (image.Image, types.NormalizedRect, error) {
	size := e.processor.ImageSize(img)
	out := e.transformer.TransformNormalizedRect(r, size)

	cropped, err := e.processor.ExtractRect(img, out)
	if err != nil {
		return nil, out, fmt.Errorf("failed to extract transformed rect: %w", err)
	}
	return cropped, out, nil
}

// LoadImage loads an image from a file path or URL
func (e *Engine) LoadImage(source string) (image.Image, error) {
	return e.processor.LoadImageSmart(source)
}

// SaveImage saves an image with the specified format and quality
func (e *Engine) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	return e.processor.SaveImage(img, path, format, quality, lossless)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
