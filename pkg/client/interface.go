package client

import (
	"context"

	"github.com/menta2k/rect-transform/pkg/types"
)

// VisionClient locates the primary subject of an image, producing the
// rectangle that seeds the transformation pipeline.
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	DetectRect(ctx context.Context, model, prompt, imgB64 string) (*types.DetectionResult, error)
}
