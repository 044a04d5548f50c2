package detection

import (
	"context"
	"strings"

	"github.com/menta2k/rect-transform/pkg/client"
	"github.com/menta2k/rect-transform/pkg/types"
)

// SimpleTestPrompt for testing if the model can see images
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt is the default prompt for subject localization
const DefaultPrompt = `You are an image subject locator.

Return JSON only:
{
  "primary": {
    "label": "string",
    "confidence": 0.0,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0},
    "cx": 0.0,
    "cy": 0.0
  },
  "description": "short neutral sentence (<= 20 words)",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels).
- The box should tightly include the visually dominant subject (prefer people/vehicles/animals; else the most central salient object).
- cx and cy are the center of the box.
- Description must be brief and factual. Do not guess real identities.
- Tags: lowercase, concise, no punctuation or duplicates.
- If no subject is found, return:
  {
    "primary":{"label":"none","confidence":0.0,"box":{"x":0.25,"y":0.25,"w":0.50,"h":0.50},"cx":0.5,"cy":0.5},
    "description":"centered generic scene",
    "tags":["generic","center","subject","photo","scene"]
  }
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Detector locates the primary subject of an image through a vision
// backend and hands the result over as a normalized rect.
type Detector struct {
	client client.VisionClient
}

// NewDetector creates a new detector with a vision client
func NewDetector(client client.VisionClient) *Detector {
	return &Detector{client: client}
}

// DetectRect analyzes an image and returns the primary subject as a
// normalized rect, along with the full detection result.
func (d *Detector) DetectRect(ctx context.Context, model, imageB64 string) (types.NormalizedRect, *types.DetectionResult, error) {
	result, err := d.DetectWithPrompt(ctx, model, imageB64, DefaultPrompt)
	if err != nil {
		return types.NormalizedRect{}, nil, err
	}
	return result.Primary.Rect(), result, nil
}

// DetectWithPrompt analyzes an image with a custom prompt
func (d *Detector) DetectWithPrompt(ctx context.Context, model, imageB64, prompt string) (*types.DetectionResult, error) {
	result, err := d.client.DetectRect(ctx, model, prompt, imageB64)
	if err != nil {
		return nil, err
	}

	result.Primary.Box = clampBox(result.Primary.Box)
	result.Tags = normalizeTags(result.Tags)
	result = validateResult(result)

	return result, nil
}

// TestVision tests if the model can actually see the image with a simple prompt
func (d *Detector) TestVision(ctx context.Context, model, imageB64 string) (string, error) {
	return d.client.SimpleQuery(ctx, model, SimpleTestPrompt, imageB64)
}

// validateResult marks unusable detections as "none" so callers can fall
// back to a centered rect.
func validateResult(result *types.DetectionResult) *types.DetectionResult {
	if strings.ToLower(result.Primary.Label) == "none" {
		return result
	}

	fallbackIndicators := []string{"unclear", "empty", "parse", "error", "fallback", "non-json", "generic"}
	for _, indicator := range fallbackIndicators {
		if strings.Contains(strings.ToLower(result.Primary.Label), indicator) ||
			strings.Contains(strings.ToLower(result.Description), indicator) {
			result.Primary.Label = "none"
			result.Primary.Confidence = 0.0
			break
		}
	}

	return result
}

// clamp ensures a value is within the given bounds
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampBox ensures box coordinates are within [0,1] bounds
func clampBox(b types.Box) types.Box {
	return types.Box{
		X: clamp(b.X, 0, 1),
		Y: clamp(b.Y, 0, 1),
		W: clamp(b.W, 0, 1),
		H: clamp(b.H, 0, 1),
	}
}

// normalizeTags ensures tags are cleaned and limited to 5 entries
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 5)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == 5 {
			break
		}
	}
	return out
}
