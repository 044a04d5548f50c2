// Package vision proposes a subject rectangle from image content alone,
// using a simple saliency heuristic. It serves as the model-free backend
// when no vision server is available.
package vision

import (
	"image"
	"math"

	"github.com/menta2k/rect-transform/pkg/types"
)

// SaliencyProposer finds the most salient rectangular region of an image
type SaliencyProposer struct {
	config ProposerConfig
}

// ProposerConfig holds configuration for saliency-based region proposal
type ProposerConfig struct {
	EdgeThreshold  float64
	ContrastWeight float64
	ColorWeight    float64
	MinRegionRatio float64
}

// New creates a new SaliencyProposer with default configuration
func New() *SaliencyProposer {
	return &SaliencyProposer{
		config: ProposerConfig{
			EdgeThreshold:  0.01,
			ContrastWeight: 0.3,
			ColorWeight:    0.2,
			MinRegionRatio: 0.05,
		},
	}
}

// NewWithConfig creates a new SaliencyProposer with custom configuration
func NewWithConfig(config ProposerConfig) *SaliencyProposer {
	return &SaliencyProposer{config: config}
}

// Region represents a scored rectangular region in pixel coordinates
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
	Score  float64
}

// Center returns the center point of the region
func (r Region) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Area returns the area of the region
func (r Region) Area() int {
	return r.Width * r.Height
}

// Rect converts the region to a normalized center-based rect relative to
// the given image size.
func (r Region) Rect(size types.ImageSize) types.NormalizedRect {
	w, h := float64(size.Width), float64(size.Height)
	return types.NormalizedRect{
		XCenter: (float64(r.X) + float64(r.Width)/2) / w,
		YCenter: (float64(r.Y) + float64(r.Height)/2) / h,
		Width:   float64(r.Width) / w,
		Height:  float64(r.Height) / h,
	}
}

// ProposeRect returns the most salient region of the image as a
// normalized rect. When nothing stands out, it falls back to a centered
// rect covering half the image.
func (p *SaliencyProposer) ProposeRect(img image.Image) (types.NormalizedRect, error) {
	bounds := img.Bounds()
	size := types.ImageSize{Width: bounds.Dx(), Height: bounds.Dy()}

	regions, err := p.DetectRegions(img)
	if err != nil {
		return types.NormalizedRect{}, err
	}
	if len(regions) == 0 {
		return types.NormalizedRect{XCenter: 0.5, YCenter: 0.5, Width: 0.5, Height: 0.5}, nil
	}
	return regions[0].Rect(size), nil
}

// DetectRegions analyzes an image and returns scored regions of
// interest, best first.
func (p *SaliencyProposer) DetectRegions(img image.Image) ([]Region, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	saliencyMap := p.calculateSaliencyMap(img)

	regions := p.findSalientRegions(saliencyMap, width, height)
	filtered := p.filterAndSortRegions(regions, width, height)

	// Limit to top regions to avoid too many results
	maxRegions := 10
	if len(filtered) > maxRegions {
		filtered = filtered[:maxRegions]
	}

	return filtered, nil
}

func (p *SaliencyProposer) calculateSaliencyMap(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	saliencyMap := make([][]float64, height)
	for i := range saliencyMap {
		saliencyMap[i] = make([]float64, width)
	}

	// Saliency from local edge strength and brightness
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			currentColor := img.At(x+bounds.Min.X, y+bounds.Min.Y)
			r1, g1, b1, _ := currentColor.RGBA()

			var edgeStrength float64

			neighbors := [][]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

			for _, offset := range neighbors {
				nx, ny := x+offset[0], y+offset[1]
				neighborColor := img.At(nx+bounds.Min.X, ny+bounds.Min.Y)
				r2, g2, b2, _ := neighborColor.RGBA()

				dr := float64(r1) - float64(r2)
				dg := float64(g1) - float64(g2)
				db := float64(b1) - float64(b2)

				colorDiff := math.Sqrt(dr*dr + dg*dg + db*db)
				edgeStrength += colorDiff
			}

			// 8 neighbors, max channel value 65535
			edgeStrength /= (8.0 * 65535.0)

			brightness := (float64(r1) + float64(g1) + float64(b1)) / (3.0 * 65535.0)

			saliencyMap[y][x] = p.config.ContrastWeight*edgeStrength + p.config.ColorWeight*brightness
		}
	}

	return saliencyMap
}

func (p *SaliencyProposer) findSalientRegions(saliencyMap [][]float64, width, height int) []Region {
	var regions []Region

	// Sliding windows at several scales
	windowSizes := []int{width / 20, width / 16, width / 12, width / 8, width / 4}

	for _, windowSize := range windowSizes {
		if windowSize < 10 {
			continue
		}
		windowHeight := windowSize

		for y := 0; y <= height-windowHeight; y += windowSize / 8 {
			for x := 0; x <= width-windowSize; x += windowSize / 8 {
				score := p.calculateRegionScore(saliencyMap, x, y, windowSize, windowHeight)

				if score > p.config.EdgeThreshold {
					regions = append(regions, Region{
						X:      x,
						Y:      y,
						Width:  windowSize,
						Height: windowHeight,
						Score:  score,
					})
				}
			}
		}
	}

	return regions
}

func (p *SaliencyProposer) calculateRegionScore(saliencyMap [][]float64, x, y, width, height int) float64 {
	var totalScore float64
	count := 0

	for ry := y; ry < y+height && ry < len(saliencyMap); ry++ {
		for rx := x; rx < x+width && rx < len(saliencyMap[0]); rx++ {
			totalScore += saliencyMap[ry][rx]
			count++
		}
	}

	if count == 0 {
		return 0
	}

	return totalScore / float64(count)
}

func (p *SaliencyProposer) filterAndSortRegions(regions []Region, imageWidth, imageHeight int) []Region {
	var filtered []Region

	imageArea := imageWidth * imageHeight
	minArea := int(float64(imageArea) * p.config.MinRegionRatio)

	for _, region := range regions {
		if region.Area() >= minArea {
			filtered = append(filtered, region)
		}
	}

	// Sort by score (descending)
	for i := 0; i < len(filtered)-1; i++ {
		for j := i + 1; j < len(filtered); j++ {
			if filtered[i].Score < filtered[j].Score {
				filtered[i], filtered[j] = filtered[j], filtered[i]
			}
		}
	}

	return filtered
}
