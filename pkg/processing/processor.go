package processing

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/rect-transform/pkg/types"
)

// Processor handles image loading, saving and region extraction. It is
// the downstream consumer of transformed rects.
type Processor struct{}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// LoadImageFromURL downloads and loads an image from a URL
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequest("GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", "Rect-Transform/1.0 (+https://github.com/menta2k/rect-transform)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %v", err)
	}

	return p.decodeImageFromBytes(imageData)
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	low := strings.ToLower(path)
	if strings.HasSuffix(low, ".webp") || strings.Contains(low, ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
		if _, err := f.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(f); err == nil {
				return img, nil
			}
		}
	} else {
		if _, err := f.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(f); err == nil {
				return img, nil
			}
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

// decodeImageFromBytes decodes an image from byte data with WebP support
func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	reader := bytes.NewReader(data)
	if img, _, err := image.Decode(reader); err == nil {
		return img, nil
	}

	reader = bytes.NewReader(data)
	if img, err := webp.Decode(reader); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// ImageSize returns the pixel dimensions of an image.
func (p *Processor) ImageSize(img image.Image) types.ImageSize {
	bounds := img.Bounds()
	return types.ImageSize{Width: bounds.Dx(), Height: bounds.Dy()}
}

// PrepareImageForModel converts an image to base64 for sending to vision models
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ExtractRect crops the region described by a normalized rect out of the
// image. Axis-aligned rects are cropped directly; rotated rects are
// extracted by turning the source upright first, so the result is always
// an unrotated w x h image.
func (p *Processor) ExtractRect(img image.Image, r types.NormalizedRect) (image.Image, error) {
	bounds := img.Bounds()
	px := r.ToRect(types.ImageSize{Width: bounds.Dx(), Height: bounds.Dy()})

	w := int(px.Width + 0.5)
	h := int(px.Height + 0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty rect %vx%v", px.Width, px.Height)
	}

	if px.Rotation == 0 {
		rect := image.Rect(
			int(px.XCenter-px.Width/2+0.5),
			int(px.YCenter-px.Height/2+0.5),
			int(px.XCenter+px.Width/2+0.5),
			int(px.YCenter+px.Height/2+0.5),
		).Intersect(bounds)
		if rect.Empty() {
			return nil, fmt.Errorf("rect lies outside the image")
		}
		return imaging.Crop(img, rect), nil
	}

	// Rotating the source by the rect's angle makes the rect upright.
	// imaging.Rotate grows the canvas, keeping the image center fixed, so
	// the rect center is re-located by the same rotation about the center.
	deg := px.Rotation * 180 / math.Pi
	rotated := imaging.Rotate(img, deg, color.NRGBA{})

	sin, cos := math.Sincos(px.Rotation)
	dx := px.XCenter - float64(bounds.Dx())/2
	dy := px.YCenter - float64(bounds.Dy())/2
	rb := rotated.Bounds()
	cx := float64(rb.Dx())/2 + dx*cos + dy*sin
	cy := float64(rb.Dy())/2 - dx*sin + dy*cos

	rect := image.Rect(
		int(cx-px.Width/2+0.5),
		int(cy-px.Height/2+0.5),
		int(cx+px.Width/2+0.5),
		int(cy+px.Height/2+0.5),
	).Intersect(rotated.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("rect lies outside the image")
	}
	return imaging.Crop(rotated, rect), nil
}

// ExtractAndFit extracts a rect and resizes the result to exact target
// dimensions, cropping to preserve the aspect ratio.
func (p *Processor) ExtractAndFit(img image.Image, r types.NormalizedRect, targetWidth, targetHeight int) (image.Image, error) {
	cropped, err := p.ExtractRect(img, r)
	if err != nil {
		return nil, err
	}
	if targetWidth > 0 && targetHeight > 0 {
		cropped = imaging.Fill(cropped, targetWidth, targetHeight, imaging.Center, imaging.Lanczos)
	}
	return cropped, nil
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// CreateDebugOverlay draws the input rect (green), the transformed rect
// (gold, following its rotation) and the transformed center (red) onto a
// copy of the image.
func (p *Processor) CreateDebugOverlay(img image.Image, input, transformed types.NormalizedRect) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	green := color.NRGBA{0, 255, 0, 255}                    // input rect
	gold := color.NRGBA{255, 204, 0, 255}                   // transformed rect
	red := color.NRGBA{255, 0, 0, 255}                      // transformed center
	blue := color.NRGBA{0, 170, 255, 255}                   // image center
	stroke := int(math.Max(2, 0.004*float64(minInt(w, h)))) // ~0.4% of min side
	cross := int(math.Max(4, 0.01*float64(minInt(w, h))))   // ~1% of min side

	drawRect(nrgba, input, w, h, green, stroke)

	if transformed.Width > 0 && transformed.Height > 0 {
		drawRect(nrgba, transformed, w, h, gold, stroke)
	}

	// Transformed center crosshair
	px := int(clamp(transformed.XCenter, 0, 1)*float64(w) + 0.5)
	py := int(clamp(transformed.YCenter, 0, 1)*float64(h) + 0.5)
	drawHLine(nrgba, py, px-cross, px+cross, red)
	drawVLine(nrgba, px, py-cross, py+cross, red)

	// Image center marker
	ix, iy := w/2, h/2
	drawHLine(nrgba, iy, ix-6, ix+6, blue)
	drawVLine(nrgba, ix, iy-6, iy+6, blue)

	return nrgba
}

// Helper functions
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// rectCorners returns the four corners of a normalized rect in pixel
// coordinates, in drawing order.
func rectCorners(r types.NormalizedRect, w, h int) [4][2]float64 {
	cx := r.XCenter * float64(w)
	cy := r.YCenter * float64(h)
	hw := r.Width * float64(w) / 2
	hh := r.Height * float64(h) / 2
	sin, cos := math.Sincos(r.Rotation)

	var corners [4][2]float64
	offsets := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	for i, o := range offsets {
		corners[i][0] = cx + o[0]*cos - o[1]*sin
		corners[i][1] = cy + o[0]*sin + o[1]*cos
	}
	return corners
}

func drawRect(img *image.NRGBA, r types.NormalizedRect, w, h int, c color.NRGBA, stroke int) {
	if r.Rotation == 0 {
		x0 := int(clamp(r.XCenter-r.Width/2, 0, 1)*float64(w) + 0.5)
		y0 := int(clamp(r.YCenter-r.Height/2, 0, 1)*float64(h) + 0.5)
		x1 := int(clamp(r.XCenter+r.Width/2, 0, 1)*float64(w) + 0.5)
		y1 := int(clamp(r.YCenter+r.Height/2, 0, 1)*float64(h) + 0.5)
		if x1 <= x0 {
			x1 = x0 + 1
		}
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for s := 0; s < stroke; s++ {
			drawHLine(img, y0+s, x0, x1, c)
			drawHLine(img, y1-1-s, x0, x1, c)
			drawVLine(img, x0+s, y0, y1, c)
			drawVLine(img, x1-1-s, y0, y1, c)
		}
		return
	}

	corners := rectCorners(r, w, h)
	for i := 0; i < 4; i++ {
		a := corners[i]
		b := corners[(i+1)%4]
		for s := 0; s < stroke; s++ {
			drawLine(img, int(a[0])+s, int(a[1]), int(b[0])+s, int(b[1]), c)
		}
	}
}

// drawLine draws a straight line segment using integer stepping.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	steps := dx
	if dy > steps {
		steps = dy
	}
	if steps == 0 {
		setPixel(img, x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + (x1-x0)*i/steps
		y := y0 + (y1-y0)*i/steps
		setPixel(img, x, y, c)
	}
}

func setPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= img.Bounds().Dx() || y >= img.Bounds().Dy() {
		return
	}
	i := y*img.Stride + x*4
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
