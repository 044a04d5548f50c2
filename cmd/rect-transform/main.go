package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	recttransform "github.com/menta2k/rect-transform"
	"github.com/menta2k/rect-transform/internal/config"
	"github.com/menta2k/rect-transform/internal/utils"
	"github.com/menta2k/rect-transform/pkg/client"
	"github.com/menta2k/rect-transform/pkg/detection"
	"github.com/menta2k/rect-transform/pkg/llamacpp"
	"github.com/menta2k/rect-transform/pkg/ollama"
	"github.com/menta2k/rect-transform/pkg/processing"
	"github.com/menta2k/rect-transform/pkg/transform"
	"github.com/menta2k/rect-transform/pkg/types"
	"github.com/menta2k/rect-transform/pkg/vision"
)

func main() {
	var in, outDir, rectSpec, model, url, ext string
	var configFile string
	var backend string
	var quality int
	var lossless bool
	var sendFmt string
	var sendSize int
	var sendQ int
	var debug bool
	var checkVision bool

	var shiftX, shiftY float64
	var rotate, rotateDeg float64
	var square string
	var scale, scaleX, scaleY float64

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&configFile, "config", "", "config file (JSON); default: "+config.GetConfigPath()+" when present")
	flag.StringVar(&outDir, "out", "out", "output directory")
	flag.StringVar(&rectSpec, "rect", "", "input rect as cx,cy,w,h[,rot] in normalized coordinates (skips detection)")

	flag.StringVar(&model, "model", "openbmb/minicpm-v4.5", "model name")
	flag.StringVar(&backend, "backend", "saliency", "detection backend: ollama, llamacpp or saliency")
	flag.StringVar(&url, "url", "", "server URL (defaults: ollama=http://localhost:11435, llamacpp=http://localhost:8080)")

	flag.Float64Var(&shiftX, "shift-x", 0, "shift along the rect's x axis, as a fraction of its width")
	flag.Float64Var(&shiftY, "shift-y", 0, "shift along the rect's y axis, as a fraction of its height")
	flag.Float64Var(&rotate, "rotate", 0, "rotation delta in radians")
	flag.Float64Var(&rotateDeg, "rotate-deg", 0, "rotation delta in degrees")
	flag.StringVar(&square, "square", "", "square the rect: long|short")
	flag.Float64Var(&scale, "scale", 0, "uniform scale factor (overrides -scale-x/-scale-y)")
	flag.Float64Var(&scaleX, "scale-x", 1, "width scale factor")
	flag.Float64Var(&scaleY, "scale-y", 1, "height scale factor")

	flag.StringVar(&ext, "ext", "jpg", "output format for the crop: jpg|png|webp")
	flag.IntVar(&quality, "quality", 90, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")

	flag.StringVar(&sendFmt, "sendfmt", "jpg", "format sent to the vision model: jpg|png")
	flag.IntVar(&sendSize, "sendsize", 1536, "max long side sent to the vision model (px), 0=original")
	flag.IntVar(&sendQ, "sendq", 85, "JPEG quality for the image sent to the vision model (1-100)")

	flag.BoolVar(&debug, "debug", false, "create a debug overlay image")
	flag.BoolVar(&checkVision, "check-vision", false, "ask the model to describe the image before detecting (ollama/llamacpp only)")

	flag.Parse()
	if in == "" {
		log.Fatalf("usage: %s -in input.jpg|URL [-rect cx,cy,w,h[,rot]] [-backend ollama|llamacpp|saliency] [-square long|short] [-scale 2.6] [-shift-y -0.5] [-out outdir]", filepath.Base(os.Args[0]))
	}
	if !strings.HasPrefix(in, "http://") && !strings.HasPrefix(in, "https://") {
		if !utils.FileExists(in) {
			log.Fatalf("input file not found: %s", in)
		}
		if !utils.IsImageFile(in) {
			log.Printf("warning: %s has no known image extension", in)
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	fileCfg := config.Default()
	switch {
	case configFile != "":
		var err error
		fileCfg, err = config.LoadFromFile(configFile)
		if err != nil {
			log.Fatal(err)
		}
	case utils.FileExists(config.GetConfigPath()):
		var err error
		fileCfg, err = config.LoadFromFile(config.GetConfigPath())
		if err != nil {
			log.Fatal(err)
		}
	}
	if err := fileCfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// The config file supplies defaults; explicit flags win.
	if !set["backend"] && fileCfg.Detector.Backend != "" {
		backend = fileCfg.Detector.Backend
	}
	if !set["model"] && fileCfg.Detector.Model != "" {
		model = fileCfg.Detector.Model
	}
	if !set["url"] && fileCfg.Detector.URL != "" {
		url = fileCfg.Detector.URL
	}
	if !set["sendfmt"] && fileCfg.Detector.SendFormat != "" {
		sendFmt = fileCfg.Detector.SendFormat
	}
	if !set["sendsize"] && fileCfg.Detector.SendSize > 0 {
		sendSize = fileCfg.Detector.SendSize
	}
	if !set["sendq"] && fileCfg.Detector.SendQ > 0 {
		sendQ = fileCfg.Detector.SendQ
	}
	if !set["ext"] && fileCfg.Output.Format != "" {
		ext = fileCfg.Output.Format
	}
	if !set["quality"] && fileCfg.Output.Quality > 0 {
		quality = fileCfg.Output.Quality
	}
	if !set["lossless"] {
		lossless = fileCfg.Output.Lossless
	}
	if !set["out"] && fileCfg.Output.OutputDir != "" {
		outDir = fileCfg.Output.OutputDir
	}
	if !set["debug"] && fileCfg.Output.Debug {
		debug = true
	}

	if err := utils.EnsureDir(outDir); err != nil {
		log.Fatal(err)
	}

	cfg := fileCfg.Transform.ToTransform()
	if set["shift-x"] {
		cfg.ShiftX = shiftX
	}
	if set["shift-y"] {
		cfg.ShiftY = shiftY
	}
	if set["scale-x"] {
		cfg.ScaleX = scaleX
	}
	if set["scale-y"] {
		cfg.ScaleY = scaleY
	}
	if scale > 0 {
		cfg.ScaleX = scale
		cfg.ScaleY = scale
	}
	if set["rotate"] || set["rotate-deg"] {
		cfg.Rotation = nil
		cfg.RotationDegrees = nil
		if set["rotate"] {
			cfg.Rotation = transform.Float64(rotate)
		}
		if set["rotate-deg"] {
			cfg.RotationDegrees = transform.Float64(rotateDeg)
		}
	}
	if set["square"] {
		cfg.SquareLong = false
		cfg.SquareShort = false
		switch square {
		case "long":
			cfg.SquareLong = true
		case "short":
			cfg.SquareShort = true
		case "":
		default:
			log.Fatalf("unknown -square value %q (use long or short)", square)
		}
	}

	engine, err := recttransform.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	processor := processing.NewProcessor()

	img, err := processor.LoadImageSmart(in)
	if err != nil {
		log.Fatal(err)
	}
	size := processor.ImageSize(img)

	// The input rect comes from the command line or from a detector.
	var inputRect types.NormalizedRect
	switch {
	case rectSpec != "":
		inputRect, err = parseRectSpec(rectSpec)
		if err != nil {
			log.Fatal(err)
		}
	case backend == "saliency":
		inputRect, err = vision.New().ProposeRect(img)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("saliency rect %.3fx%.3f@%.3f,%.3f",
			inputRect.Width, inputRect.Height, inputRect.XCenter, inputRect.YCenter)
	default:
		var visionClient client.VisionClient
		switch backend {
		case "ollama":
			if url == "" {
				url = "http://localhost:11435"
			}
			visionClient, err = ollama.NewClient(url)
			if err != nil {
				log.Fatalf("Failed to create Ollama client: %v", err)
			}
		case "llamacpp":
			if url == "" {
				url = "http://localhost:8080"
			}
			visionClient, err = llamacpp.NewClient(url)
			if err != nil {
				log.Fatalf("Failed to create llama.cpp client: %v", err)
			}
		default:
			log.Fatalf("Unknown backend: %s (use 'ollama', 'llamacpp' or 'saliency')", backend)
		}

		imgB64, err := processor.PrepareImageForModel(img, sendFmt, sendSize, sendQ)
		if err != nil {
			log.Fatal(err)
		}

		detector := detection.NewDetector(visionClient)

		if checkVision {
			reply, err := detector.TestVision(context.Background(), model, imgB64)
			if err != nil {
				log.Fatalf("vision check failed: %v", err)
			}
			log.Printf("vision check: %s", strings.TrimSpace(reply))
		}

		rect, result, err := detector.DetectRect(context.Background(), model, imgB64)
		if err != nil {
			log.Fatal(err)
		}
		inputRect = rect

		log.Printf("primary=%q conf=%.2f rect=%.3fx%.3f@%.3f,%.3f",
			result.Primary.Label, result.Primary.Confidence,
			inputRect.Width, inputRect.Height, inputRect.XCenter, inputRect.YCenter)
		log.Printf("description: %s", result.Description)
		log.Printf("tags: %v", result.Tags)
	}

	outputRect := engine.TransformNormalizedRect(inputRect, size)
	log.Printf("transformed rect %.3fx%.3f@%.3f,%.3f rot=%.3f",
		outputRect.Width, outputRect.Height, outputRect.XCenter, outputRect.YCenter, outputRect.Rotation)

	cropped, err := engine.ExtractRect(img, outputRect)
	if err != nil {
		log.Fatalf("extract failed: %v", err)
	}

	cropPath := utils.GenerateOutputFilename(in, outDir, "", "_crop", strings.ToLower(ext))
	if err := processor.SaveImage(cropped, cropPath, ext, quality, lossless); err != nil {
		log.Fatalf("save %s failed: %v", cropPath, err)
	}
	log.Printf("wrote %s", cropPath)

	if debug {
		overlay := processor.CreateDebugOverlay(img, inputRect, outputRect)
		dbgPath := utils.GenerateOutputFilename(in, outDir, "", "_debug", "png")
		if err := processor.SaveImage(overlay, dbgPath, "png", quality, false); err != nil {
			log.Printf("debug save %s failed: %v", dbgPath, err)
		} else {
			log.Printf("wrote %s", dbgPath)
		}
	}

	// Save the rect pair for downstream tooling
	out := struct {
		Input  types.NormalizedRect `json:"input"`
		Output types.NormalizedRect `json:"output"`
		Image  types.ImageSize      `json:"image"`
	}{inputRect, outputRect, size}
	js, _ := json.MarshalIndent(out, "", "  ")
	_ = os.WriteFile(filepath.Join(outDir, "rects.json"), js, 0o644)
}

// parseRectSpec parses "cx,cy,w,h" or "cx,cy,w,h,rot" in normalized
// coordinates.
func parseRectSpec(spec string) (types.NormalizedRect, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 && len(parts) != 5 {
		return types.NormalizedRect{}, fmt.Errorf("invalid -rect %q: want cx,cy,w,h[,rot]", spec)
	}

	vals := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return types.NormalizedRect{}, fmt.Errorf("invalid -rect component %q: %v", part, err)
		}
		vals[i] = v
	}

	rect := types.NormalizedRect{
		XCenter: vals[0],
		YCenter: vals[1],
		Width:   vals[2],
		Height:  vals[3],
	}
	if len(vals) == 5 {
		rect.Rotation = vals[4]
	}
	return rect, nil
}
