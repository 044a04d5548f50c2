package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/rect-transform/pkg/transform"
)

// Config holds the application configuration
type Config struct {
	Transform TransformConfig `json:"transform"`
	Detector  DetectorConfig  `json:"detector"`
	Output    OutputConfig    `json:"output"`
}

// TransformConfig is the JSON form of the rect transformation options
type TransformConfig struct {
	Rotation        *float64 `json:"rotation,omitempty"`
	RotationDegrees *float64 `json:"rotation_degrees,omitempty"`
	ShiftX          float64  `json:"shift_x"`
	ShiftY          float64  `json:"shift_y"`
	SquareLong      bool     `json:"square_long"`
	SquareShort     bool     `json:"square_short"`
	ScaleX          float64  `json:"scale_x"`
	ScaleY          float64  `json:"scale_y"`
}

// ToTransform converts the JSON form to a transform.Config
func (c TransformConfig) ToTransform() transform.Config {
	return transform.Config{
		Rotation:        c.Rotation,
		RotationDegrees: c.RotationDegrees,
		ShiftX:          c.ShiftX,
		ShiftY:          c.ShiftY,
		SquareLong:      c.SquareLong,
		SquareShort:     c.SquareShort,
		ScaleX:          c.ScaleX,
		ScaleY:          c.ScaleY,
	}
}

// DetectorConfig holds configuration for the subject detection backends
type DetectorConfig struct {
	Backend    string `json:"backend"` // ollama | llamacpp | saliency
	Model      string `json:"model"`
	URL        string `json:"url"`
	SendFormat string `json:"send_format"`
	SendSize   int    `json:"send_size"`
	SendQ      int    `json:"send_quality"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
	Lossless  bool   `json:"lossless"`
	OutputDir string `json:"output_dir"`
	Debug     bool   `json:"debug"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Transform: TransformConfig{
			ScaleX: 1.0,
			ScaleY: 1.0,
		},
		Detector: DetectorConfig{
			Backend:    "saliency",
			Model:      "openbmb/minicpm-v4.5",
			SendFormat: "jpg",
			SendSize:   1536,
			SendQ:      85,
		},
		Output: OutputConfig{
			Format:    "jpg",
			Quality:   90,
			OutputDir: "./out",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing
// from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Transform.ToTransform().Validate(); err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	switch c.Detector.Backend {
	case "", "ollama", "llamacpp", "saliency":
	default:
		return fmt.Errorf("detector.backend must be ollama, llamacpp or saliency")
	}

	if c.Detector.SendQ < 0 || c.Detector.SendQ > 100 {
		return fmt.Errorf("detector.send_quality must be between 0 and 100")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch c.Output.Format {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format must be jpg, png or webp")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "rect-transform", "config.json")
}
