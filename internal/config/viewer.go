package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no -config flag is given
const DefaultPath = "shadowview.yaml"

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type Camera struct {
	Position       [3]float32 `yaml:"position"`
	FOV            float32    `yaml:"fov"`  // degrees
	Near           float32    `yaml:"near"` // clip plane
	Far            float32    `yaml:"far"`
	Sensitivity    float32    `yaml:"sensitivity"`
	MoveSpeed      float32    `yaml:"move_speed"`
	FastMultiplier float32    `yaml:"fast_multiplier"`
}

type Light struct {
	Direction     [3]float32 `yaml:"direction"` // points from the scene towards the light
	Color         [3]float32 `yaml:"color"`
	MarkerScale   float32    `yaml:"marker_scale"`
	ShadowMapSize int        `yaml:"shadow_map_size"`
	ShadowRadius  float32    `yaml:"shadow_radius"`
}

type Scene struct {
	Model      string     `yaml:"model"`
	ModelScale float32    `yaml:"model_scale"`
	FloorColor [3]float32 `yaml:"floor_color"`
	FloorSize  float32    `yaml:"floor_size"`
	CubeColor  [3]float32 `yaml:"cube_color"`
}

type GUI struct {
	Enabled  bool   `yaml:"enabled"`
	Font     string `yaml:"font"` // optional .ttf/.otf inside the assets dir
	FontSize int    `yaml:"font_size"`
	Width    int    `yaml:"width"`
	Margin   int    `yaml:"margin"`
}

type Config struct {
	AssetsDir   string `yaml:"assets_dir"`
	LogLevel    string `yaml:"log_level"`
	Debug       bool   `yaml:"debug"`
	FPSLimit    int    `yaml:"fps_limit"`
	SlowFrameMS int    `yaml:"slow_frame_ms"`

	Window Window `yaml:"window"`
	Camera Camera `yaml:"camera"`
	Light  Light  `yaml:"light"`
	Scene  Scene  `yaml:"scene"`
	GUI    GUI    `yaml:"gui"`
}

// Default returns the built-in viewer configuration
func Default() *Config {
	return &Config{
		AssetsDir:   "assets",
		LogLevel:    "info",
		FPSLimit:    120,
		SlowFrameMS: 16,
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "shadowview",
		},
		Camera: Camera{
			Position:       [3]float32{0, 15, 30},
			FOV:            45,
			Near:           0.1,
			Far:            1000,
			Sensitivity:    0.1,
			MoveSpeed:      10,
			FastMultiplier: 3,
		},
		Light: Light{
			Direction:     [3]float32{-20, 30, -30},
			Color:         [3]float32{1, 1, 1},
			MarkerScale:   3,
			ShadowMapSize: 2048,
			ShadowRadius:  40,
		},
		Scene: Scene{
			Model:      "primitive:sphere",
			ModelScale: 1,
			FloorColor: [3]float32{1, 0, 1},
			FloorSize:  60,
			CubeColor:  [3]float32{0.8, 0.8, 0.8},
		},
		GUI: GUI{
			Enabled:  true,
			FontSize: 13,
			Width:    300,
			Margin:   12,
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Save writes the config as YAML
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera fov must be in (0, 180), got %v", c.Camera.FOV))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera planes must satisfy 0 < near < far, got %v..%v", c.Camera.Near, c.Camera.Far))
	}
	if c.Camera.MoveSpeed < 0 || c.Camera.FastMultiplier < 1 {
		errs = append(errs, errors.New("camera move_speed must be >= 0 and fast_multiplier >= 1"))
	}
	if !isPowerOfTwo(c.Light.ShadowMapSize) {
		errs = append(errs, fmt.Errorf("light shadow_map_size must be a power of two, got %d", c.Light.ShadowMapSize))
	}
	if isZero(c.Light.Direction) {
		errs = append(errs, errors.New("light direction must not be zero"))
	}
	if c.Light.ShadowRadius <= 0 {
		errs = append(errs, fmt.Errorf("light shadow_radius must be positive, got %v", c.Light.ShadowRadius))
	}
	if c.Scene.ModelScale == 0 || math.IsNaN(float64(c.Scene.ModelScale)) || math.IsInf(float64(c.Scene.ModelScale), 0) {
		errs = append(errs, fmt.Errorf("scene model_scale must be finite and non-zero, got %v", c.Scene.ModelScale))
	}
	if c.GUI.Enabled && c.GUI.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("gui font_size must be positive, got %d", c.GUI.FontSize))
	}
	return errors.Join(errs...)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func isZero(v [3]float32) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}
