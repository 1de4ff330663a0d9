package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCount   = 500
	DefaultFrames  = 600
	DefaultFPS     = 60
	DefaultAspect  = 2.0
	DefaultPath    = "circle"
	DefaultRadius  = 300.0
	DefaultWidth   = 1280
	DefaultHeight  = 720
	DefaultFOV     = 75.0
	DefaultRest    = 3.0
	DefaultActive  = 3.5
	DefaultTheme   = "cyberpunk"
	DefaultWorkers = 1
)

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	Count     int           `yaml:"count"`
	Seed      int64         `yaml:"seed"`
	Workers   int           `yaml:"workers"`
	Frames    int           `yaml:"frames"`
	FPS       int           `yaml:"fps"`
	Aspect    float64       `yaml:"aspect"`
	Path      string        `yaml:"path"`
	Radius    float64       `yaml:"radius"`
	Theme     string        `yaml:"theme"`
	ModelPath string        `yaml:"model_path"`
	Window    WindowConfig  `yaml:"window"`
	Camera    CameraConfig  `yaml:"camera"`
	Bloom     BloomConfig   `yaml:"bloom"`
	Hover     HoverConfig   `yaml:"hover"`
	Fog       FogConfig     `yaml:"fog"`
	Lights    []LightConfig `yaml:"lights"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CameraConfig struct {
	Position [3]float64 `yaml:"position"`
	FOV      float64    `yaml:"fov"`
	// MinPolar and MaxPolar clamp the orbit, radians from +Y.
	MinPolar float64 `yaml:"min_polar"`
	MaxPolar float64 `yaml:"max_polar"`
	Damping  float64 `yaml:"damping"`
}

type BloomConfig struct {
	Strength  float64 `yaml:"strength"`
	Radius    float64 `yaml:"radius"`
	Threshold float64 `yaml:"threshold"`
}

type HoverConfig struct {
	Rest   float64 `yaml:"rest"`
	Active float64 `yaml:"active"`
	// Box is the edge length of the invisible hover target.
	Box float64 `yaml:"box"`
}

type FogConfig struct {
	Color string  `yaml:"color"`
	Near  float64 `yaml:"near"`
	Far   float64 `yaml:"far"`
}

type LightConfig struct {
	Kind      string     `yaml:"kind"` // "spot" or "point"
	Color     string     `yaml:"color"`
	Intensity float64    `yaml:"intensity"`
	Position  [3]float64 `yaml:"position"`
}

func DefaultConfig() *Config {
	return &Config{
		Count:   DefaultCount,
		Workers: DefaultWorkers,
		Frames:  DefaultFrames,
		FPS:     DefaultFPS,
		Aspect:  DefaultAspect,
		Path:    DefaultPath,
		Radius:  DefaultRadius,
		Theme:   DefaultTheme,
		Window:  WindowConfig{Width: DefaultWidth, Height: DefaultHeight},
		Camera: CameraConfig{
			Position: [3]float64{3, 0, 20},
			FOV:      DefaultFOV,
			MinPolar: 1.5707963267948966,
			MaxPolar: 1.5707963267948966,
			Damping:  0.5,
		},
		Bloom: BloomConfig{Strength: 0.4, Radius: 0.2, Threshold: 0.25},
		Hover: HoverConfig{Rest: DefaultRest, Active: DefaultActive, Box: 10},
		Fog:   FogConfig{Color: "#000000", Near: 20, Far: 30},
		Lights: []LightConfig{
			{Kind: "spot", Color: "#0000ff", Intensity: 2, Position: [3]float64{0, 100, 100}},
			{Kind: "point", Color: "#ffffff", Intensity: 2, Position: [3]float64{0, 10, -15}},
			{Kind: "point", Color: "#ffffff", Intensity: 2, Position: [3]float64{-20, 30, 15}},
			{Kind: "spot", Color: "#ffa500", Intensity: 3, Position: [3]float64{-5, 7, 7}},
		},
	}
}

func Load(path string) (*Config, error) {
	cfg, err := LoadInto(DefaultConfig(), path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads path over a copy of base, so keys missing from the file keep
// base's values. base is not modified and the result is not validated.
func LoadInto(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = DefaultConfig()
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the animator or the frame loop cannot run with.
func (c *Config) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidConfig, c.Count)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidConfig, c.Frames)
	}
	if c.Aspect <= 0 {
		return fmt.Errorf("%w: aspect must be positive, got %f", ErrInvalidConfig, c.Aspect)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Lights = append([]LightConfig(nil), c.Lights...)
	return &cp
}
