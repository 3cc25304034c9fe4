// Package config provides configuration loading and management for point2ct.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"point2ct/pkg/geometry"
	"point2ct/pkg/plane"
	"point2ct/pkg/session"
	"point2ct/pkg/snap"
)

// Backend holds the segmentation backend connection settings.
type Backend struct {
	// BaseURL is the root URL of the backend API
	BaseURL string `yaml:"baseURL"`

	// ModelPath is the route serving model and point cloud artifacts,
	// followed by /{batchId}/{filename}
	ModelPath string `yaml:"modelPath"`

	// PlanePath is the plane extraction route
	PlanePath string `yaml:"planePath"`

	// TimeoutSeconds bounds each request
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// Timeout returns the request timeout as a duration.
func (b Backend) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Plane construction parameters
	Plane struct {
		// SideLength is the edge length of the extraction square in mm
		SideLength float64 `yaml:"sideLength"`

		// Axis is the reference axis used to derive the square's tangent
		Axis string `yaml:"axis"`
	} `yaml:"plane"`

	// Snapping parameters
	Snap struct {
		// Threshold is the maximum snap distance in mm (exclusive)
		Threshold float64 `yaml:"threshold"`

		// Workers bounds parallel snapping of query batches
		Workers int `yaml:"workers"`
	} `yaml:"snap"`

	Backend Backend `yaml:"backend"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Plane.SideLength = plane.DefaultSideLength
	cfg.Plane.Axis = "x"

	cfg.Snap.Threshold = snap.DefaultThreshold
	cfg.Snap.Workers = runtime.NumCPU()

	cfg.Backend.BaseURL = "http://localhost:8000"
	cfg.Backend.ModelPath = "/api/models"
	cfg.Backend.PlanePath = "/api/point2ct"
	cfg.Backend.TimeoutSeconds = 60

	cfg.Output.Verbose = false

	return cfg
}

// Validate checks values that would otherwise fail later in the pipeline.
func (c *Config) Validate() error {
	if !(c.Plane.SideLength > 0) {
		return errors.Errorf("plane.sideLength must be positive, got %v", c.Plane.SideLength)
	}
	if _, err := geometry.ParseAxis(c.Plane.Axis); err != nil {
		return errors.Wrap(err, "plane.axis")
	}
	if !(c.Snap.Threshold > 0) {
		return errors.Errorf("snap.threshold must be positive, got %v", c.Snap.Threshold)
	}
	return nil
}

// SessionOptions converts the plane and snap sections into session options.
func (c *Config) SessionOptions() (session.Options, error) {
	axis, err := geometry.ParseAxis(c.Plane.Axis)
	if err != nil {
		return session.Options{}, errors.Wrap(err, "plane.axis")
	}
	return session.Options{
		Axis:          axis,
		SideLength:    c.Plane.SideLength,
		SnapThreshold: c.Snap.Threshold,
	}, nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config file")
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "error creating config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "error writing config file")
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
