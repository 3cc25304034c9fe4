package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"point2ct/pkg/geometry"
)

// TestDefaultConfig verifies the viewer defaults
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Plane.SideLength != 85 {
		t.Errorf("Expected side length 85, got %f", cfg.Plane.SideLength)
	}
	if cfg.Snap.Threshold != 15 {
		t.Errorf("Expected snap threshold 15, got %f", cfg.Snap.Threshold)
	}
	if cfg.Backend.Timeout() != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.Backend.Timeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config is invalid: %v", err)
	}
}

// TestLoadMissingConfig verifies that a missing file yields defaults
func TestLoadMissingConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(os.TempDir(), "point2ct-does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Plane.Axis != "x" {
		t.Errorf("Expected default axis x, got %s", cfg.Plane.Axis)
	}
}

// TestSaveAndLoadConfig verifies a round trip through a YAML file
func TestSaveAndLoadConfig(t *testing.T) {
	dir, err := os.MkdirTemp("", "point2ct-config-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Plane.Axis = "z"
	cfg.Snap.Threshold = 5
	cfg.Backend.BaseURL = "http://backend:9000"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Plane.Axis != "z" || loaded.Snap.Threshold != 5 || loaded.Backend.BaseURL != "http://backend:9000" {
		t.Errorf("Loaded config does not match saved config: %+v", loaded)
	}

	opts, err := loaded.SessionOptions()
	if err != nil {
		t.Fatalf("SessionOptions failed: %v", err)
	}
	if opts.Axis != geometry.AxisZ || opts.SnapThreshold != 5 || opts.SideLength != 85 {
		t.Errorf("Unexpected session options: %+v", opts)
	}
}

// TestLoadPartialConfig verifies that unset keys keep their defaults
func TestLoadPartialConfig(t *testing.T) {
	dir, err := os.MkdirTemp("", "point2ct-config-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("plane:\n  sideLength: 40\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Plane.SideLength != 40 || cfg.Plane.Axis != "x" || cfg.Snap.Threshold != 15 {
		t.Errorf("Unexpected merged config: %+v", cfg)
	}
}

// TestLoadInvalidConfig verifies that bad values are rejected
func TestLoadInvalidConfig(t *testing.T) {
	dir, err := os.MkdirTemp("", "point2ct-config-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	cases := map[string]string{
		"bad axis":   "plane:\n  axis: w\n",
		"bad side":   "plane:\n  sideLength: -1\n",
		"bad yaml":   "plane: [\n",
		"bad thresh": "snap:\n  threshold: 0\n",
	}

	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
