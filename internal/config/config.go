// Package config loads conversion settings from JSON and CLI flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"objseq2cache/internal/sequence"
)

// DefaultSampleRate is the output sample rate in Hz when none is given.
const DefaultSampleRate = 24.0

// Config holds all configurable paths and conversion settings.
type Config struct {
	// Paths
	InputDir     string `json:"input_dir"`
	OutputPath   string `json:"output_path"`
	PreviewPath  string `json:"preview_path"`
	ManifestPath string `json:"manifest_path"`

	// Conversion settings
	SampleRate float64 `json:"sample_rate"`
	Extension  string  `json:"extension"`
	Prefetch   bool    `json:"prefetch"`

	// Preview settings
	PreviewSize  int     `json:"preview_size"`
	Supersample  int     `json:"supersample"`
	PreviewYaw   float64 `json:"preview_yaw"`
	PreviewPitch float64 `json:"preview_pitch"`
}

// Default returns the settings used when neither a config file nor a flag
// sets them. Values the file sets, zero included, replace these.
func Default() Config {
	return Config{
		SampleRate:   DefaultSampleRate,
		PreviewYaw:   -30,
		PreviewPitch: 20,
	}
}

// Load reads a JSON config file on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// SampleRate is nil when -fps was not given.
type Flags struct {
	InputDir     string
	OutputPath   string
	SampleRate   *float64
	Extension    string
	PreviewPath  string
	ManifestPath string
	Prefetch     bool
}

// Resolve applies CLI overrides, then fills an empty extension and
// non-positive preview sizes with defaults. Relative paths in the config
// file are resolved against baseDir when it is non-empty.
func (c *Config) Resolve(flags Flags, baseDir string) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	} else {
		c.InputDir = relTo(baseDir, c.InputDir)
	}
	if flags.OutputPath != "" {
		c.OutputPath = flags.OutputPath
	} else {
		c.OutputPath = relTo(baseDir, c.OutputPath)
	}
	if flags.PreviewPath != "" {
		c.PreviewPath = flags.PreviewPath
	} else {
		c.PreviewPath = relTo(baseDir, c.PreviewPath)
	}
	if flags.ManifestPath != "" {
		c.ManifestPath = flags.ManifestPath
	} else {
		c.ManifestPath = relTo(baseDir, c.ManifestPath)
	}
	if flags.SampleRate != nil {
		c.SampleRate = *flags.SampleRate
	}
	if flags.Extension != "" {
		c.Extension = flags.Extension
	}
	if flags.Prefetch {
		c.Prefetch = true
	}

	// Defaults
	if c.Extension == "" {
		c.Extension = sequence.DefaultExtension
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
}

// Validate reports settings that would make the conversion fail up front.
func (c *Config) Validate() error {
	var errs []error
	if c.InputDir == "" {
		errs = append(errs, errors.New("input directory is required"))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if c.SampleRate <= 0 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %v", c.SampleRate))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func relTo(baseDir, p string) string {
	if p == "" || baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
