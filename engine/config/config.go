// Package config reads loader settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-mesh/engine/loader"
	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
	"github.com/Carmen-Shannon/oxy-mesh/engine/scene"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned when a config value is out of range or unknown.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the loader settings.
//
//	index_mode = "compacted"   # or "source"
//	uv_set     = ""            # empty selects each mesh's first UV set
//	axis       = "directx"     # or "opengl"
//	unit_cm    = 1.0
//	workers    = 4
//	profiling  = false
type Config struct {
	IndexMode string  `toml:"index_mode"`
	UVSet     string  `toml:"uv_set"`
	Axis      string  `toml:"axis"`
	UnitCM    float32 `toml:"unit_cm"`
	Workers   int     `toml:"workers"`
	Profiling bool    `toml:"profiling"`
}

// Default returns the settings NewLoader uses without options.
//
// Returns:
//   - *Config: the default config
func Default() *Config {
	return &Config{
		IndexMode: mesh.IndexModeCompacted.String(),
		Axis:      scene.ConventionDirectXCM.Axis.String(),
		UnitCM:    scene.ConventionDirectXCM.UnitCM,
		Workers:   loader.DefaultWorkers,
	}
}

// Load reads and validates a config file. Keys missing from the file keep their default value.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - *Config: the parsed config
//   - error: a read, parse or validation error
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates TOML config data. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - *Config: the parsed config
//   - error: a parse or validation error
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value.
//
// Returns:
//   - error: ErrInvalidConfig (wrapped) naming the first bad key
func (c *Config) Validate() error {
	if _, err := mesh.ParseIndexMode(c.IndexMode); err != nil {
		return fmt.Errorf("%w: index_mode: %v", ErrInvalidConfig, err)
	}
	if _, err := scene.ParseAxisSystem(c.Axis); err != nil {
		return fmt.Errorf("%w: axis: %v", ErrInvalidConfig, err)
	}
	if c.UnitCM < 0 {
		return fmt.Errorf("%w: unit_cm must not be negative, got %v", ErrInvalidConfig, c.UnitCM)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// LoaderOptions converts the config to loader options.
//
// Returns:
//   - []loader.LoaderBuilderOption: the options to pass to loader.NewLoader
//   - error: ErrInvalidConfig (wrapped) if the config does not validate
func (c *Config) LoaderOptions() ([]loader.LoaderBuilderOption, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	mode, _ := mesh.ParseIndexMode(c.IndexMode)
	axis, _ := scene.ParseAxisSystem(c.Axis)

	return []loader.LoaderBuilderOption{
		loader.WithIndexMode(mode),
		loader.WithUVSet(c.UVSet),
		loader.WithTargetConvention(scene.Convention{Axis: axis, UnitCM: c.UnitCM}),
		loader.WithWorkers(c.Workers),
		loader.WithProfiling(c.Profiling),
	}, nil
}
