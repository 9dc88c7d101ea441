// Package config provides configuration loading and access for geometry
// construction.
package config

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/lattice/geometry"
	"github.com/pthm-cable/lattice/layout"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all construction parameters and switches.
type Config struct {
	Domain   DomainConfig   `yaml:"domain"`
	Numerics NumericsConfig `yaml:"numerics"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// DomainConfig describes the lattice shape.
type DomainConfig struct {
	Dim         int   `yaml:"dim"`          // 2 or 3
	Size        int   `yaml:"size"`         // Cubic edge length (used when Extents is empty)
	Extents     []int `yaml:"extents"`      // Per-axis extents, overrides Size
	GhostLayers int   `yaml:"ghost_layers"` // Ghost depth, >= 1
	HaloLayers  int   `yaml:"halo_layers"`
	Levels      int   `yaml:"levels"`
}

// NumericsConfig holds the switches resolved once at startup.
type NumericsConfig struct {
	Precision string `yaml:"precision"` // single | double
	Layout    string `yaml:"layout"`    // field_major | slot_major
}

// OutputConfig controls artifact output.
type OutputConfig struct {
	Dir        string `yaml:"dir"`         // Empty disables output
	DumpTables bool   `yaml:"dump_tables"` // Write full coordinate and neighbor tables
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// DerivedConfig holds typed values resolved from the loaded config.
type DerivedConfig struct {
	Dim       geometry.Dim
	Extents   []int
	Cubic     bool // extents come from Size
	Precision geometry.Precision
	Layout    layout.Layout
	LogLevel  slog.Level
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve recomputes derived values after fields were changed in code,
// e.g. by command line overrides.
func (c *Config) Resolve() error {
	return c.computeDerived()
}

// computeDerived resolves string switches into typed values. Range checks
// on the domain itself are left to geometry.New.
func (c *Config) computeDerived() error {
	c.Derived.Dim = geometry.Dim(c.Domain.Dim)
	if !c.Derived.Dim.Valid() {
		return fmt.Errorf("domain.dim: unsupported dimension %d", c.Domain.Dim)
	}

	if len(c.Domain.Extents) > 0 {
		c.Derived.Extents = append([]int(nil), c.Domain.Extents...)
		c.Derived.Cubic = false
	} else {
		c.Derived.Extents = make([]int, c.Domain.Dim)
		for i := range c.Derived.Extents {
			c.Derived.Extents[i] = c.Domain.Size
		}
		c.Derived.Cubic = true
	}

	p, err := geometry.ParsePrecision(c.Numerics.Precision)
	if err != nil {
		return fmt.Errorf("numerics.precision: %w", err)
	}
	c.Derived.Precision = p

	l, err := layout.Parse(c.Numerics.Layout)
	if err != nil {
		return fmt.Errorf("numerics.layout: %w", err)
	}
	c.Derived.Layout = l

	if err := c.Derived.LogLevel.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q (want json or text)", c.Log.Format)
	}
	return nil
}

// Logger returns a slog.Logger writing to w with the configured handler and level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Derived.LogLevel}
	if strings.ToLower(c.Log.Format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Options returns geometry options for the configured numerics.
func (c *Config) Options() geometry.Options {
	return geometry.Options{
		Halo:      c.Domain.HaloLayers,
		Layout:    c.Derived.Layout,
		Precision: c.Derived.Precision,
		Levels:    c.Domain.Levels,
	}
}

// NewGeometry describes the configured domain. A cubic 3-D domain is built
// as a cavity; any other shape gets a single wall boundary over all ghost
// cells.
func (c *Config) NewGeometry(opts geometry.Options) (*geometry.Geometry, error) {
	if c.Derived.Cubic && c.Derived.Dim == geometry.ThreeD {
		return geometry.NewCavity(c.Domain.Size, c.Domain.GhostLayers, opts)
	}
	opts.Boundaries = []string{geometry.WallBoundary}
	opts.BoundaryLengths = geometry.GhostCells
	return geometry.New(c.Derived.Dim, c.Derived.Extents, c.Domain.GhostLayers, opts)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
