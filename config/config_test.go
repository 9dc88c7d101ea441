package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/lattice/geometry"
	"github.com/pthm-cable/lattice/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}

	if cfg.Domain.Dim != 3 || cfg.Domain.GhostLayers != 2 {
		t.Errorf("unexpected domain defaults: %+v", cfg.Domain)
	}
	if cfg.Derived.Dim != geometry.ThreeD || !cfg.Derived.Cubic {
		t.Errorf("expected cubic 3D default, got dim=%s cubic=%v", cfg.Derived.Dim, cfg.Derived.Cubic)
	}
	want := []int{cfg.Domain.Size, cfg.Domain.Size, cfg.Domain.Size}
	if diff := cmp.Diff(want, cfg.Derived.Extents); diff != "" {
		t.Errorf("derived extents mismatch (-want +got):\n%s", diff)
	}
	if cfg.Derived.Layout != layout.FieldMajor {
		t.Errorf("default layout = %v, want field_major", cfg.Derived.Layout)
	}
	if cfg.Derived.Precision != geometry.Single {
		t.Errorf("default precision = %v, want single", cfg.Derived.Precision)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeConfig(t, `
domain:
  dim: 2
  extents: [6, 3]
numerics:
  layout: aos
  precision: double
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.Dim != geometry.TwoD || cfg.Derived.Cubic {
		t.Errorf("expected non-cubic 2D, got dim=%s cubic=%v", cfg.Derived.Dim, cfg.Derived.Cubic)
	}
	if diff := cmp.Diff([]int{6, 3}, cfg.Derived.Extents); diff != "" {
		t.Errorf("extents mismatch (-want +got):\n%s", diff)
	}
	if cfg.Derived.Layout != layout.SlotMajor {
		t.Errorf("layout = %v, want slot_major", cfg.Derived.Layout)
	}
	if cfg.Derived.Precision != geometry.Double {
		t.Errorf("precision = %v, want double", cfg.Derived.Precision)
	}
	// Untouched keys keep their defaults.
	if cfg.Domain.GhostLayers != 2 {
		t.Errorf("ghost_layers = %d, want default 2", cfg.Domain.GhostLayers)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad dim", "domain:\n  dim: 4\n", "domain.dim"},
		{"bad layout", "numerics:\n  layout: zigzag\n", "numerics.layout"},
		{"bad precision", "numerics:\n  precision: half\n", "numerics.precision"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"bad yaml", "domain: [", "parsing config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewGeometry(t *testing.T) {
	cfg, err := Load(writeConfig(t, "domain:\n  size: 4\n"))
	if err != nil {
		t.Fatal(err)
	}
	g, err := cfg.NewGeometry(cfg.Options())
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if err := g.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := g.Counts()
	if c.Bulk != 64 || c.GhostInner != 152 || c.GhostOuter != 296 {
		t.Errorf("counts = %+v, want 64/152/296", c)
	}
	b, _ := g.Boundaries()
	if len(b) != 1 || b[0].Name != geometry.WallBoundary {
		t.Errorf("boundaries = %+v, want single wall", b)
	}
}

func TestNewGeometryRectangle(t *testing.T) {
	cfg, err := Load(writeConfig(t, "domain:\n  dim: 2\n  extents: [5, 2]\n  ghost_layers: 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	g, err := cfg.NewGeometry(cfg.Options())
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if err := g.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Stencil().Len() != 8 {
		t.Errorf("stencil size = %d, want 8", g.Stencil().Len())
	}
}

func TestNewGeometryExtentMismatch(t *testing.T) {
	cfg, err := Load(writeConfig(t, "domain:\n  dim: 3\n  extents: [5, 2]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.NewGeometry(cfg.Options()); err == nil {
		t.Error("expected configuration error for 3D domain with two extents")
	}
}

func TestLogger(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n  format: text\n"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record logged at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("expected text handler output, got %q", out)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Domain.Size = 12
	cfg.Numerics.Layout = "slot_major"

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if back.Domain.Size != 12 || back.Derived.Layout != layout.SlotMajor {
		t.Errorf("snapshot lost overrides: size=%d layout=%v", back.Domain.Size, back.Derived.Layout)
	}
}

func TestInitAndCfg(t *testing.T) {
	MustInit("")
	if Cfg() == nil {
		t.Fatal("Cfg() returned nil after MustInit")
	}
}

func TestNewGeometryOversizedDomain(t *testing.T) {
	cfg, err := Load(writeConfig(t, "domain:\n  size: 9223372036854775807\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.NewGeometry(cfg.Options()); !errors.Is(err, geometry.ErrConfig) {
		t.Errorf("NewGeometry error = %v, want ErrConfig", err)
	}
}
