package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/lattice/config"
	"github.com/pthm-cable/lattice/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	size := flag.Int("size", 0, "Cubic domain edge length (0 = use config)")
	ghost := flag.Int("ghost", 0, "Ghost layer depth (0 = use config)")
	layoutName := flag.String("layout", "", "Table layout: field_major or slot_major (empty = use config)")
	precision := flag.String("precision", "", "Spacing precision: single or double (empty = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV tables and config snapshot")
	dumpTables := flag.Bool("dump-tables", false, "Write full coordinate and neighbor tables")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *size > 0 {
		cfg.Domain.Size = *size
		cfg.Domain.Extents = nil
	}
	if *ghost > 0 {
		cfg.Domain.GhostLayers = *ghost
	}
	if *layoutName != "" {
		cfg.Numerics.Layout = *layoutName
	}
	if *precision != "" {
		cfg.Numerics.Precision = *precision
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *dumpTables {
		cfg.Output.DumpTables = true
	}
	if err := cfg.Resolve(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	perf := telemetry.NewPerfCollector(1)
	opts := cfg.Options()
	opts.Timer = perf
	opts.Logger = logger

	g, err := cfg.NewGeometry(opts)
	if err != nil {
		slog.Error("invalid domain", "error", err)
		os.Exit(1)
	}

	slog.Info("building geometry",
		"dim", cfg.Derived.Dim.String(),
		"extents", cfg.Derived.Extents,
		"ghost_layers", cfg.Domain.GhostLayers,
		"halo_layers", cfg.Domain.HaloLayers,
		"layout", cfg.Derived.Layout.String(),
		"precision", cfg.Derived.Precision.String(),
	)

	perf.StartBuild()
	err = g.Build()
	perf.EndBuild()
	if err != nil {
		slog.Error("geometry construction failed", "error", err)
		os.Exit(1)
	}

	counts := g.Counts()
	spacing, err := g.Spacing(0)
	if err != nil {
		slog.Error("failed to read grid spacing", "error", err)
		os.Exit(1)
	}
	boundaries, err := g.Boundaries()
	if err != nil {
		slog.Error("failed to read boundaries", "error", err)
		os.Exit(1)
	}
	slog.Info("geometry ready",
		"bulk", counts.Bulk,
		"ghost_inner", counts.GhostInner,
		"ghost_outer", counts.GhostOuter,
		"nodes", counts.Nodes,
		"neighbors", g.Stencil().Len(),
		"spacing", spacing,
		"boundaries", boundaries,
	)
	stats := perf.Stats()
	slog.Info("perf", "build", stats)

	om, err := telemetry.NewOutputManager(cfg.Output.Dir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	if om == nil {
		return
	}
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}
	if err := om.WriteSummary(g); err != nil {
		slog.Error("failed to write summary", "error", err)
		os.Exit(1)
	}
	if err := om.WritePerf(stats); err != nil {
		slog.Error("failed to write perf", "error", err)
		os.Exit(1)
	}
	if cfg.Output.DumpTables {
		if err := om.WriteTables(g); err != nil {
			slog.Error("failed to write tables", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("output written", "dir", om.Dir())
}
