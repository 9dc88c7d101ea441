// Package main builds cavity geometries over a grid of sizes, ghost depths
// and layouts, and records region counts and build times.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/lattice/config"
	"github.com/pthm-cable/lattice/geometry"
	"github.com/pthm-cable/lattice/layout"
	"github.com/pthm-cable/lattice/telemetry"
)

type job struct {
	size   int
	ghost  int
	layout layout.Layout
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	sizesFlag := flag.String("sizes", "4,8,16,32,64", "Comma-separated cavity edge lengths")
	ghostsFlag := flag.String("ghosts", "1,2,3", "Comma-separated ghost depths")
	layoutsFlag := flag.String("layouts", "field_major,slot_major", "Comma-separated table layouts")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of concurrent builds")
	outputDir := flag.String("output", "", "Output directory for builds.csv")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()
	slog.SetDefault(cfg.Logger(os.Stderr))

	sizes, err := parseInts(*sizesFlag)
	if err != nil {
		log.Fatalf("invalid -sizes: %v", err)
	}
	ghosts, err := parseInts(*ghostsFlag)
	if err != nil {
		log.Fatalf("invalid -ghosts: %v", err)
	}
	var layouts []layout.Layout
	for _, s := range strings.Split(*layoutsFlag, ",") {
		l, err := layout.Parse(s)
		if err != nil {
			log.Fatalf("invalid -layouts: %v", err)
		}
		layouts = append(layouts, l)
	}

	var jobs []job
	for _, n := range sizes {
		for _, gd := range ghosts {
			for _, l := range layouts {
				jobs = append(jobs, job{size: n, ghost: gd, layout: l})
			}
		}
	}

	start := time.Now()
	results, err := run(context.Background(), cfg, jobs, *workers)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	slog.Info("sweep complete", "builds", len(results), "elapsed", time.Since(start).Round(time.Millisecond).String())

	for _, r := range results {
		fmt.Printf("n=%-4d ghost=%d %-11s bulk=%-9d inner=%-9d outer=%-9d nodes=%-9d %s\n",
			r.Size, r.Ghost, r.Layout, r.Bulk, r.GhostInner, r.GhostOuter, r.Nodes,
			time.Duration(r.BuildUS)*time.Microsecond)
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := om.WriteBuilds(results); err != nil {
		log.Fatalf("failed to write builds: %v", err)
	}
}

// run builds every job, at most workers at a time. Results keep job order.
func run(ctx context.Context, cfg *config.Config, jobs []job, workers int) ([]telemetry.BuildSummary, error) {
	results := make([]telemetry.BuildSummary, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := build(cfg, j)
			if err != nil {
				return fmt.Errorf("n=%d ghost=%d %s: %w", j.size, j.ghost, j.layout, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func build(cfg *config.Config, j job) (telemetry.BuildSummary, error) {
	perf := telemetry.NewPerfCollector(1)
	opts := cfg.Options()
	opts.Layout = j.layout
	opts.Timer = perf

	perf.StartBuild()
	geo, err := geometry.BuildCavity(j.size, j.ghost, opts)
	perf.EndBuild()
	if err != nil {
		return telemetry.BuildSummary{}, err
	}

	c := geo.Counts()
	stats := perf.Stats()
	slog.Debug("built cavity",
		"size", j.size,
		"ghost", j.ghost,
		"layout", j.layout.String(),
		"neighbor_table", humanize.Bytes(geo.NeighborBytes()),
		"perf", stats,
	)

	return telemetry.BuildSummary{
		Dim:        int(geo.Dim()),
		Size:       j.size,
		Ghost:      j.ghost,
		Layout:     j.layout.String(),
		Bulk:       c.Bulk,
		GhostInner: c.GhostInner,
		GhostOuter: c.GhostOuter,
		Nodes:      c.Nodes,
		BuildUS:    stats.AvgBuildDuration.Microseconds(),
	}, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}
	return out, nil
}
