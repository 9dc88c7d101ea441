package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/lattice/config"
	"github.com/pthm-cable/lattice/geometry"
)

// OutputManager writes build artifacts into a directory.
type OutputManager struct {
	dir string
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &OutputManager{dir: dir}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteSummary writes the region table of g to summary.csv.
func (om *OutputManager) WriteSummary(g *geometry.Geometry) error {
	if om == nil {
		return nil
	}
	return om.writeCSV("summary.csv", Summarize(g))
}

// WriteTables writes the coordinate and neighbor tables of g to
// coordinates.csv and neighbors.csv.
func (om *OutputManager) WriteTables(g *geometry.Geometry) error {
	if om == nil {
		return nil
	}

	coords, err := CoordinateRows(g)
	if err != nil {
		return fmt.Errorf("collecting coordinates: %w", err)
	}
	if err := om.writeCSV("coordinates.csv", coords); err != nil {
		return err
	}

	neighbors, err := NeighborRows(g)
	if err != nil {
		return fmt.Errorf("collecting neighbors: %w", err)
	}
	return om.writeCSV("neighbors.csv", neighbors)
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats) error {
	if om == nil {
		return nil
	}
	return om.writeCSV("perf.csv", []PerfStatsCSV{stats.ToCSV()})
}

// WriteBuilds writes sweep results to builds.csv.
func (om *OutputManager) WriteBuilds(rows []BuildSummary) error {
	if om == nil {
		return nil
	}
	return om.writeCSV("builds.csv", rows)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

func (om *OutputManager) writeCSV(name string, records any) error {
	path := filepath.Join(om.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := gocsv.MarshalFile(records, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	return nil
}
