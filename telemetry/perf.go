package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/lattice/geometry"
)

// PerfSample holds timing data for a single geometry build.
type PerfSample struct {
	BuildDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks build phase timings over a rolling window. It
// satisfies geometry.PhaseTimer.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	buildStart    time.Time
	phaseStart    time.Time
	lastPhase     string
}

var _ geometry.PhaseTimer = (*PerfCollector)(nil)

// NewPerfCollector creates a new performance collector.
// windowSize: number of builds to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 1
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartBuild begins timing a new geometry build.
func (p *PerfCollector) StartBuild() {
	p.buildStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndBuild finishes timing the current build and records the sample.
func (p *PerfCollector) EndBuild() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
		p.lastPhase = ""
	}

	p.samples[p.writeIndex] = PerfSample{
		BuildDuration: now.Sub(p.buildStart),
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Builds           int
	AvgBuildDuration time.Duration
	MinBuildDuration time.Duration
	MaxBuildDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total build time
	PhasePct map[string]float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minBuild, maxBuild time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.BuildDuration

		if i == 0 || s.BuildDuration < minBuild {
			minBuild = s.BuildDuration
		}
		if s.BuildDuration > maxBuild {
			maxBuild = s.BuildDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	return PerfStats{
		Builds:           p.sampleCount,
		AvgBuildDuration: avg,
		MinBuildDuration: minBuild,
		MaxBuildDuration: maxBuild,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("builds", s.Builds),
		slog.Int64("avg_build_us", s.AvgBuildDuration.Microseconds()),
		slog.Int64("min_build_us", s.MinBuildDuration.Microseconds()),
		slog.Int64("max_build_us", s.MaxBuildDuration.Microseconds()),
	}

	for _, phase := range []string{geometry.PhaseAllocate, geometry.PhaseCoordinates, geometry.PhaseNeighbors} {
		if d, ok := s.PhaseAvg[phase]; ok {
			attrs = append(attrs, slog.Int64(phase+"_us", d.Microseconds()))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Builds         int     `csv:"builds"`
	AvgBuildUS     int64   `csv:"avg_build_us"`
	MinBuildUS     int64   `csv:"min_build_us"`
	MaxBuildUS     int64   `csv:"max_build_us"`
	AllocatePct    float64 `csv:"allocate_pct"`
	CoordinatesPct float64 `csv:"coordinates_pct"`
	NeighborsPct   float64 `csv:"neighbors_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV() PerfStatsCSV {
	return PerfStatsCSV{
		Builds:         s.Builds,
		AvgBuildUS:     s.AvgBuildDuration.Microseconds(),
		MinBuildUS:     s.MinBuildDuration.Microseconds(),
		MaxBuildUS:     s.MaxBuildDuration.Microseconds(),
		AllocatePct:    s.PhasePct[geometry.PhaseAllocate],
		CoordinatesPct: s.PhasePct[geometry.PhaseCoordinates],
		NeighborsPct:   s.PhasePct[geometry.PhaseNeighbors],
	}
}
