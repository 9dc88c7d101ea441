// Package geometry builds the cell indexing of a padded lattice domain.
//
// Every position of the grid padded by the ghost depth on each side (a raw
// slot) receives a compact identity. Identities are grouped by region in a
// fixed order: bulk cells inside the domain, then the inner ghost shell,
// then the outermost ghost layer. For every bulk and inner-ghost identity
// the package resolves a fixed stencil of neighbor identities and publishes
// the table to device memory.
//
// Construction runs in three phases that must occur in order: Allocate,
// AssignCoordinates, ComputeNeighbors. Build runs all three.
package geometry

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/lattice/device"
	"github.com/pthm-cable/lattice/layout"
)

var (
	// ErrConfig reports an invalid domain description.
	ErrConfig = errors.New("geometry: invalid configuration")
	// ErrSequence reports a phase called before the phase it depends on.
	ErrSequence = errors.New("geometry: construction phase out of order")
	// ErrStencilOutOfDomain reports a neighbor lookup outside the padded grid.
	ErrStencilOutOfDomain = errors.New("geometry: stencil reaches outside padded domain")
	// ErrNotBuilt reports access to tables of an incomplete geometry.
	ErrNotBuilt = errors.New("geometry: tables not built")
)

// Phase names used for timing.
const (
	PhaseAllocate    = "allocate"
	PhaseCoordinates = "coordinates"
	PhaseNeighbors   = "neighbors"
)

type phase uint8

const (
	phaseNew phase = iota
	phaseAllocated
	phaseCoordinates
	phaseReady
	phaseFailed
)

// Region classifies a cell.
type Region uint8

const (
	Bulk Region = iota
	GhostInner
	GhostOuter
)

func (r Region) String() string {
	switch r {
	case Bulk:
		return "bulk"
	case GhostInner:
		return "ghost_inner"
	case GhostOuter:
		return "ghost_outer"
	default:
		return fmt.Sprintf("region(%d)", uint8(r))
	}
}

// Counts holds the size of each identity range.
type Counts struct {
	Bulk       int
	GhostInner int
	GhostOuter int
	Nodes      int
}

// Centers returns the number of cells with a neighbor row.
func (c Counts) Centers() int { return c.Bulk + c.GhostInner }

// First returns the first identity of region r.
func (c Counts) First(r Region) int {
	switch r {
	case GhostInner:
		return c.Bulk
	case GhostOuter:
		return c.Bulk + c.GhostInner
	default:
		return 0
	}
}

// Len returns the size of region r.
func (c Counts) Len(r Region) int {
	switch r {
	case Bulk:
		return c.Bulk
	case GhostInner:
		return c.GhostInner
	case GhostOuter:
		return c.GhostOuter
	default:
		return 0
	}
}

// PhaseTimer receives the name of each construction phase as it starts.
// telemetry.PerfCollector satisfies it.
type PhaseTimer interface {
	StartPhase(name string)
}

// Options carries the construction parameters besides shape and ghost
// depth. The zero value is usable.
type Options struct {
	Halo      int           // halo depth; recorded for consumers
	Layout    layout.Layout // physical order of multi-field tables
	Precision Precision     // precision of grid spacing values
	Levels    int           // refinement levels; 0 means 1

	// Boundaries names the boundary segments. BoundaryLengths, when set, is
	// called after coordinate assignment and returns one length per
	// segment; offsets are the running sum of lengths.
	Boundaries      []string
	BoundaryLengths func(Counts) []int

	Timer  PhaseTimer
	Logger *slog.Logger
}

// Geometry describes a lattice domain and owns all of its tables.
type Geometry struct {
	dim     Dim
	extents []int
	ghost   int
	opts    Options
	stencil Stencil

	padded  []int // extents + 2*ghost
	strides []int // raw slot stride per axis
	counts  Counts
	phase   phase

	index     []int32              // raw slot -> identity
	regions   []Region             // raw slot -> region
	coords    *layout.Table[int32] // identity x axis
	neighbor  *device.Mirror[int32]
	published *layout.Table[int32] // device view of neighbor
	spacing   []float64

	boundaryOffset *device.Buffer[int32]
	boundaryLength *device.Buffer[int32]

	logger *slog.Logger
}

// New validates a domain description. Nothing is allocated until Allocate.
func New(dim Dim, extents []int, ghost int, opts Options) (*Geometry, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("dimension %d: %w", uint8(dim), ErrConfig)
	}
	if len(extents) != int(dim) {
		return nil, fmt.Errorf("%s domain given %d extents: %w", dim, len(extents), ErrConfig)
	}
	for a, n := range extents {
		if n <= 0 {
			return nil, fmt.Errorf("extent %d along axis %c: %w", n, "xyz"[a], ErrConfig)
		}
	}
	if ghost < 1 || ghost > (math.MaxInt32-1)/2 {
		return nil, fmt.Errorf("ghost depth %d (want 1 to %d): %w", ghost, (math.MaxInt32-1)/2, ErrConfig)
	}
	if opts.Halo < 0 {
		return nil, fmt.Errorf("halo depth %d: %w", opts.Halo, ErrConfig)
	}
	if opts.Levels < 0 {
		return nil, fmt.Errorf("level count %d: %w", opts.Levels, ErrConfig)
	}
	if opts.Levels == 0 {
		opts.Levels = 1
	}
	seen := make(map[string]bool, len(opts.Boundaries))
	for _, name := range opts.Boundaries {
		if name == "" || seen[name] {
			return nil, fmt.Errorf("boundary name %q empty or repeated: %w", name, ErrConfig)
		}
		seen[name] = true
	}

	padded := make([]int, dim)
	strides := make([]int, dim)
	total := 1
	// Identities are stored as int32. Bounds are checked before each
	// product so the checks cannot wrap.
	for a, n := range extents {
		if n > math.MaxInt32-2*ghost {
			return nil, fmt.Errorf("extent %d along axis %c exceeds %d cells with ghosts: %w", n, "xyz"[a], math.MaxInt32, ErrConfig)
		}
		padded[a] = n + 2*ghost
		if total > math.MaxInt32/padded[a] {
			return nil, fmt.Errorf("padded volume exceeds %d cells: %w", math.MaxInt32, ErrConfig)
		}
		strides[a] = total
		total *= padded[a]
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Geometry{
		dim:     dim,
		extents: slices.Clone(extents),
		ghost:   ghost,
		opts:    opts,
		stencil: NewStencil(dim),
		padded:  padded,
		strides: strides,
		logger:  logger,
	}, nil
}

// Allocate derives the region sizes and allocates every table.
func (g *Geometry) Allocate() error {
	if g.phase != phaseNew {
		return g.sequenceError(PhaseAllocate, "a new geometry")
	}

	bulk, inner, full := 1, 1, 1
	for a, n := range g.extents {
		bulk *= n
		inner *= n + 2*(g.ghost-1)
		full *= g.padded[a]
	}
	g.counts = Counts{
		Bulk:       bulk,
		GhostInner: inner - bulk,
		GhostOuter: full - inner,
		Nodes:      full,
	}

	d := int(g.dim)
	g.index = device.Alloc[int32](device.Host, "index", full).Data()
	g.regions = device.Alloc[Region](device.Host, "map", full).Data()
	coordBuf := device.Alloc[int32](device.Host, "coordinates", full*d)
	coords, err := layout.Wrap("coordinates", g.opts.Layout, full, d, coordBuf.Data())
	if err != nil {
		g.phase = phaseFailed
		return err
	}
	g.coords = coords
	g.neighbor = device.NewMirror[int32]("neighbor", g.counts.Centers()*g.stencil.Len())

	nb := len(g.opts.Boundaries)
	g.boundaryOffset = device.Alloc[int32](device.Host, "boundaryOffset", nb)
	g.boundaryLength = device.Alloc[int32](device.Host, "boundaryLength", nb)

	g.spacing = levelSpacing(g.opts.Levels, g.opts.Precision)

	g.phase = phaseAllocated
	g.logger.Debug("geometry allocated",
		"dim", g.dim.String(),
		"extents", g.extents,
		"ghost", g.ghost,
		"nodes", g.counts.Nodes,
		"coordinates", humanize.Bytes(coordBuf.Bytes()),
		"neighbor", humanize.Bytes(g.neighbor.Bytes()),
	)
	return nil
}

// Build runs Allocate, AssignCoordinates and ComputeNeighbors in order.
// On error the geometry is left unusable.
func (g *Geometry) Build() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{PhaseAllocate, g.Allocate},
		{PhaseCoordinates, g.AssignCoordinates},
		{PhaseNeighbors, g.ComputeNeighbors},
	}
	for _, s := range steps {
		if g.opts.Timer != nil {
			g.opts.Timer.StartPhase(s.name)
		}
		if err := s.fn(); err != nil {
			g.phase = phaseFailed
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (g *Geometry) sequenceError(op, want string) error {
	if g.phase == phaseFailed {
		return fmt.Errorf("%s after failed construction: %w", op, ErrSequence)
	}
	return fmt.Errorf("%s requires %s: %w", op, want, ErrSequence)
}

// Dim returns the lattice dimension.
func (g *Geometry) Dim() Dim { return g.dim }

// Extents returns a copy of the un-padded extents.
func (g *Geometry) Extents() []int { return slices.Clone(g.extents) }

// Padded returns a copy of the padded extents.
func (g *Geometry) Padded() []int { return slices.Clone(g.padded) }

// Ghost returns the ghost depth.
func (g *Geometry) Ghost() int { return g.ghost }

// Halo returns the halo depth.
func (g *Geometry) Halo() int { return g.opts.Halo }

// Layout returns the table layout.
func (g *Geometry) Layout() layout.Layout { return g.opts.Layout }

// Stencil returns the neighbor stencil.
func (g *Geometry) Stencil() Stencil { return g.stencil }

// Counts returns the region sizes. They are zero before Allocate.
func (g *Geometry) Counts() Counts { return g.counts }

// NeighborBytes returns the memory held by the neighbor table, host
// staging included until it is published. It is 0 before Allocate.
func (g *Geometry) NeighborBytes() uint64 {
	if g.neighbor == nil {
		return 0
	}
	return g.neighbor.Bytes()
}

// Ready reports whether all tables are built and published.
func (g *Geometry) Ready() bool { return g.phase == phaseReady }

// RegionOf returns the region of identity id.
func (g *Geometry) RegionOf(id int) Region {
	switch {
	case id < g.counts.Bulk:
		return Bulk
	case id < g.counts.Centers():
		return GhostInner
	default:
		return GhostOuter
	}
}

// rawSlot returns the raw slot of the padded position p.
func (g *Geometry) rawSlot(p []int) int {
	n := 0
	for a, v := range p {
		n += v * g.strides[a]
	}
	return n
}

// Coordinates returns the identity x axis coordinate table.
func (g *Geometry) Coordinates() (*layout.Table[int32], error) {
	if !g.Ready() {
		return nil, ErrNotBuilt
	}
	return g.coords, nil
}

// Coord appends the coordinate of identity id to dst.
func (g *Geometry) Coord(dst []int, id int) ([]int, error) {
	if !g.Ready() {
		return dst, ErrNotBuilt
	}
	if id < 0 || id >= g.counts.Nodes {
		return dst, fmt.Errorf("identity %d outside [0, %d)", id, g.counts.Nodes)
	}
	for a := 0; a < int(g.dim); a++ {
		dst = append(dst, int(g.coords.At(id, a)))
	}
	return dst, nil
}

// Identity returns the identity at signed lattice coordinate c.
func (g *Geometry) Identity(c ...int) (int, error) {
	if !g.Ready() {
		return 0, ErrNotBuilt
	}
	if len(c) != int(g.dim) {
		return 0, fmt.Errorf("%s lookup with %d coordinates", g.dim, len(c))
	}
	p := make([]int, len(c))
	for a, v := range c {
		p[a] = v + g.ghost
		if p[a] < 0 || p[a] >= g.padded[a] {
			return 0, fmt.Errorf("coordinate %v outside padded domain", c)
		}
	}
	return int(g.index[g.rawSlot(p)]), nil
}

// RawRegion returns the region of raw slot n.
func (g *Geometry) RawRegion(n int) (Region, error) {
	if !g.Ready() {
		return 0, ErrNotBuilt
	}
	if n < 0 || n >= len(g.regions) {
		return 0, fmt.Errorf("raw slot %d outside [0, %d)", n, len(g.regions))
	}
	return g.regions[n], nil
}

// Neighbors returns the published identity x direction neighbor table.
// It has a row for every bulk and inner-ghost identity.
func (g *Geometry) Neighbors() (*layout.Table[int32], error) {
	if !g.Ready() {
		return nil, ErrNotBuilt
	}
	return g.published, nil
}

// Neighbor returns the neighbor of identity id in direction dir.
func (g *Geometry) Neighbor(id, dir int) (int, error) {
	tbl, err := g.Neighbors()
	if err != nil {
		return 0, err
	}
	if id < 0 || id >= tbl.Slots() {
		return 0, fmt.Errorf("identity %d has no neighbor row", id)
	}
	if dir < 0 || dir >= tbl.Fields() {
		return 0, fmt.Errorf("direction %d outside [0, %d)", dir, tbl.Fields())
	}
	return int(tbl.At(id, dir)), nil
}
