package geometry

import "fmt"

// Boundary is one named segment of the boundary cell list. The list itself
// belongs to the boundary condition code; the geometry only records where
// each segment starts and how long it is.
type Boundary struct {
	Name   string
	Offset int
	Length int
}

// GhostCells is a BoundaryLengths function for a single segment spanning
// every ghost cell.
func GhostCells(c Counts) []int {
	return []int{c.GhostInner + c.GhostOuter}
}

func (g *Geometry) assignBoundaries() error {
	if g.opts.BoundaryLengths == nil {
		return nil
	}
	lengths := g.opts.BoundaryLengths(g.counts)
	if len(lengths) != len(g.opts.Boundaries) {
		return fmt.Errorf("%d boundary lengths for %d segments: %w", len(lengths), len(g.opts.Boundaries), ErrConfig)
	}
	offsets := g.boundaryOffset.Data()
	out := g.boundaryLength.Data()
	sum := 0
	for i, n := range lengths {
		if n < 0 {
			return fmt.Errorf("boundary %q length %d: %w", g.opts.Boundaries[i], n, ErrConfig)
		}
		offsets[i] = int32(sum)
		out[i] = int32(n)
		sum += n
	}
	return nil
}

// Boundaries returns the boundary segments in declaration order.
func (g *Geometry) Boundaries() ([]Boundary, error) {
	if !g.Ready() {
		return nil, ErrNotBuilt
	}
	offsets := g.boundaryOffset.Data()
	lengths := g.boundaryLength.Data()
	out := make([]Boundary, len(g.opts.Boundaries))
	for i, name := range g.opts.Boundaries {
		out[i] = Boundary{Name: name, Offset: int(offsets[i]), Length: int(lengths[i])}
	}
	return out, nil
}
