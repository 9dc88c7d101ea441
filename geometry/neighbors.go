package geometry

import (
	"fmt"

	"github.com/pthm-cable/lattice/layout"
)

// ComputeNeighbors resolves the stencil of every bulk and inner-ghost cell
// and publishes the table to device memory in one copy.
//
// The padded position of a cell is recomputed from its stored coordinate
// rather than kept in a second table. Lookups from inner-ghost cells may
// land on outer-ghost identities; a lookup outside the padded grid is an
// error.
func (g *Geometry) ComputeNeighbors() error {
	if g.phase != phaseCoordinates {
		return g.sequenceError(PhaseNeighbors, PhaseCoordinates)
	}

	staged, err := g.neighbor.Stage()
	if err != nil {
		g.phase = phaseFailed
		return err
	}
	centers := g.counts.Centers()
	host, err := layout.Wrap("neighbor_h", g.opts.Layout, centers, g.stencil.Len(), staged)
	if err != nil {
		g.phase = phaseFailed
		return err
	}

	d := int(g.dim)
	p := make([]int, d)
	q := make([]int, d)
	for id := 0; id < centers; id++ {
		for a := 0; a < d; a++ {
			p[a] = int(g.coords.At(id, a)) + g.ghost
		}
		for dir := 0; dir < g.stencil.Len(); dir++ {
			off := g.stencil.Offset(dir)
			for a := 0; a < d; a++ {
				q[a] = p[a] + off[a]
				if q[a] < 0 || q[a] >= g.padded[a] {
					g.phase = phaseFailed
					return fmt.Errorf("identity %d direction %s: %w", id, g.stencil.Name(dir), ErrStencilOutOfDomain)
				}
			}
			host.Set(id, dir, g.index[g.rawSlot(q)])
		}
	}

	if err := g.neighbor.Publish(); err != nil {
		g.phase = phaseFailed
		return err
	}
	buf, err := g.neighbor.View()
	if err != nil {
		g.phase = phaseFailed
		return err
	}
	published, err := layout.Wrap(buf.Label(), g.opts.Layout, centers, g.stencil.Len(), buf.Data())
	if err != nil {
		g.phase = phaseFailed
		return err
	}
	g.published = published

	g.phase = phaseReady
	g.logger.Debug("neighbor table published",
		"rows", centers,
		"directions", g.stencil.Len(),
	)
	return nil
}
