package geometry

import "fmt"

// AssignCoordinates scans every raw slot in row-major order (x fastest),
// classifies it and hands out identities. Each region has its own counter
// starting at the region's first identity, so within a region identities
// follow scan order. The scan also fills the raw slot region map and, when
// configured, the boundary segment tables.
func (g *Geometry) AssignCoordinates() error {
	if g.phase != phaseAllocated {
		return g.sequenceError(PhaseCoordinates, PhaseAllocate)
	}

	d := int(g.dim)
	pos := make([]int, d) // padded index, advanced as an odometer
	c := make([]int, d)   // signed lattice coordinate
	next := [3]int{
		g.counts.First(Bulk),
		g.counts.First(GhostInner),
		g.counts.First(GhostOuter),
	}

	for raw := range g.index {
		bulk, inner := true, true
		for a := 0; a < d; a++ {
			c[a] = pos[a] - g.ghost
			if c[a] < 0 || c[a] >= g.extents[a] {
				bulk = false
			}
			if c[a] < 1-g.ghost || c[a] > g.extents[a]+g.ghost-2 {
				inner = false
			}
		}

		r := GhostOuter
		switch {
		case bulk:
			r = Bulk
		case inner:
			r = GhostInner
		}
		id := next[r]
		if id >= g.counts.First(r)+g.counts.Len(r) {
			g.phase = phaseFailed
			return fmt.Errorf("%s identities exhausted at raw slot %d", r, raw)
		}
		next[r]++

		g.index[raw] = int32(id)
		g.regions[raw] = r
		for a := 0; a < d; a++ {
			g.coords.Set(id, a, int32(c[a]))
		}

		for a := 0; a < d; a++ {
			pos[a]++
			if pos[a] < g.padded[a] {
				break
			}
			pos[a] = 0
		}
	}

	for _, r := range []Region{Bulk, GhostInner, GhostOuter} {
		if got, want := next[r]-g.counts.First(r), g.counts.Len(r); got != want {
			g.phase = phaseFailed
			return fmt.Errorf("assigned %d %s identities, want %d", got, r, want)
		}
	}

	if err := g.assignBoundaries(); err != nil {
		g.phase = phaseFailed
		return err
	}

	g.phase = phaseCoordinates
	return nil
}
