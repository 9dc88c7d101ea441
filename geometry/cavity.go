package geometry

// WallBoundary names the single boundary segment of a cavity.
const WallBoundary = "wall"

// NewCavity describes a cubic 3-D cavity of edge n with one refinement
// level and a single wall boundary covering all ghost cells. Fields of opts
// other than Halo, Layout, Precision, Timer and Logger are overridden.
func NewCavity(n, ghost int, opts Options) (*Geometry, error) {
	opts.Levels = 1
	opts.Boundaries = []string{WallBoundary}
	opts.BoundaryLengths = GhostCells
	return New(ThreeD, []int{n, n, n}, ghost, opts)
}

// BuildCavity describes and builds a cavity in one call.
func BuildCavity(n, ghost int, opts Options) (*Geometry, error) {
	g, err := NewCavity(n, ghost, opts)
	if err != nil {
		return nil, err
	}
	if err := g.Build(); err != nil {
		return nil, err
	}
	return g, nil
}
