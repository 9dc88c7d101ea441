package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Precision is the floating point width used for spacing values handed to
// the solver.
type Precision uint8

const (
	Single Precision = iota
	Double
)

func (p Precision) String() string {
	if p == Double {
		return "double"
	}
	return "single"
}

// ParsePrecision converts a config value into a Precision.
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "float32":
		return Single, nil
	case "double", "float64":
		return Double, nil
	default:
		return 0, fmt.Errorf("unknown precision %q (want single or double)", s)
	}
}

// Round returns v as representable at precision p.
func (p Precision) Round(v float64) float64 {
	if p == Single {
		return float64(float32(v))
	}
	return v
}

// levelSpacing returns 1/2^l for each level, rounded to p.
func levelSpacing(levels int, p Precision) []float64 {
	out := make([]float64, levels)
	for l := range out {
		out[l] = p.Round(math.Ldexp(1, -l))
	}
	return out
}

// Levels returns the number of refinement levels.
func (g *Geometry) Levels() int { return g.opts.Levels }

// Precision returns the spacing precision.
func (g *Geometry) Precision() Precision { return g.opts.Precision }

// Spacing returns the grid spacing of level l.
func (g *Geometry) Spacing(l int) (float64, error) {
	if !g.Ready() {
		return 0, ErrNotBuilt
	}
	if l < 0 || l >= len(g.spacing) {
		return 0, fmt.Errorf("level %d outside [0, %d)", l, len(g.spacing))
	}
	return g.spacing[l], nil
}

// Spacing32 returns the grid spacing of level l as float32.
func (g *Geometry) Spacing32(l int) (float32, error) {
	v, err := g.Spacing(l)
	return float32(v), err
}
