package geometry

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat/combin"
)

// Dim is the lattice dimension. Only the two variants below exist.
type Dim uint8

const (
	TwoD   Dim = 2
	ThreeD Dim = 3
)

// Valid reports whether d is one of the supported variants.
func (d Dim) Valid() bool { return d == TwoD || d == ThreeD }

// Neighbors returns the stencil size: 3^d - 1.
func (d Dim) Neighbors() int {
	switch d {
	case TwoD:
		return 8
	case ThreeD:
		return 26
	default:
		return 0
	}
}

func (d Dim) String() string {
	if !d.Valid() {
		return fmt.Sprintf("dim(%d)", uint8(d))
	}
	return fmt.Sprintf("%dD", uint8(d))
}

// Offset is a stencil direction. Components past the lattice dimension are
// zero.
type Offset [3]int

// Stencil is the ordered set of nonzero offsets with components in
// {-1, 0, 1}. Consumers address neighbors by position in this order, so it
// is fixed:
//
//	axis pairs        +x -x +y -y +z -z
//	face diagonals    +x+y +x-y -x+y -x-y, then xz, then yz
//	corner diagonals  +++ ++- +-+ +-- -++ -+- --+ ---
//
// Within a group, directions sort by their nonzero axes (x before y before
// z) and then by sign per axis with + before -.
type Stencil struct {
	dim      Dim
	offsets  []Offset
	opposite []int
}

// NewStencil builds the stencil of dimension d.
func NewStencil(d Dim) Stencil {
	lens := make([]int, d)
	for i := range lens {
		lens[i] = 3
	}

	var offsets []Offset
	for _, p := range combin.Cartesian(lens) {
		var o Offset
		zero := true
		for a, v := range p {
			o[a] = v - 1
			if o[a] != 0 {
				zero = false
			}
		}
		if !zero {
			offsets = append(offsets, o)
		}
	}
	slices.SortFunc(offsets, func(a, b Offset) int {
		return slices.Compare(orderKey(a), orderKey(b))
	})

	opposite := make([]int, len(offsets))
	for i, o := range offsets {
		neg := Offset{-o[0], -o[1], -o[2]}
		opposite[i] = slices.Index(offsets, neg)
	}
	return Stencil{dim: d, offsets: offsets, opposite: opposite}
}

// orderKey is [nonzero count, nonzero axes..., signs...] with + as 0 and -
// as 1.
func orderKey(o Offset) []int {
	var axes, signs []int
	for a, v := range o {
		switch {
		case v > 0:
			axes = append(axes, a)
			signs = append(signs, 0)
		case v < 0:
			axes = append(axes, a)
			signs = append(signs, 1)
		}
	}
	key := append([]int{len(axes)}, axes...)
	return append(key, signs...)
}

// Dim returns the stencil dimension.
func (s Stencil) Dim() Dim { return s.dim }

// Len returns the number of directions.
func (s Stencil) Len() int { return len(s.offsets) }

// Offset returns direction dir.
func (s Stencil) Offset(dir int) Offset { return s.offsets[dir] }

// Opposite returns the index of the direction -Offset(dir).
func (s Stencil) Opposite(dir int) int { return s.opposite[dir] }

// Name renders direction dir as signed axis letters, e.g. "+x-z".
func (s Stencil) Name(dir int) string {
	var b strings.Builder
	for a, v := range s.offsets[dir][:s.dim] {
		switch {
		case v > 0:
			b.WriteByte('+')
		case v < 0:
			b.WriteByte('-')
		default:
			continue
		}
		b.WriteByte("xyz"[a])
	}
	return b.String()
}
