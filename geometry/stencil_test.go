package geometry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func stencilNames(s Stencil) []string {
	names := make([]string, s.Len())
	for d := range names {
		names[d] = s.Name(d)
	}
	return names
}

func TestStencilOrder3D(t *testing.T) {
	want := []string{
		"+x", "-x", "+y", "-y", "+z", "-z",
		"+x+y", "+x-y", "-x+y", "-x-y",
		"+x+z", "+x-z", "-x+z", "-x-z",
		"+y+z", "+y-z", "-y+z", "-y-z",
		"+x+y+z", "+x+y-z", "+x-y+z", "+x-y-z",
		"-x+y+z", "-x+y-z", "-x-y+z", "-x-y-z",
	}
	if diff := cmp.Diff(want, stencilNames(NewStencil(ThreeD))); diff != "" {
		t.Errorf("3D stencil order mismatch (-want +got):\n%s", diff)
	}
}

func TestStencilOrder2D(t *testing.T) {
	want := []string{"+x", "-x", "+y", "-y", "+x+y", "+x-y", "-x+y", "-x-y"}
	if diff := cmp.Diff(want, stencilNames(NewStencil(TwoD))); diff != "" {
		t.Errorf("2D stencil order mismatch (-want +got):\n%s", diff)
	}
}

func TestStencilSize(t *testing.T) {
	for _, d := range []Dim{TwoD, ThreeD} {
		s := NewStencil(d)
		if s.Len() != d.Neighbors() {
			t.Errorf("%s stencil has %d directions, want %d", d, s.Len(), d.Neighbors())
		}
		for dir := 0; dir < s.Len(); dir++ {
			if s.Offset(dir) == (Offset{}) {
				t.Errorf("%s direction %d is the zero offset", d, dir)
			}
		}
	}
}

func TestStencilOpposite(t *testing.T) {
	for _, d := range []Dim{TwoD, ThreeD} {
		s := NewStencil(d)
		for dir := 0; dir < s.Len(); dir++ {
			op := s.Opposite(dir)
			o, n := s.Offset(dir), s.Offset(op)
			if n != (Offset{-o[0], -o[1], -o[2]}) {
				t.Errorf("%s: Opposite(%s) = %s", d, s.Name(dir), s.Name(op))
			}
			if s.Opposite(op) != dir {
				t.Errorf("%s: Opposite is not an involution at %d", d, dir)
			}
		}
		// Axis pairs are adjacent.
		if s.Opposite(0) != 1 || s.Opposite(2) != 3 {
			t.Errorf("%s: axis pairs not adjacent", d)
		}
	}
}
