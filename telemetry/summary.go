package telemetry

import (
	"github.com/pthm-cable/lattice/geometry"
)

// RegionSummary describes one identity range.
type RegionSummary struct {
	Region  string `csv:"region"`
	FirstID int    `csv:"first_id"`
	Count   int    `csv:"count"`
	HasRow  bool   `csv:"has_neighbor_row"`
}

// CoordinateRow is one row of the coordinate table. Z is 0 in 2-D.
type CoordinateRow struct {
	ID     int    `csv:"id"`
	Region string `csv:"region"`
	X      int    `csv:"x"`
	Y      int    `csv:"y"`
	Z      int    `csv:"z"`
}

// NeighborRow is one (cell, direction) entry of the neighbor table.
type NeighborRow struct {
	ID        int    `csv:"id"`
	Slot      int    `csv:"slot"`
	Direction string `csv:"direction"`
	Neighbor  int    `csv:"neighbor"`
}

// BuildSummary is one geometry build, as written by the sweep command.
type BuildSummary struct {
	Dim        int    `csv:"dim"`
	Size       int    `csv:"size"`
	Ghost      int    `csv:"ghost"`
	Layout     string `csv:"layout"`
	Bulk       int    `csv:"bulk"`
	GhostInner int    `csv:"ghost_inner"`
	GhostOuter int    `csv:"ghost_outer"`
	Nodes      int    `csv:"nodes"`
	BuildUS    int64  `csv:"build_us"`
}

// Summarize returns one row per region in identity order.
func Summarize(g *geometry.Geometry) []RegionSummary {
	c := g.Counts()
	out := make([]RegionSummary, 0, 3)
	for _, r := range []geometry.Region{geometry.Bulk, geometry.GhostInner, geometry.GhostOuter} {
		out = append(out, RegionSummary{
			Region:  r.String(),
			FirstID: c.First(r),
			Count:   c.Len(r),
			HasRow:  r != geometry.GhostOuter,
		})
	}
	return out
}

// CoordinateRows flattens the coordinate table of a built geometry.
func CoordinateRows(g *geometry.Geometry) ([]CoordinateRow, error) {
	n := g.Counts().Nodes
	rows := make([]CoordinateRow, 0, n)
	var c []int
	for id := 0; id < n; id++ {
		var err error
		c, err = g.Coord(c[:0], id)
		if err != nil {
			return nil, err
		}
		row := CoordinateRow{ID: id, Region: g.RegionOf(id).String(), X: c[0], Y: c[1]}
		if len(c) > 2 {
			row.Z = c[2]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// NeighborRows flattens the published neighbor table of a built geometry.
func NeighborRows(g *geometry.Geometry) ([]NeighborRow, error) {
	tbl, err := g.Neighbors()
	if err != nil {
		return nil, err
	}
	s := g.Stencil()
	rows := make([]NeighborRow, 0, tbl.Len())
	for id := 0; id < tbl.Slots(); id++ {
		for dir := 0; dir < tbl.Fields(); dir++ {
			rows = append(rows, NeighborRow{
				ID:        id,
				Slot:      dir,
				Direction: s.Name(dir),
				Neighbor:  int(tbl.At(id, dir)),
			})
		}
	}
	return rows, nil
}
