package tracer

// Index is a pixel row or column coordinate as recorded in a traced arc.
type Index = uint32

// Point is a pixel-grid corner position: the point shared by up to four
// cells, recorded as (row, col).
type Point struct {
	Row, Col Index
}

// arcRecord is one contiguous chain of corner points belonging to an
// RPolygon, together with the index of the next arc to follow when
// walking the polygon's ring and the winding direction the arc's points
// must be read in.
type arcRecord struct {
	points          []Point
	connection      int
	followRighthand bool
}

// IndexedArc names one arc belonging to a specific RPolygon so it can be
// passed around and appended to without copying its point slice.
type IndexedArc struct {
	Polygon *RPolygon
	Index   int
}

// valid reports whether oArc actually names an arc (the zero IndexedArc,
// used as an uninitialized TwoArm field, does not).
func (a IndexedArc) valid() bool {
	return a.Polygon != nil
}

// Append adds a corner point to the end of the referenced arc.
func (a IndexedArc) Append(p Point) {
	a.Polygon.arcs[a.Index].points = append(a.Polygon.arcs[a.Index].points, p)
}

// RPolygon is a raster polygon under construction: an unordered set of
// arcs, each knowing the next arc of whichever ring it belongs to. A ring
// is recovered by starting at any unvisited arc and following
// connections until back at the start; the first ring recovered is the
// exterior, the rest are interior holes.
type RPolygon struct {
	bottomRightRow Index
	bottomRightCol Index

	arcs []arcRecord
}

// NewArc appends a new, empty arc to the polygon and returns a handle to it.
func (p *RPolygon) NewArc(followRighthand bool) IndexedArc {
	idx := len(p.arcs)
	p.arcs = append(p.arcs, arcRecord{followRighthand: followRighthand})
	return IndexedArc{Polygon: p, Index: idx}
}

// SetConnection records that, when walking the ring containing arc,
// next comes immediately after it.
func (p *RPolygon) SetConnection(arc, next IndexedArc) {
	p.arcs[arc.Index].connection = next.Index
}

// updateBottomRightPos records the most recently visited cell as the
// current bottom-right-most cell of the polygon. Because ProcessLine
// scans row-major, the last cell visited for a polygon before its row
// advances past it is, by construction, its actual bottom-right corner.
func (p *RPolygon) updateBottomRightPos(row, col Index) {
	p.bottomRightRow = row
	p.bottomRightCol = col
}

// Rings walks every arc exactly once, grouping them into closed rings by
// following each arc's connection chain. The first ring returned is the
// exterior ring; any further rings are interior holes.
func (p *RPolygon) Rings() [][]Point {
	visited := make([]bool, len(p.arcs))
	var rings [][]Point

	appendArc := func(ring []Point, idx int) []Point {
		arc := p.arcs[idx]
		if arc.followRighthand {
			ring = append(ring, arc.points...)
		} else {
			for i := len(arc.points) - 1; i >= 0; i-- {
				ring = append(ring, arc.points[i])
			}
		}
		return ring
	}

	for start := range p.arcs {
		if visited[start] {
			continue
		}
		var ring []Point
		ring = appendArc(ring, start)
		visited[start] = true

		idx := start
		next := p.arcs[idx].connection
		for next != start {
			ring = appendArc(ring, next)
			visited[next] = true
			idx = next
			next = p.arcs[idx].connection
		}

		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		rings = append(rings, ring)
	}

	return rings
}
