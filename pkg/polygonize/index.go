package polygonize

import (
	"github.com/dhconnelly/rtreego"
)

// epsilon is the minimum bounding-box side length handed to rtreego,
// which requires non-zero dimensions; a single-pixel polygon's bounds
// would otherwise degenerate to a point or a line.
const epsilon = 1e-9

// Index is a Sink that keeps every polygon it receives and an R-tree over
// each polygon's bounding box, so a caller that needs viewport-style
// lookups over polygonize output doesn't have to build that spatial
// structure itself.
type Index struct {
	rtree    *rtreego.Rtree
	polygons []Polygon
}

type indexedPolygon struct {
	polygon    Polygon
	minX, minY float64
	maxX, maxY float64
}

// Bounds implements rtreego.Spatial.
func (p *indexedPolygon) Bounds() rtreego.Rect {
	point := rtreego.Point{p.minX, p.minY}
	lengths := []float64{p.maxX - p.minX, p.maxY - p.minY}
	if lengths[0] < epsilon {
		lengths[0] = epsilon
	}
	if lengths[1] < epsilon {
		lengths[1] = epsilon
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// NewIndex creates an empty spatial Index. minChildren/maxChildren tune
// the R-tree's node fan-out, matching rtreego.NewTree's own parameters.
func NewIndex(minChildren, maxChildren int) *Index {
	return &Index{rtree: rtreego.NewTree(2, minChildren, maxChildren)}
}

// Receive implements Sink, inserting p into the R-tree keyed by its
// exterior ring's bounding box.
func (idx *Index) Receive(p Polygon) error {
	if len(p.Rings) == 0 || len(p.Rings[0]) == 0 {
		return nil
	}
	exterior := p.Rings[0]
	ip := &indexedPolygon{
		polygon: p,
		minX:    exterior[0].X, maxX: exterior[0].X,
		minY: exterior[0].Y, maxY: exterior[0].Y,
	}
	for _, pt := range exterior[1:] {
		if pt.X < ip.minX {
			ip.minX = pt.X
		}
		if pt.X > ip.maxX {
			ip.maxX = pt.X
		}
		if pt.Y < ip.minY {
			ip.minY = pt.Y
		}
		if pt.Y > ip.maxY {
			ip.maxY = pt.Y
		}
	}

	idx.rtree.Insert(ip)
	idx.polygons = append(idx.polygons, p)
	return nil
}

// QueryBounds returns every polygon whose bounding box intersects the
// rectangle [minX,maxX] x [minY,maxY].
func (idx *Index) QueryBounds(minX, minY, maxX, maxY float64) []Polygon {
	point := rtreego.Point{minX, minY}
	lengths := []float64{maxX - minX, maxY - minY}
	if lengths[0] < epsilon {
		lengths[0] = epsilon
	}
	if lengths[1] < epsilon {
		lengths[1] = epsilon
	}
	rect, _ := rtreego.NewRect(point, lengths)

	hits := idx.rtree.SearchIntersect(rect)
	result := make([]Polygon, 0, len(hits))
	for _, h := range hits {
		result = append(result, h.(*indexedPolygon).polygon)
	}
	return result
}

// All returns every polygon inserted into the index, in insertion order.
func (idx *Index) All() []Polygon {
	return idx.polygons
}
