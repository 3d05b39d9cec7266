// Package tracer implements the edge tracer (C2): the "two-arm chains"
// algorithm of Teng, Wang and Liu (An Efficient Algorithm for
// Raster-to-Vector Data Conversion, 2009), which builds closed polygon
// rings — exterior plus interior holes — from a raster of stable polygon
// ids, in a second streaming pass over the grid.
package tracer

import (
	"sort"

	"github.com/geopolygonize/polygonize/internal/raster"
)

// Id identifies a polygon by its stable (post-merge) id from the
// enumerator pass.
type Id = int32

// OuterPolygonId is the sentinel id of the unbounded polygon surrounding
// the raster. Using the maximum representable id lets every border arm
// resolve to a real (if virtual) polygon instead of needing special-case
// nil checks throughout ProcessArmConnections.
const OuterPolygonId Id = 1<<31 - 1

// Receiver accepts completed polygons as the tracer finishes them. value
// is the cell value recorded for the polygon by the enumerator.
type Receiver[T any] interface {
	Receive(poly *RPolygon, value T) error
}

// Polygonizer drives the two-arm-chains algorithm across rows, holding
// exactly the in-progress RPolygon objects: one per polygon id currently
// open, released the moment its bottom-right corner has passed.
type Polygonizer[T any] struct {
	invalidId Id
	outer     *RPolygon
	polygons  map[Id]*RPolygon
	receiver  Receiver[T]
}

// New creates a Polygonizer. invalidId marks a cell as belonging to no
// polygon (e.g. NODATA); polygons with that id are traced (so their
// boundaries close correctly) but never delivered to receiver.
func New[T any](invalidId Id, receiver Receiver[T]) *Polygonizer[T] {
	p := &Polygonizer[T]{
		invalidId: invalidId,
		polygons:  make(map[Id]*RPolygon),
		receiver:  receiver,
	}
	p.outer = p.createPolygon(OuterPolygonId)
	return p
}

// TheOuterPolygon returns the polygon representing the region outside the
// raster, used to seed border arms.
func (p *Polygonizer[T]) TheOuterPolygon() *RPolygon {
	return p.outer
}

func (p *Polygonizer[T]) getPolygon(id Id) *RPolygon {
	if poly, ok := p.polygons[id]; ok {
		return poly
	}
	return p.createPolygon(id)
}

func (p *Polygonizer[T]) createPolygon(id Id) *RPolygon {
	poly := &RPolygon{}
	p.polygons[id] = poly
	return poly
}

func (p *Polygonizer[T]) destroyPolygon(id Id) {
	delete(p.polygons, id)
}

// ProcessLine advances the trace by one row. thisLineId holds the stable
// polygon id of every cell in the row; lastLineVal holds the previous
// row's cell values (used only to report the value of a polygon whose
// bottom-right corner is its last cell on the previous row). thisArm and
// lastArm must each have length cols+2: index 0 is the left border arm,
// indices 1..cols are the real columns, and index cols+1 is the right
// border arm. On row 0, every lastArm entry is assigned the outer polygon,
// standing for the virtual row above the raster.
func (p *Polygonizer[T]) ProcessLine(thisLineId []Id, lastLineVal []T, thisArm, lastArm []TwoArm, currentRow, cols Index) error {
	if Index(len(thisArm)) != cols+2 || Index(len(lastArm)) != cols+2 {
		return &raster.MalformedInput{Reason: "tracer: arm row length must be cols+2"}
	}

	if currentRow == 0 {
		for i := range lastArm {
			lastArm[i].PolyInside = p.outer
		}
	}

	current := &thisArm[1]
	current.Row = currentRow
	current.Col = 0
	current.PolyInside = p.getPolygon(thisLineId[0])
	above := &lastArm[1]
	left := &thisArm[0]
	left.PolyInside = p.outer
	processArmConnections(current, above, left)

	for col := Index(1); col < cols; col++ {
		armIdx := col + 1
		current = &thisArm[armIdx]
		current.Row = currentRow
		current.Col = col
		current.PolyInside = p.getPolygon(thisLineId[col])
		above = &lastArm[armIdx]
		left = &thisArm[armIdx-1]
		processArmConnections(current, above, left)
	}

	current = &thisArm[cols+1]
	current.Row = currentRow
	current.Col = cols
	current.PolyInside = p.outer
	above = &lastArm[cols+1]
	above.PolyInside = p.outer
	left = &thisArm[cols]
	processArmConnections(current, above, left)

	type completedEntry struct {
		id   Id
		poly *RPolygon
	}
	var completed []completedEntry
	for id, poly := range p.polygons {
		if poly.bottomRightRow+1 == currentRow {
			completed = append(completed, completedEntry{id, poly})
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].id < completed[j].id })

	for _, e := range completed {
		if e.id != p.invalidId {
			if err := p.receiver.Receive(e.poly, lastLineVal[e.poly.bottomRightCol]); err != nil {
				return err
			}
		}
		p.destroyPolygon(e.id)
	}
	return nil
}
