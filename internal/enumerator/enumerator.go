// Package enumerator implements the polygon enumerator (C1): a two-row
// streaming union-find scan that assigns polygon ids to raster cells
// sharing an equal value under 4- or 8-connectivity.
//
// It is a direct port of GDALRasterPolygonEnumeratorT, generalized over
// any comparable cell type via a caller-supplied equality test so the
// same logic serves both exact-integer and ULPs-tolerant float rasters.
package enumerator

import (
	"math"

	"github.com/geopolygonize/polygonize/internal/raster"
)

// Id is the polygon fragment id type. The maximum value is never returned
// by NewPolygon (the tracer reserves it for the outer polygon); NODATA
// cells get invalidId (-1).
type Id = int32

const invalidId Id = -1

// Enumerator assigns and merges polygon fragment ids for a raster of
// values of type T, scanned one row at a time.
type Enumerator[T any] struct {
	idMap  []Id
	values []T

	nextId        Id
	connectedness int
	equal         func(a, b T) bool
	isNoData      func(v T) bool
}

// New creates an Enumerator using connectedness (4 or 8), equal to test
// whether two cell values belong to the same polygon, and isNoData to
// identify cells excluded from all polygons.
func New[T any](connectedness int, equal func(a, b T) bool, isNoData func(v T) bool) *Enumerator[T] {
	if connectedness != 4 && connectedness != 8 {
		connectedness = 4
	}
	return &Enumerator[T]{
		connectedness: connectedness,
		equal:         equal,
		isNoData:      isNoData,
	}
}

// Clear resets the enumerator to its initial empty state, releasing all
// fragment bookkeeping. It does not need to be called between uses of
// Polygonize; it exists so a caller (e.g. the sieve engine, which runs
// three independent passes) can reuse one Enumerator value across passes.
func (e *Enumerator[T]) Clear() {
	e.idMap = nil
	e.values = nil
	e.nextId = 0
}

// IdMap returns the current fragment-id-to-root-id map. Valid after
// CompleteMerges has been called; before that, entries may still point to
// intermediate fragments.
func (e *Enumerator[T]) IdMap() []Id {
	return e.idMap
}

// NextId returns the id that would be assigned by the next call to
// NewPolygon, i.e. the number of fragment ids allocated so far.
func (e *Enumerator[T]) NextId() Id {
	return e.nextId
}

// Value returns the cell value recorded for fragment id id.
func (e *Enumerator[T]) Value(id Id) T {
	return e.values[id]
}

// NewPolygon allocates a new polygon fragment id carrying value v.
func (e *Enumerator[T]) NewPolygon(v T) (Id, error) {
	if e.nextId == math.MaxInt32 {
		return invalidId, &raster.IdOverflow{Limit: math.MaxInt32}
	}
	id := e.nextId
	e.idMap = append(e.idMap, id)
	e.values = append(e.values, v)
	e.nextId++
	return id, nil
}

// MergePolygon records that fragment srcId and fragment dstId belong to
// the same polygon, rewiring both union-find chains directly to their
// common final root in a single pass.
func (e *Enumerator[T]) MergePolygon(srcId, dstId Id) {
	dstFinal := dstId
	for e.idMap[dstFinal] != dstFinal {
		dstFinal = e.idMap[dstFinal]
	}

	dstCur := dstId
	for e.idMap[dstCur] != dstCur {
		next := e.idMap[dstCur]
		e.idMap[dstCur] = dstFinal
		dstCur = next
	}

	for e.idMap[srcId] != srcId {
		next := e.idMap[srcId]
		e.idMap[srcId] = dstFinal
		srcId = next
	}
	e.idMap[srcId] = dstFinal
}

// CompleteMerges walks every fragment id to its final root and rewrites
// the whole chain to point at it directly, so IdMap becomes a flat lookup
// table. Returns the fragment count and the number of distinct final
// polygons, for callers that want to log them the way
// GDALRasterPolygonEnumeratorT::CompleteMerges does via CPLDebug.
func (e *Enumerator[T]) CompleteMerges() (fragments, final int) {
	finalCount := 0
	for i := range e.idMap {
		id := e.idMap[i]
		for id != e.idMap[id] {
			id = e.idMap[id]
		}

		cur := e.idMap[i]
		e.idMap[i] = id
		for cur != e.idMap[cur] {
			next := e.idMap[cur]
			e.idMap[cur] = id
			cur = next
		}

		if e.idMap[i] == Id(i) {
			finalCount++
		}
	}
	return len(e.idMap), finalCount
}

// ProcessLine assigns fragment ids to thisVal/thisId given the previous
// row's values and ids (nil lastVal/lastId for the first row). It mirrors
// GDALRasterPolygonEnumeratorT::ProcessLine's branch structure exactly,
// including the order in which 8-connected neighbors are tested.
func (e *Enumerator[T]) ProcessLine(lastVal, thisVal []T, lastId, thisId []Id) error {
	n := len(thisVal)
	eq := e.equal

	if lastVal == nil {
		for i := 0; i < n; i++ {
			switch {
			case e.isNoData(thisVal[i]):
				thisId[i] = invalidId
			case i == 0 || !eq(thisVal[i], thisVal[i-1]):
				id, err := e.NewPolygon(thisVal[i])
				if err != nil {
					return err
				}
				thisId[i] = id
			default:
				thisId[i] = thisId[i-1]
			}
		}
		return nil
	}

	for i := 0; i < n; i++ {
		switch {
		case e.isNoData(thisVal[i]):
			thisId[i] = invalidId

		case i > 0 && eq(thisVal[i], thisVal[i-1]):
			thisId[i] = thisId[i-1]

			if eq(lastVal[i], thisVal[i]) && e.idMap[lastId[i]] != e.idMap[thisId[i]] {
				e.MergePolygon(lastId[i], thisId[i])
			}
			if e.connectedness == 8 && eq(lastVal[i-1], thisVal[i]) &&
				e.idMap[lastId[i-1]] != e.idMap[thisId[i]] {
				e.MergePolygon(lastId[i-1], thisId[i])
			}
			if e.connectedness == 8 && i < n-1 && eq(lastVal[i+1], thisVal[i]) &&
				e.idMap[lastId[i+1]] != e.idMap[thisId[i]] {
				e.MergePolygon(lastId[i+1], thisId[i])
			}

		case eq(lastVal[i], thisVal[i]):
			thisId[i] = lastId[i]

		case i > 0 && e.connectedness == 8 && eq(lastVal[i-1], thisVal[i]):
			thisId[i] = lastId[i-1]

			if i < n-1 && eq(lastVal[i+1], thisVal[i]) &&
				e.idMap[lastId[i+1]] != e.idMap[thisId[i]] {
				e.MergePolygon(lastId[i+1], thisId[i])
			}

		case i < n-1 && e.connectedness == 8 && eq(lastVal[i+1], thisVal[i]):
			thisId[i] = lastId[i+1]

		default:
			id, err := e.NewPolygon(thisVal[i])
			if err != nil {
				return err
			}
			thisId[i] = id
		}
	}
	return nil
}
