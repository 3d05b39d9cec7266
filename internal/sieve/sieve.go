// Package sieve implements the sieve engine (C3): a three-pass algorithm
// that merges polygons smaller than a pixel-count threshold into their
// largest neighbor, rewriting the raster in place.
//
// It is a direct port of GDALSieveFilter: pass 1 enumerates polygons and
// accumulates their sizes; pass 2 re-enumerates (with a fresh enumerator,
// so the first pass's final id map survives) and records each polygon's
// largest neighbor; a resolution step decides which small polygons
// actually merge; pass 3 re-enumerates once more and rewrites each row.
package sieve

import (
	"github.com/geopolygonize/polygonize/internal/enumerator"
	"github.com/geopolygonize/polygonize/internal/raster"
)

// Progress reports fractional completion in [0,1] and returns false to
// request cancellation, exactly like a GDALProgressFunc.
type Progress func(fraction float64) bool

// Options configures a sieve Run.
type Options struct {
	// SizeThreshold: polygons with fewer pixels than this are merge
	// candidates.
	SizeThreshold int
	// Connectedness is 4 or 8.
	Connectedness int
	// Progress, if non-nil, is called after each row of each pass.
	Progress Progress
	// Logger receives diagnostic counts, mirroring the CPLDebug calls in
	// the reference implementation. May be nil.
	Logger func(format string, args ...any)
}

// Source supplies one row of int64 cell values at a time.
type Source interface {
	RowCount() int
	ColCount() int
	ReadRow(row int, dst []int64) error
}

// Mask supplies an optional per-pixel inclusion mask: a zero byte excludes
// the pixel from every polygon (masked to raster.NoData) regardless of
// its raw value.
type Mask interface {
	ReadMaskRow(row int, dst []byte) error
}

// Sink receives the rewritten raster one row at a time.
type Sink interface {
	WriteRow(row int, values []int64) error
}

func noop(string, ...any) {}

// Run executes the three-pass sieve over src (optionally masked by
// mask), writing the merged result to dst.
func Run(src Source, mask Mask, dst Sink, opts Options) error {
	if opts.Connectedness != 4 && opts.Connectedness != 8 {
		opts.Connectedness = 4
	}
	logf := opts.Logger
	if logf == nil {
		logf = noop
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(float64) bool { return true }
	}

	rows := src.RowCount()
	cols := src.ColCount()

	equal := func(a, b int64) bool { return a == b }
	isNoData := func(v int64) bool { return v == raster.NoData }

	applyMask := func(row int, vals []int64) error {
		if mask == nil {
			return nil
		}
		maskLine := make([]byte, cols)
		if err := mask.ReadMaskRow(row, maskLine); err != nil {
			return &raster.IOFailure{Op: "read mask row", Err: err}
		}
		for i, m := range maskLine {
			if m == 0 {
				vals[i] = raster.NoData
			}
		}
		return nil
	}

	// Pass 1: enumerate and accumulate polygon sizes.
	firstEnum := enumerator.New(opts.Connectedness, equal, isNoData)
	var polySizes []int

	var lastVal []int64
	var lastId []enumerator.Id
	thisVal := make([]int64, cols)
	thisId := make([]enumerator.Id, cols)

	for y := 0; y < rows; y++ {
		if err := src.ReadRow(y, thisVal); err != nil {
			return &raster.IOFailure{Op: "read source row", Err: err}
		}
		if err := applyMask(y, thisVal); err != nil {
			return err
		}

		if err := firstEnum.ProcessLine(lastVal, thisVal, lastId, thisId); err != nil {
			return err
		}

		if next := int(firstEnum.NextId()); next > len(polySizes) {
			grown := make([]int, next)
			copy(grown, polySizes)
			polySizes = grown
		}
		for _, id := range thisId {
			// NODATA cells carry id -1 and are never counted toward any
			// polygon's size (GDAL's CompareNeighbour/size-accumulation
			// loops assume this implicitly via an assert compiled out of
			// release builds; we check it explicitly instead).
			if id >= 0 {
				polySizes[id]++
			}
		}

		lastVal, lastId = append([]int64(nil), thisVal...), append([]enumerator.Id(nil), thisId...)

		if !progress(0.25 * float64(y+1) / float64(rows)) {
			return &raster.UserInterrupt{}
		}
	}

	fragments, final := firstEnum.CompleteMerges()
	logf("sieve: counted %d polygon fragments forming %d final polygons", fragments, final)

	firstMap := firstEnum.IdMap()
	for i, root := range firstMap {
		if int(root) != i {
			polySizes[root] += polySizes[i]
			polySizes[i] = 0
		}
	}

	// Pass 2: find each polygon's biggest neighbor.
	secondEnum := enumerator.New(opts.Connectedness, equal, isNoData)
	bigNeighbour := make([]int, len(polySizes))
	for i := range bigNeighbour {
		bigNeighbour[i] = -1
	}

	compare := func(id1, id2 enumerator.Id) {
		if id1 < 0 || id2 < 0 {
			// A NODATA cell's fragment id doesn't index firstMap.
			return
		}
		p1 := int(firstMap[id1])
		p2 := int(firstMap[id2])
		if p1 == p2 {
			return
		}
		if firstEnum.Value(enumerator.Id(p1)) == raster.NoData || firstEnum.Value(enumerator.Id(p2)) == raster.NoData {
			return
		}
		if bigNeighbour[p1] == -1 || polySizes[bigNeighbour[p1]] < polySizes[p2] {
			bigNeighbour[p1] = p2
		}
		if bigNeighbour[p2] == -1 || polySizes[bigNeighbour[p2]] < polySizes[p1] {
			bigNeighbour[p2] = p1
		}
	}

	lastVal, lastId = nil, nil
	for y := 0; y < rows; y++ {
		if err := src.ReadRow(y, thisVal); err != nil {
			return &raster.IOFailure{Op: "read source row", Err: err}
		}
		if err := applyMask(y, thisVal); err != nil {
			return err
		}

		if err := secondEnum.ProcessLine(lastVal, thisVal, lastId, thisId); err != nil {
			return err
		}

		for x := 0; x < cols; x++ {
			if y > 0 {
				compare(thisId[x], lastId[x])
				if x > 0 && opts.Connectedness == 8 {
					compare(thisId[x], lastId[x-1])
				}
				if x < cols-1 && opts.Connectedness == 8 {
					compare(thisId[x], lastId[x+1])
				}
			}
			if x > 0 {
				compare(thisId[x], thisId[x-1])
			}
		}

		lastVal, lastId = append([]int64(nil), thisVal...), append([]enumerator.Id(nil), thisId...)

		if !progress(0.25 + 0.25*float64(y+1)/float64(rows)) {
			return &raster.UserInterrupt{}
		}
	}

	// Resolve which small polygons actually merge. Only a single-hop
	// lookup at the biggest neighbor is attempted (the shipped GDAL
	// behavior); a neighbor whose own biggest neighbor would clear the
	// threshold is deliberately not chased.
	var sieveTargets, isolatedSmall, failedMerges int
	for poly := range polySizes {
		if int(firstMap[poly]) != poly {
			continue
		}
		if firstEnum.Value(enumerator.Id(poly)) == raster.NoData {
			continue
		}
		if polySizes[poly] >= opts.SizeThreshold {
			bigNeighbour[poly] = -1
			continue
		}
		sieveTargets++
		if bigNeighbour[poly] == -1 {
			isolatedSmall++
			continue
		}
		if polySizes[bigNeighbour[poly]] >= opts.SizeThreshold {
			continue
		}
		failedMerges++
		bigNeighbour[poly] = -1
	}
	logf("sieve: small polygons=%d isolated=%d unmergeable=%d", sieveTargets, isolatedSmall, failedMerges)

	// Pass 3: rewrite the raster applying the resolved merges.
	secondEnum.Clear()
	lastVal, lastId = nil, nil
	writeVal := make([]int64, cols)

	for y := 0; y < rows; y++ {
		if err := src.ReadRow(y, thisVal); err != nil {
			return &raster.IOFailure{Op: "read source row", Err: err}
		}
		copy(writeVal, thisVal)

		if err := applyMask(y, thisVal); err != nil {
			return err
		}

		if err := secondEnum.ProcessLine(lastVal, thisVal, lastId, thisId); err != nil {
			return err
		}

		for x := 0; x < cols; x++ {
			if thisId[x] < 0 {
				continue
			}
			thisPoly := int(firstMap[thisId[x]])
			if bigNeighbour[thisPoly] != -1 {
				writeVal[x] = firstEnum.Value(enumerator.Id(bigNeighbour[thisPoly]))
			}
		}

		if err := dst.WriteRow(y, writeVal); err != nil {
			return &raster.IOFailure{Op: "write destination row", Err: err}
		}

		lastVal, lastId = append([]int64(nil), thisVal...), append([]enumerator.Id(nil), thisId...)

		if !progress(0.5 + 0.5*float64(y+1)/float64(rows)) {
			return &raster.UserInterrupt{}
		}
	}

	return nil
}
