package polygonize

import (
	"github.com/geopolygonize/polygonize/internal/enumerator"
	"github.com/geopolygonize/polygonize/internal/raster"
	"github.com/geopolygonize/polygonize/internal/tracer"
)

const invalidId = tracer.Id(-1)

func noopLogger(string, ...any) {}

func noopProgress(float64) bool { return true }

// ringReceiver adapts tracer.Receiver into geotransform-mapped Polygons
// delivered to the caller's Sink.
type ringReceiver struct {
	gt   raster.Geotransform
	sink Sink
}

func (r *ringReceiver) Receive(poly *tracer.RPolygon, value float64) error {
	pixelRings := poly.Rings()
	rings := make([]Ring, len(pixelRings))
	for i, pr := range pixelRings {
		ring := make(Ring, len(pr))
		for j, pt := range pr {
			x, y := r.gt.Apply(float64(pt.Row), float64(pt.Col))
			ring[j] = Point{X: x, Y: y}
		}
		rings[i] = ring
	}
	return r.sink.Receive(Polygon{Rings: rings, Value: value})
}

// Polygonize partitions raster into maximal connected regions of equal
// value and emits one Polygon per region to sink, following
// GDALPolygonize: a first full pass through the enumerator builds the
// stable (post-merge) id for every fragment; a second pass re-enumerates
// (a fresh, identically-ordered run reproduces the same raw fragment ids)
// and feeds them, remapped to their final root, into the edge tracer.
func Polygonize(src RasterSource, mask MaskSource, sink Sink, options Options, progress Progress) error {
	if options.Connectedness != 4 && options.Connectedness != 8 {
		options.Connectedness = 4
	}
	logf := options.Logger
	if logf == nil {
		logf = noopLogger
	}
	if progress == nil {
		progress = noopProgress
	}

	rows := src.RowCount()
	cols := src.ColCount()

	equal := func(a, b float64) bool { return raster.Float64Equal(a, b) }
	isNoData := func(v float64) bool { return v == float64(raster.NoData) }

	applyMask := func(row int, vals []float64) error {
		if mask == nil {
			return nil
		}
		maskLine := make([]byte, cols)
		if err := mask.ReadMaskRow(row, maskLine); err != nil {
			return &raster.IOFailure{Op: "read mask row", Err: err}
		}
		for i, m := range maskLine {
			if m == 0 {
				vals[i] = float64(raster.NoData)
			}
		}
		return nil
	}

	// Pass 1: enumerate the whole raster and resolve every fragment to
	// its final root.
	firstEnum := enumerator.New(options.Connectedness, equal, isNoData)
	var lastVal []float64
	var lastId []enumerator.Id
	thisVal := make([]float64, cols)
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
		if lastVal == nil {
			lastVal, lastId = make([]float64, cols), make([]enumerator.Id, cols)
		}
		lastVal, thisVal = thisVal, lastVal
		lastId, thisId = thisId, lastId

		if !progress(0.5 * float64(y+1) / float64(rows)) {
			return &raster.UserInterrupt{}
		}
	}

	fragments, final := firstEnum.CompleteMerges()
	logf("polygonize: counted %d polygon fragments forming %d final polygons", fragments, final)
	firstMap := firstEnum.IdMap()

	// Pass 2: re-enumerate (raw fragment ids reproduce identically since
	// the scan is deterministic over the same input) and trace.
	gt := src.Geotransform()
	if options.DatasetForGeoref != "" {
		logf("polygonize: dataset_for_georef %q requested but this RasterSource supplies its own geotransform", options.DatasetForGeoref)
	}

	secondEnum := enumerator.New(options.Connectedness, equal, isNoData)
	trc := tracer.New[float64](invalidId, &ringReceiver{gt: gt, sink: sink})

	finalId := func(id enumerator.Id) tracer.Id {
		if id < 0 {
			return invalidId
		}
		return tracer.Id(firstMap[id])
	}

	lastVal, lastId = nil, nil
	thisArm := make([]tracer.TwoArm, cols+2)
	lastArm := make([]tracer.TwoArm, cols+2)
	traceIds := make([]tracer.Id, cols)

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
			traceIds[x] = finalId(thisId[x])
		}
		// lastVal still holds row y-1 here; the swap below happens after
		// this call. A polygon completing at currentRow==y reports its
		// value from row y-1, and none completes at currentRow==0, so
		// lastVal's y==0 nil is never indexed.
		if err := trc.ProcessLine(traceIds, lastVal, thisArm, lastArm, tracer.Index(y), tracer.Index(cols)); err != nil {
			return err
		}
		thisArm, lastArm = lastArm, thisArm
		for i := range thisArm {
			thisArm[i] = tracer.TwoArm{}
		}

		if lastVal == nil {
			lastVal, lastId = make([]float64, cols), make([]enumerator.Id, cols)
		}
		lastVal, thisVal = thisVal, lastVal
		lastId, thisId = thisId, lastId

		if !progress(0.5 + 0.5*float64(y+1)/float64(rows)) {
			return &raster.UserInterrupt{}
		}
	}

	// Final virtual all-outer row closes every polygon still open.
	for x := 0; x < cols; x++ {
		traceIds[x] = tracer.OuterPolygonId
	}
	if err := trc.ProcessLine(traceIds, lastVal, thisArm, lastArm, tracer.Index(rows), tracer.Index(cols)); err != nil {
		return err
	}

	return nil
}
