package polygonize

import (
	"github.com/geopolygonize/polygonize/internal/sieve"
)

// SieveRasterSource supplies int64 cell values for Sieve, mirroring
// GDALSieveFilter's integer raster contract (sieving operates on whole
// pixel values, unlike Polygonize which widens everything to float64).
type SieveRasterSource interface {
	RowCount() int
	ColCount() int
	ReadRow(row int, dst []int64) error
}

// SieveSink receives the rewritten raster one row at a time.
type SieveSink interface {
	WriteRow(row int, values []int64) error
}

// Sieve merges polygons with fewer than opts.SizeThreshold pixels into
// their largest neighbor, rewriting src into dst. It is a thin adapter
// over internal/sieve.Run.
func Sieve(src SieveRasterSource, mask MaskSource, dst SieveSink, opts SieveOptions, progress Progress) error {
	logf := opts.Logger
	if logf == nil {
		logf = noopLogger
	}

	var internalMask sieve.Mask
	if mask != nil {
		internalMask = maskAdapter{mask}
	}

	return sieve.Run(sieveSourceAdapter{src}, internalMask, sieveSinkAdapter{dst}, sieve.Options{
		SizeThreshold: opts.SizeThreshold,
		Connectedness: opts.Connectedness,
		Progress:      sieve.Progress(progress),
		Logger:        logf,
	})
}

type sieveSourceAdapter struct{ SieveRasterSource }

func (a sieveSourceAdapter) ReadRow(row int, dst []int64) error {
	return a.SieveRasterSource.ReadRow(row, dst)
}

type sieveSinkAdapter struct{ SieveSink }

func (a sieveSinkAdapter) WriteRow(row int, values []int64) error {
	return a.SieveSink.WriteRow(row, values)
}

type maskAdapter struct{ MaskSource }

func (a maskAdapter) ReadMaskRow(row int, dst []byte) error {
	return a.MaskSource.ReadMaskRow(row, dst)
}
