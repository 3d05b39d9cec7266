// Package polygonize is the public raster-to-vector core: it turns a
// raster of cell values into a set of closed polygon rings, one per
// maximal region of equal value, optionally filtering out regions
// smaller than a pixel-count threshold first.
//
// It composes internal/enumerator (assign stable polygon ids to cells),
// internal/tracer (trace each polygon's boundary rings from those ids)
// and internal/sieve (merge small polygons into their biggest neighbor),
// the way alg/polygonize.cpp and alg/gdalsievefilter.cpp compose the
// same three pieces in GDAL.
package polygonize

import "github.com/geopolygonize/polygonize/internal/raster"

// RasterSource supplies the raster to polygonize, one row of cell values
// at a time. Values are float64 regardless of the underlying storage
// width; callers reading narrower types (MiraMon bands, for instance)
// widen them losslessly before handing rows to Polygonize.
type RasterSource interface {
	RowCount() int
	ColCount() int
	// ReadRow decodes row into dst, which has length ColCount().
	ReadRow(row int, dst []float64) error
	// Geotransform maps pixel coordinates to georeferenced coordinates,
	// used to convert each traced ring's pixel corners into real-world
	// points before it reaches the Sink.
	Geotransform() raster.Geotransform
}

// MaskSource supplies an optional per-pixel inclusion mask, paralleling
// GDALPolygonize's optional mask band: a zero byte excludes the pixel
// from every polygon regardless of its raw value.
type MaskSource interface {
	ReadMaskRow(row int, dst []byte) error
}

// Ring is one closed boundary: the first ring of a Polygon is its
// exterior, any further rings are interior holes. Points are in the
// georeferenced coordinate system produced by RasterSource.Geotransform.
type Ring []Point

// Point is a georeferenced (x, y) coordinate.
type Point struct {
	X, Y float64
}

// Polygon is one finished polygonize result: every ring sharing a single
// cell value, plus that value.
type Polygon struct {
	Rings []Ring
	Value float64
}

// Sink receives each finished Polygon as soon as the tracer closes it,
// letting a caller stream results (to a vector writer, an in-memory
// index, …) without holding every polygon in memory at once.
type Sink interface {
	Receive(p Polygon) error
}

// Progress reports fractional completion in [0,1] and returns false to
// request cancellation.
type Progress func(fraction float64) bool

// Logger receives diagnostic messages, mirroring GDAL's CPLDebug calls.
type Logger func(format string, args ...any)
