// Package raster holds the scalar value model shared by the enumerator,
// tracer and sieve engines: the NODATA sentinel, the ULPs-based float
// equality test, and the affine geotransform.
package raster

import "math"

// NoData is the sentinel cell value meaning "not part of any polygon".
// It mirrors GDAL's GP_NODATA_MARKER and must not collide with any real
// pixel value a caller intends to polygonize.
const NoData int64 = -51502112

// MaxULPs is the maximum number of representable floats that may separate
// two values for them to still be considered equal.
const MaxULPs = 10

// Equal reports whether two int64 cell values represent the same polygon
// value. Exact equality; int64 has no rounding concerns.
func Equal(a, b int64) bool {
	return a == b
}

// FloatEqual reports whether a and b are equal within MaxULPs units in the
// last place, following GDAL's GDALFloatEquals. NaN is never equal to
// anything, including another NaN.
func FloatEqual(a, b float32) bool {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return false
	}
	if a == b {
		return true
	}

	aInt := int32(math.Float32bits(a))
	bInt := int32(math.Float32bits(b))

	if aInt < 0 {
		aInt = math.MinInt32 - aInt
	}
	if bInt < 0 {
		bInt = math.MinInt32 - bInt
	}

	diff := int64(aInt) - int64(bInt)
	if diff < 0 {
		diff = -diff
	}
	return diff <= MaxULPs
}

// Float64Equal is FloatEqual's 64-bit counterpart, for bands (e.g.
// MiraMon's Double/DoubleRLE) whose native width is float64 rather than
// float32.
func Float64Equal(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	if a == b {
		return true
	}

	aInt := int64(math.Float64bits(a))
	bInt := int64(math.Float64bits(b))

	if aInt < 0 {
		aInt = math.MinInt64 - aInt
	}
	if bInt < 0 {
		bInt = math.MinInt64 - bInt
	}

	diff := aInt - bInt
	if diff < 0 {
		diff = -diff
	}
	return diff <= MaxULPs
}

// Geotransform is the 6-parameter affine mapping from pixel/line
// coordinates to georeferenced coordinates:
//
//	X = X0 + col*DX + row*RX
//	Y = Y0 + col*RY + row*DY
type Geotransform struct {
	X0, DX, RX float64
	Y0, RY, DY float64
}

// Identity returns the geotransform mapping pixel coordinates to themselves.
func Identity() Geotransform {
	return Geotransform{DX: 1, DY: 1}
}

// Apply maps a (row, col) pixel coordinate to a georeferenced (x, y) point.
func (g Geotransform) Apply(row, col float64) (x, y float64) {
	x = g.X0 + col*g.DX + row*g.RX
	y = g.Y0 + col*g.RY + row*g.DY
	return x, y
}
