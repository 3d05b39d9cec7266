package polygonize

// Options configures a Polygonize call, mirroring GDALPolygonize's
// option set.
type Options struct {
	// Connectedness is 4 (edge-adjacent only) or 8 (edge- or
	// corner-adjacent). Defaults to 4.
	Connectedness int

	// DatasetForGeoref names an external georeferencing dataset. Polygonize
	// does not open it: it always uses RasterSource.Geotransform, and a
	// non-empty name is only reported through Logger.
	DatasetForGeoref string

	Logger Logger
}

// DefaultOptions returns the options GDALPolygonize itself defaults to:
// 4-connectivity, no external georeferencing source, no logging.
func DefaultOptions() Options {
	return Options{
		Connectedness: 4,
	}
}

// SieveOptions configures a Sieve call.
type SieveOptions struct {
	// SizeThreshold: polygons with fewer pixels than this are merge
	// candidates.
	SizeThreshold int
	// Connectedness is 4 or 8. Defaults to 4.
	Connectedness int

	Logger Logger
}

// DefaultSieveOptions returns GDALSieveFilter's own defaults: a
// threshold of 2 pixels (the minimum that can ever trigger a merge) and
// 4-connectivity.
func DefaultSieveOptions() SieveOptions {
	return SieveOptions{
		SizeThreshold: 2,
		Connectedness: 4,
	}
}
