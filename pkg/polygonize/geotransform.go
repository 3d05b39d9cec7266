package polygonize

import "github.com/geopolygonize/polygonize/internal/raster"

// Geotransform is the 6-parameter affine mapping from pixel/line
// coordinates to georeferenced coordinates, re-exported at the public
// API boundary.
type Geotransform = raster.Geotransform

// IdentityGeotransform returns the geotransform mapping pixel
// coordinates to themselves, for callers with no real georeferencing.
func IdentityGeotransform() Geotransform {
	return raster.Identity()
}
