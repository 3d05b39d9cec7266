package polygonize

import "github.com/geopolygonize/polygonize/internal/raster"

// Error taxonomy re-exported at the public API boundary so callers never
// need to import internal/raster directly to use errors.As against
// these.
type (
	MalformedInput       = raster.MalformedInput
	IOFailure            = raster.IOFailure
	OutOfMemory          = raster.OutOfMemory
	IdOverflow           = raster.IdOverflow
	UserInterrupt        = raster.UserInterrupt
	UnsupportedOperation = raster.UnsupportedOperation
)
