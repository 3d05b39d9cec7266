// Package mmrband adapts a MiraMon raster band (REL sidecar plus its IMG
// file, internal/miramon) into the polygonize package's RasterSource and
// MaskSource capabilities, widening every on-disk scalar type to float64
// and translating the band's own NODATA value to raster.NoData.
package mmrband

import (
	"encoding/binary"
	"math"

	"github.com/geopolygonize/polygonize/internal/miramon"
	"github.com/geopolygonize/polygonize/internal/raster"
)

// Band is an opened MiraMon raster band ready to drive Polygonize or
// Sieve.
type Band struct {
	rel  *miramon.RelFile
	meta *miramon.BandMeta
	band *miramon.Band
	raw  []byte
}

// Open parses relPath and opens the named band's raw IMG file.
func Open(relPath, bandName string) (*Band, error) {
	rel, err := miramon.ParseRel(relPath)
	if err != nil {
		return nil, err
	}
	meta, err := rel.Band(bandName)
	if err != nil {
		return nil, err
	}
	raw := rel.RawFilePath(meta)
	band, err := miramon.OpenBand(meta, raw)
	if err != nil {
		return nil, err
	}
	return &Band{rel: rel, meta: meta, band: band, raw: make([]byte, band.RowByteSize())}, nil
}

// Close releases the band's underlying file handle.
func (b *Band) Close() error {
	return b.band.Close()
}

// RowCount implements polygonize.RasterSource.
func (b *Band) RowCount() int { return b.meta.Rows }

// ColCount implements polygonize.RasterSource.
func (b *Band) ColCount() int { return b.meta.Columns }

// Geotransform implements polygonize.RasterSource, deriving an
// axis-aligned affine transform from the REL band's EXTENT sub-section.
func (b *Band) Geotransform() raster.Geotransform {
	cols := float64(b.meta.Columns)
	rows := float64(b.meta.Rows)
	if cols == 0 || rows == 0 {
		return raster.Identity()
	}
	return raster.Geotransform{
		X0: b.meta.MinX,
		DX: (b.meta.MaxX - b.meta.MinX) / cols,
		RX: 0,
		Y0: b.meta.MaxY,
		RY: 0,
		DY: -(b.meta.MaxY - b.meta.MinY) / rows,
	}
}

// ReadRow implements polygonize.RasterSource, decoding and widening row
// to float64, translating the band's own NODATA value (if any) to
// raster.NoData.
func (b *Band) ReadRow(row int, dst []float64) error {
	if err := b.band.ReadRow(row, b.raw); err != nil {
		return err
	}
	decodeRow(b.meta.Type, b.raw, dst)

	if b.meta.HasNoData {
		for i, v := range dst {
			if cellEqualsNoData(b.meta.Type, v, b.meta.NoData) {
				dst[i] = float64(raster.NoData)
			}
		}
	}
	return nil
}

// ReadMaskRow implements polygonize.MaskSource: a zero byte marks a cell
// equal to the band's declared NODATA value (bands with no declared
// NODATA admit every cell).
func (b *Band) ReadMaskRow(row int, dst []byte) error {
	if !b.meta.HasNoData {
		for i := range dst {
			dst[i] = 1
		}
		return nil
	}
	vals := make([]float64, b.meta.Columns)
	if err := b.ReadRow(row, vals); err != nil {
		return err
	}
	for i, v := range vals {
		if v == float64(raster.NoData) {
			dst[i] = 0
		} else {
			dst[i] = 1
		}
	}
	return nil
}

// Metadata returns every REL entry the core didn't need to understand
// the band, for a caller that wants to surface it verbatim.
func (b *Band) Metadata() map[string]string {
	return b.rel.Metadata()
}

func decodeRow(t miramon.DataType, raw []byte, dst []float64) {
	switch t {
	case miramon.Bit:
		for i, v := range raw {
			dst[i] = float64(v)
		}
	case miramon.Byte, miramon.ByteRLE:
		for i, v := range raw {
			dst[i] = float64(v)
		}
	case miramon.Integer, miramon.IntegerRLE:
		for i := range dst {
			dst[i] = float64(int16(binary.LittleEndian.Uint16(raw[i*2:])))
		}
	case miramon.UInteger, miramon.UIntegerRLE:
		for i := range dst {
			dst[i] = float64(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	case miramon.Long, miramon.LongRLE:
		for i := range dst {
			dst[i] = float64(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case miramon.Real, miramon.RealRLE:
		for i := range dst {
			dst[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case miramon.Double, miramon.DoubleRLE:
		for i := range dst {
			dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	}
}

func cellEqualsNoData(t miramon.DataType, cell, noData float64) bool {
	if t.IsFloat() {
		return raster.Float64Equal(cell, noData)
	}
	return cell == noData
}
