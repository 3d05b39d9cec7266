package mmrband

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geopolygonize/polygonize/internal/raster"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenAndReadUncompressedIntegerBand(t *testing.T) {
	dir := t.TempDir()

	raw := make([]byte, 0, 8)
	for _, v := range []int16{10, 20, -9999, 30} {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(v))
		raw = append(raw, b...)
	}
	writeFile(t, dir, "elev.img", raw)

	rel := `
[ATTRIBUTE_DATA]
IndexesNomsCamps=elev
NomCamp_elev=Elevation

[Elevation]
NomFitxer=elev.img
columns=4
rows=1
TipusCompressio=integer
NODATA=-9999

[Elevation:EXTENT]
MinX=0
MaxX=4
MinY=0
MaxY=1
`
	relPath := writeFile(t, dir, "testi.rel", []byte(rel))

	band, err := Open(relPath, "Elevation")
	require.NoError(t, err)
	defer band.Close()

	require.Equal(t, 4, band.ColCount())
	require.Equal(t, 1, band.RowCount())

	dst := make([]float64, 4)
	require.NoError(t, band.ReadRow(0, dst))
	require.Equal(t, []float64{10, 20, float64(raster.NoData), 30}, dst)

	mask := make([]byte, 4)
	require.NoError(t, band.ReadMaskRow(0, mask))
	require.Equal(t, []byte{1, 1, 0, 1}, mask)
}

func TestGeotransformDerivedFromExtent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.img", make([]byte, 4))

	rel := `
[ATTRIBUTE_DATA]
IndexesNomsCamps=b
NomCamp_b=B

[B]
NomFitxer=b.img
columns=4
rows=1
TipusCompressio=byte

[B:EXTENT]
MinX=0
MaxX=100
MinY=0
MaxY=50
`
	relPath := writeFile(t, dir, "testi.rel", []byte(rel))
	band, err := Open(relPath, "B")
	require.NoError(t, err)
	defer band.Close()

	gt := band.Geotransform()
	x, y := gt.Apply(0, 0)
	require.Equal(t, 0.0, x)
	require.Equal(t, 50.0, y)
}
