package miramon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRel(t *testing.T, body string) *RelFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rel")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	rel, err := ParseRel(path)
	require.NoError(t, err)
	return rel
}

func TestParseRelBasicSectionsAndKeys(t *testing.T) {
	rel := writeRel(t, `
[ATTRIBUTE_DATA]
IndexesNomsCamps=elev
NomCamp_elev=Elevation

[Elevation]
NomFitxer=elev.img
columns=10
rows=5
TipusCompressio=integer
NODATA=-9999

[Elevation:EXTENT]
MinX=0
MaxX=100
MinY=0
MaxY=50
`)

	names, err := rel.BandNames()
	require.NoError(t, err)
	require.Equal(t, []string{"Elevation"}, names)

	meta, err := rel.Band("Elevation")
	require.NoError(t, err)
	require.Equal(t, "elev.img", meta.RawFile)
	require.Equal(t, 10, meta.Columns)
	require.Equal(t, 5, meta.Rows)
	require.Equal(t, Integer, meta.Type)
	require.True(t, meta.HasNoData)
	require.Equal(t, -9999.0, meta.NoData)
	require.Equal(t, 100.0, meta.MaxX)
}

func TestParseRelContinuationLineExtendsValue(t *testing.T) {
	rel := writeRel(t, `
[ATTRIBUTE_DATA]
IndexesNomsCamps=elev
NomCamp_elev=Elevation Of The
 Terrain
`)
	names, err := rel.BandNames()
	require.NoError(t, err)
	require.Equal(t, []string{"Elevation Of The\nTerrain"}, names)
}

func TestParseRelCommentsAndBlankLinesIgnored(t *testing.T) {
	rel := writeRel(t, `
; a comment
[SEC]
# another comment
KEY=value

`)
	v, ok := rel.get("SEC", "KEY")
	require.True(t, ok)
	require.Equal(t, "value", v)
}

func TestBandMissingRequiredKeyErrors(t *testing.T) {
	rel := writeRel(t, `
[Elevation]
NomFitxer=elev.img
columns=10
`)
	_, err := rel.Band("Elevation")
	require.Error(t, err)
}

func TestMetadataReturnsUnconsumedEntries(t *testing.T) {
	rel := writeRel(t, `
[ATTRIBUTE_DATA]
IndexesNomsCamps=elev
NomCamp_elev=Elevation
Extra=unused

[Elevation]
NomFitxer=elev.img
columns=1
rows=1
TipusCompressio=byte
`)
	_, err := rel.BandNames()
	require.NoError(t, err)
	_, err = rel.Band("Elevation")
	require.NoError(t, err)

	md := rel.Metadata()
	require.Equal(t, "unused", md["ATTRIBUTE_DATA.EXTRA"])
	_, stillThere := md["ATTRIBUTE_DATA.INDEXESNOMSCAMPS"]
	require.False(t, stillThere, "consumed keys should not reappear")
}

func TestLooksLikeMMR(t *testing.T) {
	require.True(t, LooksLikeMMR("fooi.rel")) // ends in "i.rel" case-insensitively
	require.True(t, LooksLikeMMR("FOOI.REL"))
	require.False(t, LooksLikeMMR("foo.rel"))
	require.False(t, LooksLikeMMR("foo.txt"))
}
