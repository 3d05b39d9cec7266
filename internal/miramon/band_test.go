package miramon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRaw(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "band.img")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestBandUncompressedByteRowReadback(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	path := writeRaw(t, raw)
	meta := &BandMeta{Columns: 4, Rows: 2, Type: Byte}

	b, err := OpenBand(meta, path)
	require.NoError(t, err)
	defer b.Close()

	dst := make([]byte, 4)
	require.NoError(t, b.ReadRow(0, dst))
	require.Equal(t, []byte{1, 2, 3, 4}, dst)
	require.NoError(t, b.ReadRow(1, dst))
	require.Equal(t, []byte{5, 6, 7, 8}, dst)
}

func TestBandBitRowUnpacksLSBFirst(t *testing.T) {
	// row of 10 bits: 1010000001 packed LSB-first into 2 bytes.
	// bits: col0..col9 = 1,0,1,0,0,0,0,0,0,1
	raw := []byte{0b00000101, 0b00000010}
	path := writeRaw(t, raw)
	meta := &BandMeta{Columns: 10, Rows: 1, Type: Bit}

	b, err := OpenBand(meta, path)
	require.NoError(t, err)
	defer b.Close()

	dst := make([]byte, 10)
	require.NoError(t, b.ReadRow(0, dst))
	require.Equal(t, []byte{1, 0, 1, 0, 0, 0, 0, 0, 0, 1}, dst)
}

func encodeRLEByteRow(t *testing.T, cells []byte) []byte {
	t.Helper()
	var out []byte
	i := 0
	for i < len(cells) {
		j := i + 1
		for j < len(cells) && j-i < 250 && cells[j] == cells[i] {
			j++
		}
		run := j - i
		if run >= 2 {
			out = append(out, byte(run), cells[i])
			i = j
			continue
		}
		// literal run of length 1 (emit as a single-element literal)
		out = append(out, 0, 1, cells[i])
		i++
	}
	return out
}

func TestBandRLEByteRowRoundTrip(t *testing.T) {
	cells := []byte{9, 9, 9, 9, 1, 2, 3, 9, 9}
	encoded := encodeRLEByteRow(t, cells)
	path := writeRaw(t, encoded)
	meta := &BandMeta{Columns: len(cells), Rows: 1, Type: ByteRLE}

	b, err := OpenBand(meta, path)
	require.NoError(t, err)
	defer b.Close()

	dst := make([]byte, len(cells))
	require.NoError(t, b.ReadRow(0, dst))
	require.Equal(t, cells, dst)
}

func TestBandRLEMultiRowDynamicReconstruction(t *testing.T) {
	row0 := []byte{1, 1, 1, 1}
	row1 := []byte{2, 3, 3, 2}
	row2 := []byte{5, 5, 5, 5}
	var data []byte
	data = append(data, encodeRLEByteRow(t, row0)...)
	data = append(data, encodeRLEByteRow(t, row1)...)
	data = append(data, encodeRLEByteRow(t, row2)...)
	path := writeRaw(t, data)
	meta := &BandMeta{Columns: 4, Rows: 3, Type: ByteRLE}

	b, err := OpenBand(meta, path)
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.offsets, "no trailer present, offsets should be reconstructed dynamically")

	dst := make([]byte, 4)
	require.NoError(t, b.ReadRow(0, dst))
	require.Equal(t, row0, dst)
	require.NoError(t, b.ReadRow(2, dst))
	require.Equal(t, row2, dst)
	require.NoError(t, b.ReadRow(1, dst))
	require.Equal(t, row1, dst)
}

func TestDecodeRLERowOvershootIsMalformed(t *testing.T) {
	// a run claiming 5 cells into a 4-cell row
	encoded := []byte{5, 7}
	cur := &bufCursor{buf: encoded}
	dst := make([]byte, 4)
	err := decodeRLERow(cur, 4, 1, dst)
	require.Error(t, err)
}
