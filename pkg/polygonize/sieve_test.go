package polygonize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type intGridSource struct {
	rows [][]int64
}

func (g *intGridSource) RowCount() int { return len(g.rows) }
func (g *intGridSource) ColCount() int { return len(g.rows[0]) }
func (g *intGridSource) ReadRow(row int, dst []int64) error {
	copy(dst, g.rows[row])
	return nil
}

type intGridSink struct {
	rows [][]int64
}

func (g *intGridSink) WriteRow(row int, values []int64) error {
	for len(g.rows) <= row {
		g.rows = append(g.rows, nil)
	}
	g.rows[row] = append([]int64(nil), values...)
	return nil
}

func TestSieveAdapterMergesSpeckle(t *testing.T) {
	src := &intGridSource{rows: [][]int64{
		{1, 1, 1},
		{1, 9, 1},
		{1, 1, 1},
	}}
	dst := &intGridSink{}

	opts := DefaultSieveOptions()
	err := Sieve(src, nil, dst, opts, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), dst.rows[1][1])
}
