package enumerator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intEnum(connectedness int) *Enumerator[int64] {
	return New(connectedness,
		func(a, b int64) bool { return a == b },
		func(v int64) bool { return v == -51502112 })
}

func run(t *testing.T, e *Enumerator[int64], rows [][]int64) [][]Id {
	t.Helper()
	ids := make([][]Id, len(rows))
	var lastVal, thisVal []int64
	var lastId, thisId []Id
	for r, row := range rows {
		thisVal = row
		thisId = make([]Id, len(row))
		require.NoError(t, e.ProcessLine(lastVal, thisVal, lastId, thisId))
		ids[r] = thisId
		lastVal, lastId = thisVal, thisId
	}
	return ids
}

func resolve(e *Enumerator[int64], ids [][]Id) [][]Id {
	e.CompleteMerges()
	out := make([][]Id, len(ids))
	for r, row := range ids {
		out[r] = make([]Id, len(row))
		for c, id := range row {
			if id < 0 {
				out[r][c] = -1
				continue
			}
			out[r][c] = e.idMap[id]
		}
	}
	return out
}

func TestProcessLineSingleUniformBlock(t *testing.T) {
	e := intEnum(4)
	rows := [][]int64{
		{1, 1, 1},
		{1, 1, 1},
		{1, 1, 1},
	}
	ids := run(t, e, rows)
	final := resolve(e, ids)

	want := final[0][0]
	for _, row := range final {
		for _, id := range row {
			require.Equal(t, want, id)
		}
	}
}

func TestProcessLineDiagonalRequires8Connectivity(t *testing.T) {
	rows := [][]int64{
		{1, 2},
		{2, 1},
	}

	e4 := intEnum(4)
	ids4 := run(t, e4, rows)
	final4 := resolve(e4, ids4)
	require.NotEqual(t, final4[0][0], final4[1][1])

	e8 := intEnum(8)
	ids8 := run(t, e8, rows)
	final8 := resolve(e8, ids8)
	require.Equal(t, final8[0][0], final8[1][1])
	require.Equal(t, final8[0][1], final8[1][0])
	require.NotEqual(t, final8[0][0], final8[0][1])
}

func TestProcessLineNoData(t *testing.T) {
	e := intEnum(4)
	rows := [][]int64{
		{1, -51502112, 1},
	}
	ids := run(t, e, rows)
	require.Equal(t, Id(-1), ids[0][1])
	require.NotEqual(t, ids[0][0], ids[0][2])
}

func TestCompleteMergesIsIdempotent(t *testing.T) {
	e := intEnum(8)
	rows := [][]int64{
		{1, 2, 1},
		{1, 1, 1},
		{1, 2, 1},
	}
	ids := run(t, e, rows)
	e.CompleteMerges()
	first := append([]Id(nil), e.idMap...)
	e.CompleteMerges()
	require.Equal(t, first, e.idMap)
	_ = ids
}
