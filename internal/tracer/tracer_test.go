package tracer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingReceiver struct {
	rings  [][][]Point
	values []int64
}

func (r *recordingReceiver) Receive(poly *RPolygon, value int64) error {
	r.rings = append(r.rings, poly.Rings())
	r.values = append(r.values, value)
	return nil
}

// trace runs the tracer over a dense grid of stable ids (rows x cols),
// including the final virtual all-outer row the real driver always adds.
func trace(t *testing.T, ids [][]Id, values [][]int64) *recordingReceiver {
	t.Helper()
	rows := len(ids)
	cols := Index(len(ids[0]))

	recv := &recordingReceiver{}
	p := New[int64](-1, recv)

	thisArm := make([]TwoArm, cols+2)
	lastArm := make([]TwoArm, cols+2)

	var lastVal []int64
	for r := 0; r < rows; r++ {
		require.NoError(t, p.ProcessLine(ids[r], lastVal, thisArm, lastArm, Index(r), cols))
		thisArm, lastArm = lastArm, thisArm
		for i := range thisArm {
			thisArm[i] = TwoArm{}
		}
		lastVal = values[r]
	}

	finalIds := make([]Id, cols)
	for i := range finalIds {
		finalIds[i] = OuterPolygonId
	}
	require.NoError(t, p.ProcessLine(finalIds, values[rows-1], thisArm, lastArm, Index(rows), cols))

	return recv
}

func TestTraceSolidBlockProducesOneClosedRing(t *testing.T) {
	ids := [][]Id{
		{0, 0},
		{0, 0},
	}
	values := [][]int64{
		{7, 7},
		{7, 7},
	}

	recv := trace(t, ids, values)

	require.Len(t, recv.rings, 1, "exactly one polygon should be emitted")
	require.Len(t, recv.rings[0], 1, "a solid block has no holes")
	ring := recv.rings[0][0]
	require.GreaterOrEqual(t, len(ring), 4)
	require.Equal(t, ring[0], ring[len(ring)-1], "ring must close")
	require.Equal(t, int64(7), recv.values[0])
}

func TestTraceTwoDistinctPolygonsEachClose(t *testing.T) {
	ids := [][]Id{
		{0, 1},
		{0, 1},
	}
	values := [][]int64{
		{1, 2},
		{1, 2},
	}

	recv := trace(t, ids, values)

	require.Len(t, recv.rings, 2)
	for _, rings := range recv.rings {
		require.Len(t, rings, 1)
		ring := rings[0]
		require.Equal(t, ring[0], ring[len(ring)-1])
	}
}

func TestTraceFourQuadrantsReportCorrectValuesOnNonFinalRow(t *testing.T) {
	// The top two quadrants close at currentRow==2, not the final virtual
	// row (currentRow==4): a regression test for reporting a value from
	// the wrong row when a polygon completes mid-raster.
	ids := [][]Id{
		{0, 0, 1, 1},
		{0, 0, 1, 1},
		{2, 2, 3, 3},
		{2, 2, 3, 3},
	}
	values := [][]int64{
		{1, 1, 2, 2},
		{1, 1, 2, 2},
		{3, 3, 4, 4},
		{3, 3, 4, 4},
	}

	recv := trace(t, ids, values)

	require.Len(t, recv.rings, 4)
	got := map[int64]bool{}
	for _, v := range recv.values {
		got[v] = true
	}
	require.Equal(t, map[int64]bool{1: true, 2: true, 3: true, 4: true}, got)
}

func TestTraceHoleProducesTwoRings(t *testing.T) {
	ids := [][]Id{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	}
	values := [][]int64{
		{5, 5, 5},
		{5, 9, 5},
		{5, 5, 5},
	}

	recv := trace(t, ids, values)

	require.Len(t, recv.rings, 2)

	var outerIdx int
	for i, rings := range recv.rings {
		if len(rings) == 2 {
			outerIdx = i
		}
	}
	require.Len(t, recv.rings[outerIdx], 2, "the surrounding polygon has one hole")
}
