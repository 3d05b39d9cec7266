package polygonize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexQueryBoundsFindsIntersectingPolygon(t *testing.T) {
	idx := NewIndex(2, 5)

	require.NoError(t, idx.Receive(Polygon{
		Value: 1,
		Rings: []Ring{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}}},
	}))
	require.NoError(t, idx.Receive(Polygon{
		Value: 2,
		Rings: []Ring{{{X: 100, Y: 100}, {X: 110, Y: 100}, {X: 110, Y: 110}, {X: 100, Y: 100}}},
	}))

	hits := idx.QueryBounds(1, 1, 9, 9)
	require.Len(t, hits, 1)
	require.Equal(t, 1.0, hits[0].Value)

	require.Len(t, idx.All(), 2)
}

func TestIndexQueryBoundsNoIntersection(t *testing.T) {
	idx := NewIndex(2, 5)
	require.NoError(t, idx.Receive(Polygon{
		Value: 1,
		Rings: []Ring{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}}},
	}))

	hits := idx.QueryBounds(50, 50, 60, 60)
	require.Len(t, hits, 0)
}
