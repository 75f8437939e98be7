package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetEdgeSymmetric(t *testing.T) {
	g := NewGraph(3)
	g.SetEdge(0, 2, 7.5, 2.25)

	require.Equal(t, 3, g.N())
	require.Equal(t, 7.5, g.Happiness(0, 2))
	require.Equal(t, 7.5, g.Happiness(2, 0))
	require.Equal(t, 2.25, g.Stress(0, 2))
	require.Equal(t, 2.25, g.Stress(2, 0))
	require.Equal(t, 0.0, g.Happiness(0, 1))
	require.Equal(t, 0.0, g.Stress(1, 2))
}

func TestRoomSums(t *testing.T) {
	g := NewGraph(4)
	g.SetEdge(0, 1, 1, 10)
	g.SetEdge(0, 2, 2, 20)
	g.SetEdge(1, 2, 4, 40)
	g.SetEdge(0, 3, 8, 80)

	require.Equal(t, 7.0, g.RoomHappiness([]int{0, 1, 2}))
	require.Equal(t, 70.0, g.RoomStress([]int{0, 1, 2}))
	require.Equal(t, 0.0, g.RoomHappiness([]int{3}))
	require.Equal(t, 0.0, g.RoomStress([]int{3}))
}

func TestCrossStress(t *testing.T) {
	g := NewGraph(4)
	g.SetEdge(0, 2, 0, 3)
	g.SetEdge(0, 3, 0, 5)
	g.SetEdge(1, 2, 0, 7)
	g.SetEdge(1, 3, 0, 11)
	g.SetEdge(0, 1, 0, 100) // same side, must not count

	require.Equal(t, 26.0, g.CrossStress([]int{0, 1}, []int{2, 3}))
	require.Equal(t, 26.0, g.CrossStress([]int{2, 3}, []int{0, 1}))
}
