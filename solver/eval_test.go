package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomsOf(t *testing.T) {
	rooms := RoomsOf([]int{2, 0, 2, 5})
	require.Len(t, rooms, 3)
	require.Equal(t, []int{0, 2}, rooms[2])
	require.Equal(t, []int{1}, rooms[0])
	require.Equal(t, []int{3}, rooms[5])
}

func TestTotalHappinessLabelInvariant(t *testing.T) {
	g := NewGraph(4)
	g.SetEdge(0, 1, 10, 0)
	g.SetEdge(2, 3, 6, 0)
	g.SetEdge(0, 2, 1, 0)

	require.Equal(t, 16.0, TotalHappiness(g, []int{0, 0, 1, 1}))
	require.Equal(t, 16.0, TotalHappiness(g, []int{7, 7, 3, 3}))
	require.Equal(t, 17.0, TotalHappiness(g, []int{0, 0, 0, 0}))
	require.Equal(t, 0.0, TotalHappiness(g, Identity(4)))
}

func TestIsValidDividesBudgetByRoomCount(t *testing.T) {
	g := NewGraph(4)
	g.SetEdge(0, 1, 0, 4)
	g.SetEdge(2, 3, 0, 4)

	// Two rooms: each may carry 10/2 = 5, and 4 <= 5.
	require.True(t, IsValid(g, []int{0, 0, 1, 1}, 10))
	// Four rooms would get 10/4 each, but singletons carry zero stress.
	require.True(t, IsValid(g, Identity(4), 10))
	// Three rooms: 10/3 < 4 in the pair room.
	require.False(t, IsValid(g, []int{0, 0, 1, 2}, 10))

	require.False(t, IsValid(g, nil, 10))
}

func TestStressViolation(t *testing.T) {
	g := NewGraph(4)
	g.SetEdge(0, 1, 0, 8)
	g.SetEdge(2, 3, 0, 3)

	// Two rooms, per-room budget 5: excess 3 in one room, 0 in the other.
	require.Equal(t, 3.0, StressViolation(g, []int{0, 0, 1, 1}, 10))
	require.Equal(t, 0.0, StressViolation(g, Identity(4), 10))
	require.Equal(t, 0.0, StressViolation(g, nil, 10))
}

func TestRenumber(t *testing.T) {
	assignment := []int{5, 2, 5, 9, 2}
	k := Renumber(assignment)
	require.Equal(t, 3, k)
	require.Equal(t, []int{0, 1, 0, 2, 1}, assignment)

	// Already contiguous input is untouched.
	assignment = []int{0, 1, 1, 2}
	require.Equal(t, 3, Renumber(assignment))
	require.Equal(t, []int{0, 1, 1, 2}, assignment)
}

func TestIdentityAlwaysValid(t *testing.T) {
	g := NewGraph(5)
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			g.SetEdge(i, j, 0, 99)
		}
	}
	assignment := Identity(5)
	require.Equal(t, []int{0, 1, 2, 3, 4}, assignment)
	require.True(t, IsValid(g, assignment, 0.001))
}
