package solver

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// twoPairsGraph has a unique valid optimum: rooms {0,1} and {2,3} with total
// happiness 20. A single room exceeds the budget (stress 14 > 10), and any
// mixed pairing yields only 0.2 happiness.
func twoPairsGraph() (*Graph, float64) {
	g := NewGraph(4)
	g.SetEdge(0, 1, 10, 1)
	g.SetEdge(2, 3, 10, 1)
	for _, p := range [][2]int{{0, 2}, {0, 3}, {1, 2}, {1, 3}} {
		g.SetEdge(p[0], p[1], 0.1, 3)
	}
	return g, 10
}

func randomGraph(n int, rng *rand.Rand) *Graph {
	g := NewGraph(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.SetEdge(i, j, rng.Float64()*100, rng.Float64()*100)
		}
	}
	return g
}

func sameRoom(assignment []int, a, b int) bool {
	return assignment[a] == assignment[b]
}

func TestGreedyTwoPairs(t *testing.T) {
	g, budget := twoPairsGraph()
	assignment, k := SolveGreedy(g, budget, DefaultGreedyParams, rand.New(rand.NewSource(1)))

	require.Equal(t, 2, k)
	require.True(t, sameRoom(assignment, 0, 1))
	require.True(t, sameRoom(assignment, 2, 3))
	require.False(t, sameRoom(assignment, 0, 2))
	require.Equal(t, 20.0, TotalHappiness(g, assignment))
	require.True(t, IsValid(g, assignment, budget))
}

func TestGreedyZeroStressCollapsesToOneRoom(t *testing.T) {
	g := NewGraph(5)
	want := 0.0
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			h := float64(i + j)
			g.SetEdge(i, j, h, 0)
			want += h
		}
	}
	assignment, k := SolveGreedy(g, 1, DefaultGreedyParams, rand.New(rand.NewSource(1)))

	require.Equal(t, 1, k)
	require.Equal(t, want, TotalHappiness(g, assignment))
}

func TestGreedyTightBudgetKeepsSingletons(t *testing.T) {
	g := NewGraph(4)
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			g.SetEdge(i, j, 50, 90)
		}
	}
	assignment, k := SolveGreedy(g, 0.5, DefaultGreedyParams, rand.New(rand.NewSource(1)))

	require.Equal(t, 4, k)
	require.Equal(t, Identity(4), assignment)
}

func TestGreedyAlwaysValid(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := randomGraph(12, rng)
		assignment, k := SolveGreedy(g, 40, DefaultGreedyParams, rng)

		require.Len(t, assignment, 12)
		require.True(t, IsValid(g, assignment, 40), "seed %d", seed)
		require.Equal(t, k, Renumber(assignment), "seed %d: room ids not contiguous", seed)
	}
}

func TestGreedyDeterministicUnderSeed(t *testing.T) {
	g := randomGraph(10, rand.New(rand.NewSource(7)))

	first, k1 := SolveGreedy(g, 30, DefaultGreedyParams, rand.New(rand.NewSource(99)))
	second, k2 := SolveGreedy(g, 30, DefaultGreedyParams, rand.New(rand.NewSource(99)))

	require.Equal(t, first, second)
	require.Equal(t, k1, k2)
}

func TestGreedyConstructRespectsBudget(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		g := randomGraph(15, rand.New(rand.NewSource(seed)))
		assignment := greedyConstruct(g, 25)
		require.True(t, IsValid(g, assignment, 25), "seed %d", seed)
	}
}

func TestGreedyTwoStudentsMergeWhenAffordable(t *testing.T) {
	g := NewGraph(2)
	g.SetEdge(0, 1, 5, 2)
	assignment, k := SolveGreedy(g, 10, DefaultGreedyParams, rand.New(rand.NewSource(1)))

	require.Equal(t, 1, k)
	require.Equal(t, []int{0, 0}, assignment)
	require.Equal(t, 5.0, TotalHappiness(g, assignment))
}

func TestGreedyTwoStudentsStaySeparateOverBudget(t *testing.T) {
	g := NewGraph(2)
	g.SetEdge(0, 1, 5, 8)
	assignment, k := SolveGreedy(g, 4, DefaultGreedyParams, rand.New(rand.NewSource(1)))

	require.Equal(t, 2, k)
	require.Equal(t, []int{0, 1}, assignment)
}

func TestLocalSearchNeverDecreasesHappiness(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		g := randomGraph(10, rand.New(rand.NewSource(seed)))
		assignment := greedyConstruct(g, 35)
		before := TotalHappiness(g, assignment)

		localSearch(g, 35, assignment, DefaultGreedyParams, rand.New(rand.NewSource(seed)))

		require.GreaterOrEqual(t, TotalHappiness(g, assignment), before, "seed %d", seed)
		require.True(t, IsValid(g, assignment, 35), "seed %d", seed)
	}
}

func TestLocalSearchIdempotentAtOptimum(t *testing.T) {
	g, budget := twoPairsGraph()
	assignment, _ := SolveGreedy(g, budget, DefaultGreedyParams, rand.New(rand.NewSource(1)))
	require.Equal(t, 20.0, TotalHappiness(g, assignment))

	again := make([]int, len(assignment))
	copy(again, assignment)
	localSearch(g, budget, again, DefaultGreedyParams, rand.New(rand.NewSource(2)))

	require.Equal(t, assignment, again)
}

func TestGreedySingleStudent(t *testing.T) {
	g := NewGraph(1)
	assignment, k := SolveGreedy(g, 10, DefaultGreedyParams, rand.New(rand.NewSource(1)))
	require.Equal(t, []int{0}, assignment)
	require.Equal(t, 1, k)
}
