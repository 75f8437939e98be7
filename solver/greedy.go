package solver

import (
	"math"
	"math/rand"
	"slices"
	"sort"
)

type GreedyParams struct {
	MaxRounds int
	SwapTries int
}

var DefaultGreedyParams = GreedyParams{
	MaxRounds: 1000,
	SwapTries: 100,
}

// SolveGreedy builds an assignment by stress-respecting greedy merges and
// refines it with first-improvement local search. Returns the assignment
// with contiguous room ids and the room count.
func SolveGreedy(g *Graph, budget float64, params GreedyParams, rng *rand.Rand) ([]int, int) {
	assignment := greedyConstruct(g, budget)
	localSearch(g, budget, assignment, params, rng)
	k := Renumber(assignment)
	if !IsValid(g, assignment, budget) {
		assignment = Identity(g.N())
		k = g.N()
	}
	return assignment, k
}

type rankedPair struct {
	a, b  int
	ratio float64
}

// greedyConstruct starts from singleton rooms and merges along pairs ranked
// by happiness/stress ratio, accepting a merge only when the combined room
// stays within the budget recomputed for the reduced room count. The result
// is always valid and renumbered.
func greedyConstruct(g *Graph, budget float64) []int {
	n := g.N()
	pairs := make([]rankedPair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ratio := math.Inf(1)
			if stress := g.Stress(i, j); stress > 0 {
				ratio = g.Happiness(i, j) / stress
			}
			pairs = append(pairs, rankedPair{i, j, ratio})
		}
	}
	// Ties break on the index pair so ranking is total and stable.
	slices.SortFunc(pairs, func(x, y rankedPair) int {
		switch {
		case x.ratio > y.ratio:
			return -1
		case x.ratio < y.ratio:
			return 1
		case x.a != y.a:
			return x.a - y.a
		default:
			return x.b - y.b
		}
	})

	assignment := Identity(n)
	rooms := map[int][]int{}
	roomStress := map[int]float64{}
	for i := 0; i < n; i++ {
		rooms[i] = []int{i}
		roomStress[i] = 0
	}

	for _, p := range pairs {
		if len(rooms) <= 1 {
			break
		}
		ra, rb := assignment[p.a], assignment[p.b]
		if ra == rb {
			continue
		}
		combined := roomStress[ra] + roomStress[rb] + g.CrossStress(rooms[ra], rooms[rb])
		if combined > budget/float64(len(rooms)-1) {
			continue
		}
		for _, m := range rooms[rb] {
			assignment[m] = ra
		}
		rooms[ra] = append(rooms[ra], rooms[rb]...)
		roomStress[ra] = combined
		delete(rooms, rb)
		delete(roomStress, rb)
	}

	Renumber(assignment)
	return assignment
}

// localSearch refines the assignment in place: first-improvement student
// moves in randomized order, then bounded random swaps, then room merges
// accepted at equal or better happiness. Stops at a local optimum or the
// round cap. A student who is alone in a room is never moved out.
func localSearch(g *Graph, budget float64, assignment []int, params GreedyParams, rng *rand.Rand) {
	best := TotalHappiness(g, assignment)

	for round := 0; round < params.MaxRounds; round++ {
		rooms := RoomsOf(assignment)
		k := len(rooms)
		roomIDs := make([]int, 0, k)
		for id := range rooms {
			roomIDs = append(roomIDs, id)
		}
		sort.Ints(roomIDs)

		improved := false
	moves:
		for _, student := range rng.Perm(len(assignment)) {
			from := assignment[student]
			if len(rooms[from]) == 1 {
				continue
			}
			for _, to := range roomIDs {
				if to == from {
					continue
				}
				assignment[student] = to
				if IsValid(g, assignment, budget) {
					if h := TotalHappiness(g, assignment); h > best {
						best = h
						improved = true
						break moves
					}
				}
				assignment[student] = from
			}
		}
		if improved {
			continue
		}

		if k >= 2 {
			for t, tryN := 0, min(params.SwapTries, k*k); t < tryN; t++ {
				ra := roomIDs[rng.Intn(k)]
				rb := roomIDs[rng.Intn(k)]
				if ra == rb {
					continue
				}
				sa := rooms[ra][rng.Intn(len(rooms[ra]))]
				sb := rooms[rb][rng.Intn(len(rooms[rb]))]
				assignment[sa], assignment[sb] = rb, ra
				if IsValid(g, assignment, budget) {
					if h := TotalHappiness(g, assignment); h > best {
						best = h
						improved = true
						break
					}
				}
				assignment[sa], assignment[sb] = ra, rb
			}
		}
		if improved {
			continue
		}

		// Merges are taken even at equal happiness: fewer rooms loosens the
		// per-room budget without giving anything up.
		merged := false
	merges:
		for i, ra := range roomIDs {
			for _, rb := range roomIDs[i+1:] {
				for _, m := range rooms[rb] {
					assignment[m] = ra
				}
				if IsValid(g, assignment, budget) {
					if h := TotalHappiness(g, assignment); h >= best {
						best = h
						merged = true
						break merges
					}
				}
				for _, m := range rooms[rb] {
					assignment[m] = rb
				}
			}
		}
		if !merged {
			return
		}
	}
}
