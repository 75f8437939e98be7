package solver

import (
	"math"
	"math/rand"
	"slices"
)

type SAParams struct {
	InitialTemp float64
	FinalTemp   float64
	Cooling     float64
	// StepsPerTemp and MaxIters scale with the graph when zero:
	// max(3, n/3) and 1000*n.
	StepsPerTemp int
	MaxIters     int
	ReheatAfter  int
	MaxReheats   int
}

var DefaultSAParams = SAParams{
	InitialTemp: 50.0,
	FinalTemp:   0.5,
	Cooling:     0.99,
	ReheatAfter: 200,
	MaxReheats:  50,
}

// invalidScore stands in for the happiness of an infeasible state. It keeps
// the search steerable away from violations without ever letting one win.
const invalidScore = -1000.0

// Move weights: transfer 0.5, swap 0.3, merge 0.1, split 0.1.
const (
	saTransferCutoff = 0.5
	saSwapCutoff     = 0.8
	saMergeCutoff    = 0.9
)

type saUndo struct {
	student int
	room    int
}

// SolveSA runs simulated annealing from a greedy-construction start.
// Moves are applied in place and rolled back on rejection; the best valid
// state seen is tracked separately from the exploratory current state.
func SolveSA(g *Graph, budget float64, params SAParams, rng *rand.Rand) ([]int, int) {
	n := g.N()
	assignment := greedyConstruct(g, budget)
	rooms := roomList(assignment)

	best := slices.Clone(assignment)
	bestHappiness := TotalHappiness(g, assignment)
	bestValid := IsValid(g, assignment, budget)

	currScore := invalidScore
	if bestValid {
		currScore = bestHappiness
	} else {
		bestHappiness = math.Inf(-1)
	}

	stepsPerTemp := params.StepsPerTemp
	if stepsPerTemp <= 0 {
		stepsPerTemp = max(3, n/3)
	}
	maxIters := params.MaxIters
	if maxIters <= 0 {
		maxIters = 1000 * n
	}

	T := params.InitialTemp
	iters := 0
	stall := 0
	reheats := 0

	var undo []saUndo
	move := func(student, to int) {
		undo = append(undo, saUndo{student, assignment[student]})
		assignment[student] = to
	}

	for T > params.FinalTemp && iters < maxIters {
		for step := 0; step < stepsPerTemp; step++ {
			if iters >= maxIters {
				break
			}
			iters++
			k := len(rooms)
			undo = undo[:0]
			structural := false

			// Inapplicable moves are skipped but still spend an iteration.
			switch roll := rng.Float64(); {
			case roll < saTransferCutoff:
				if k < 2 {
					continue
				}
				from := rng.Intn(k)
				if len(rooms[from]) == 1 {
					continue
				}
				student := rooms[from][rng.Intn(len(rooms[from]))]
				to := rng.Intn(k - 1)
				if to >= from {
					to++
				}
				move(student, to)
			case roll < saSwapCutoff:
				if k < 2 {
					continue
				}
				ra := rng.Intn(k)
				rb := rng.Intn(k - 1)
				if rb >= ra {
					rb++
				}
				sa := rooms[ra][rng.Intn(len(rooms[ra]))]
				sb := rooms[rb][rng.Intn(len(rooms[rb]))]
				move(sa, rb)
				move(sb, ra)
			case roll < saMergeCutoff:
				if k < 2 {
					continue
				}
				ra := rng.Intn(k)
				rb := rng.Intn(k - 1)
				if rb >= ra {
					rb++
				}
				for _, m := range rooms[rb] {
					move(m, ra)
				}
				structural = true
			default:
				if k >= n {
					continue
				}
				ri := rng.Intn(k)
				members := rooms[ri]
				if len(members) < 2 {
					continue
				}
				count := 1 + rng.Intn(len(members)-1)
				for _, pi := range rng.Perm(len(members))[:count] {
					move(members[pi], k)
				}
				structural = true
			}

			candValid := IsValid(g, assignment, budget)
			candScore := invalidScore
			candHappiness := 0.0
			if candValid {
				candHappiness = TotalHappiness(g, assignment)
				candScore = candHappiness
			}

			delta := candScore - currScore
			accept := delta > 0
			if !accept && T > 0 {
				// Overflow or NaN in the exponent counts as rejection.
				if p := math.Exp(delta / T); !math.IsInf(p, 1) && !math.IsNaN(p) && rng.Float64() < p {
					accept = true
				}
			}

			if !accept {
				for i := len(undo) - 1; i >= 0; i-- {
					assignment[undo[i].student] = undo[i].room
				}
				stall++
				continue
			}

			currScore = candScore
			if structural {
				Renumber(assignment)
			}
			rooms = roomList(assignment)

			if candValid && candHappiness > bestHappiness {
				bestHappiness = candHappiness
				bestValid = true
				copy(best, assignment)
				stall = 0
			} else {
				stall++
			}
		}

		T *= params.Cooling

		if stall > params.ReheatAfter {
			if reheats >= params.MaxReheats {
				break
			}
			reheats++
			T = math.Min(T*2, params.InitialTemp/2)
			stall = 0
		}
	}

	if !bestValid {
		best = Identity(n)
	}
	k := Renumber(best)
	return best, k
}
