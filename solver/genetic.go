package solver

import (
	"math"
	"math/rand"
	"slices"
	"sort"
)

type GAParams struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	RepairTries    int
}

var DefaultGAParams = GAParams{
	PopulationSize: 50,
	Generations:    200,
	MutationRate:   0.1,
	TournamentSize: 3,
	EliteCount:     2,
	RepairTries:    10,
}

// SolveGA evolves a population of room-assignment chromosomes. The returned
// assignment is always valid: if the best individual ever seen decodes to an
// invalid partition, the identity assignment is returned instead.
func SolveGA(g *Graph, budget float64, params GAParams, rng *rand.Rand) ([]int, int) {
	n := g.N()
	population := initPopulation(g, budget, params.PopulationSize, rng)

	var best []int
	bestFitness := math.Inf(-1)

	evaluate := func() []float64 {
		fitness := make([]float64, len(population))
		for i, chrom := range population {
			fitness[i] = Fitness(g, chrom, budget)
			if fitness[i] > bestFitness {
				bestFitness = fitness[i]
				best = slices.Clone(chrom)
			}
		}
		return fitness
	}

	for gen := 0; gen < params.Generations; gen++ {
		fitness := evaluate()

		order := make([]int, len(population))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return fitness[order[a]] > fitness[order[b]] })

		next := make([][]int, 0, params.PopulationSize)
		for i, eliteN := 0, min(params.EliteCount, len(order)); i < eliteN; i++ {
			next = append(next, slices.Clone(population[order[i]]))
		}

		for len(next) < params.PopulationSize {
			p1 := tournamentSelect(population, fitness, params.TournamentSize, rng)
			p2 := tournamentSelect(population, fitness, params.TournamentSize, rng)
			c1, c2 := crossover(p1, p2, rng)
			if rng.Float64() < params.MutationRate {
				mutate(c1, rng)
			}
			if rng.Float64() < params.MutationRate {
				mutate(c2, rng)
			}
			repair(g, c1, budget, params.RepairTries)
			repair(g, c2, budget, params.RepairTries)
			next = append(next, c1)
			if len(next) < params.PopulationSize {
				next = append(next, c2)
			}
		}
		population = next
	}
	evaluate()

	k := Renumber(best)
	if !IsValid(g, best, budget) {
		best = Identity(n)
		k = n
	}
	return best, k
}

// Fitness orders chromosomes so that any valid assignment beats any invalid
// one: valid assignments score their happiness (>= 0), invalid ones the
// negated violation magnitude, so "barely invalid" still beats "wildly
// invalid".
func Fitness(g *Graph, chromosome []int, budget float64) float64 {
	if IsValid(g, chromosome, budget) {
		return TotalHappiness(g, chromosome)
	}
	return -StressViolation(g, chromosome, budget)
}

func initPopulation(g *Graph, budget float64, size int, rng *rand.Rand) [][]int {
	n := g.N()
	population := make([][]int, 0, size)
	population = append(population, Identity(n))
	for j := 0; j < size/4; j++ {
		if len(population) >= size {
			break
		}
		population = append(population, greedyConstruct(g, budget))
	}
	for len(population) < size {
		numRooms := 1 + rng.Intn(n)
		chrom := make([]int, n)
		for i := range chrom {
			chrom[i] = rng.Intn(numRooms)
		}
		population = append(population, chrom)
	}
	return population
}

func tournamentSelect(population [][]int, fitness []float64, size int, rng *rand.Rand) []int {
	entrants := rng.Perm(len(population))[:min(size, len(population))]
	best := entrants[0]
	for _, i := range entrants[1:] {
		if fitness[i] > fitness[best] {
			best = i
		}
	}
	return population[best]
}

// crossover inherits each position from one parent or the other at random;
// the two children are complementary.
func crossover(p1, p2 []int, rng *rand.Rand) ([]int, []int) {
	c1 := make([]int, len(p1))
	c2 := make([]int, len(p1))
	for i := range p1 {
		if rng.Float64() < 0.5 {
			c1[i], c2[i] = p1[i], p2[i]
		} else {
			c1[i], c2[i] = p2[i], p1[i]
		}
	}
	return c1, c2
}

func distinctRooms(chromosome []int) []int {
	seen := map[int]bool{}
	var ids []int
	for _, room := range chromosome {
		if !seen[room] {
			seen[room] = true
			ids = append(ids, room)
		}
	}
	sort.Ints(ids)
	return ids
}

// mutate applies one of four operators in place: swap two positions, move a
// position to an existing room, split off a random subset of one room into a
// fresh room, or merge two rooms.
func mutate(chromosome []int, rng *rand.Rand) {
	n := len(chromosome)
	switch rng.Intn(4) {
	case 0:
		if n < 2 {
			return
		}
		i := rng.Intn(n)
		j := rng.Intn(n - 1)
		if j >= i {
			j++
		}
		chromosome[i], chromosome[j] = chromosome[j], chromosome[i]
	case 1:
		ids := distinctRooms(chromosome)
		chromosome[rng.Intn(n)] = ids[rng.Intn(len(ids))]
	case 2:
		ids := distinctRooms(chromosome)
		room := ids[rng.Intn(len(ids))]
		var members []int
		for i, r := range chromosome {
			if r == room {
				members = append(members, i)
			}
		}
		if len(members) < 2 {
			return
		}
		fresh := slices.Max(chromosome) + 1
		count := 1 + rng.Intn(len(members)-1)
		for _, pi := range rng.Perm(len(members))[:count] {
			chromosome[members[pi]] = fresh
		}
	case 3:
		ids := distinctRooms(chromosome)
		if len(ids) < 2 {
			return
		}
		i := rng.Intn(len(ids))
		j := rng.Intn(len(ids) - 1)
		if j >= i {
			j++
		}
		a, b := ids[i], ids[j]
		for x, r := range chromosome {
			if r == b {
				chromosome[x] = a
			}
		}
	}
}

// repair renumbers the chromosome, then repeatedly relocates the highest
// internal-stress member of the most over-budget room into a fresh room.
// It may give up within the retry cap and leave the chromosome invalid;
// fitness then selects against it.
func repair(g *Graph, chromosome []int, budget float64, tries int) {
	Renumber(chromosome)
	for t := 0; t < tries; t++ {
		rooms := roomList(chromosome)
		k := len(rooms)
		perRoom := budget / float64(k)

		worst := -1
		worstExcess := 0.0
		for room, members := range rooms {
			if len(members) < 2 {
				continue
			}
			if excess := g.RoomStress(members) - perRoom; excess > worstExcess {
				worstExcess = excess
				worst = room
			}
		}
		if worst < 0 {
			return
		}

		members := rooms[worst]
		moved := members[0]
		movedStress := math.Inf(-1)
		for _, m := range members {
			sum := 0.0
			for _, other := range members {
				if other != m {
					sum += g.Stress(m, other)
				}
			}
			if sum > movedStress {
				movedStress = sum
				moved = m
			}
		}
		// Room ids are contiguous here, so k is the next fresh id.
		chromosome[moved] = k
	}
}
