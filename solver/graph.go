package solver

// Graph is a complete undirected graph over students 0..n-1 with a
// happiness and a stress value per pair. It is read-only during a solve.
type Graph struct {
	n         int
	happiness []float64
	stress    []float64
}

func NewGraph(n int) *Graph {
	return &Graph{
		n:         n,
		happiness: make([]float64, n*n),
		stress:    make([]float64, n*n),
	}
}

func (g *Graph) N() int {
	return g.n
}

func (g *Graph) SetEdge(a, b int, happiness, stress float64) {
	g.happiness[a*g.n+b] = happiness
	g.happiness[b*g.n+a] = happiness
	g.stress[a*g.n+b] = stress
	g.stress[b*g.n+a] = stress
}

func (g *Graph) Happiness(a, b int) float64 {
	return g.happiness[a*g.n+b]
}

func (g *Graph) Stress(a, b int) float64 {
	return g.stress[a*g.n+b]
}

// RoomHappiness sums happiness over all unordered pairs within members.
func (g *Graph) RoomHappiness(members []int) float64 {
	total := 0.0
	for i, a := range members {
		for _, b := range members[i+1:] {
			total += g.happiness[a*g.n+b]
		}
	}
	return total
}

// RoomStress sums stress over all unordered pairs within members.
func (g *Graph) RoomStress(members []int) float64 {
	total := 0.0
	for i, a := range members {
		for _, b := range members[i+1:] {
			total += g.stress[a*g.n+b]
		}
	}
	return total
}

// CrossStress sums stress over all pairs with one student in each group.
func (g *Graph) CrossStress(groupA, groupB []int) float64 {
	total := 0.0
	for _, a := range groupA {
		for _, b := range groupB {
			total += g.stress[a*g.n+b]
		}
	}
	return total
}
