package solver

// RoomsOf groups students by their assigned room id.
func RoomsOf(assignment []int) map[int][]int {
	rooms := map[int][]int{}
	for student, room := range assignment {
		rooms[room] = append(rooms[room], student)
	}
	return rooms
}

// TotalHappiness sums room happiness over all rooms induced by the
// assignment. It is invariant under room relabeling.
func TotalHappiness(g *Graph, assignment []int) float64 {
	total := 0.0
	for _, members := range RoomsOf(assignment) {
		total += g.RoomHappiness(members)
	}
	return total
}

// IsValid reports whether every room's internal stress stays within the
// per-room share of the budget. The room count is derived from the
// assignment itself; an empty assignment is invalid.
func IsValid(g *Graph, assignment []int, budget float64) bool {
	rooms := RoomsOf(assignment)
	if len(rooms) == 0 {
		return false
	}
	perRoom := budget / float64(len(rooms))
	for _, members := range rooms {
		if g.RoomStress(members) > perRoom {
			return false
		}
	}
	return true
}

// StressViolation sums, over every room exceeding its per-room budget, the
// amount of excess stress. Zero for valid assignments.
func StressViolation(g *Graph, assignment []int, budget float64) float64 {
	rooms := RoomsOf(assignment)
	if len(rooms) == 0 {
		return 0
	}
	perRoom := budget / float64(len(rooms))
	total := 0.0
	for _, members := range rooms {
		if stress := g.RoomStress(members); stress > perRoom {
			total += stress - perRoom
		}
	}
	return total
}

// Renumber rewrites room ids in place to 0..k-1 in first-appearance order
// and returns k.
func Renumber(assignment []int) int {
	remap := map[int]int{}
	for i, room := range assignment {
		id, ok := remap[room]
		if !ok {
			id = len(remap)
			remap[room] = id
		}
		assignment[i] = id
	}
	return len(remap)
}

// Identity assigns every student to their own room. Singleton rooms carry
// zero stress, so the identity assignment is valid for any positive budget.
func Identity(n int) []int {
	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = i
	}
	return assignment
}

// roomList converts a renumbered assignment to member lists indexed by room.
func roomList(assignment []int) [][]int {
	k := 0
	for _, room := range assignment {
		if room >= k {
			k = room + 1
		}
	}
	rooms := make([][]int, k)
	for student, room := range assignment {
		rooms[room] = append(rooms[room], student)
	}
	return rooms
}
