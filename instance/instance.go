// Package instance reads and writes the plain-text problem formats: an
// input file describing a complete weighted graph plus a stress budget, and
// an output file listing one "student room" pair per line.
package instance

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"breakout/solver"
)

// Values carry at most three decimal places, matching the upstream format.
var numberRE = regexp.MustCompile(`^\d+(\.\d{1,3})?$`)

func parseValue(token string) (float64, error) {
	if !numberRE.MatchString(token) {
		return 0, fmt.Errorf("malformed number %q", token)
	}
	return strconv.ParseFloat(token, 64)
}

// ReadInput parses and validates an input file, returning the complete graph
// and the stress budget.
func ReadInput(path string) (*solver.Graph, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, 0, fmt.Errorf("%s: missing student count", path)
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || n < 1 {
		return nil, 0, fmt.Errorf("%s: invalid student count %q", path, strings.TrimSpace(scanner.Text()))
	}

	if !scanner.Scan() {
		return nil, 0, fmt.Errorf("%s: missing stress budget", path)
	}
	budgetToken := strings.TrimSpace(scanner.Text())
	budget, err := parseValue(budgetToken)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: invalid stress budget %q", path, budgetToken)
	}
	if budget <= 0 || budget >= 100 {
		return nil, 0, fmt.Errorf("%s: stress budget %v out of range (0, 100)", path, budget)
	}

	g := solver.NewGraph(n)
	seen := make([]bool, n*n)
	edges := 0
	lineNo := 2
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) != 4 {
			return nil, 0, fmt.Errorf("%s:%d: expected 4 fields, got %d", path, lineNo, len(tokens))
		}
		a, errA := strconv.Atoi(tokens[0])
		b, errB := strconv.Atoi(tokens[1])
		if errA != nil || errB != nil || a < 0 || a >= n || b < 0 || b >= n || a == b {
			return nil, 0, fmt.Errorf("%s:%d: invalid student pair %q %q", path, lineNo, tokens[0], tokens[1])
		}
		happiness, err := parseValue(tokens[2])
		if err != nil {
			return nil, 0, fmt.Errorf("%s:%d: %v", path, lineNo, err)
		}
		stress, err := parseValue(tokens[3])
		if err != nil {
			return nil, 0, fmt.Errorf("%s:%d: %v", path, lineNo, err)
		}
		if happiness >= 100 || stress >= 100 {
			return nil, 0, fmt.Errorf("%s:%d: edge values must be below 100", path, lineNo)
		}
		if seen[a*n+b] {
			return nil, 0, fmt.Errorf("%s:%d: duplicate edge %d %d", path, lineNo, a, b)
		}
		seen[a*n+b] = true
		seen[b*n+a] = true
		g.SetEdge(a, b, happiness, stress)
		edges++
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	if edges != n*(n-1)/2 {
		return nil, 0, fmt.Errorf("%s: graph incomplete: %d edges, want %d", path, edges, n*(n-1)/2)
	}
	return g, budget, nil
}

// WriteInput writes the graph and budget in the input format.
func WriteInput(g *solver.Graph, budget float64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d\n", g.N())
	fmt.Fprintf(w, "%s\n", strconv.FormatFloat(budget, 'f', -1, 64))
	for a := 0; a < g.N(); a++ {
		for b := a + 1; b < g.N(); b++ {
			fmt.Fprintf(w, "%d %d %s %s\n", a, b,
				strconv.FormatFloat(g.Happiness(a, b), 'f', -1, 64),
				strconv.FormatFloat(g.Stress(a, b), 'f', -1, 64))
		}
	}
	return w.Flush()
}

// ReadOutput parses an assignment file and validates it against the graph:
// every student exactly once, room ids in range, and the decoded partition
// within the stress budget.
func ReadOutput(path string, g *solver.Graph, budget float64) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := g.N()
	assignment := make([]int, n)
	covered := make([]bool, n)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("%s:%d: expected 2 fields, got %d", path, lineNo, len(tokens))
		}
		student, errS := strconv.Atoi(tokens[0])
		room, errR := strconv.Atoi(tokens[1])
		if errS != nil || student < 0 || student >= n {
			return nil, fmt.Errorf("%s:%d: invalid student %q", path, lineNo, tokens[0])
		}
		if errR != nil || room < 0 || room >= n {
			return nil, fmt.Errorf("%s:%d: invalid room %q", path, lineNo, tokens[1])
		}
		if covered[student] {
			return nil, fmt.Errorf("%s:%d: student %d assigned twice", path, lineNo, student)
		}
		covered[student] = true
		assignment[student] = room
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for student, ok := range covered {
		if !ok {
			return nil, fmt.Errorf("%s: student %d has no room", path, student)
		}
	}
	if !solver.IsValid(g, assignment, budget) {
		return nil, fmt.Errorf("%s: assignment exceeds stress budget", path)
	}
	return assignment, nil
}

// WriteOutput writes one "student room" pair per line.
func WriteOutput(assignment []int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for student, room := range assignment {
		fmt.Fprintf(w, "%d %d\n", student, room)
	}
	return w.Flush()
}
