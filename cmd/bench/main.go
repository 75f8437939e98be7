package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"breakout/instance"
	"breakout/solver"
)

type algorithm struct {
	name string
	run  func(g *solver.Graph, budget float64, rng *rand.Rand) ([]int, int)
}

var algorithms = []algorithm{
	{"greedy", func(g *solver.Graph, budget float64, rng *rand.Rand) ([]int, int) {
		return solver.SolveGreedy(g, budget, solver.DefaultGreedyParams, rng)
	}},
	{"sa", func(g *solver.Graph, budget float64, rng *rand.Rand) ([]int, int) {
		return solver.SolveSA(g, budget, solver.DefaultSAParams, rng)
	}},
	{"genetic", func(g *solver.Graph, budget float64, rng *rand.Rand) ([]int, int) {
		return solver.SolveGA(g, budget, solver.DefaultGAParams, rng)
	}},
}

func selectAlgorithms(name string) []algorithm {
	if name == "all" {
		return algorithms
	}
	for _, a := range algorithms {
		if a.name == name {
			return []algorithm{a}
		}
	}
	fmt.Fprintf(os.Stderr, "unknown algorithm %q (greedy, sa, genetic, all)\n", name)
	os.Exit(2)
	return nil
}

type result struct {
	file       string
	algo       string
	happiness  float64
	rooms      int
	valid      bool
	elapsed    time.Duration
	assignment []int
}

func runOne(a algorithm, g *solver.Graph, budget float64, runs int, seed int64) result {
	best := result{algo: a.name, happiness: -1}
	for run := 0; run < runs; run++ {
		rng := rand.New(rand.NewSource(seed + int64(run)*31337))
		start := time.Now()
		assignment, rooms := a.run(g, budget, rng)
		elapsed := time.Since(start)

		valid := solver.IsValid(g, assignment, budget)
		happiness := 0.0
		if valid {
			happiness = solver.TotalHappiness(g, assignment)
		}
		best.elapsed += elapsed
		if happiness > best.happiness || best.assignment == nil {
			best.happiness = happiness
			best.rooms = rooms
			best.valid = valid
			best.assignment = assignment
		}
	}
	best.elapsed /= time.Duration(runs)
	return best
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func main() {
	input := flag.String("input", "", "single input file")
	output := flag.String("output", "", "write the best assignment to this file")
	dir := flag.String("dir", "", "directory of .in files to benchmark")
	algo := flag.String("algo", "all", "algorithm: greedy, sa, genetic, all")
	runs := flag.Int("runs", 1, "solver runs per input per algorithm")
	seed := flag.Int64("seed", 42, "base random seed")
	flag.Parse()

	algos := selectAlgorithms(*algo)

	var files []string
	switch {
	case *input != "":
		files = []string{*input}
	case *dir != "":
		var err error
		files, err = filepath.Glob(filepath.Join(*dir, "*.in"))
		if err != nil || len(files) == 0 {
			fmt.Fprintf(os.Stderr, "no .in files in %s\n", *dir)
			os.Exit(1)
		}
		sort.Strings(files)
	default:
		flag.Usage()
		os.Exit(2)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "input\talgorithm\thappiness\trooms\tvalid\tavg time")

	totals := map[string]*struct {
		happiness float64
		elapsed   time.Duration
		valid     int
		wins      int
		count     int
	}{}
	for _, a := range algos {
		totals[a.name] = &struct {
			happiness float64
			elapsed   time.Duration
			valid     int
			wins      int
			count     int
		}{}
	}

	for _, file := range files {
		g, budget, err := instance.ReadInput(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading %s: %v\n", file, err)
			os.Exit(1)
		}

		bestHappiness := -1.0
		winner := ""
		var bestAssignment []int
		for _, a := range algos {
			r := runOne(a, g, budget, *runs, *seed)
			r.file = filepath.Base(file)

			fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%s\t%v\n",
				r.file, r.algo, r.happiness, r.rooms, yesNo(r.valid), r.elapsed.Round(time.Microsecond))

			t := totals[a.name]
			t.happiness += r.happiness
			t.elapsed += r.elapsed
			t.count++
			if r.valid {
				t.valid++
			}
			if r.valid && r.happiness > bestHappiness {
				bestHappiness = r.happiness
				winner = a.name
				bestAssignment = r.assignment
			}
		}
		if winner != "" {
			totals[winner].wins++
		}
		if *output != "" && bestAssignment != nil {
			if err := instance.WriteOutput(bestAssignment, *output); err != nil {
				fmt.Fprintf(os.Stderr, "writing %s: %v\n", *output, err)
				os.Exit(1)
			}
		}
	}
	w.Flush()

	if len(files) > 1 || len(algos) > 1 {
		fmt.Println()
		s := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(s, "algorithm\tavg happiness\tvalid\twins\tavg time")
		for _, a := range algos {
			t := totals[a.name]
			fmt.Fprintf(s, "%s\t%.2f\t%d/%d\t%d\t%v\n",
				a.name, t.happiness/float64(t.count), t.valid, t.count, t.wins,
				(t.elapsed / time.Duration(t.count)).Round(time.Microsecond))
		}
		s.Flush()
	}
}
