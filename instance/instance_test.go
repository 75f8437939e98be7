package instance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"breakout/solver"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.in")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadInput(t *testing.T) {
	path := writeFile(t, "3\n50.5\n0 1 10 2\n0 2 0.125 3\n1 2 7 0\n")
	g, budget, err := ReadInput(path)
	require.NoError(t, err)
	require.Equal(t, 50.5, budget)
	require.Equal(t, 3, g.N())
	require.Equal(t, 10.0, g.Happiness(0, 1))
	require.Equal(t, 2.0, g.Stress(1, 0))
	require.Equal(t, 0.125, g.Happiness(2, 0))
	require.Equal(t, 7.0, g.Happiness(1, 2))
	require.Equal(t, 0.0, g.Stress(1, 2))
}

func TestReadInputSkipsBlankLines(t *testing.T) {
	path := writeFile(t, "2\n10\n\n0 1 5 5\n\n")
	g, _, err := ReadInput(path)
	require.NoError(t, err)
	require.Equal(t, 5.0, g.Happiness(0, 1))
}

func TestReadInputRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty file":           "",
		"bad student count":    "zero\n10\n",
		"zero students":        "0\n10\n",
		"missing budget":       "2\n",
		"budget zero":          "2\n0\n0 1 5 5\n",
		"budget too high":      "2\n100\n0 1 5 5\n",
		"negative budget":      "2\n-5\n0 1 5 5\n",
		"too few fields":       "2\n10\n0 1 5\n",
		"too many fields":      "2\n10\n0 1 5 5 5\n",
		"self edge":            "2\n10\n0 0 5 5\n",
		"student out of range": "2\n10\n0 2 5 5\n",
		"negative happiness":   "2\n10\n0 1 -5 5\n",
		"happiness too high":   "2\n10\n0 1 100 5\n",
		"stress too high":      "2\n10\n0 1 5 100\n",
		"four decimal places":  "2\n10\n0 1 5.1234 5\n",
		"duplicate edge":       "2\n10\n0 1 5 5\n1 0 5 5\n",
		"incomplete graph":     "3\n10\n0 1 5 5\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ReadInput(writeFile(t, content))
			require.Error(t, err)
		})
	}
}

func TestInputRoundTrip(t *testing.T) {
	g := solver.NewGraph(4)
	g.SetEdge(0, 1, 10, 1)
	g.SetEdge(0, 2, 0.5, 2.25)
	g.SetEdge(0, 3, 3, 0)
	g.SetEdge(1, 2, 7, 4.125)
	g.SetEdge(1, 3, 0, 0)
	g.SetEdge(2, 3, 99.5, 1)

	path := filepath.Join(t.TempDir(), "round.in")
	require.NoError(t, WriteInput(g, 42.5, path))

	got, budget, err := ReadInput(path)
	require.NoError(t, err)
	require.Equal(t, 42.5, budget)
	require.Equal(t, 4, got.N())
	for a := 0; a < 4; a++ {
		for b := a + 1; b < 4; b++ {
			require.Equal(t, g.Happiness(a, b), got.Happiness(a, b), "happiness %d %d", a, b)
			require.Equal(t, g.Stress(a, b), got.Stress(a, b), "stress %d %d", a, b)
		}
	}
}

func TestOutputRoundTrip(t *testing.T) {
	g := solver.NewGraph(4)
	g.SetEdge(0, 1, 10, 1)
	g.SetEdge(2, 3, 10, 1)

	path := filepath.Join(t.TempDir(), "round.out")
	assignment := []int{0, 0, 1, 1}
	require.NoError(t, WriteOutput(assignment, path))

	got, err := ReadOutput(path, g, 10)
	require.NoError(t, err)
	require.Equal(t, assignment, got)
}

func TestReadOutputRejectsMalformed(t *testing.T) {
	g := solver.NewGraph(3)
	g.SetEdge(0, 1, 0, 50)

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "case.out")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	cases := map[string]string{
		"too few fields":        "0 0\n1 1\n2\n",
		"student out of range":  "0 0\n1 1\n3 2\n",
		"room out of range":     "0 0\n1 1\n2 3\n",
		"student twice":         "0 0\n0 1\n2 2\n",
		"missing student":       "0 0\n1 1\n",
		"exceeds stress budget": "0 0\n1 0\n2 1\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadOutput(write(t, content), g, 10)
			require.Error(t, err)
		})
	}
}
