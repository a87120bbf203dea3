package graph

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Adjacency materializes the symmetric-normalized adjacency matrix
// D^{-1/2} (A + I) D^{-1/2} over n nodes. Subclass edges are symmetrized here
// and self-loops added, so every node keeps its own signal even when isolated.
func Adjacency(edges [][2]int, n int) *mat.Dense {
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		a.Set(i, i, 1)
	}
	for _, e := range edges {
		a.Set(e[0], e[1], 1)
		a.Set(e[1], e[0], 1)
	}

	deg := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			deg[i] += a.At(i, j)
		}
	}
	for i := range deg {
		deg[i] = 1 / math.Sqrt(deg[i])
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := a.At(i, j); v != 0 {
				a.Set(i, j, v*deg[i]*deg[j])
			}
		}
	}
	return a
}

// Neighbors builds per-node neighbor lists from symmetrized edges, each node
// listed as its own first neighbor.
func Neighbors(edges [][2]int, n int) [][]int {
	seen := make([]map[int]bool, n)
	out := make([][]int, n)
	for i := 0; i < n; i++ {
		seen[i] = map[int]bool{i: true}
		out[i] = []int{i}
	}
	add := func(i, j int) {
		if !seen[i][j] {
			seen[i][j] = true
			out[i] = append(out[i], j)
		}
	}
	for _, e := range edges {
		add(e[0], e[1])
		add(e[1], e[0])
	}
	return out
}
