package main

import (
	"fmt"

	"github.com/samuelfneumann/gordinal"
	"github.com/samuelfneumann/gordinal/distribution"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// newOrderedLogistic adds a single ordered logistic distribution with
// the given cutpoints and location to g. Cutpoints are validated.
func newOrderedLogistic(g *G.ExprGraph, cutpoints []float64,
	location float64, seed uint64) (*distribution.OrderedLogistic, error) {
	backing := make([]float64, len(cutpoints))
	copy(backing, cutpoints)

	c := G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(len(backing)),
		G.WithValue(tensor.NewDense(
			tensor.Float64,
			[]int{len(backing)},
			tensor.WithBacking(backing),
		)),
		G.WithName(gordinal.Unique("cutpoints")),
	)
	loc := G.NewScalar(
		g,
		tensor.Float64,
		G.WithValue(location),
		G.WithName(gordinal.Unique("location")),
	)

	return distribution.NewOrderedLogistic(c, loc, seed, true)
}

// categories returns an int node holding 0, 1, ..., n-1
func categories(g *G.ExprGraph, n int) *G.Node {
	backing := make([]int, n)
	for i := range backing {
		backing[i] = i
	}

	return G.NewVector(
		g,
		tensor.Int,
		G.WithShape(n),
		G.WithValue(tensor.NewDense(
			tensor.Int,
			[]int{n},
			tensor.WithBacking(backing),
		)),
		G.WithName(gordinal.Unique("categories")),
	)
}

// run runs all nodes of g once
func run(g *G.ExprGraph) error {
	vm := G.NewTapeMachine(g)
	defer vm.Close()

	if err := vm.RunAll(); err != nil {
		return fmt.Errorf("cannot run graph: %w", err)
	}
	return nil
}

// mean returns the average of x
func mean(x []float64) float64 {
	total := 0.0
	for _, v := range x {
		total += v
	}
	return total / float64(len(x))
}
