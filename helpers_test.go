package gordinal

import (
	"math/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// randInt returns a random int slice of length size with elements in
// [min, max)
func randInt(size int, min, max int) []int {
	slice := make([]int, size)
	for i := range slice {
		slice[i] = min + rand.Intn(max-min)
	}

	return slice
}

// randF64 returns a random float64 slice of length size with elements
// in [min, max)
func randF64(size int, min, max float64) []float64 {
	slice := make([]float64, size)
	for i := range slice {
		slice[i] = min + rand.Float64()*(max-min)
	}

	return slice
}

// newF64Tensor adds a float64 tensor node holding backing to g
func newF64Tensor(g *G.ExprGraph, shape []int, backing []float64,
	name string) *G.Node {
	t := tensor.NewDense(
		tensor.Float64,
		shape,
		tensor.WithBacking(backing),
	)

	return G.NewTensor(
		g,
		tensor.Float64,
		len(shape),
		G.WithShape(shape...),
		G.WithValue(t),
		G.WithName(Unique(name)),
	)
}

// toF64s returns the data of a float64 scalar or tensor value
func toF64s(v G.Value) []float64 {
	data, ok := v.Data().([]float64)
	if !ok {
		// Value has a single element
		data = []float64{v.Data().(float64)}
	}

	return data
}
