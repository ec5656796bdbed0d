package distribution

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gordinal"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// testSeed seeds all random number generation in the tests
const testSeed uint64 = 42

// randn returns size draws from the standard normal distribution
func randn(src rand.Source, size int) []float64 {
	dist := distuv.Normal{
		Mu:    0.0,
		Sigma: 1.0,
		Src:   src,
	}

	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// randomCutpoints returns random cutpoints of the given shape which
// are increasing along the last axis
func randomCutpoints(src rand.Source, shape []int) []float64 {
	out := randn(src, gordinal.Size(shape))

	last := shape[len(shape)-1]
	for row := 0; row < len(out); row += last {
		for k := row + 1; k < row+last; k++ {
			out[k] = out[k-1] + math.Exp(out[k])
		}
	}
	return out
}

// sigmoid computes the logistic sigmoid of x
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// orderedProbsTarget computes the category probabilities of an
// ordered logistic distribution directly from its definition. Each
// difference of sigmoids is taken in whichever tail avoids
// cancellation.
func orderedProbsTarget(cutpoints []float64, loc float64) []float64 {
	k := len(cutpoints)
	probs := make([]float64, k+1)

	probs[0] = sigmoid(cutpoints[0] - loc)
	for j := 1; j < k; j++ {
		hi, lo := cutpoints[j]-loc, cutpoints[j-1]-loc
		if lo > 0 {
			probs[j] = sigmoid(-lo) - sigmoid(-hi)
		} else {
			probs[j] = sigmoid(hi) - sigmoid(lo)
		}
	}
	probs[k] = sigmoid(loc - cutpoints[k-1])

	return probs
}

// newF64Node adds a float64 node holding backing to g. An empty shape
// produces a scalar node.
func newF64Node(g *G.ExprGraph, shape []int, backing []float64,
	name string) *G.Node {
	if len(shape) == 0 {
		return G.NewScalar(
			g,
			tensor.Float64,
			G.WithValue(backing[0]),
			G.WithName(gordinal.Unique(name)),
		)
	}

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
		G.WithName(gordinal.Unique(name)),
	)
}

// newIntNode adds an int tensor node holding backing to g
func newIntNode(g *G.ExprGraph, shape []int, backing []int,
	name string) *G.Node {
	t := tensor.NewDense(
		tensor.Int,
		shape,
		tensor.WithBacking(backing),
	)
	return G.NewTensor(
		g,
		tensor.Int,
		len(shape),
		G.WithShape(shape...),
		G.WithValue(t),
		G.WithName(gordinal.Unique(name)),
	)
}

// runGraph runs all nodes of g once
func runGraph(t *testing.T, g *G.ExprGraph) {
	t.Helper()

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}
}

// f64s returns the data of a float64 scalar or tensor value
func f64s(v G.Value) []float64 {
	data, ok := v.Data().([]float64)
	if !ok {
		// Value has a single element
		data = []float64{v.Data().(float64)}
	}

	return data
}

// ints returns the data of an int scalar or tensor value
func ints(v G.Value) []int {
	data, ok := v.Data().([]int)
	if !ok {
		// Value has a single element
		data = []int{v.Data().(int)}
	}

	return data
}

// shapeEq returns whether a and b are exactly the same shape. Unlike
// tensor.Shape.Eq, (1, 3) and (3) are different shapes.
func shapeEq(a, b tensor.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// meanAndStdErr returns the sample mean of x and its standard error
func meanAndStdErr(x []float64) (float64, float64) {
	n := float64(len(x))

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= n

	variance := 0.0
	for _, v := range x {
		variance += (v - mean) * (v - mean)
	}
	variance /= n - 1

	return mean, math.Sqrt(variance / n)
}
