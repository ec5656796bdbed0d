package gordinal

import (
	"math"
	"math/rand"
	"testing"
	"time"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// logSoftmaxTarget computes the log-softmax of each row of x
func logSoftmaxTarget(x []float64, last int) []float64 {
	out := make([]float64, len(x))
	for row := 0; row < len(x); row += last {
		sum := 0.0
		for k := row; k < row+last; k++ {
			sum += math.Exp(x[k])
		}
		for k := row; k < row+last; k++ {
			out[k] = x[k] - math.Log(sum)
		}
	}
	return out
}

func TestLogSoftmax(t *testing.T) {
	const numTests int = 10
	const threshold float64 = 1e-9
	rand.Seed(time.Now().UnixNano())

	for i := 0; i < numTests; i++ {
		shape := randInt(1+rand.Intn(3), 1, 5)
		last := shape[len(shape)-1]
		size := Size(shape)

		inBacking := randF64(size, -5, 5)
		weightBacking := randF64(size, -1, 1)

		g := G.NewGraph()
		in := newF64Tensor(g, shape, inBacking, "in")
		weights := newF64Tensor(g, shape, weightBacking, "weights")

		lsm, err := LogSoftmax(in)
		if err != nil {
			t.Fatal(err)
		}
		var lsmVal G.Value
		G.Read(lsm, &lsmVal)

		loss := G.Must(G.Sum(G.Must(G.HadamardProd(lsm, weights))))
		grad, err := G.Grad(loss, in)
		if err != nil {
			t.Fatal(err)
		}
		var gradVal G.Value
		G.Read(grad[0], &gradVal)

		vm := G.NewTapeMachine(g)
		if err := vm.RunAll(); err != nil {
			t.Fatal(err)
		}

		target := logSoftmaxTarget(inBacking, last)
		got := toF64s(lsmVal)
		for j := range target {
			if math.Abs(got[j]-target[j]) > threshold {
				t.Errorf("expected %v received %v", target, got)
				break
			}
		}

		// ∂/∂x_j Σ_k w_k log softmax(x)_k = w_j - softmax(x)_j Σ_k w_k
		gotGrad := toF64s(gradVal)
		for row := 0; row < size; row += last {
			sum := 0.0
			for k := row; k < row+last; k++ {
				sum += weightBacking[k]
			}
			for k := row; k < row+last; k++ {
				want := weightBacking[k] - math.Exp(target[k])*sum
				if math.Abs(gotGrad[k]-want) > threshold {
					t.Errorf("gradient at %d: expected %v received %v", k,
						want, gotGrad[k])
				}
			}
		}

		vm.Close()
	}
}

func TestLogSoftmaxFloat32(t *testing.T) {
	const threshold float64 = 1e-5

	inBacking := []float32{1, 2, 3, -1, 0, 1}
	inT := tensor.NewDense(
		tensor.Float32,
		[]int{2, 3},
		tensor.WithBacking(inBacking),
	)

	g := G.NewGraph()
	in := G.NewMatrix(
		g,
		tensor.Float32,
		G.WithShape(2, 3),
		G.WithValue(inT),
		G.WithName(Unique("in")),
	)

	lsm := G.Must(LogSoftmax(in))
	var lsmVal G.Value
	G.Read(lsm, &lsmVal)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}

	in64 := make([]float64, len(inBacking))
	for i := range inBacking {
		in64[i] = float64(inBacking[i])
	}
	target := logSoftmaxTarget(in64, 3)

	got := lsmVal.Data().([]float32)
	for i := range target {
		if math.Abs(float64(got[i])-target[i]) > threshold {
			t.Errorf("expected %v received %v", target, got)
			break
		}
	}
}
