package gordinal

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestMaskedMul(t *testing.T) {
	xBacking := []float64{0, 0.5, 0, 2, 1}
	yBacking := []float64{math.Inf(-1), math.Inf(-1), 3, -1, math.NaN()}

	g := G.NewGraph()
	x := newF64Tensor(g, []int{5}, xBacking, "x")
	y := newF64Tensor(g, []int{5}, yBacking, "y")

	prod, err := MaskedMul(x, y)
	if err != nil {
		t.Fatal(err)
	}
	var prodVal G.Value
	G.Read(prod, &prodVal)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}

	got := toF64s(prodVal)
	if got[0] != 0 || got[2] != 0 {
		t.Errorf("expected 0 wherever x is 0 but got %v", got)
	}
	if !math.IsInf(got[1], -1) {
		t.Errorf("expected -Inf at index 1 but got %v", got[1])
	}
	if got[3] != -2 {
		t.Errorf("expected -2 at index 3 but got %v", got[3])
	}
	if !math.IsNaN(got[4]) {
		t.Errorf("expected NaN at index 4 but got %v", got[4])
	}
}

func TestMaskedMulGrad(t *testing.T) {
	const threshold float64 = 1e-12
	xBacking := []float64{0, 0.5, 0, 2, 0, 3}
	yBacking := []float64{-4, 1, 3, -1, 2, 0.5}

	g := G.NewGraph()
	x := newF64Tensor(g, []int{2, 3}, xBacking, "x")
	y := newF64Tensor(g, []int{2, 3}, yBacking, "y")

	loss := G.Must(G.Sum(G.Must(MaskedMul(x, y))))
	grads, err := G.Grad(loss, x, y)
	if err != nil {
		t.Fatal(err)
	}
	var xGradVal, yGradVal G.Value
	G.Read(grads[0], &xGradVal)
	G.Read(grads[1], &yGradVal)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}

	xGrad, yGrad := toF64s(xGradVal), toF64s(yGradVal)
	for i := range xBacking {
		wantX, wantY := 0.0, 0.0
		if xBacking[i] != 0 {
			wantX, wantY = yBacking[i], xBacking[i]
		}

		if math.Abs(xGrad[i]-wantX) > threshold {
			t.Errorf("index %d: expected x gradient %v received %v", i,
				wantX, xGrad[i])
		}
		if math.Abs(yGrad[i]-wantY) > threshold {
			t.Errorf("index %d: expected y gradient %v received %v", i,
				wantY, yGrad[i])
		}
	}
}

func TestMaskedMulErrors(t *testing.T) {
	g := G.NewGraph()
	x := newF64Tensor(g, []int{3}, make([]float64, 3), "x")
	y := newF64Tensor(g, []int{2}, make([]float64, 2), "y")
	if _, err := MaskedMul(x, y); err == nil {
		t.Error("expected an error for inputs of different shapes")
	}

	z := G.NewVector(g, tensor.Float32, G.WithShape(3),
		G.WithName(Unique("z")))
	if _, err := MaskedMul(x, z); err == nil {
		t.Error("expected an error for float32 input")
	}
}
