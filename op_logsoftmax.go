package gordinal

import (
	"fmt"
	"hash"
	"math"

	"github.com/chewxy/hm"
	"github.com/chewxy/math32"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// logSoftmaxOp normalizes logits along the last axis so that they
// become log-probabilities.
type logSoftmaxOp struct{}

func (l *logSoftmaxOp) Arity() int { return 1 }

func (l *logSoftmaxOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a)
}

func (l *logSoftmaxOp) InferShape(inputs ...G.DimSizer) (tensor.Shape,
	error) {
	err := CheckArity(l, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	return inputs[0].(tensor.Shape).Clone(), nil
}

func (l *logSoftmaxOp) ReturnsPtr() bool { return false }

func (l *logSoftmaxOp) CallsExtern() bool { return false }

func (l *logSoftmaxOp) OverwritesInput() int { return -1 }

func (l *logSoftmaxOp) String() string { return "LogSoftmax()" }

func (l *logSoftmaxOp) WriteHash(h hash.Hash) { fmt.Fprint(h, l.String()) }

func (l *logSoftmaxOp) Hashcode() uint32 { return SimpleHash(l) }

func (l *logSoftmaxOp) DiffWRT(inputs int) []bool { return []bool{true} }

func (l *logSoftmaxOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	err := CheckArity(l, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	nodes := make(G.Nodes, 1)
	nodes[0], err = G.ApplyOp(&logSoftmaxDiffOp{}, output, grad)

	return nodes, err
}

func (l *logSoftmaxOp) Do(inputs ...G.Value) (G.Value, error) {
	t, err := checkLastAxisInput(l, inputs...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	last := t.Shape()[t.Dims()-1]
	switch data := t.Data().(type) {
	case []float64:
		out := make([]float64, len(data))
		for row := 0; row < len(data); row += last {
			logSoftmax64(data[row:row+last], out[row:row+last])
		}
		return tensor.NewDense(tensor.Float64, t.Shape().Clone(),
			tensor.WithBacking(out)), nil

	case []float32:
		out := make([]float32, len(data))
		for row := 0; row < len(data); row += last {
			logSoftmax32(data[row:row+last], out[row:row+last])
		}
		return tensor.NewDense(tensor.Float32, t.Shape().Clone(),
			tensor.WithBacking(out)), nil
	}

	return nil, fmt.Errorf("do: dtype %v unsupported", t.Dtype())
}

func logSoftmax64(in, out []float64) {
	max := math.Inf(-1)
	for _, v := range in {
		if v > max {
			max = v
		}
	}

	sum := 0.0
	for _, v := range in {
		sum += math.Exp(v - max)
	}
	lse := max + math.Log(sum)

	for i, v := range in {
		out[i] = v - lse
	}
}

func logSoftmax32(in, out []float32) {
	max := math32.Inf(-1)
	for _, v := range in {
		if v > max {
			max = v
		}
	}

	var sum float32
	for _, v := range in {
		sum += math32.Exp(v - max)
	}
	lse := max + math32.Log(sum)

	for i, v := range in {
		out[i] = v - lse
	}
}

// logSoftmaxDiffOp computes grad - softmax(x) * sum(grad) along the
// last axis from the log-softmax output and its gradient.
type logSoftmaxDiffOp struct{}

func (l *logSoftmaxDiffOp) Arity() int { return 2 }

func (l *logSoftmaxDiffOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a, a)
}

func (l *logSoftmaxDiffOp) InferShape(inputs ...G.DimSizer) (tensor.Shape,
	error) {
	return inputs[0].(tensor.Shape).Clone(), nil
}

func (l *logSoftmaxDiffOp) ReturnsPtr() bool { return false }

func (l *logSoftmaxDiffOp) CallsExtern() bool { return false }

func (l *logSoftmaxDiffOp) OverwritesInput() int { return -1 }

func (l *logSoftmaxDiffOp) String() string { return "LogSoftmaxDiff()" }

func (l *logSoftmaxDiffOp) WriteHash(h hash.Hash) { fmt.Fprint(h, l.String()) }

func (l *logSoftmaxDiffOp) Hashcode() uint32 { return SimpleHash(l) }

func (l *logSoftmaxDiffOp) Do(inputs ...G.Value) (G.Value, error) {
	t, err := checkLastAxisInput(l, inputs...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	grad, ok := inputs[1].(tensor.Tensor)
	if !ok || !grad.Shape().Eq(t.Shape()) {
		return nil, fmt.Errorf("do: expected gradient of shape %v",
			t.Shape())
	}

	last := t.Shape()[t.Dims()-1]
	switch data := t.Data().(type) {
	case []float64:
		g := grad.Data().([]float64)
		out := make([]float64, len(data))
		for row := 0; row < len(data); row += last {
			sum := 0.0
			for k := row; k < row+last; k++ {
				sum += g[k]
			}
			for k := row; k < row+last; k++ {
				out[k] = g[k] - math.Exp(data[k])*sum
			}
		}
		return tensor.NewDense(tensor.Float64, t.Shape().Clone(),
			tensor.WithBacking(out)), nil

	case []float32:
		g := grad.Data().([]float32)
		out := make([]float32, len(data))
		for row := 0; row < len(data); row += last {
			var sum float32
			for k := row; k < row+last; k++ {
				sum += g[k]
			}
			for k := row; k < row+last; k++ {
				out[k] = g[k] - math32.Exp(data[k])*sum
			}
		}
		return tensor.NewDense(tensor.Float32, t.Shape().Clone(),
			tensor.WithBacking(out)), nil
	}

	return nil, fmt.Errorf("do: dtype %v unsupported", t.Dtype())
}

// checkLastAxisInput returns the first input of op as a tensor with
// at least one dimension.
func checkLastAxisInput(op G.Op, inputs ...G.Value) (tensor.Tensor, error) {
	if err := CheckArity(op, len(inputs)); err != nil {
		return nil, err
	}

	t, ok := inputs[0].(tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("expected input to be a tensor, got %T",
			inputs[0])
	} else if t.Dims() == 0 || t.Size() == 0 {
		return nil, fmt.Errorf("tensor does not have any elements along " +
			"its last axis")
	}

	return t, nil
}
