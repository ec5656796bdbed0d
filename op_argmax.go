package gordinal

import (
	"fmt"
	"hash"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// argmaxOp is the argmax operation along the last axis
type argmaxOp struct {
	dt   tensor.Dtype
	dims int // The number of dimensions in the input tensor
}

// newArgmaxOp returns a new argmaxOp
func newArgmaxOp(dt tensor.Dtype, dims int) *argmaxOp {
	return &argmaxOp{dt: dt, dims: dims}
}

// Arity implements the gorgonia.Op interface
func (a *argmaxOp) Arity() int { return 1 }

// Type implements the gorgonia.Op interface
func (a *argmaxOp) Type() hm.Type {
	return hm.NewFnType(OutputType(a.dt, a.dims),
		OutputType(tensor.Int, a.dims-1))
}

// InferShape implements the gorgonia.Op interface
func (a *argmaxOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(a, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	shapes, err := G.DimSizersToShapes(inputs)
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	return shapes[0][:len(shapes[0])-1].Clone(), nil
}

// ReturnsPtr implements the gorgonia.Op interface
func (a *argmaxOp) ReturnsPtr() bool { return false }

// CallsExtern implements the gorgonia.Op interface
func (a *argmaxOp) CallsExtern() bool { return false }

// OverwriteInput implements the gorgonia.Op interface
func (a *argmaxOp) OverwritesInput() int { return -1 }

// String implements the fmt.Stringer interface
func (a *argmaxOp) String() string {
	return fmt.Sprintf("Argmax{dtype=%v, dims=%v}()", a.dt, a.dims)
}

// WriteHash implements the gorgonia.Op interface
func (a *argmaxOp) WriteHash(h hash.Hash) { fmt.Fprint(h, a.String()) }

// Hashcode implements the gorgonia.Op interface
func (a *argmaxOp) Hashcode() uint32 { return SimpleHash(a) }

// DiffWRT implements the gorgonia.SDOp interface. Argmax is piecewise
// constant, so no input receives a gradient.
func (a *argmaxOp) DiffWRT(inputs int) []bool {
	return make([]bool, inputs)
}

// SymDiff implements the gorgonia.SDOp interface
func (a *argmaxOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	return nil, fmt.Errorf("symDiff: argmax is not differentiable")
}

// Do implements the gorgonia.Op interface
func (a *argmaxOp) Do(values ...G.Value) (G.Value, error) {
	t, err := checkLastAxisInput(a, values...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	var data []float64
	switch d := t.Data().(type) {
	case []float64:
		data = d
	case []float32:
		data = make([]float64, len(d))
		for i := range d {
			data[i] = float64(d[i])
		}
	default:
		return nil, fmt.Errorf("do: dtype %v unsupported", t.Dtype())
	}

	last := t.Shape()[t.Dims()-1]
	out := make([]int, len(data)/last)
	for i := range out {
		row := data[i*last : (i+1)*last]
		for k := range row {
			if row[k] > row[out[i]] {
				out[i] = k
			}
		}
	}

	return NewIntValue(t.Shape()[:t.Dims()-1], out), nil
}
