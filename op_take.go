package gordinal

import (
	"fmt"
	"hash"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// takeOp selects, for every index in an index tensor, one element of
// the last axis of a parameter tensor. The leading (batch) axes of
// the parameters are broadcast against the indices.
type takeOp struct {
	below, above float64
	paramsShape  tensor.Shape
	indicesShape tensor.Shape
	indicesType  tensor.Dtype
	outShape     tensor.Shape
}

func newTakeOp(paramsShape, indicesShape tensor.Shape,
	indicesType tensor.Dtype, below, above float64) (*takeOp, error) {
	if len(paramsShape) == 0 {
		return nil, fmt.Errorf("newTakeOp: cannot take from a scalar")
	}
	if indicesType != tensor.Float64 && indicesType != tensor.Int {
		return nil, fmt.Errorf("newTakeOp: indices of dtype %v unsupported",
			indicesType)
	}

	batch := paramsShape[:len(paramsShape)-1]
	out, err := BroadcastShapes(indicesShape, batch)
	if err != nil {
		return nil, fmt.Errorf("newTakeOp: %v", err)
	}

	return &takeOp{
		below:        below,
		above:        above,
		paramsShape:  paramsShape.Clone(),
		indicesShape: indicesShape.Clone(),
		indicesType:  indicesType,
		outShape:     out,
	}, nil
}

func (t *takeOp) Arity() int { return 2 }

func (t *takeOp) ReturnsPtr() bool { return false }

func (t *takeOp) CallsExtern() bool { return false }

func (t *takeOp) OverwritesInput() int { return -1 }

func (t *takeOp) Hashcode() uint32 { return SimpleHash(t) }

func (t *takeOp) WriteHash(h hash.Hash) { fmt.Fprint(h, t.String()) }

func (t *takeOp) String() string {
	return fmt.Sprintf("Take{params=%v, indices=%v %v, below=%v, "+
		"above=%v}()", t.paramsShape, t.indicesShape, t.indicesType, t.below,
		t.above)
}

func (t *takeOp) DiffWRT(inputs int) []bool {
	// Differentiable WRT params, not indices
	return []bool{true, false}
}

func (t *takeOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	err := CheckArity(t, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	diffOp := &takeDiffOp{t}
	nodes := make(G.Nodes, 2)

	nodes[0], err = G.ApplyOp(diffOp, inputs[0], inputs[1], grad)

	return nodes, err
}

func (t *takeOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(t, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	return t.outShape.Clone(), nil
}

func (t *takeOp) Type() hm.Type {
	return hm.NewFnType(t.paramsType(), t.indicesTensorType(), t.outType())
}

func (t *takeOp) paramsType() hm.Type {
	return OutputType(tensor.Float64, len(t.paramsShape))
}

func (t *takeOp) indicesTensorType() hm.Type {
	return OutputType(t.indicesType, len(t.indicesShape))
}

func (t *takeOp) outType() hm.Type {
	return OutputType(tensor.Float64, len(t.outShape))
}

func (t *takeOp) Do(inputs ...G.Value) (G.Value, error) {
	params, indices, b, err := t.prepare(inputs...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	categories := t.paramsShape[len(t.paramsShape)-1]
	out := make([]float64, b.Size())
	for i := range out {
		idx := indices[b.Index(i, 0)]
		switch {
		case idx < 0:
			out[i] = t.below
		case idx >= float64(categories):
			out[i] = t.above
		default:
			out[i] = params[b.Index(i, 1)*categories+int(idx)]
		}
	}

	return NewF64Value(t.outShape, out), nil
}

// prepare reads the data of the params and indices values and
// returns a Broadcaster from the output shape onto the indices (input
// 0) and the batch of the params (input 1).
func (t *takeOp) prepare(inputs ...G.Value) ([]float64, []float64,
	*Broadcaster, error) {
	if len(inputs) < 2 {
		return nil, nil, nil, fmt.Errorf("expected params and indices but "+
			"got %v inputs", len(inputs))
	}

	if !inputs[0].Shape().Eq(t.paramsShape) {
		return nil, nil, nil, fmt.Errorf("expected params shape %v but got %v",
			t.paramsShape, inputs[0].Shape())
	}
	params, err := Float64s(inputs[0])
	if err != nil {
		return nil, nil, nil, err
	}

	indices, err := Indices(inputs[1])
	if err != nil {
		return nil, nil, nil, err
	}
	if len(indices) != Size(t.indicesShape) {
		return nil, nil, nil, fmt.Errorf("expected indices of shape %v but "+
			"got %v", t.indicesShape, inputs[1].Shape())
	}

	b, err := NewBroadcaster(t.indicesShape,
		t.paramsShape[:len(t.paramsShape)-1])
	if err != nil {
		return nil, nil, nil, err
	}

	return params, indices, b, nil
}

// takeDiffOp scatters the gradient of a take back onto the params
type takeDiffOp struct {
	op *takeOp
}

func (t *takeDiffOp) Arity() int { return 3 }

func (t *takeDiffOp) ReturnsPtr() bool { return false }

func (t *takeDiffOp) CallsExtern() bool { return false }

func (t *takeDiffOp) OverwritesInput() int { return -1 }

func (t *takeDiffOp) Hashcode() uint32 { return SimpleHash(t) }

func (t *takeDiffOp) WriteHash(h hash.Hash) { fmt.Fprint(h, t.String()) }

func (t *takeDiffOp) String() string {
	return fmt.Sprintf("TakeDiff{params=%v, indices=%v %v}()",
		t.op.paramsShape, t.op.indicesShape, t.op.indicesType)
}

func (t *takeDiffOp) Type() hm.Type {
	params := t.op.paramsType()
	return hm.NewFnType(params, t.op.indicesTensorType(), t.op.outType(),
		params)
}

func (t *takeDiffOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	return t.op.paramsShape.Clone(), nil
}

func (t *takeDiffOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(t, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	_, indices, b, err := t.op.prepare(inputs...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	grad, err := Float64s(inputs[2])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	if len(grad) != b.Size() {
		return nil, fmt.Errorf("do: expected gradient of shape %v but got %v",
			t.op.outShape, inputs[2].Shape())
	}

	categories := t.op.paramsShape[len(t.op.paramsShape)-1]
	out := make([]float64, Size(t.op.paramsShape))
	for i := range grad {
		idx := indices[b.Index(i, 0)]
		if idx < 0 || idx >= float64(categories) {
			continue
		}
		out[b.Index(i, 1)*categories+int(idx)] += grad[i]
	}

	return NewF64Value(t.op.paramsShape, out), nil
}
