package gordinal

import (
	"fmt"
	"hash"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// maskedMulOp computes x ⊙ y, taking the product to be 0 wherever
// x is 0, even if y is infinite
type maskedMulOp struct {
	shape tensor.Shape
}

func newMaskedMulOp(xShape, yShape tensor.Shape) (*maskedMulOp, error) {
	if !xShape.Eq(yShape) {
		return nil, fmt.Errorf("newMaskedMulOp: expected inputs of the same "+
			"shape but got %v and %v", xShape, yShape)
	}

	return &maskedMulOp{shape: xShape.Clone()}, nil
}

func (m *maskedMulOp) Arity() int { return 2 }

func (m *maskedMulOp) Type() hm.Type {
	tt := OutputType(tensor.Float64, len(m.shape))
	return hm.NewFnType(tt, tt, tt)
}

func (m *maskedMulOp) InferShape(...G.DimSizer) (tensor.Shape, error) {
	return m.shape.Clone(), nil
}

func (m *maskedMulOp) ReturnsPtr() bool { return false }

func (m *maskedMulOp) CallsExtern() bool { return false }

func (m *maskedMulOp) OverwritesInput() int { return -1 }

func (m *maskedMulOp) String() string {
	return fmt.Sprintf("MaskedMul{shape=%v}()", m.shape)
}

// WriteHash writes the hash of the receiver to a hash struct
func (m *maskedMulOp) WriteHash(h hash.Hash) { fmt.Fprint(h, m.String()) }

// Hashcode returns the hash code of the receiver
func (m *maskedMulOp) Hashcode() uint32 { return SimpleHash(m) }

func (m *maskedMulOp) DiffWRT(inputs int) []bool {
	return []bool{true, true}
}

// SymDiff returns the gradients y ⊙ grad and x ⊙ grad, both masked to
// 0 wherever x is 0
func (m *maskedMulOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	err := CheckArity(m, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	nodes := make(G.Nodes, 2)
	for i := range nodes {
		nodes[i], err = G.ApplyOp(&maskedMulDiffOp{m, i}, inputs[0],
			inputs[1], grad)
		if err != nil {
			return nil, fmt.Errorf("symDiff: %v", err)
		}
	}

	return nodes, nil
}

func (m *maskedMulOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(m, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	data, err := m.read(inputs...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	x, y := data[0], data[1]

	out := make([]float64, len(x))
	for i := range out {
		if x[i] != 0 {
			out[i] = x[i] * y[i]
		}
	}

	return NewF64Value(m.shape, out), nil
}

// read returns the data of each input, all of which must have the
// shape of the receiver
func (m *maskedMulOp) read(inputs ...G.Value) ([][]float64, error) {
	data := make([][]float64, len(inputs))
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("input %v is nil", i)
		} else if !in.Shape().Eq(m.shape) {
			return nil, fmt.Errorf("expected input %v to have shape %v but "+
				"got %v", i, m.shape, in.Shape())
		}

		var err error
		data[i], err = Float64s(in)
		if err != nil {
			return nil, err
		}
	}

	return data, nil
}

// maskedMulDiffOp computes the gradient of a maskedMulOp with respect
// to input wrt
type maskedMulDiffOp struct {
	op  *maskedMulOp
	wrt int
}

func (m *maskedMulDiffOp) Arity() int { return 3 }

func (m *maskedMulDiffOp) Type() hm.Type {
	tt := OutputType(tensor.Float64, len(m.op.shape))
	return hm.NewFnType(tt, tt, tt, tt)
}

func (m *maskedMulDiffOp) InferShape(...G.DimSizer) (tensor.Shape, error) {
	return m.op.shape.Clone(), nil
}

func (m *maskedMulDiffOp) ReturnsPtr() bool { return false }

func (m *maskedMulDiffOp) CallsExtern() bool { return false }

func (m *maskedMulDiffOp) OverwritesInput() int { return -1 }

func (m *maskedMulDiffOp) String() string {
	return fmt.Sprintf("MaskedMulDiff{shape=%v, wrt=%v}()", m.op.shape,
		m.wrt)
}

// WriteHash writes the hash of the receiver to a hash struct
func (m *maskedMulDiffOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, m.String())
}

// Hashcode returns the hash code of the receiver
func (m *maskedMulDiffOp) Hashcode() uint32 { return SimpleHash(m) }

func (m *maskedMulDiffOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(m, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	data, err := m.op.read(inputs...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	x, grad := data[0], data[2]
	other := data[1-m.wrt]

	out := make([]float64, len(x))
	for i := range out {
		if x[i] != 0 {
			out[i] = other[i] * grad[i]
		}
	}

	return NewF64Value(m.op.shape, out), nil
}
