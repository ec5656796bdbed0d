package gordinal

import (
	"fmt"
	"hash"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// cumSumOp computes the cumulative sum along the last axis of a
// float64 tensor. If reverse is set, the sum runs from the end of the
// axis, which is the gradient of the forward cumulative sum.
type cumSumOp struct {
	reverse bool
}

func (c *cumSumOp) Arity() int { return 1 }

func (c *cumSumOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a)
}

func (c *cumSumOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(c, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	return inputs[0].(tensor.Shape).Clone(), nil
}

func (c *cumSumOp) ReturnsPtr() bool { return false }

func (c *cumSumOp) CallsExtern() bool { return false }

func (c *cumSumOp) OverwritesInput() int { return -1 }

func (c *cumSumOp) String() string {
	return fmt.Sprintf("CumSum{reverse=%v}()", c.reverse)
}

func (c *cumSumOp) WriteHash(h hash.Hash) { fmt.Fprint(h, c.String()) }

func (c *cumSumOp) Hashcode() uint32 { return SimpleHash(c) }

func (c *cumSumOp) DiffWRT(inputs int) []bool { return []bool{true} }

func (c *cumSumOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	err := CheckArity(c, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	nodes := make(G.Nodes, 1)
	nodes[0], err = G.ApplyOp(&cumSumOp{reverse: !c.reverse}, grad)

	return nodes, err
}

func (c *cumSumOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(c, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	shape := inputs[0].Shape()
	if len(shape) == 0 {
		return nil, fmt.Errorf("do: cannot take cumulative sum of a scalar")
	}

	in, err := Float64s(inputs[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	last := shape[len(shape)-1]
	out := make([]float64, len(in))
	for row := 0; row < len(in); row += last {
		sum := 0.0
		for k := 0; k < last; k++ {
			j := row + k
			if c.reverse {
				j = row + last - 1 - k
			}
			sum += in[j]
			out[j] = sum
		}
	}

	return NewF64Value(shape, out), nil
}
