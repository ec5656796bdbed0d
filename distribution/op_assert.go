package distribution

import (
	"fmt"
	"hash"

	"github.com/chewxy/hm"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/gordinal"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// assertNonDecreasingOp passes its input through unchanged, failing
// if the input decreases anywhere along its last axis.
type assertNonDecreasingOp struct {
	shape tensor.Shape
}

func (a *assertNonDecreasingOp) Arity() int { return 1 }

func (a *assertNonDecreasingOp) Type() hm.Type {
	t := hm.TypeVariable('a')
	return hm.NewFnType(t, t)
}

func (a *assertNonDecreasingOp) InferShape(...G.DimSizer) (tensor.Shape,
	error) {
	return a.shape.Clone(), nil
}

func (a *assertNonDecreasingOp) ReturnsPtr() bool { return false }

func (a *assertNonDecreasingOp) CallsExtern() bool { return false }

func (a *assertNonDecreasingOp) OverwritesInput() int { return -1 }

func (a *assertNonDecreasingOp) String() string {
	return fmt.Sprintf("AssertNonDecreasing{shape=%v}()", a.shape)
}

func (a *assertNonDecreasingOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, a.String())
}

func (a *assertNonDecreasingOp) Hashcode() uint32 {
	return gordinal.SimpleHash(a)
}

func (a *assertNonDecreasingOp) DiffWRT(inputs int) []bool {
	return []bool{true}
}

func (a *assertNonDecreasingOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	return G.Nodes{grad}, nil
}

func (a *assertNonDecreasingOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := gordinal.CheckArity(a, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	if err := checkNonDecreasing(inputs[0]); err != nil {
		return nil, err
	}

	data, err := gordinal.Float64s(inputs[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	out := make([]float64, len(data))
	copy(out, data)

	return gordinal.NewF64Value(a.shape, out), nil
}

// checkNonDecreasing returns ErrUnorderedCutpoints if v decreases
// along its last axis
func checkNonDecreasing(v G.Value) error {
	shape := v.Shape()
	if len(shape) == 0 {
		return fmt.Errorf("cutpoints must have at least one dimension")
	}

	data, err := gordinal.Float64s(v)
	if err != nil {
		return err
	}

	last := shape[len(shape)-1]
	for row := 0; row < len(data); row += last {
		for k := row + 1; k < row+last; k++ {
			if data[k] < data[k-1] {
				return errors.Wrapf(ErrUnorderedCutpoints,
					"cutpoint %v at index %v follows %v", data[k], k-row,
					data[k-1])
			}
		}
	}

	return nil
}
