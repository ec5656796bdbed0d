package gordinal

import (
	"fmt"
	"math"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Float64s returns the data held by a float64 scalar or tensor value
func Float64s(v G.Value) ([]float64, error) {
	switch t := v.(type) {
	case *G.F64:
		return []float64{float64(*t)}, nil

	case tensor.Tensor:
		switch data := t.Data().(type) {
		case []float64:
			return data, nil
		case float64:
			return []float64{data}, nil
		}
		return nil, fmt.Errorf("expected float64 data but got %v", t.Dtype())
	}

	return nil, fmt.Errorf("expected a float64 value but got %T", v)
}

// Indices returns the data held by a scalar or tensor of category
// indices. Indices may be stored as float64 or int, but a float64
// index must be integral.
func Indices(v G.Value) ([]float64, error) {
	var out []float64
	switch t := v.(type) {
	case *G.F64:
		out = []float64{float64(*t)}

	case *G.I:
		out = []float64{float64(*t)}

	case tensor.Tensor:
		switch data := t.Data().(type) {
		case []float64:
			out = data
		case float64:
			out = []float64{data}
		case []int:
			out = make([]float64, len(data))
			for i := range data {
				out[i] = float64(data[i])
			}
		case int:
			out = []float64{float64(data)}
		default:
			return nil, fmt.Errorf("indices of dtype %v unsupported",
				t.Dtype())
		}

	default:
		return nil, fmt.Errorf("expected indices to be a tensor but got %T", v)
	}

	for _, idx := range out {
		if idx != math.Trunc(idx) {
			return nil, fmt.Errorf("index %v is not an integer", idx)
		}
	}

	return out, nil
}

// NewF64Value wraps data as a Gorgonia value of the given shape. A
// scalar shape produces a *G.F64.
func NewF64Value(shape tensor.Shape, data []float64) G.Value {
	if len(shape) == 0 {
		return G.NewF64(data[0])
	}
	return tensor.NewDense(
		tensor.Float64,
		shape.Clone(),
		tensor.WithBacking(data),
	)
}

// NewIntValue wraps data as a Gorgonia value of the given shape. A
// scalar shape produces a *G.I.
func NewIntValue(shape tensor.Shape, data []int) G.Value {
	if len(shape) == 0 {
		return G.NewI(data[0])
	}
	return tensor.NewDense(
		tensor.Int,
		shape.Clone(),
		tensor.WithBacking(data),
	)
}

// OutputType returns the Gorgonia type of a node with the given
// dtype and number of dimensions.
func OutputType(dt tensor.Dtype, dims int) hm.Type {
	if dims == 0 {
		return dt
	}
	return G.TensorType{Dims: dims, Of: dt}
}
