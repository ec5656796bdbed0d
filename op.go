// Package gordinal provides Gorgonia operations for working with
// categorical and ordinal data: gathering along the category axis,
// cumulative sums, normalization of logits, masked products, and
// argmax.
package gordinal

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Clamp clamps a node's values to be between min and max. This function
// can clamp a tensor storing float64's, float32's, or any integer
// type, but is only differentiable if the tensor stores floating point
// types. If passGradient is true, then the gradient is passed through
// the clamping operation:
//
//		grad = 1
//
// Otherwise, the regular clamp gradient is used:
//
//		       { 1 if min <= x <= max
//		grad = {
//		       { 0 otherwise
func Clamp(x *G.Node, min, max interface{}, passGradient bool) (*G.Node,
	error) {
	op, err := newClampOp(min, max, passGradient)
	if err != nil {
		return nil, fmt.Errorf("clamp: %v", err)
	}

	return G.ApplyOp(op, x)
}

// Take selects one element from the last axis of params for each
// element of indices. If params has shape (b_1, ..., b_N, C), then
// indices must be broadcastable with (b_1, ..., b_N) and the output
// has the broadcast shape. For example, with params of shape (3, 4)
// and indices of shape (5, 3), the output has shape (5, 3) and
//
//		out[i, j] = params[j, indices[i, j]]
//
// Indices may be stored as float64 or int, but must be integral.
// Indices below 0 produce below and indices of C or more produce
// above. Take is differentiable with respect to params only.
func Take(params, indices *G.Node, below, above float64) (*G.Node, error) {
	if params.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("take: params of dtype %v unsupported",
			params.Dtype())
	}

	op, err := newTakeOp(params.Shape(), indices.Shape(), indices.Dtype(),
		below, above)
	if err != nil {
		return nil, fmt.Errorf("take: %v", err)
	}

	return G.ApplyOp(op, params, indices)
}

// MaskedMul returns the element-wise product x ⊙ y, except that the
// product is 0 wherever x is 0, even if y is infinite or NaN. With y
// = log(q), this computes x log(q) under the convention 0 log(0) = 0.
// The gradients are masked in the same way. x and y must be float64
// and have the same shape.
func MaskedMul(x, y *G.Node) (*G.Node, error) {
	if x.Dtype() != tensor.Float64 || y.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("maskedMul: expected float64 inputs but got "+
			"%v and %v", x.Dtype(), y.Dtype())
	}

	op, err := newMaskedMulOp(x.Shape(), y.Shape())
	if err != nil {
		return nil, fmt.Errorf("maskedMul: %v", err)
	}

	return G.ApplyOp(op, x, y)
}

// CumSum computes the cumulative sum of x along its last axis
func CumSum(x *G.Node) (*G.Node, error) {
	if x.IsScalar() {
		return nil, fmt.Errorf("cumSum: cannot take cumulative sum of scalar")
	}

	return G.ApplyOp(&cumSumOp{}, x)
}

// LogSoftmax normalizes x along its last axis, returning
// x - log(Σ exp(x)). The result holds log-probabilities.
func LogSoftmax(x *G.Node) (*G.Node, error) {
	if x.IsScalar() {
		return nil, fmt.Errorf("logSoftmax: cannot normalize a scalar")
	}

	return G.ApplyOp(&logSoftmaxOp{}, x)
}

// Argmax returns the index of the maximum element along the last axis
// of x. Ties resolve to the first index. The output stores tensor.Int
// values and is not differentiable.
func Argmax(x *G.Node) (*G.Node, error) {
	if x.IsScalar() {
		return nil, fmt.Errorf("argmax: cannot take argmax of scalar")
	}

	return G.ApplyOp(newArgmaxOp(x.Dtype(), x.Dims()), x)
}
