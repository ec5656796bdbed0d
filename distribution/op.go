package distribution

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// CategoricalRand returns a node that draws category indices from the
// categorical distributions with log-probabilities logProbs along
// their last axis. The output has shape (shape..., batch...) where
// batch is the shape of logProbs without its last axis.
func CategoricalRand(logProbs *G.Node, seed uint64, shape ...int) (*G.Node,
	error) {
	if logProbs.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("categoricalRand: log-probabilities of "+
			"dtype %v unsupported", logProbs.Dtype())
	}

	c, err := newCategoricalSampleOp(logProbs.Shape(), seed, shape...)
	if err != nil {
		return nil, fmt.Errorf("categoricalRand: %v", err)
	}

	return G.ApplyOp(c, logProbs)
}

// LogisticRand returns a node that draws samples from the logistic
// distributions with locations loc and scales scale.
func LogisticRand(loc, scale *G.Node, seed uint64,
	shape ...int) (*G.Node, error) {
	if loc.Dtype() != scale.Dtype() {
		return nil, fmt.Errorf("logisticRand: loc and scale should have "+
			"same dtype but got %v and %v", loc.Dtype(), scale.Dtype())
	}

	if !loc.Shape().Eq(scale.Shape()) {
		return nil, fmt.Errorf("logisticRand: loc and scale should have "+
			"same shape but got %v and %v", loc.Shape(), scale.Shape())
	}

	l, err := newLogisticSampleOp(loc.Dtype(), seed, shape, loc.Shape()...)
	if err != nil {
		return nil, fmt.Errorf("logisticRand: %v", err)
	}

	return G.ApplyOp(l, loc, scale)
}

// orderedLogProbs returns the log-probabilities of the categorical
// distributions that the ordered logistic distributions with the
// given cutpoints and location are equivalent to.
func orderedLogProbs(cutpoints, location *G.Node) (*G.Node, error) {
	if cutpoints.Dtype() != tensor.Float64 ||
		location.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("orderedLogProbs: expected float64 cutpoints "+
			"and location but got %v and %v", cutpoints.Dtype(),
			location.Dtype())
	}

	o, err := newOrderedLogProbsOp(cutpoints.Shape(), location.Shape())
	if err != nil {
		return nil, fmt.Errorf("orderedLogProbs: %v", err)
	}

	return G.ApplyOp(o, cutpoints, location)
}

// assertNonDecreasing returns a node equal to cutpoints that fails
// the graph run if the cutpoints decrease along their last axis.
func assertNonDecreasing(cutpoints *G.Node) (*G.Node, error) {
	if cutpoints.IsScalar() {
		return nil, fmt.Errorf("assertNonDecreasing: cutpoints must have " +
			"at least one dimension")
	}

	return G.ApplyOp(&assertNonDecreasingOp{cutpoints.Shape().Clone()},
		cutpoints)
}
