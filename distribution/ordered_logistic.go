package distribution

import (
	"fmt"

	"github.com/samuelfneumann/gordinal"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// OrderedLogistic is an ordinal distribution over the integers
// {0, 1, ..., K} defined by K non-decreasing cutpoints c and a
// location μ. It is the distribution of the interval into which a
// latent logistic variable with location μ and unit scale falls:
//
//		P(Y = 0) = σ(c_0 - μ)
//		P(Y = k) = σ(c_k - μ) - σ(c_{k-1} - μ)		0 < k < K
//		P(Y = K) = 1 - σ(c_{K-1} - μ)
//
// where σ is the logistic sigmoid.
//
// The cutpoints are read along the last axis of their tensor, and any
// leading axes, together with the axes of the location, broadcast to
// form the batch shape. For example, cutpoints of shape (2, 1, 3)
// and location of shape (4,) give a batch of shape (2, 4) of
// distributions over {0, 1, 2, 3}. A scalar location is allowed.
//
// The OrderedLogistic is evaluated as the categorical distribution
// with the probabilities above, and inputs to its methods follow the
// same conventions as those of a Categorical.
//
// OrderedLogistic supports the following data types:
// - tensor.Float64
type OrderedLogistic struct {
	cutpoints *G.Node
	location  *G.Node

	batchShape  tensor.Shape
	categorical *Categorical
}

// NewOrderedLogistic returns a new OrderedLogistic. Samples are drawn
// from a source seeded by seed.
//
// If validateArgs is true, the cutpoints are checked to be
// non-decreasing. A cutpoint node that already holds a value is
// checked immediately; in every case the check is also added to the
// graph, so that running the graph with decreasing cutpoints fails.
// In both cases the error wraps ErrUnorderedCutpoints.
func NewOrderedLogistic(cutpoints, location *G.Node, seed uint64,
	validateArgs bool) (*OrderedLogistic, error) {
	if cutpoints.IsScalar() {
		return nil, fmt.Errorf("newOrderedLogistic: cutpoints must have " +
			"at least one dimension")
	}

	if cutpoints.Dtype() != location.Dtype() {
		return nil, fmt.Errorf("newOrderedLogistic: expected cutpoints and "+
			"location to have the same data type but got %v and %v",
			cutpoints.Dtype(), location.Dtype())
	} else if cutpoints.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newOrderedLogistic: data type %v unsupported",
			cutpoints.Dtype())
	}

	cutpointsShape := cutpoints.Shape()
	batchShape, err := gordinal.BroadcastShapes(
		cutpointsShape[:len(cutpointsShape)-1], location.Shape())
	if err != nil {
		return nil, fmt.Errorf("newOrderedLogistic: cutpoints shape %v and "+
			"location shape %v do not broadcast: %v", cutpointsShape,
			location.Shape(), err)
	}

	if validateArgs {
		if v := cutpoints.Value(); v != nil {
			if err := checkNonDecreasing(v); err != nil {
				return nil, fmt.Errorf("newOrderedLogistic: %w", err)
			}
		}

		cutpoints, err = assertNonDecreasing(cutpoints)
		if err != nil {
			return nil, fmt.Errorf("newOrderedLogistic: %v", err)
		}
	}

	logProbs, err := orderedLogProbs(cutpoints, location)
	if err != nil {
		return nil, fmt.Errorf("newOrderedLogistic: %v", err)
	}

	return &OrderedLogistic{
		cutpoints:   cutpoints,
		location:    location,
		batchShape:  batchShape,
		categorical: newCategorical(logProbs, seed),
	}, nil
}

// Cutpoints returns the cutpoints of the receiver
func (o *OrderedLogistic) Cutpoints() *G.Node { return o.cutpoints }

// Location returns the location of the receiver
func (o *OrderedLogistic) Location() *G.Node { return o.location }

// BatchShape returns the broadcast shape of the leading cutpoint axes
// and the location
func (o *OrderedLogistic) BatchShape() tensor.Shape {
	return o.batchShape.Clone()
}

// EventShape returns the shape of a single sample, which is scalar
func (o *OrderedLogistic) EventShape() tensor.Shape {
	return tensor.ScalarShape()
}

// Categorical returns the Categorical distribution equivalent to the
// receiver
func (o *OrderedLogistic) Categorical() *Categorical {
	return o.categorical
}

// CategoricalLogProbs returns the log-probability of each of the K+1
// categories, with shape (batch..., K+1)
func (o *OrderedLogistic) CategoricalLogProbs() *G.Node {
	return o.categorical.LogProbs()
}

// CategoricalProbs returns the probability of each of the K+1
// categories, with shape (batch..., K+1)
func (o *OrderedLogistic) CategoricalProbs() (*G.Node, error) {
	return o.categorical.Probs()
}

// LogProb returns the log-probability of the categories in x
func (o *OrderedLogistic) LogProb(x *G.Node) (*G.Node, error) {
	return o.categorical.LogProb(x)
}

// Prob returns the probability of the categories in x
func (o *OrderedLogistic) Prob(x *G.Node) (*G.Node, error) {
	return o.categorical.Prob(x)
}

// Cdf returns P(Y <= x) for the categories in x. For 0 <= x < K this
// equals the cdf of the latent logistic variable at cutpoint c_x.
func (o *OrderedLogistic) Cdf(x *G.Node) (*G.Node, error) {
	return o.categorical.Cdf(x)
}

// Mode returns the most likely category of each distribution in the
// batch as tensor.Int values
func (o *OrderedLogistic) Mode() (*G.Node, error) {
	return o.categorical.Mode()
}

// Entropy returns the entropy of each distribution in the batch
func (o *OrderedLogistic) Entropy() (*G.Node, error) {
	return o.categorical.Entropy()
}

// Sample returns a node that draws categories, as tensor.Int values,
// each time the graph is run. The output has shape
// (shape..., batch...).
func (o *OrderedLogistic) Sample(shape ...int) (*G.Node, error) {
	return o.categorical.Sample(shape...)
}
