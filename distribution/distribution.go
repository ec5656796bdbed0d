// Package distribution provides probability distributions built on
// Gorgonia computational graphs. Every method returns graph nodes,
// so values are only available once the graph has been run, and
// parameters may be differentiated through.
//
// A distribution has a batch shape and an event shape. The batch
// shape indexes independent, possibly differently parameterized,
// distributions held by a single value. The event shape is the shape
// of one draw from one of those distributions.
package distribution

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Quantiler is a Distribution that can return the inverse of the CDF
// function, sometimes called the quantile function.
type Quantiler interface {
	Distribution
	Quantile(*G.Node) (*G.Node, error)
}

// Moder is a Distribution with a most likely value
type Moder interface {
	Distribution

	// Mode returns the value with the highest probability mass or
	// density for each distribution in the batch.
	Mode() (*G.Node, error)
}

// Distribution is a probability distribution
type Distribution interface {
	// BatchShape returns the shape of the batch of distributions
	// held by the receiver.
	BatchShape() tensor.Shape

	// EventShape returns the shape of a single draw from a single
	// distribution in the batch.
	EventShape() tensor.Shape

	// Cdf returns the cumulative probability density of mass
	// of the node. The shape of the node must be broadcastable
	// with the batch shape of the distribution; leading dimensions
	// beyond the batch shape are treated as sample dimensions.
	Cdf(*G.Node) (*G.Node, error)

	// Entropy returns the entropy of each distribution in the batch
	Entropy() (*G.Node, error)

	// LogProb returns the log of the probability density of
	// mass of the node. The node is interpreted in the same way as
	// by Cdf.
	LogProb(*G.Node) (*G.Node, error)

	// Prob returns the probability density or mass of the
	// node. The node is interpreted in the same way as by Cdf.
	Prob(*G.Node) (*G.Node, error)

	// Sample returns a node that generates samples from the
	// distribution each time the graph is run. The returned node
	// has shape (shape..., batch shape...). This function is not
	// differentiable.
	Sample(shape ...int) (*G.Node, error)
}

// Continuous is a Distribution over the real line with moments and,
// possibly, reparameterized samples.
type Continuous interface {
	Distribution

	Mean() *G.Node
	StdDev() *G.Node
	Variance() *G.Node

	// Rsample returns a node that generates reparameterized samples
	// from some distribution each time the node is passed. This
	// function is differentiable.
	Rsample(samples int) (*G.Node, error)

	// Returns whether the distribution has reparameterized samples or
	// not
	HasRsample() bool
}
