package distribution

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/gordinal"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Categorical is a categorical distribution over the integers
// {0, 1, ..., C-1}, which may hold a batch of categorical
// distributions simultaneously. The distribution is parameterized by
// logits, unnormalized log-probabilities, along the last axis of a
// tensor. For example, logits of shape (3, 2, 5) define a batch of
// shape (3, 2) of distributions over 5 categories each.
//
// Inputs to LogProb, Prob, and Cdf hold category indices, stored as
// either float64 or int values. Their shape must be broadcastable
// with the batch shape; extra leading dimensions are treated as
// sample dimensions. Given a Categorical with batch shape
// (n_1, ..., n_M), the following are legal shapes for an input:
//
// 1. (n_1, n_2, ..., n_M)
// 2. (a_1, ..., a_K, n_1, n_2, ..., n_M) for ∀a_i ∈ ℕ-{0}
// 3. any shape which broadcasts with (n_1, n_2, ..., n_M)
//
// Categorical supports the following data types:
// - tensor.Float64
type Categorical struct {
	logProbs *G.Node
	seed     uint64
}

// NewCategorical returns a new Categorical with the given logits.
// Samples are drawn from a source seeded by seed.
func NewCategorical(logits *G.Node, seed uint64) (*Categorical, error) {
	if logits.IsScalar() {
		return nil, fmt.Errorf("newCategorical: logits must have at least " +
			"one dimension")
	} else if logits.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newCategorical: data type %v unsupported",
			logits.Dtype())
	}

	logProbs, err := gordinal.LogSoftmax(logits)
	if err != nil {
		return nil, fmt.Errorf("newCategorical: could not normalize "+
			"logits: %v", err)
	}

	return newCategorical(logProbs, seed), nil
}

// newCategorical returns a Categorical with already normalized
// log-probabilities
func newCategorical(logProbs *G.Node, seed uint64) *Categorical {
	return &Categorical{
		logProbs: logProbs,
		seed:     seed,
	}
}

// BatchShape returns the shape of the batch of distributions held
// by the receiver
func (c *Categorical) BatchShape() tensor.Shape {
	shape := c.logProbs.Shape()
	return shape[:len(shape)-1].Clone()
}

// EventShape returns the shape of a single sample, which is scalar
func (c *Categorical) EventShape() tensor.Shape {
	return tensor.ScalarShape()
}

// Categories returns the number of categories of each distribution
func (c *Categorical) Categories() int {
	shape := c.logProbs.Shape()
	return shape[len(shape)-1]
}

// LogProbs returns the normalized log-probabilities of each category,
// with shape (batch..., C).
func (c *Categorical) LogProbs() *G.Node {
	return c.logProbs
}

// Probs returns the probability of each category, with shape
// (batch..., C).
func (c *Categorical) Probs() (*G.Node, error) {
	return G.Exp(c.logProbs)
}

// LogProb returns the log-probability of the categories in x.
// Categories outside {0, ..., C-1} have log-probability -∞.
func (c *Categorical) LogProb(x *G.Node) (*G.Node, error) {
	logProb, err := gordinal.Take(c.logProbs, x, math.Inf(-1), math.Inf(-1))
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	return logProb, nil
}

// Prob returns the probability of the categories in x
func (c *Categorical) Prob(x *G.Node) (*G.Node, error) {
	logProb, err := c.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}

	return G.Exp(logProb)
}

// Cdf returns P(X <= x) for the categories in x. The Cdf is 0 below
// the first category and 1 from the last category onward.
func (c *Categorical) Cdf(x *G.Node) (*G.Node, error) {
	probs, err := c.Probs()
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}

	cumulative, err := gordinal.CumSum(probs)
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}

	cdf, err := gordinal.Take(cumulative, x, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}

	return cdf, nil
}

// Mode returns the most likely category of each distribution in the
// batch as tensor.Int values. Ties resolve to the smallest category.
func (c *Categorical) Mode() (*G.Node, error) {
	mode, err := gordinal.Argmax(c.logProbs)
	if err != nil {
		return nil, fmt.Errorf("mode: %v", err)
	}

	return mode, nil
}

// Entropy returns the entropy, -Σ p log(p), of each distribution in
// the batch. Categories with zero probability contribute nothing.
func (c *Categorical) Entropy() (*G.Node, error) {
	probs, err := c.Probs()
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	logProbs, err := finiteLogProbs(c.logProbs)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	entropy := G.Must(G.HadamardProd(probs, logProbs))
	entropy = G.Must(G.Sum(entropy, entropy.Dims()-1))
	return G.Neg(entropy)
}

// Sample returns a node that draws category indices, as tensor.Int
// values, each time the graph is run. The output has shape
// (shape..., batch...).
func (c *Categorical) Sample(shape ...int) (*G.Node, error) {
	return CategoricalRand(c.logProbs, c.seed, shape...)
}

// finiteLogProbs clamps log-probabilities to be finite so that
// zero-probability categories produce 0 rather than NaN when
// multiplied by their probability
func finiteLogProbs(logProbs *G.Node) (*G.Node, error) {
	return gordinal.Clamp(logProbs, -math.MaxFloat64, 0.0, false)
}
