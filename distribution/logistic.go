package distribution

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/gordinal"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Logistic is a univariate logistic distribution, which may hold
// a batch of logistic distributions simultaneously. If a Logistic is
// created with a tensor location and tensor scale, then each element
// of the location and scale defines a different distribution
// element-wise:
//
//		loc   := [μ_1, μ_2, ..., μ_N]
//		scale := [s_1, s_2, ..., s_N]
//
// Then the Logistic is considered to hold the following distributions:
//
//		[Logistic(μ_1, s_1), Logistic(μ_2, s_2), ..., Logistic(μ_N, s_N)]
//
// If the location and scale are scalars, the Logistic holds a single
// distribution with batch shape (1). Inputs of any shape are then
// evaluated element-wise, and outputs have the shape of the input.
//
// Any input to any method of the Logistic must have a shape that is
// consistent with the shape of the Logistic. That is, the input must
// have the exact same shape as the Logistic, except for possibly the
// batch dimension, which is dimension 0 always. If a batch dimension
// is present, then the method will be run on each sample in the batch.
// Given a Logistic with shape (n_1, n_2, ..., n_M), the following are
// legal shapes for an input:
//
// 1. (n_1, n_2, ..., n_M)
// 2. (a, n_1, n_2, ..., n_M) for ∀a ∈ ℕ-{0}
//
// The OrderedLogistic is a Logistic with unit scale observed only
// through the interval between cutpoints that it falls into.
//
// Logistic supports the following data types:
// - tensor.Float64
type Logistic struct {
	loc   *G.Node
	scale *G.Node

	// Set only when the Logistic was created from scalars
	scalarLoc   *G.Node
	scalarScale *G.Node

	zeroLoc   *G.Node
	unitScale *G.Node

	seed uint64
}

// NewLogistic returns a new Logistic.
func NewLogistic(loc, scale *G.Node, seed uint64) (*Logistic, error) {
	if !loc.Shape().Eq(scale.Shape()) {
		return nil, fmt.Errorf("newLogistic: expected loc and scale to "+
			"have the same shape but got %v and %v", loc.Shape(),
			scale.Shape())
	}

	if loc.Dtype() != scale.Dtype() {
		return nil, fmt.Errorf("newLogistic: expected loc and scale to "+
			"have the same data type but got %v and %v", loc.Dtype(),
			scale.Dtype())
	} else if loc.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newLogistic: data type %v unsupported",
			loc.Dtype())
	}

	l := &Logistic{
		loc:   loc,
		scale: scale,
		seed:  seed,
	}

	if loc.IsScalar() {
		var err error
		l.scalarLoc, l.scalarScale = loc, scale
		l.loc, err = G.Reshape(loc, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newLogistic: could not expand loc to "+
				"shape (1): %v", err)
		}
		l.scale, err = G.Reshape(scale, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newLogistic: could not expand scale to "+
				"shape (1): %v", err)
		}
	}

	return l, nil
}

// BatchShape returns the number of distributions stored by the
// receiver
func (l *Logistic) BatchShape() tensor.Shape {
	return l.loc.Shape().Clone()
}

// EventShape returns the shape of a single sample, which is scalar
func (l *Logistic) EventShape() tensor.Shape {
	return tensor.ScalarShape()
}

type binaryFn func(a, b *G.Node) (*G.Node, error)

type broadcastFn func(a, b *G.Node, left, right []byte) (*G.Node, error)

// withLoc combines x with the location using op, or bop if x is a
// batch of inputs
func (l *Logistic) withLoc(x *G.Node, op binaryFn,
	bop broadcastFn) (*G.Node, error) {
	return l.combine(x, l.loc, l.scalarLoc, op, bop)
}

// combine combines x with param, a distribution parameter or some
// function of it, using op, or bop if x is a batch of inputs. If the
// receiver was created from scalars, scalarParam must be the same
// function of the scalar parameter.
func (l *Logistic) combine(x, param, scalarParam *G.Node, op binaryFn,
	bop broadcastFn) (*G.Node, error) {
	if l.isScalar() {
		return op(x, scalarParam)
	} else if l.isBatch(x) {
		return bop(x, param, nil, []byte{0})
	}
	return op(x, param)
}

// standardize computes (x - μ) / s
func (l *Logistic) standardize(x *G.Node) *G.Node {
	x = G.Must(l.withLoc(x, G.Sub, G.BroadcastSub))
	return G.Must(l.combine(x, l.scale, l.scalarScale, G.HadamardDiv,
		G.BroadcastHadamardDiv))
}

// Prob calculates the probability density of x,
//
//		p(x) = σ(z) σ(-z) / s,		z = (x - μ) / s
//
// If the receiver's location and scale are scalars, then x may have
// any shape and the density is computed element-wise.
func (l *Logistic) Prob(x *G.Node) (*G.Node, error) {
	if err := l.checkShape(x); err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}

	z := l.standardize(x)
	prob := G.Must(G.HadamardProd(
		G.Must(G.Sigmoid(z)),
		G.Must(G.Sigmoid(G.Must(G.Neg(z)))),
	))

	return l.combine(prob, l.scale, l.scalarScale, G.HadamardDiv,
		G.BroadcastHadamardDiv)
}

// LogProb calculates the log probability of x,
//
//		log p(x) = -softplus(z) - softplus(-z) - log(s)
//
// The shape of x is treated in the same way as the Prob() method.
func (l *Logistic) LogProb(x *G.Node) (*G.Node, error) {
	if err := l.checkShape(x); err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	z := l.standardize(x)
	logProb := G.Must(G.Add(
		G.Must(G.Softplus(z)),
		G.Must(G.Softplus(G.Must(G.Neg(z)))),
	))
	logProb = G.Must(G.Neg(logProb))

	lnScale := G.Must(G.Log(l.scale))
	var scalarLnScale *G.Node
	if l.isScalar() {
		scalarLnScale = G.Must(G.Log(l.scalarScale))
	}
	return l.combine(logProb, lnScale, scalarLnScale, G.Sub, G.BroadcastSub)
}

// Cdf computes the cumulative distribution function of x, σ(z). The
// shape of x is treated in the same way as the Prob() method.
func (l *Logistic) Cdf(x *G.Node) (*G.Node, error) {
	if err := l.checkShape(x); err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}

	return G.Sigmoid(l.standardize(x))
}

// Quantile computes the inverse cumulative distribution function at
// probability p,
//
//		μ + s log(p / (1 - p))
//
// The shape of p is treated in the same way as the Prob() method.
func (l *Logistic) Quantile(p *G.Node) (*G.Node, error) {
	if err := l.checkShape(p); err != nil {
		return nil, fmt.Errorf("quantile: %v", err)
	}

	one := p.Graph().Constant(G.NewF64(1.0))
	logit := G.Must(G.Sub(
		G.Must(G.Log(p)),
		G.Must(G.Log(G.Must(G.Sub(one, p)))),
	))

	logit = G.Must(l.combine(logit, l.scale, l.scalarScale, G.HadamardProd,
		G.BroadcastHadamardProd))
	return l.withLoc(logit, G.Add, G.BroadcastAdd)
}

// Variance returns the variance, s²π²/3, of the distribution(s)
// stored by the receiver
func (l *Logistic) Variance() *G.Node {
	two := l.loc.Graph().Constant(G.NewF64(2.0))
	piSquaredOverThree := l.loc.Graph().Constant(G.NewF64(math.Pi *
		math.Pi / 3.0))

	variance := G.Must(G.Pow(l.scale, two))
	return G.Must(G.HadamardProd(piSquaredOverThree, variance))
}

// StdDev returns the standard deviation, sπ/√3, of the
// distribution(s) stored by the receiver
func (l *Logistic) StdDev() *G.Node {
	piOverRootThree := l.loc.Graph().Constant(G.NewF64(math.Pi /
		math.Sqrt(3.0)))
	return G.Must(G.HadamardProd(piOverRootThree, l.scale))
}

// Mean returns the mean of the distribution(s) stored by the
// receiver
func (l *Logistic) Mean() *G.Node {
	return l.loc
}

// Entropy returns the entropy, log(s) + 2, of the distribution(s)
// stored by the receiver
func (l *Logistic) Entropy() (*G.Node, error) {
	two := l.loc.Graph().Constant(G.NewF64(2.0))

	entropy, err := G.Log(l.scale)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}
	return G.Add(entropy, two)
}

func (l *Logistic) HasRsample() bool { return true }

// Rsample returns reparameterized samples μ + s ε, where ε is drawn
// from the standard logistic distribution each time the graph is
// run. The output has shape (samples, n_1, ..., n_M) and is
// differentiable with respect to the location and scale.
func (l *Logistic) Rsample(samples int) (*G.Node, error) {
	if l.zeroLoc == nil || l.unitScale == nil {
		// Lazy instantiation of zero location and unit scale
		size := gordinal.Size(l.loc.Shape())

		zeroLoc := tensor.NewDense(
			tensor.Float64,
			l.loc.Shape().Clone(),
			tensor.WithBacking(make([]float64, size)),
		)
		l.zeroLoc = G.NewTensor(
			l.loc.Graph(),
			zeroLoc.Dtype(),
			zeroLoc.Dims(),
			G.WithShape(zeroLoc.Shape()...),
			G.WithValue(zeroLoc),
			G.WithName(gordinal.Unique("zeroLoc")),
		)

		unitScale := tensor.NewDense(
			tensor.Float64,
			l.scale.Shape().Clone(),
			tensor.WithBacking(ones64(size)),
		)
		l.unitScale = G.NewTensor(
			l.scale.Graph(),
			unitScale.Dtype(),
			unitScale.Dims(),
			G.WithShape(unitScale.Shape()...),
			G.WithValue(unitScale),
			G.WithName(gordinal.Unique("unitScale")),
		)
	}

	noise, err := LogisticRand(l.zeroLoc, l.unitScale, l.seed, samples)
	if err != nil {
		return nil, fmt.Errorf("rsample: %v", err)
	}

	// Reparameterization trick
	batchDim := []byte{0}
	out := G.Must(G.BroadcastHadamardProd(noise, l.scale, nil, batchDim))
	return G.BroadcastAdd(out, l.loc, nil, batchDim)
}

// Sample returns a node that generates samples each time the graph is
// run. The output has shape (shape..., n_1, ..., n_M).
func (l *Logistic) Sample(shape ...int) (*G.Node, error) {
	return LogisticRand(l.loc, l.scale, l.seed, shape...)
}

// isScalar returns whether the receiver was created from a scalar
// location and scale
func (l *Logistic) isScalar() bool {
	return l.scalarLoc != nil
}

// isBatch returns whether x is a batch of samples to calculate some
// method on
func (l *Logistic) isBatch(x *G.Node) bool {
	return !x.Shape().Eq(l.loc.Shape())
}

// checkShape returns an error if x is of a shape that cannot be used
// in some method. x must never be reshaped here: a reshaped view
// shares its backing with x.
func (l *Logistic) checkShape(x *G.Node) error {
	if l.isScalar() {
		return nil
	} else if l.isBatch(x) && (len(x.Shape()) == 0 ||
		!tensor.Shape(x.Shape()[1:]).Eq(l.BatchShape())) {
		msg := "expected shape to match distribution shape %v at all " +
			"dimensions except batch (dim 0) but got x shape %v"
		return fmt.Errorf(msg, l.BatchShape(), x.Shape())
	}

	return nil
}
