package distribution

import (
	"fmt"
	"hash"
	"math"

	"github.com/chewxy/hm"
	"github.com/samuelfneumann/gordinal"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// orderedLogProbsOp maps cutpoints of shape (batch_c..., K) and a
// location of shape (batch_l...) to the log-probabilities of the K+1
// ordered categories, with shape (broadcast(batch_c, batch_l)..., K+1).
type orderedLogProbsOp struct {
	cutpointsShape tensor.Shape
	locationShape  tensor.Shape
	batchShape     tensor.Shape
}

func newOrderedLogProbsOp(cutpointsShape,
	locationShape tensor.Shape) (*orderedLogProbsOp, error) {
	if len(cutpointsShape) == 0 {
		return nil, fmt.Errorf("newOrderedLogProbsOp: cutpoints must have " +
			"at least one dimension")
	}

	batch, err := gordinal.BroadcastShapes(
		cutpointsShape[:len(cutpointsShape)-1], locationShape)
	if err != nil {
		return nil, fmt.Errorf("newOrderedLogProbsOp: cutpoints shape %v "+
			"incompatible with location shape %v: %v", cutpointsShape,
			locationShape, err)
	}

	return &orderedLogProbsOp{
		cutpointsShape: cutpointsShape.Clone(),
		locationShape:  locationShape.Clone(),
		batchShape:     batch,
	}, nil
}

func (o *orderedLogProbsOp) numCutpoints() int {
	return o.cutpointsShape[len(o.cutpointsShape)-1]
}

func (o *orderedLogProbsOp) outShape() tensor.Shape {
	out := append(tensor.Shape{}, o.batchShape...)
	return append(out, o.numCutpoints()+1)
}

func (o *orderedLogProbsOp) Arity() int { return 2 }

func (o *orderedLogProbsOp) Type() hm.Type {
	return hm.NewFnType(o.cutpointsType(), o.locationType(), o.outType())
}

func (o *orderedLogProbsOp) cutpointsType() hm.Type {
	return gordinal.OutputType(tensor.Float64, len(o.cutpointsShape))
}

func (o *orderedLogProbsOp) locationType() hm.Type {
	return gordinal.OutputType(tensor.Float64, len(o.locationShape))
}

func (o *orderedLogProbsOp) outType() hm.Type {
	return gordinal.OutputType(tensor.Float64, len(o.batchShape)+1)
}

func (o *orderedLogProbsOp) InferShape(inputs ...G.DimSizer) (tensor.Shape,
	error) {
	err := gordinal.CheckArity(o, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	return o.outShape(), nil
}

func (o *orderedLogProbsOp) ReturnsPtr() bool { return false }

func (o *orderedLogProbsOp) CallsExtern() bool { return false }

func (o *orderedLogProbsOp) OverwritesInput() int { return -1 }

func (o *orderedLogProbsOp) String() string {
	return fmt.Sprintf("OrderedLogProbs{cutpoints=%v, location=%v}()",
		o.cutpointsShape, o.locationShape)
}

func (o *orderedLogProbsOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, o.String())
}

func (o *orderedLogProbsOp) Hashcode() uint32 {
	return gordinal.SimpleHash(o)
}

func (o *orderedLogProbsOp) DiffWRT(inputs int) []bool {
	return []bool{true, true}
}

func (o *orderedLogProbsOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	err := gordinal.CheckArity(o, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	nodes := make(G.Nodes, 2)
	for i := range nodes {
		diffOp := &orderedLogProbsDiffOp{op: o, wrt: i}
		nodes[i], err = G.ApplyOp(diffOp, inputs[0], inputs[1], output, grad)
		if err != nil {
			return nil, fmt.Errorf("symDiff: %v", err)
		}
	}

	return nodes, nil
}

func (o *orderedLogProbsOp) Do(inputs ...G.Value) (G.Value, error) {
	cutpoints, location, b, err := o.prepare(inputs...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	k := o.numCutpoints()
	out := make([]float64, b.Size()*(k+1))
	for i := 0; i < b.Size(); i++ {
		c := b.Index(i, 0) * k
		orderedLogProbsRow(cutpoints[c:c+k], location[b.Index(i, 1)],
			out[i*(k+1):(i+1)*(k+1)])
	}

	return gordinal.NewF64Value(o.outShape(), out), nil
}

// prepare reads the cutpoint and location data and returns a
// Broadcaster from the batch shape onto the cutpoint rows (input 0)
// and the locations (input 1).
func (o *orderedLogProbsOp) prepare(inputs ...G.Value) ([]float64,
	[]float64, *gordinal.Broadcaster, error) {
	if len(inputs) < 2 {
		return nil, nil, nil, fmt.Errorf("expected cutpoints and location "+
			"but got %v inputs", len(inputs))
	}

	if !inputs[0].Shape().Eq(o.cutpointsShape) {
		return nil, nil, nil, fmt.Errorf("expected cutpoints of shape %v "+
			"but got %v", o.cutpointsShape, inputs[0].Shape())
	}
	cutpoints, err := gordinal.Float64s(inputs[0])
	if err != nil {
		return nil, nil, nil, err
	}

	location, err := gordinal.Float64s(inputs[1])
	if err != nil {
		return nil, nil, nil, err
	}
	if len(location) != gordinal.Size(o.locationShape) {
		return nil, nil, nil, fmt.Errorf("expected location of shape %v "+
			"but got %v", o.locationShape, inputs[1].Shape())
	}

	b, err := gordinal.NewBroadcaster(
		o.cutpointsShape[:len(o.cutpointsShape)-1], o.locationShape)
	if err != nil {
		return nil, nil, nil, err
	}

	return cutpoints, location, b, nil
}

// orderedLogProbsRow writes the log-probabilities of the len(c)+1
// categories defined by cutpoints c and location loc into out.
//
// With z_k = c_k - loc, P(Y = k) = σ(z_k) - σ(z_{k-1}), σ(z_{-1}) = 0
// and σ(z_K) = 1. Interior categories use
//
//		σ(a) - σ(b) = σ(a) σ(-b) (1 - exp(b - a))
//
// which stays accurate when both sigmoids saturate.
func orderedLogProbsRow(c []float64, loc float64, out []float64) {
	k := len(c)

	out[0] = logSigmoid(c[0] - loc)
	for j := 1; j < k; j++ {
		hi, lo := c[j]-loc, c[j-1]-loc
		out[j] = logSigmoid(hi) + logSigmoid(-lo) + log1mExp(lo-hi)
	}
	out[k] = logSigmoid(loc - c[k-1])
}

// softplus computes log(1 + exp(x))
func softplus(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// logSigmoid computes log(σ(x))
func logSigmoid(x float64) float64 {
	return -softplus(-x)
}

// log1mExp computes log(1 - exp(x)) for x <= 0
func log1mExp(x float64) float64 {
	if x > -math.Ln2 {
		return math.Log(-math.Expm1(x))
	}
	return math.Log1p(-math.Exp(x))
}

// orderedLogProbsDiffOp computes the gradient of orderedLogProbsOp
// with respect to the cutpoints (wrt = 0) or the location (wrt = 1).
// Gradients are summed over broadcast dimensions.
type orderedLogProbsDiffOp struct {
	op  *orderedLogProbsOp
	wrt int
}

func (o *orderedLogProbsDiffOp) Arity() int { return 4 }

func (o *orderedLogProbsDiffOp) Type() hm.Type {
	cutpoints := o.op.cutpointsType()
	location := o.op.locationType()
	out := o.op.outType()

	if o.wrt == 0 {
		return hm.NewFnType(cutpoints, location, out, out, cutpoints)
	}
	return hm.NewFnType(cutpoints, location, out, out, location)
}

func (o *orderedLogProbsDiffOp) InferShape(inputs ...G.DimSizer) (
	tensor.Shape, error) {
	if o.wrt == 0 {
		return o.op.cutpointsShape.Clone(), nil
	}
	return o.op.locationShape.Clone(), nil
}

func (o *orderedLogProbsDiffOp) ReturnsPtr() bool { return false }

func (o *orderedLogProbsDiffOp) CallsExtern() bool { return false }

func (o *orderedLogProbsDiffOp) OverwritesInput() int { return -1 }

func (o *orderedLogProbsDiffOp) String() string {
	return fmt.Sprintf("OrderedLogProbsDiff{cutpoints=%v, location=%v, "+
		"wrt=%v}()", o.op.cutpointsShape, o.op.locationShape, o.wrt)
}

func (o *orderedLogProbsDiffOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, o.String())
}

func (o *orderedLogProbsDiffOp) Hashcode() uint32 {
	return gordinal.SimpleHash(o)
}

func (o *orderedLogProbsDiffOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := gordinal.CheckArity(o, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	cutpoints, location, b, err := o.op.prepare(inputs...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	logProbs, err := gordinal.Float64s(inputs[2])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	grad, err := gordinal.Float64s(inputs[3])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	if len(grad) != len(logProbs) {
		return nil, fmt.Errorf("do: expected gradient of shape %v but got %v",
			o.op.outShape(), inputs[3].Shape())
	}

	k := o.op.numCutpoints()
	cutpointsGrad := make([]float64, len(cutpoints))
	locationGrad := make([]float64, len(location))

	for i := 0; i < b.Size(); i++ {
		c := b.Index(i, 0) * k
		l := b.Index(i, 1)
		lp := logProbs[i*(k+1) : (i+1)*(k+1)]
		g := grad[i*(k+1) : (i+1)*(k+1)]

		// ∂L/∂z_j = σ'(z_j) (g_j / p_j - g_{j+1} / p_{j+1})
		for j := 0; j < k; j++ {
			z := cutpoints[c+j] - location[l]
			logDeriv := logSigmoid(z) + logSigmoid(-z)

			var dz float64
			if g[j] != 0 {
				dz += g[j] * math.Exp(logDeriv-lp[j])
			}
			if g[j+1] != 0 {
				dz -= g[j+1] * math.Exp(logDeriv-lp[j+1])
			}

			cutpointsGrad[c+j] += dz
			locationGrad[l] -= dz
		}
	}

	if o.wrt == 0 {
		return gordinal.NewF64Value(o.op.cutpointsShape, cutpointsGrad), nil
	}
	return gordinal.NewF64Value(o.op.locationShape, locationGrad), nil
}
