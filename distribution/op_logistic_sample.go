package distribution

import (
	"fmt"
	"hash"
	"math"

	"golang.org/x/exp/rand"

	"github.com/chewxy/hm"
	"github.com/samuelfneumann/gordinal"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

type logisticSampleOp struct {
	dt          tensor.Dtype
	shape       tensor.Shape
	sampleShape tensor.Shape
	seed        uint64
	uniform     distuv.Uniform
}

func newLogisticSampleOp(dt tensor.Dtype, seed uint64, sampleShape []int,
	shape ...int) (*logisticSampleOp, error) {
	if dt != tensor.Float64 {
		return nil, fmt.Errorf("newLogisticSampleOp: dtype %v not supported",
			dt)
	}
	for _, s := range sampleShape {
		if s <= 0 {
			return nil, fmt.Errorf("newLogisticSampleOp: sample shape "+
				"must be positive but got %v", sampleShape)
		}
	}

	return &logisticSampleOp{
		dt:          dt,
		shape:       tensor.Shape(shape).Clone(),
		sampleShape: tensor.Shape(sampleShape).Clone(),
		seed:        seed,
		uniform: distuv.Uniform{
			Min: 0.0,
			Max: 1.0,
			Src: rand.NewSource(seed),
		},
	}, nil
}

func (l *logisticSampleOp) outShape() tensor.Shape {
	out := append(tensor.Shape{}, l.sampleShape...)
	return append(out, l.shape...)
}

func (l *logisticSampleOp) Arity() int { return 2 }

func (l *logisticSampleOp) Type() hm.Type {
	param := gordinal.OutputType(l.dt, len(l.shape))
	return hm.NewFnType(param, param,
		gordinal.OutputType(l.dt, len(l.outShape())))
}

func (l *logisticSampleOp) InferShape(...G.DimSizer) (tensor.Shape, error) {
	return l.outShape(), nil
}

func (l *logisticSampleOp) ReturnsPtr() bool { return false }

func (l *logisticSampleOp) CallsExtern() bool { return false }

func (l *logisticSampleOp) OverwritesInput() int { return -1 }

func (l *logisticSampleOp) String() string {
	return fmt.Sprintf("LogisticSample{shape=%v, samples=%v, seed=%v}()",
		l.shape, l.sampleShape, l.seed)
}

func (l *logisticSampleOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, l.String())
}

func (l *logisticSampleOp) Hashcode() uint32 {
	return gordinal.SimpleHash(l)
}

// DiffWRT reports that samples carry no gradient to loc or scale.
// Reparameterized samples are built from a standard logistic draw
// instead, see Logistic.Rsample.
func (l *logisticSampleOp) DiffWRT(inputs int) []bool {
	return make([]bool, inputs)
}

func (l *logisticSampleOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	return nil, fmt.Errorf("symDiff: %v is not differentiable", l)
}

func (l *logisticSampleOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := l.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	loc, err := gordinal.Float64s(inputs[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	scale, err := gordinal.Float64s(inputs[1])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	samples := gordinal.Size(l.sampleShape)
	out := make([]float64, samples*len(loc))
	for i := range out {
		// Inverse transform sampling: the quantile of a uniform draw
		u := l.uniform.Rand()
		for u == 0 {
			u = l.uniform.Rand()
		}

		j := i % len(loc)
		out[i] = loc[j] + scale[j]*(math.Log(u)-math.Log1p(-u))
	}

	return gordinal.NewF64Value(l.outShape(), out), nil
}

func (l *logisticSampleOp) checkInputs(inputs ...G.Value) error {
	if err := gordinal.CheckArity(l, len(inputs)); err != nil {
		return err
	}

	loc := inputs[0]
	if loc == nil {
		return fmt.Errorf("cannot sample from nil loc")
	} else if !loc.Shape().Eq(l.shape) {
		return fmt.Errorf("expected loc to have shape %v but got %v",
			l.shape, loc.Shape())
	} else if !loc.Dtype().Eq(l.dt) {
		return fmt.Errorf("expected loc to have dtype %v but got %v",
			l.dt, loc.Dtype())
	}

	scale := inputs[1]
	if scale == nil {
		return fmt.Errorf("cannot sample from nil scale")
	} else if !scale.Shape().Eq(l.shape) {
		return fmt.Errorf("expected scale to have shape %v but got %v",
			l.shape, scale.Shape())
	} else if !scale.Dtype().Eq(l.dt) {
		return fmt.Errorf("expected scale to have dtype %v but got %v",
			l.dt, scale.Dtype())
	}

	return nil
}
