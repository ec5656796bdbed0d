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

// categoricalSampleOp draws category indices from a batch of
// categorical distributions given by log-probabilities along the last
// axis of its input.
type categoricalSampleOp struct {
	logProbsShape tensor.Shape
	sampleShape   tensor.Shape
	seed          uint64
	source        rand.Source
}

func newCategoricalSampleOp(logProbsShape tensor.Shape, seed uint64,
	sampleShape ...int) (*categoricalSampleOp, error) {
	if len(logProbsShape) == 0 {
		return nil, fmt.Errorf("newCategoricalSampleOp: log-probabilities " +
			"must have at least one dimension")
	}
	for _, s := range sampleShape {
		if s <= 0 {
			return nil, fmt.Errorf("newCategoricalSampleOp: sample shape "+
				"must be positive but got %v", sampleShape)
		}
	}

	return &categoricalSampleOp{
		logProbsShape: logProbsShape.Clone(),
		sampleShape:   tensor.Shape(sampleShape).Clone(),
		seed:          seed,
		source:        rand.NewSource(seed),
	}, nil
}

func (c *categoricalSampleOp) batchShape() tensor.Shape {
	return c.logProbsShape[:len(c.logProbsShape)-1]
}

func (c *categoricalSampleOp) outShape() tensor.Shape {
	out := append(tensor.Shape{}, c.sampleShape...)
	return append(out, c.batchShape()...)
}

func (c *categoricalSampleOp) Arity() int { return 1 }

func (c *categoricalSampleOp) Type() hm.Type {
	return hm.NewFnType(
		gordinal.OutputType(tensor.Float64, len(c.logProbsShape)),
		gordinal.OutputType(tensor.Int, len(c.outShape())),
	)
}

func (c *categoricalSampleOp) InferShape(...G.DimSizer) (tensor.Shape,
	error) {
	return c.outShape(), nil
}

func (c *categoricalSampleOp) ReturnsPtr() bool { return false }

func (c *categoricalSampleOp) CallsExtern() bool { return false }

func (c *categoricalSampleOp) OverwritesInput() int { return -1 }

func (c *categoricalSampleOp) String() string {
	return fmt.Sprintf("CategoricalSample{shape=%v, logProbs=%v, seed=%v}()",
		c.sampleShape, c.logProbsShape, c.seed)
}

func (c *categoricalSampleOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, c.String())
}

func (c *categoricalSampleOp) Hashcode() uint32 {
	return gordinal.SimpleHash(c)
}

func (c *categoricalSampleOp) DiffWRT(inputs int) []bool {
	return make([]bool, inputs)
}

func (c *categoricalSampleOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	return nil, fmt.Errorf("symDiff: %v is not differentiable", c)
}

func (c *categoricalSampleOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := c.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	logProbs, err := gordinal.Float64s(inputs[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	categories := c.logProbsShape[len(c.logProbsShape)-1]
	batch := gordinal.Size(c.batchShape())
	samples := gordinal.Size(c.sampleShape)
	out := make([]int, samples*batch)

	weights := make([]float64, categories)
	for b := 0; b < batch; b++ {
		for k := range weights {
			weights[k] = math.Exp(logProbs[b*categories+k])
		}
		dist := distuv.NewCategorical(weights, c.source)

		for s := 0; s < samples; s++ {
			out[s*batch+b] = int(dist.Rand())
		}
	}

	return gordinal.NewIntValue(c.outShape(), out), nil
}

func (c *categoricalSampleOp) checkInputs(inputs ...G.Value) error {
	if err := gordinal.CheckArity(c, len(inputs)); err != nil {
		return err
	}

	logProbs, ok := inputs[0].(tensor.Tensor)
	if !ok {
		return fmt.Errorf("expected log-probabilities to be a tensor but "+
			"got %T", inputs[0])
	} else if logProbs.Size() == 0 {
		return fmt.Errorf("cannot sample from empty log-probabilities")
	} else if !logProbs.Shape().Eq(c.logProbsShape) {
		return fmt.Errorf("expected log-probabilities to have shape %v but "+
			"got %v", c.logProbsShape, logProbs.Shape())
	} else if logProbs.Dtype() != tensor.Float64 {
		return fmt.Errorf("expected log-probabilities to have dtype %v but "+
			"got %v", tensor.Float64, logProbs.Dtype())
	}

	return nil
}
