package distribution

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// IID reinterprets the rightmost dims batch dimensions of a
// Distribution as event dimensions: the wrapped distributions are
// treated as independent and identically structured components of a
// single event. Log-probabilities and entropies are summed over the
// reinterpreted dimensions, probabilities and cdfs multiplied.
type IID struct {
	Distribution
	dims int // The number of batch dimensions to interpret as events
}

// NewIID returns a new IID over the rightmost dims batch dimensions
// of d
func NewIID(d Distribution, dims int) (*IID, error) {
	if dims < 0 || dims > len(d.BatchShape()) {
		return nil, fmt.Errorf("newIID: cannot reinterpret %v batch "+
			"dimensions of batch shape %v", dims, d.BatchShape())
	}

	return &IID{d, dims}, nil
}

// BatchShape returns the batch shape of the wrapped distribution
// without the reinterpreted dimensions
func (i *IID) BatchShape() tensor.Shape {
	batch := i.Distribution.BatchShape()
	return batch[:len(batch)-i.dims].Clone()
}

// EventShape returns the reinterpreted dimensions followed by the
// event shape of the wrapped distribution
func (i *IID) EventShape() tensor.Shape {
	batch := i.Distribution.BatchShape()
	event := append(tensor.Shape{}, batch[len(batch)-i.dims:]...)
	return append(event, i.Distribution.EventShape()...)
}

func (i *IID) Prob(x *G.Node) (*G.Node, error) {
	logProb, err := i.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}

	return G.Exp(logProb)
}

func (i *IID) LogProb(x *G.Node) (*G.Node, error) {
	if x.Dims() < i.dims {
		return nil, fmt.Errorf("logProb: expected dims >= %v but got %v",
			i.dims, x.Dims())
	}

	x, err := i.Distribution.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not compute iid log "+
			"prob: %v", err)
	}

	x, err = i.combine(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	return x, nil
}

func (i *IID) Entropy() (*G.Node, error) {
	x, err := i.Distribution.Entropy()
	if err != nil {
		return nil, fmt.Errorf("entropy: could not take entropy of each "+
			"i.i.d. variable: %v", err)
	}

	x, err = i.combine(x)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	return x, nil
}

func (i *IID) Cdf(x *G.Node) (*G.Node, error) {
	if x.Dims() < i.dims {
		return nil, fmt.Errorf("cdf: expected dims >= %v but got %v", i.dims,
			x.Dims())
	}

	x, err := i.Distribution.Cdf(x)
	if err != nil {
		return nil, fmt.Errorf("cdf: could not compute iid cdf: %v", err)
	}

	// Π cdf = exp(Σ log cdf)
	x, err = G.Log(x)
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}
	x, err = i.combine(x)
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}

	return G.Exp(x)
}

// combine sums x over its rightmost i.dims dimensions
func (i *IID) combine(x *G.Node) (*G.Node, error) {
	var err error
	for j := 0; j < i.dims; j++ {
		if x.IsScalar() {
			return nil, fmt.Errorf("could not combine event dims: "+
				"expected %v event dims", i.dims)
		}

		x, err = G.Sum(x, x.Dims()-1)
		if err != nil {
			return nil, fmt.Errorf("could not combine event dims: %v", err)
		}
	}

	return x, nil
}
