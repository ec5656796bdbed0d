package gordinal

import (
	"fmt"

	"gorgonia.org/tensor"
)

// BroadcastShapes returns the shape obtained by broadcasting a and b
// against each other. Shapes are aligned from the right and a
// dimension of size 1 stretches to match the other shape.
func BroadcastShapes(a, b tensor.Shape) (tensor.Shape, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	out := make(tensor.Shape, n)
	for i := 0; i < n; i++ {
		da, db := 1, 1
		if j := len(a) - n + i; j >= 0 {
			da = a[j]
		}
		if j := len(b) - n + i; j >= 0 {
			db = b[j]
		}

		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			return nil, fmt.Errorf("broadcastShapes: incompatible shapes "+
				"%v and %v", a, b)
		}
	}

	return out, nil
}

// Size returns the number of elements in a tensor of shape s. A
// scalar shape has one element.
func Size(s tensor.Shape) int {
	size := 1
	for _, d := range s {
		size *= d
	}
	return size
}

// Broadcaster maps flat row-major indices of a broadcast shape onto
// the flat indices of each of the shapes that were broadcast to
// produce it.
type Broadcaster struct {
	shape  tensor.Shape
	inputs []tensor.Shape
	coords []int
}

// NewBroadcaster returns a Broadcaster over the broadcast of shapes.
func NewBroadcaster(shapes ...tensor.Shape) (*Broadcaster, error) {
	out := tensor.Shape{}
	var err error
	for _, s := range shapes {
		out, err = BroadcastShapes(out, s)
		if err != nil {
			return nil, fmt.Errorf("newBroadcaster: %v", err)
		}
	}

	return &Broadcaster{
		shape:  out,
		inputs: shapes,
		coords: make([]int, len(out)),
	}, nil
}

// Shape returns the broadcast shape
func (b *Broadcaster) Shape() tensor.Shape { return b.shape.Clone() }

// Size returns the number of elements in the broadcast shape
func (b *Broadcaster) Size() int { return Size(b.shape) }

// Index returns the flat index into input i that the flat index flat
// of the broadcast shape reads from.
func (b *Broadcaster) Index(flat, i int) int {
	for d := len(b.shape) - 1; d >= 0; d-- {
		b.coords[d] = flat % b.shape[d]
		flat /= b.shape[d]
	}

	in := b.inputs[i]
	offset := len(b.shape) - len(in)
	idx := 0
	for d, size := range in {
		c := b.coords[offset+d]
		if size == 1 {
			c = 0
		}
		idx = idx*size + c
	}

	return idx
}
