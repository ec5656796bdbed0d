package distribution

import "github.com/pkg/errors"

var (
	// ErrUnorderedCutpoints is returned when validated cutpoints
	// decrease along their last axis
	ErrUnorderedCutpoints = errors.New("cutpoints must be non-decreasing")

	// ErrNoKL is returned when no KL divergence is known between two
	// distributions
	ErrNoKL = errors.New("no KL divergence between distributions")
)
