package distribution

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/gordinal"
	G "gorgonia.org/gorgonia"
)

// KL returns the Kullback-Leibler divergence KL(p || q) between each
// pair of distributions in the batches of p and q. A divergence is
// known between any two distributions that are evaluated as
// categorical distributions (Categorical and OrderedLogistic); the
// two must have the same batch shape and number of categories.
// Otherwise, the returned error wraps ErrNoKL.
func KL(p, q Distribution) (*G.Node, error) {
	pCat, pOk := asCategorical(p)
	qCat, qOk := asCategorical(q)
	if !pOk || !qOk {
		return nil, errors.Wrapf(ErrNoKL, "kl: %T and %T", p, q)
	}

	return categoricalKL(pCat, qCat)
}

// asCategorical returns the Categorical that d is evaluated as, if
// any
func asCategorical(d Distribution) (*Categorical, bool) {
	switch d := d.(type) {
	case *Categorical:
		return d, true
	case *OrderedLogistic:
		return d.Categorical(), true
	}
	return nil, false
}

// categoricalKL computes Σ_k p_k (log p_k - log q_k) along the
// category axis, with 0 log 0 = 0. A category with q_k = 0 < p_k gives
// a divergence of +Inf.
func categoricalKL(p, q *Categorical) (*G.Node, error) {
	if !p.logProbs.Shape().Eq(q.logProbs.Shape()) {
		return nil, fmt.Errorf("kl: expected log-probabilities of the same "+
			"shape but got %v and %v", p.logProbs.Shape(),
			q.logProbs.Shape())
	}

	pProbs, err := p.Probs()
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}

	// p log p is finite once log p is clamped, since p = 0 wherever the
	// clamp applies
	pLogProbs, err := finiteLogProbs(p.logProbs)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	negEntropy := G.Must(G.HadamardProd(pProbs, pLogProbs))

	crossEntropy, err := gordinal.MaskedMul(pProbs, q.logProbs)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}

	kl := G.Must(G.Sub(negEntropy, crossEntropy))
	return G.Sum(kl, kl.Dims()-1)
}
