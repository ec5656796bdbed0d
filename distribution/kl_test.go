package distribution

import (
	"fmt"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
)

// klTarget computes KL(p || q) between categorical distributions with
// probabilities p and q
func klTarget(p, q []float64) float64 {
	kl := 0.0
	for k := range p {
		if p[k] > 0 {
			kl += p[k] * (math.Log(p[k]) - math.Log(q[k]))
		}
	}
	return kl
}

func TestKLAgainstCategorical(t *testing.T) {
	const numCutpoints int = 100
	const threshold float64 = 1e-6

	for _, batchSize := range []int{1, 10} {
		t.Run(fmt.Sprintf("batch%d", batchSize), func(t *testing.T) {
			src := rand.NewSource(testSeed + uint64(batchSize))
			shape := []int{batchSize, numCutpoints}

			aCutpoints := randomCutpoints(src, shape)
			aLocation := randn(src, batchSize)
			bCutpoints := randomCutpoints(src, shape)
			bLocation := randn(src, batchSize)

			g := G.NewGraph()
			a, err := NewOrderedLogistic(
				newF64Node(g, shape, aCutpoints, "aCutpoints"),
				newF64Node(g, []int{batchSize}, aLocation, "aLocation"),
				testSeed, true,
			)
			if err != nil {
				t.Fatal(err)
			}
			b, err := NewOrderedLogistic(
				newF64Node(g, shape, bCutpoints, "bCutpoints"),
				newF64Node(g, []int{batchSize}, bLocation, "bLocation"),
				testSeed, true,
			)
			if err != nil {
				t.Fatal(err)
			}

			aCat, err := NewCategorical(a.CategoricalLogProbs(), testSeed)
			if err != nil {
				t.Fatal(err)
			}
			bCat, err := NewCategorical(b.CategoricalLogProbs(), testSeed)
			if err != nil {
				t.Fatal(err)
			}

			kl := G.Must(KL(a, b))
			catKL := G.Must(KL(aCat, bCat))
			mixedKL := G.Must(KL(a, bCat))
			selfKL := G.Must(KL(a, a))

			var klVal, catKLVal, mixedKLVal, selfKLVal G.Value
			G.Read(kl, &klVal)
			G.Read(catKL, &catKLVal)
			G.Read(mixedKL, &mixedKLVal)
			G.Read(selfKL, &selfKLVal)

			runGraph(t, g)

			if klVal.Shape().TotalSize() != batchSize {
				t.Errorf("expected %v divergences but got shape %v",
					batchSize, klVal.Shape())
			}

			got, gotCat, gotMixed, gotSelf := f64s(klVal), f64s(catKLVal),
				f64s(mixedKLVal), f64s(selfKLVal)
			for i := 0; i < batchSize; i++ {
				row := aCutpoints[i*numCutpoints : (i+1)*numCutpoints]
				p := orderedProbsTarget(row, aLocation[i])
				row = bCutpoints[i*numCutpoints : (i+1)*numCutpoints]
				q := orderedProbsTarget(row, bLocation[i])
				target := klTarget(p, q)

				if math.Abs(got[i]-target) > threshold {
					t.Errorf("batch %v: expected divergence %v but got %v",
						i, target, got[i])
				}
				if math.Abs(got[i]-gotCat[i]) > threshold {
					t.Errorf("batch %v: expected divergence equal to "+
						"categorical divergence %v but got %v", i, gotCat[i],
						got[i])
				}
				if math.Abs(got[i]-gotMixed[i]) > threshold {
					t.Errorf("batch %v: expected divergence equal to "+
						"mixed divergence %v but got %v", i, gotMixed[i],
						got[i])
				}
				if math.Abs(gotSelf[i]) > threshold {
					t.Errorf("batch %v: expected zero self-divergence but "+
						"got %v", i, gotSelf[i])
				}
			}
		})
	}
}

func TestKLAgainstSampling(t *testing.T) {
	const numSamples int = 100000
	src := rand.NewSource(testSeed)

	g := G.NewGraph()
	a, err := NewOrderedLogistic(
		newF64Node(g, []int{4}, randomCutpoints(src, []int{4}), "aCutpoints"),
		newF64Node(g, []int{}, randn(src, 1), "aLocation"),
		testSeed, true,
	)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewOrderedLogistic(
		newF64Node(g, []int{4}, randomCutpoints(src, []int{4}), "bCutpoints"),
		newF64Node(g, []int{}, randn(src, 1), "bLocation"),
		testSeed, true,
	)
	if err != nil {
		t.Fatal(err)
	}

	samples := G.Must(a.Sample(numSamples))
	aLogProb := G.Must(a.LogProb(samples))
	bLogProb := G.Must(b.LogProb(samples))
	kl := G.Must(KL(a, b))

	var aLogProbVal, bLogProbVal, klVal G.Value
	G.Read(aLogProb, &aLogProbVal)
	G.Read(bLogProb, &bLogProbVal)
	G.Read(kl, &klVal)

	runGraph(t, g)

	aData, bData := f64s(aLogProbVal), f64s(bLogProbVal)
	diffs := make([]float64, len(aData))
	for i := range diffs {
		diffs[i] = aData[i] - bData[i]
	}
	estimate, stdErr := meanAndStdErr(diffs)
	threshold := math.Max(0.01, 5*stdErr)

	got := f64s(klVal)[0]
	if math.Abs(got-estimate) > threshold {
		t.Errorf("expected divergence near Monte Carlo estimate %v but got "+
			"%v", estimate, got)
	}
}

// TestKLZeroProbability tests the divergence between distributions
// where one gives zero probability to a category. KL(p || q) is +Inf
// if q_k = 0 < p_k, and finite if only p_k = 0.
func TestKLZeroProbability(t *testing.T) {
	const threshold float64 = 1e-10
	const loc float64 = 0.3
	positive := []float64{-1, 0, 1}
	// The repeated cutpoint gives category 2 zero probability
	degenerate := []float64{-1, 0.5, 0.5}

	g := G.NewGraph()
	location := newF64Node(g, []int{}, []float64{loc}, "location")
	p, err := NewOrderedLogistic(
		newF64Node(g, []int{3}, positive, "positive"), location, testSeed,
		true,
	)
	if err != nil {
		t.Fatal(err)
	}
	q, err := NewOrderedLogistic(
		newF64Node(g, []int{3}, degenerate, "degenerate"), location,
		testSeed, true,
	)
	if err != nil {
		t.Fatal(err)
	}

	forward := G.Must(KL(p, q))
	reverse := G.Must(KL(q, p))

	var forwardVal, reverseVal G.Value
	G.Read(forward, &forwardVal)
	G.Read(reverse, &reverseVal)

	runGraph(t, g)

	if got := f64s(forwardVal)[0]; !math.IsInf(got, 1) {
		t.Errorf("expected divergence +Inf into a distribution with a "+
			"zero-probability category but got %v", got)
	}

	pProbs := orderedProbsTarget(positive, loc)
	qProbs := orderedProbsTarget(degenerate, loc)
	if qProbs[2] != 0 {
		t.Fatalf("expected category 2 to have zero probability but got %v",
			qProbs)
	}

	want := klTarget(qProbs, pProbs)
	got := f64s(reverseVal)[0]
	if math.IsInf(got, 0) || math.IsNaN(got) || math.Abs(got-want) >
		threshold {
		t.Errorf("expected divergence %v from a distribution with a "+
			"zero-probability category but got %v", want, got)
	}
}

func TestKLErrors(t *testing.T) {
	g := G.NewGraph()
	loc := newF64Node(g, []int{2}, []float64{0, 1}, "loc")
	scale := newF64Node(g, []int{2}, []float64{1, 1}, "scale")
	logistic, err := NewLogistic(loc, scale, testSeed)
	if err != nil {
		t.Fatal(err)
	}

	cutpoints := newF64Node(g, []int{3}, []float64{-1, 0, 1}, "cutpoints")
	ordered, err := NewOrderedLogistic(cutpoints, loc, testSeed, true)
	if err != nil {
		t.Fatal(err)
	}

	_, err = KL(ordered, logistic)
	if !errors.Is(err, ErrNoKL) {
		t.Errorf("expected error to wrap %v but got %v", ErrNoKL, err)
	}

	// Mismatched number of categories
	other := newF64Node(g, []int{2}, []float64{-1, 1}, "other")
	fewer, err := NewOrderedLogistic(other, loc, testSeed, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := KL(ordered, fewer); err == nil {
		t.Error("expected error for distributions with different numbers " +
			"of categories")
	}
}
