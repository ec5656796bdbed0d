package distribution

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestIID(t *testing.T) {
	const threshold float64 = 1e-10
	src := rand.NewSource(testSeed)

	// A batch of shape (2, 3) of ordered logistic distributions over 4
	// categories, interpreted as 2 events of 3 i.i.d. components
	cutpointsBacking := randomCutpoints(src, []int{2, 1, 3})
	locationBacking := randn(src, 3)
	xBacking := []int{
		0, 1, 2,
		3, 3, 1,
	}

	g := G.NewGraph()
	cutpoints := newF64Node(g, []int{2, 1, 3}, cutpointsBacking, "cutpoints")
	location := newF64Node(g, []int{3}, locationBacking, "location")
	x := newIntNode(g, []int{2, 3}, xBacking, "x")

	dist, err := NewOrderedLogistic(cutpoints, location, testSeed, true)
	if err != nil {
		t.Fatal(err)
	}
	iid, err := NewIID(dist, 1)
	if err != nil {
		t.Fatal(err)
	}

	if !shapeEq(iid.BatchShape(), tensor.Shape{2}) {
		t.Errorf("expected batch shape (2) but got %v", iid.BatchShape())
	}
	if !shapeEq(iid.EventShape(), tensor.Shape{3}) {
		t.Errorf("expected event shape (3) but got %v", iid.EventShape())
	}

	prob := G.Must(iid.Prob(x))
	logProb := G.Must(iid.LogProb(x))
	cdf := G.Must(iid.Cdf(x))
	entropy := G.Must(iid.Entropy())

	var probVal, logProbVal, cdfVal, entropyVal G.Value
	G.Read(prob, &probVal)
	G.Read(logProb, &logProbVal)
	G.Read(cdf, &cdfVal)
	G.Read(entropy, &entropyVal)

	runGraph(t, g)

	for i := 0; i < 2; i++ {
		row := cutpointsBacking[i*3 : (i+1)*3]

		wantLogProb, wantCdf, wantEntropy := 0.0, 1.0, 0.0
		for j := 0; j < 3; j++ {
			probs := orderedProbsTarget(row, locationBacking[j])
			category := xBacking[i*3+j]

			wantLogProb += math.Log(probs[category])
			c := 0.0
			for k := 0; k <= category; k++ {
				c += probs[k]
			}
			wantCdf *= c
			for _, p := range probs {
				wantEntropy -= p * math.Log(p)
			}
		}

		if got := f64s(logProbVal)[i]; math.Abs(got-wantLogProb) > threshold {
			t.Errorf("event %v: expected log-probability %v but got %v", i,
				wantLogProb, got)
		}
		if got := f64s(probVal)[i]; math.Abs(got-math.Exp(wantLogProb)) >
			threshold {
			t.Errorf("event %v: expected probability %v but got %v", i,
				math.Exp(wantLogProb), got)
		}
		if got := f64s(cdfVal)[i]; math.Abs(got-wantCdf) > threshold {
			t.Errorf("event %v: expected cdf %v but got %v", i, wantCdf, got)
		}
		if got := f64s(entropyVal)[i]; math.Abs(got-wantEntropy) > threshold {
			t.Errorf("event %v: expected entropy %v but got %v", i,
				wantEntropy, got)
		}
	}
}

func TestIIDErrors(t *testing.T) {
	g := G.NewGraph()
	cutpoints := newF64Node(g, []int{3}, []float64{-1, 0, 1}, "cutpoints")
	location := newF64Node(g, []int{2}, []float64{0, 1}, "location")

	dist, err := NewOrderedLogistic(cutpoints, location, testSeed, true)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewIID(dist, 2); err == nil {
		t.Error("expected error reinterpreting 2 dimensions of batch " +
			"shape (2)")
	}
	if _, err := NewIID(dist, -1); err == nil {
		t.Error("expected error reinterpreting -1 dimensions")
	}
}
