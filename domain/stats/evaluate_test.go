package stats

import (
	"context"
	"math"
	"testing"

	"imgquant/domain/core"
	"imgquant/domain/measure"

	"gonum.org/v1/gonum/mat"
)

// testFit builds a fitted model by hand: baseline A at 10.0, B at +0.8,
// C at +1.6, uncorrelated indicator coefficients.
func testFit() *ModelFit {
	params := NewParameterization(measure.GroupSet{"A", "B", "C"})
	cov := mat.NewSymDense(3, []float64{
		0.05, 0, 0,
		0, 0.0625, 0,
		0, 0, 0.0625,
	})
	return &ModelFit{
		Response: "fracIn",
		Params:   params,
		Coef:     []float64{10.0, 0.8, 1.6},
		Cov:      cov,
		ResidDF:  57,
	}
}

func TestCompare_DefaultsToAllPairs(t *testing.T) {
	results, err := Compare(context.Background(), testFit(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected C(3,2)=3 comparisons, got %d", len(results))
	}
	want := []ContrastSpec{{"A", "B"}, {"A", "C"}, {"B", "C"}}
	for i, spec := range want {
		if results[i].Group1 != spec.Group1 || results[i].Group2 != spec.Group2 {
			t.Errorf("comparison %d: expected %v, got (%s,%s)",
				i, spec, results[i].Group1, results[i].Group2)
		}
	}
}

func TestCompare_EstimatesAndIntervals(t *testing.T) {
	results, err := Compare(context.Background(), testFit(), []ContrastSpec{
		{"A", "B"}, {"A", "C"}, {"B", "C"},
	})
	if err != nil {
		t.Fatal(err)
	}

	wantEstimate := []float64{-0.8, -1.6, -0.8}
	for i, r := range results {
		if math.Abs(r.Estimate-wantEstimate[i]) > 1e-12 {
			t.Errorf("(%s,%s): expected estimate %g, got %g",
				r.Group1, r.Group2, wantEstimate[i], r.Estimate)
		}
		if r.PValue <= 0 || r.PValue >= 1 {
			t.Errorf("(%s,%s): p-value %g out of (0,1)", r.Group1, r.Group2, r.PValue)
		}
		if !math.IsNaN(r.PValueAdj) {
			t.Errorf("(%s,%s): adjusted p must be NaN before correction", r.Group1, r.Group2)
		}
		if r.CILower >= r.Estimate || r.CIUpper <= r.Estimate {
			t.Errorf("(%s,%s): CI [%g, %g] does not bracket estimate %g",
				r.Group1, r.Group2, r.CILower, r.CIUpper, r.Estimate)
		}
		if math.Abs((r.Estimate-r.CILower)-(r.CIUpper-r.Estimate)) > 1e-9 {
			t.Errorf("(%s,%s): CI not symmetric about the estimate", r.Group1, r.Group2)
		}
	}

	// A-B contrast hits a single indicator, so SE is sqrt of its variance
	if math.Abs(results[0].SE-0.25) > 1e-12 {
		t.Errorf("(A,B): expected SE 0.25, got %g", results[0].SE)
	}
	// B-C combines two uncorrelated indicators
	if math.Abs(results[2].SE-math.Sqrt(0.125)) > 1e-12 {
		t.Errorf("(B,C): expected SE %g, got %g", math.Sqrt(0.125), results[2].SE)
	}
	// t = -0.8 / 0.25
	if math.Abs(results[0].TValue+3.2) > 1e-12 {
		t.Errorf("(A,B): expected t -3.2, got %g", results[0].TValue)
	}
}

func TestCompare_Antisymmetry(t *testing.T) {
	results, err := Compare(context.Background(), testFit(), []ContrastSpec{
		{"A", "C"}, {"C", "A"},
	})
	if err != nil {
		t.Fatal(err)
	}
	ac, ca := results[0], results[1]
	if math.Abs(ac.Estimate+ca.Estimate) > 1e-12 {
		t.Errorf("estimates must negate under swap: %g vs %g", ac.Estimate, ca.Estimate)
	}
	if math.Abs(ac.SE-ca.SE) > 1e-12 || math.Abs(ac.PValue-ca.PValue) > 1e-12 {
		t.Error("SE and p-value must be invariant under swap")
	}
}

func TestCompare_UnknownGroup(t *testing.T) {
	_, err := Compare(context.Background(), testFit(), []ContrastSpec{{"A", "Z"}})
	if !core.IsUnknownGroupError(err) {
		t.Fatalf("expected unknown group error, got %v", err)
	}
}
