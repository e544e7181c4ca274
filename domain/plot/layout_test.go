package plot

import (
	"math"
	"testing"

	"imgquant/domain/stats"
)

func TestStarLabel(t *testing.T) {
	cases := []struct {
		p    float64
		want string
	}{
		{0.00009, "****"},
		{0.0001, "***"},
		{0.00099, "***"},
		{0.001, "**"},
		{0.0099, "**"},
		{0.01, "*"},
		{0.0499, "*"},
		{0.05, "ns"},
		{0.9, "ns"},
	}
	for _, tc := range cases {
		if got := StarLabel(tc.p); got != tc.want {
			t.Errorf("StarLabel(%g): expected %q, got %q", tc.p, tc.want, got)
		}
	}
}

func threeBarChart() Chart {
	return Chart{
		Geometry: []BarGeometry{
			{Group: "A", Position: 0, Top: 1.0},
			{Group: "B", Position: 1, Top: 1.2},
			{Group: "C", Position: 2, Top: 1.4},
		},
		Axis: Axis{Lower: 0, Upper: 1.5},
	}
}

func comparison(g1, g2 string, pAdj float64) stats.ComparisonResult {
	return stats.ComparisonResult{Group1: g1, Group2: g2, PValue: pAdj, PValueAdj: pAdj}
}

func TestLayoutBrackets_AlphaFilter(t *testing.T) {
	chart := threeBarChart()
	result := LayoutBrackets(chart, []stats.ComparisonResult{
		comparison("A", "B", 0.05),   // at the threshold: excluded
		comparison("B", "C", 0.0499), // just under: included
		comparison("A", "C", math.NaN()),
	}, DefaultLayoutOptions())

	if len(result.Brackets) != 1 {
		t.Fatalf("expected 1 bracket, got %d", len(result.Brackets))
	}
	b := result.Brackets[0]
	if b.X1 != 1 || b.X2 != 2 || b.Label != "*" {
		t.Errorf("unexpected bracket %+v", b)
	}
}

func TestLayoutBrackets_RawFallback(t *testing.T) {
	// NaN adjusted p falls back to the raw p-value
	comp := stats.ComparisonResult{Group1: "A", Group2: "B", PValue: 0.002, PValueAdj: math.NaN()}
	result := LayoutBrackets(threeBarChart(), []stats.ComparisonResult{comp}, DefaultLayoutOptions())
	if len(result.Brackets) != 1 {
		t.Fatalf("expected 1 bracket, got %d", len(result.Brackets))
	}
	if result.Brackets[0].Label != "**" {
		t.Errorf("expected label from raw p 0.002, got %q", result.Brackets[0].Label)
	}
}

func TestLayoutBrackets_NaNSurvivesCorrection(t *testing.T) {
	// an invalid p-value must stay excluded after the correction pass; a
	// finite adjusted value here would draw a bracket for a comparison
	// that never produced a number
	comps := []stats.ComparisonResult{
		{Group1: "A", Group2: "B", PValue: math.NaN(), PValueAdj: math.NaN()},
		{Group1: "B", Group2: "C", PValue: 0.01, PValueAdj: math.NaN()},
	}
	if err := stats.ApplyCorrection(comps, stats.CorrectionHolm); err != nil {
		t.Fatal(err)
	}

	result := LayoutBrackets(threeBarChart(), comps, DefaultLayoutOptions())
	if len(result.Brackets) != 1 {
		t.Fatalf("expected only the valid comparison to draw, got %d brackets", len(result.Brackets))
	}
	if result.Brackets[0].X1 != 1 || result.Brackets[0].X2 != 2 {
		t.Errorf("unexpected bracket span %d-%d", result.Brackets[0].X1, result.Brackets[0].X2)
	}
}

func TestLayoutBrackets_StackingLevels(t *testing.T) {
	result := LayoutBrackets(threeBarChart(), []stats.ComparisonResult{
		comparison("A", "B", 0.01),
		comparison("B", "C", 0.01),
		comparison("A", "C", 0.001),
	}, DefaultLayoutOptions())

	if len(result.Brackets) != 3 {
		t.Fatalf("expected 3 brackets, got %d", len(result.Brackets))
	}
	// (B,C) touches (A,B) at position 1: a shared endpoint is an overlap.
	// (A,C) spans both and goes above them.
	wantLevels := []int{0, 1, 2}
	for i, want := range wantLevels {
		if result.Brackets[i].Level != want {
			t.Errorf("bracket %d: expected level %d, got %d", i, want, result.Brackets[i].Level)
		}
	}
	for i := 1; i < len(result.Brackets); i++ {
		if result.Brackets[i].Y <= result.Brackets[i-1].Y {
			t.Errorf("bracket %d must sit above bracket %d", i, i-1)
		}
	}
}

func TestLayoutBrackets_DisjointSpansShareLevel(t *testing.T) {
	chart := Chart{
		Geometry: []BarGeometry{
			{Group: "A", Position: 0, Top: 1.0},
			{Group: "B", Position: 1, Top: 1.0},
			{Group: "C", Position: 2, Top: 1.0},
			{Group: "D", Position: 3, Top: 1.0},
		},
		Axis: Axis{Lower: 0, Upper: 1.5},
	}
	result := LayoutBrackets(chart, []stats.ComparisonResult{
		comparison("A", "B", 0.01),
		comparison("C", "D", 0.01),
	}, DefaultLayoutOptions())

	if len(result.Brackets) != 2 {
		t.Fatalf("expected 2 brackets, got %d", len(result.Brackets))
	}
	if result.Brackets[0].Level != 0 || result.Brackets[1].Level != 0 {
		t.Errorf("disjoint spans must share level 0, got %d and %d",
			result.Brackets[0].Level, result.Brackets[1].Level)
	}
}

func TestLayoutBrackets_VerticalGeometry(t *testing.T) {
	// range 1.5: offset 0.03, slot 0.075, clearance 0.015, tick 0.015
	result := LayoutBrackets(threeBarChart(), []stats.ComparisonResult{
		comparison("A", "B", 0.01),
	}, DefaultLayoutOptions())

	b := result.Brackets[0]
	if math.Abs(b.Y-1.23) > 1e-12 {
		t.Errorf("expected crossbar base at max(tops)+2%% of range = 1.23, got %g", b.Y)
	}
	if math.Abs(b.TickTop-1.245) > 1e-12 {
		t.Errorf("expected tick top 1.245, got %g", b.TickTop)
	}
	if math.Abs(b.LabelY-1.26) > 1e-12 {
		t.Errorf("expected label baseline 1.26, got %g", b.LabelY)
	}

	segs := b.Segments()
	if len(segs) != 3 {
		t.Fatalf("expected 3 bracket segments, got %d", len(segs))
	}
	if segs[1][0][1] != b.TickTop || segs[1][1][1] != b.TickTop {
		t.Error("crossbar must run at the tick top")
	}
	if x, _ := b.LabelAnchor(); x != 0.5 {
		t.Errorf("expected label centered at 0.5, got %g", x)
	}
}

func TestLayoutBrackets_AxisExtension(t *testing.T) {
	result := LayoutBrackets(threeBarChart(), []stats.ComparisonResult{
		comparison("A", "B", 0.01),
		comparison("B", "C", 0.01),
		comparison("A", "C", 0.001),
	}, DefaultLayoutOptions())

	if !result.AxisExtended {
		t.Fatal("stacked brackets above the old bound must extend the axis")
	}
	top := result.Brackets[len(result.Brackets)-1]
	if result.AxisUpper <= top.LabelY {
		t.Errorf("axis upper %g must clear the topmost label %g", result.AxisUpper, top.LabelY)
	}

	// A single low bracket fits inside the original bound
	small := LayoutBrackets(threeBarChart(), []stats.ComparisonResult{
		comparison("A", "B", 0.01),
	}, DefaultLayoutOptions())
	if small.AxisExtended || small.AxisUpper != 1.5 {
		t.Errorf("axis should be untouched, got upper %g (extended=%v)",
			small.AxisUpper, small.AxisExtended)
	}
}

func TestLayoutBrackets_UnknownGroupSkipped(t *testing.T) {
	result := LayoutBrackets(threeBarChart(), []stats.ComparisonResult{
		comparison("A", "Z", 0.001),
		comparison("A", "B", 0.01),
	}, DefaultLayoutOptions())
	if len(result.Brackets) != 1 {
		t.Fatalf("comparison naming an unplotted group must be skipped, got %d brackets", len(result.Brackets))
	}
	if result.Brackets[0].Level != 0 {
		t.Error("skipped comparisons must not consume a level")
	}
}

func TestLayoutBrackets_Deterministic(t *testing.T) {
	comps := []stats.ComparisonResult{
		comparison("A", "B", 0.01),
		comparison("B", "C", 0.03),
		comparison("A", "C", 0.0001),
	}
	a := LayoutBrackets(threeBarChart(), comps, DefaultLayoutOptions())
	b := LayoutBrackets(threeBarChart(), comps, DefaultLayoutOptions())
	if len(a.Brackets) != len(b.Brackets) {
		t.Fatal("bracket counts differ between identical runs")
	}
	for i := range a.Brackets {
		if a.Brackets[i] != b.Brackets[i] {
			t.Errorf("bracket %d differs between identical runs", i)
		}
	}
}
