package stats

import (
	"fmt"
	"math"
	"sort"
)

// CorrectionMethod names a multiple-comparison adjustment
type CorrectionMethod string

const (
	// CorrectionHolm is the Holm step-down family-wise procedure (default)
	CorrectionHolm CorrectionMethod = "holm"
	// CorrectionBonferroni is the single-step family-wise bound
	CorrectionBonferroni CorrectionMethod = "bonferroni"
	// CorrectionBH is the Benjamini-Hochberg false-discovery-rate procedure
	CorrectionBH CorrectionMethod = "bh"
)

// ParseCorrectionMethod resolves a config string to a method, defaulting
// empty input to Holm
func ParseCorrectionMethod(s string) (CorrectionMethod, error) {
	switch CorrectionMethod(s) {
	case "":
		return CorrectionHolm, nil
	case CorrectionHolm, CorrectionBonferroni, CorrectionBH:
		return CorrectionMethod(s), nil
	default:
		return "", fmt.Errorf("unsupported correction method %q", s)
	}
}

// Adjust returns the adjusted p-values for the given raw p-values, in the
// same order. An empty input is a no-op, not an error. A NaN p-value stays
// NaN in the output and does not count toward the family size; anything
// else would hand an invalid comparison a finite adjusted value.
func Adjust(pValues []float64, method CorrectionMethod) ([]float64, error) {
	if len(pValues) == 0 {
		return []float64{}, nil
	}
	switch method {
	case CorrectionHolm, "":
		return adjustHolm(pValues), nil
	case CorrectionBonferroni:
		return adjustBonferroni(pValues), nil
	case CorrectionBH:
		return adjustBH(pValues), nil
	default:
		return nil, fmt.Errorf("unsupported correction method %q", method)
	}
}

// ApplyCorrection attaches adjusted p-values to the comparison rows in place,
// preserving their order
func ApplyCorrection(results []ComparisonResult, method CorrectionMethod) error {
	if len(results) == 0 {
		return nil
	}
	raw := make([]float64, len(results))
	for i, r := range results {
		raw[i] = r.PValue
	}
	adjusted, err := Adjust(raw, method)
	if err != nil {
		return err
	}
	for i := range results {
		results[i].PValueAdj = adjusted[i]
	}
	return nil
}

// adjustHolm: sort ascending, adjusted_(i) = min(1, max_{j<=i} (m-j+1)*p_(j))
// with the running max enforcing monotonicity, then map back to input order.
func adjustHolm(pValues []float64) []float64 {
	order := sortedOrder(pValues)
	m := len(order)

	adjusted := nanSeeded(pValues)
	runningMax := 0.0
	for rank, idx := range order {
		adj := float64(m-rank) * pValues[idx]
		if adj > runningMax {
			runningMax = adj
		}
		adjusted[idx] = math.Min(1, runningMax)
	}
	return adjusted
}

func adjustBonferroni(pValues []float64) []float64 {
	m := float64(len(sortedOrder(pValues)))
	adjusted := nanSeeded(pValues)
	for i, p := range pValues {
		if math.IsNaN(p) {
			continue
		}
		adjusted[i] = math.Min(1, m*p)
	}
	return adjusted
}

// adjustBH: sort ascending, adjusted_(i) = min_{j>=i} (m/j)*p_(j), clamped to 1
func adjustBH(pValues []float64) []float64 {
	order := sortedOrder(pValues)
	m := len(order)

	adjusted := nanSeeded(pValues)
	runningMin := math.Inf(1)
	for rank := m - 1; rank >= 0; rank-- {
		idx := order[rank]
		adj := float64(m) / float64(rank+1) * pValues[idx]
		if adj < runningMin {
			runningMin = adj
		}
		adjusted[idx] = math.Min(1, runningMin)
	}
	return adjusted
}

// sortedOrder returns the indices of the valid (non-NaN) p-values in
// ascending order, stable so ties keep their input order
func sortedOrder(pValues []float64) []int {
	order := make([]int, 0, len(pValues))
	for i, p := range pValues {
		if !math.IsNaN(p) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pValues[order[a]] < pValues[order[b]]
	})
	return order
}

// nanSeeded returns a result slice with NaN at every position whose raw
// p-value is NaN; the adjustment loops only write the valid positions
func nanSeeded(pValues []float64) []float64 {
	adjusted := make([]float64, len(pValues))
	for i, p := range pValues {
		if math.IsNaN(p) {
			adjusted[i] = math.NaN()
		}
	}
	return adjusted
}
