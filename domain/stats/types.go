package stats

import (
	"fmt"
	"math"

	"imgquant/domain/measure"

	"gonum.org/v1/gonum/mat"
)

// Parameterization is the fixed-effect coefficient layout of a baseline-coded
// group model: an intercept followed by one indicator per non-baseline group
// in GroupSet order. The name->index map is built once so contrast
// construction is a pure indexed write.
type Parameterization struct {
	Names    []string
	Groups   measure.GroupSet
	Baseline string
	index    map[string]int
}

// NewParameterization builds the coefficient layout for a group set
func NewParameterization(groups measure.GroupSet) Parameterization {
	p := Parameterization{
		Names:    make([]string, 0, len(groups)),
		Groups:   groups,
		Baseline: groups.Baseline(),
		index:    make(map[string]int, len(groups)),
	}
	p.Names = append(p.Names, "(Intercept)")
	for _, g := range groups {
		if g == p.Baseline {
			continue
		}
		p.index[g] = len(p.Names)
		p.Names = append(p.Names, fmt.Sprintf("group[T.%s]", g))
	}
	return p
}

// Len returns the number of fixed-effect coefficients
func (p Parameterization) Len() int {
	return len(p.Names)
}

// IndicatorIndex returns the coefficient position of a group's indicator.
// The baseline group has no indicator (its effect lives in the intercept).
func (p Parameterization) IndicatorIndex(group string) (int, bool) {
	idx, ok := p.index[group]
	return idx, ok
}

// ModelFit is an immutable fitted random-intercept model: fixed-effect
// coefficients, their covariance, and the residual degrees of freedom used
// for the reference t-distribution.
type ModelFit struct {
	Response      string
	Params        Parameterization
	Coef          []float64
	Cov           *mat.SymDense
	ResidDF       int
	GroupVariance float64 // between-image variance component
	ResidVariance float64 // within-image residual variance
	REMLCriterion float64 // -2 * restricted log-likelihood (profiled, up to a constant)
	NumObs        int
	NumClusters   int
}

// ContrastSpec is an ordered group pair whose mean difference is tested
type ContrastSpec struct {
	Group1 string `json:"group1"`
	Group2 string `json:"group2"`
}

// ComparisonResult is one tested contrast. PValueAdj is NaN until a
// correction method attaches it.
type ComparisonResult struct {
	Group1    string  `json:"group1"`
	Group2    string  `json:"group2"`
	Estimate  float64 `json:"estimate"`
	SE        float64 `json:"se"`
	TValue    float64 `json:"t_value"`
	PValue    float64 `json:"p_value"`
	PValueAdj float64 `json:"p_value_adj"`
	CILower   float64 `json:"ci_lower"`
	CIUpper   float64 `json:"ci_upper"`
}

// EffectivePValue returns the adjusted p-value, falling back to the raw
// p-value when no correction has been attached
func (r ComparisonResult) EffectivePValue() float64 {
	if math.IsNaN(r.PValueAdj) {
		return r.PValue
	}
	return r.PValueAdj
}
