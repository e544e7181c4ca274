package stats

import (
	"imgquant/domain/core"
	"imgquant/domain/measure"
)

// AllPairs enumerates every unordered group pair in GroupSet order,
// yielding C(k,2) specs for k groups
func AllPairs(groups measure.GroupSet) []ContrastSpec {
	var specs []ContrastSpec
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			specs = append(specs, ContrastSpec{Group1: groups[i], Group2: groups[j]})
		}
	}
	return specs
}

// ValidateSpecs checks every requested comparison against the group set
// before any model work proceeds, naming the first offending pair
func ValidateSpecs(groups measure.GroupSet, specs []ContrastSpec) error {
	for _, s := range specs {
		if !groups.Contains(s.Group1) || !groups.Contains(s.Group2) {
			return core.NewUnknownGroupError(s.Group1, s.Group2)
		}
	}
	return nil
}

// BuildContrast constructs the vector c such that c . beta estimates
// E[response | group1] - E[response | group2]. The baseline group carries
// no indicator; its contribution cancels through the intercept.
func BuildContrast(p Parameterization, spec ContrastSpec) ([]float64, error) {
	if !p.Groups.Contains(spec.Group1) || !p.Groups.Contains(spec.Group2) {
		return nil, core.NewUnknownGroupError(spec.Group1, spec.Group2)
	}

	c := make([]float64, p.Len())
	if idx, ok := p.IndicatorIndex(spec.Group1); ok {
		c[idx] = 1.0
	}
	if idx, ok := p.IndicatorIndex(spec.Group2); ok {
		c[idx] = -1.0
	}
	return c, nil
}
