package stats

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// Compare evaluates the given contrasts against a fitted model. A nil or
// empty spec list defaults to all pairwise combinations in GroupSet order.
// Specs are validated eagerly; results come back in spec order. Each
// contrast only reads the fit, so evaluation fans out one worker per
// comparison.
func Compare(ctx context.Context, fit *ModelFit, specs []ContrastSpec) ([]ComparisonResult, error) {
	if len(specs) == 0 {
		specs = AllPairs(fit.Params.Groups)
	}
	if err := ValidateSpecs(fit.Params.Groups, specs); err != nil {
		return nil, err
	}

	results := make([]ComparisonResult, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := BuildContrast(fit.Params, spec)
			if err != nil {
				return err
			}
			results[i] = evaluateContrast(fit, spec, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// evaluateContrast computes estimate, SE, t, two-sided p and the 95% CI for
// a single contrast vector
func evaluateContrast(fit *ModelFit, spec ContrastSpec, c []float64) ComparisonResult {
	estimate := 0.0
	for i, ci := range c {
		estimate += ci * fit.Coef[i]
	}

	// c' Cov c
	variance := 0.0
	for i, ci := range c {
		if ci == 0 {
			continue
		}
		for j, cj := range c {
			if cj == 0 {
				continue
			}
			variance += ci * cj * fit.Cov.At(i, j)
		}
	}
	se := math.Sqrt(variance)

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(fit.ResidDF)}
	tValue := estimate / se
	pValue := 2 * tDist.CDF(-math.Abs(tValue))
	tCrit := tDist.Quantile(0.975)

	return ComparisonResult{
		Group1:    spec.Group1,
		Group2:    spec.Group2,
		Estimate:  estimate,
		SE:        se,
		TValue:    tValue,
		PValue:    pValue,
		PValueAdj: math.NaN(),
		CILower:   estimate - tCrit*se,
		CIUpper:   estimate + tCrit*se,
	}
}
