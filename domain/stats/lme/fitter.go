// Package lme fits linear mixed-effects models with a single random
// intercept per image. Repeated ROI measurements from one image are
// correlated; modeling the image as a random intercept keeps the standard
// errors of group contrasts honest where an independent-samples test would
// understate them.
package lme

import (
	"math"
	"sort"

	"imgquant/domain/core"
	"imgquant/domain/measure"
	"imgquant/domain/stats"

	"gonum.org/v1/gonum/mat"
)

// cluster holds the per-image sufficient statistics for the GLS normal
// equations. With a compound-symmetric within-cluster covariance
// V_i = I + lambda*J, Sherman-Morrison reduces every weighted sum to these
// precomputed pieces plus the scalar weight w_i = lambda/(1+n_i*lambda).
type cluster struct {
	n    int
	xtx  *mat.SymDense // X_i' X_i
	xty  *mat.VecDense // X_i' y_i
	xt1  *mat.VecDense // X_i' 1 (column sums)
	sumY float64
	yty  float64
}

// glsState is the model solved at one candidate variance ratio
type glsState struct {
	crit    float64 // -2 restricted log-likelihood, profiled, up to a constant
	beta    *mat.VecDense
	chol    mat.Cholesky
	sigma2  float64 // residual variance estimate at this ratio
	logdetV float64
}

// Fit estimates a model with group as a baseline-coded categorical fixed
// effect and image id as a random intercept. The variance ratio
// lambda = sigma_group^2 / sigma_resid^2 is estimated by profiled REML
// (coarse log-grid scan plus golden-section refinement); everything else is
// closed-form GLS given lambda. The returned fit is immutable.
func Fit(ds *measure.Dataset, responseVar string) (*stats.ModelFit, error) {
	if !ds.HasResponse(responseVar) {
		return nil, core.NewInvalidResponseError(responseVar, ds.ResponseVars)
	}

	params := stats.NewParameterization(ds.Groups())
	p := params.Len()

	clusters, n, err := buildClusters(ds, responseVar, params)
	if err != nil {
		return nil, err
	}
	if n <= p {
		return nil, core.NewModelFitError("non-positive residual degrees of freedom", nil)
	}

	lambda, state, err := optimizeREML(clusters, n, p)
	if err != nil {
		return nil, err
	}

	cov := mat.NewSymDense(p, nil)
	if err := state.chol.InverseTo(cov); err != nil {
		return nil, core.NewModelFitError("covariance inversion failed", err)
	}
	cov.ScaleSym(state.sigma2, cov)

	coef := make([]float64, p)
	for i := 0; i < p; i++ {
		coef[i] = state.beta.AtVec(i)
	}

	return &stats.ModelFit{
		Response:      responseVar,
		Params:        params,
		Coef:          coef,
		Cov:           cov,
		ResidDF:       n - p,
		GroupVariance: lambda * state.sigma2,
		ResidVariance: state.sigma2,
		REMLCriterion: state.crit,
		NumObs:        n,
		NumClusters:   len(clusters),
	}, nil
}

// buildClusters accumulates per-image sufficient statistics in image-id
// order. Rows missing the response variable are skipped.
func buildClusters(ds *measure.Dataset, responseVar string, params stats.Parameterization) ([]cluster, int, error) {
	p := params.Len()

	type accum struct {
		rowsX [][]float64
		rowsY []float64
	}
	byImage := make(map[string]*accum)
	for _, row := range ds.Rows {
		y, ok := row.Response(responseVar)
		if !ok || math.IsNaN(y) {
			continue
		}
		x := make([]float64, p)
		x[0] = 1
		if idx, found := params.IndicatorIndex(row.Group); found {
			x[idx] = 1
		}
		a := byImage[row.ImageID]
		if a == nil {
			a = &accum{}
			byImage[row.ImageID] = a
		}
		a.rowsX = append(a.rowsX, x)
		a.rowsY = append(a.rowsY, y)
	}
	if len(byImage) == 0 {
		return nil, 0, core.ErrEmptyDataset
	}

	ids := make([]string, 0, len(byImage))
	for id := range byImage {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	clusters := make([]cluster, 0, len(ids))
	n := 0
	for _, id := range ids {
		a := byImage[id]
		cl := cluster{
			n:   len(a.rowsY),
			xtx: mat.NewSymDense(p, nil),
			xty: mat.NewVecDense(p, nil),
			xt1: mat.NewVecDense(p, nil),
		}
		for r, x := range a.rowsX {
			y := a.rowsY[r]
			cl.sumY += y
			cl.yty += y * y
			for i := 0; i < p; i++ {
				if x[i] == 0 {
					continue
				}
				cl.xty.SetVec(i, cl.xty.AtVec(i)+x[i]*y)
				cl.xt1.SetVec(i, cl.xt1.AtVec(i)+x[i])
				for j := i; j < p; j++ {
					cl.xtx.SetSym(i, j, cl.xtx.At(i, j)+x[i]*x[j])
				}
			}
		}
		clusters = append(clusters, cl)
		n += cl.n
	}
	return clusters, n, nil
}

// solveGLS solves the profiled normal equations at one variance ratio
func solveGLS(clusters []cluster, n, p int, lambda float64) (*glsState, error) {
	a := mat.NewSymDense(p, nil)
	u := mat.NewVecDense(p, nil)
	logdetV := 0.0
	for _, cl := range clusters {
		w := lambda / (1 + float64(cl.n)*lambda)
		logdetV += math.Log(1 + float64(cl.n)*lambda)
		for i := 0; i < p; i++ {
			u.SetVec(i, u.AtVec(i)+cl.xty.AtVec(i)-w*cl.sumY*cl.xt1.AtVec(i))
			for j := i; j < p; j++ {
				a.SetSym(i, j, a.At(i, j)+cl.xtx.At(i, j)-w*cl.xt1.AtVec(i)*cl.xt1.AtVec(j))
			}
		}
	}

	state := &glsState{logdetV: logdetV}
	if ok := state.chol.Factorize(a); !ok {
		return nil, core.NewModelFitError("normal equations not positive definite", nil)
	}
	state.beta = mat.NewVecDense(p, nil)
	if err := state.chol.SolveVecTo(state.beta, u); err != nil {
		return nil, core.NewModelFitError("normal equations solve failed", err)
	}

	// Generalized residual sum of squares, again via the per-cluster pieces
	rss := 0.0
	tmp := mat.NewVecDense(p, nil)
	for _, cl := range clusters {
		w := lambda / (1 + float64(cl.n)*lambda)
		tmp.MulVec(cl.xtx, state.beta)
		resSum := cl.sumY - mat.Dot(cl.xt1, state.beta)
		rss += cl.yty - 2*mat.Dot(state.beta, cl.xty) + mat.Dot(state.beta, tmp) - w*resSum*resSum
	}
	if !(rss > 0) || math.IsInf(rss, 0) {
		return nil, core.NewModelFitError("degenerate residual variance", nil)
	}

	df := float64(n - p)
	state.sigma2 = rss / df
	state.crit = df*math.Log(state.sigma2) + logdetV + state.chol.LogDet()
	return state, nil
}

// optimizeREML minimizes the profiled REML criterion over the variance
// ratio. A coarse scan over a log-spaced grid (plus the lambda=0 boundary)
// brackets the minimum; golden-section search refines it. The procedure is
// deterministic for fixed input, as required: fitting either converges or
// fails, never retries.
func optimizeREML(clusters []cluster, n, p int) (float64, *glsState, error) {
	const (
		tMin  = -14.0
		tMax  = 14.0
		tStep = 0.5
	)

	bestLambda := 0.0
	best, err := solveGLS(clusters, n, p, 0)
	if err != nil {
		return 0, nil, err
	}
	bestT := math.Inf(-1)

	for t := tMin; t <= tMax+1e-9; t += tStep {
		lambda := math.Exp(t)
		state, err := solveGLS(clusters, n, p, lambda)
		if err != nil {
			continue
		}
		if state.crit < best.crit {
			best, bestLambda, bestT = state, lambda, t
		}
	}

	// Boundary optimum: no between-image variance survives profiling
	if math.IsInf(bestT, -1) {
		return 0, best, nil
	}

	lo, hi := bestT-tStep, bestT+tStep
	const invPhi = 0.6180339887498949
	x1 := hi - invPhi*(hi-lo)
	x2 := lo + invPhi*(hi-lo)
	f := func(t float64) float64 {
		state, err := solveGLS(clusters, n, p, math.Exp(t))
		if err != nil {
			return math.Inf(1)
		}
		if state.crit < best.crit {
			best, bestLambda = state, math.Exp(t)
		}
		return state.crit
	}
	f1, f2 := f(x1), f(x2)
	for iter := 0; iter < 80 && hi-lo > 1e-10; iter++ {
		if f1 < f2 {
			hi, x2, f2 = x2, x1, f1
			x1 = hi - invPhi*(hi-lo)
			f1 = f(x1)
		} else {
			lo, x1, f1 = x1, x2, f2
			x2 = lo + invPhi*(hi-lo)
			f2 = f(x2)
		}
	}
	return bestLambda, best, nil
}
