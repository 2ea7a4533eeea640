// SPDX-License-Identifier: MIT

package extract

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/lvfactor/eigen"
	"github.com/katalvlaran/lvfactor/matrix"
)

// Extract produces the unrotated loadings of the p×p correlation matrix R.
//
// Implementation:
//   - Stage 1: validate R (square) and opts against p; configuration errors
//     surface here, before any decomposition.
//   - Stage 2: decompose R and pick k from its eigenvalues with opts.Rule.
//   - Stage 3 (PC): L[:,f] = v_f·√λ_f, h² = row sums of squares.
//   - Stage 3 (PAF): start from the initial communalities, then repeatedly put
//     h² on the diagonal, decompose, rebuild L and h², until
//     max|Δh²| < Tolerance or MaxIterations. Heywood rows (h² > 1) are
//     scaled back to h² = 1.
//
// Non-convergence, clamped factor counts and Heywood cases are warnings.
//
// Errors:
//   - matrix.ErrDimensionMismatch, ErrInvalidFactorCount, ErrInvalidRule,
//     ErrInvalidOptions, ErrUnknownMethod, eigen errors, ctx.Err().
func Extract(ctx context.Context, R matrix.Matrix, opts Options) (*Result, error) {
	if err := matrix.ValidateSquare(R); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	p := R.Rows()
	if err := opts.Validate(p); err != nil {
		return nil, err
	}

	full, err := eigen.Solve(ctx, R, opts.Eigen)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	res := &Result{Method: opts.Method, Eigenvalues: full.Values}
	res.Warnings = append(res.Warnings, full.Warnings...)

	k, warn := retain(full.Values, opts.Rule)
	res.Factors = k
	if warn != "" {
		res.Warnings = append(res.Warnings, warn)
	}

	switch opts.Method {
	case PrincipalAxis:
		err = principalAxis(ctx, R, k, opts, res)
		if err != nil {
			return nil, err
		}
	default:
		var warns []string
		res.Loadings, warns = loadings(full, k)
		res.Warnings = append(res.Warnings, warns...)
		res.Communalities = rowSumSquares(res.Loadings)
		res.InitialCommunalities = fill(p, 1)
		res.ReducedEigenvalues = full.Values
		res.Converged = true
	}

	return res, nil
}

// retain applies the factor-count rule to eigenvalues sorted descending.
// The rule has been validated, so the result is always in 1..p.
func retain(values []float64, rule FactorRule) (int, string) {
	p := len(values)
	switch rule.Kind {
	case FixedCount:
		return int(rule.Value), ""
	case VarianceThreshold:
		var total float64
		for _, l := range values {
			total += l
		}
		if total <= 0 {
			return 1, "Eigenvalues sum to zero; retaining 1 factor"
		}
		var cum float64
		for f, l := range values {
			cum += l
			if 100*cum/total >= rule.Value-1e-9 {
				return f + 1, ""
			}
		}

		return p, ""
	default:
		k := 0
		for _, l := range values {
			if l > rule.Value {
				k++
			}
		}
		if k == 0 {
			return 1, fmt.Sprintf("No eigenvalue exceeds %g; retaining 1 factor", rule.Value)
		}

		return k, ""
	}
}

// loadings scales the first k eigenvectors by √λ. Non-positive eigenvalues
// yield zero columns and a warning.
func loadings(dec *eigen.Decomposition, k int) (*matrix.Dense, []string) {
	p := dec.Vectors.Rows()
	L, _ := matrix.NewDense(p, k) // p, k ≥ 1 after validation
	var warns []string
	for f := 0; f < k; f++ {
		lambda := dec.Values[f]
		if lambda <= 0 {
			warns = append(warns, fmt.Sprintf("Factor %d has a non-positive eigenvalue; its loadings are zero", f+1))
			continue
		}
		s := math.Sqrt(lambda)
		for i := 0; i < p; i++ {
			v, _ := dec.Vectors.At(i, f)
			_ = L.Set(i, f, v*s)
		}
	}

	return L, warns
}

// principalAxis runs the iterated principal-axis loop and fills res.
func principalAxis(ctx context.Context, R matrix.Matrix, k int, opts Options, res *Result) error {
	p := R.Rows()
	work, err := matrix.Symmetrize(R)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	h, warns := initialCommunalities(R, opts.Initial)
	res.Warnings = append(res.Warnings, warns...)
	res.InitialCommunalities = append([]float64(nil), h...)

	var (
		dec      *eigen.Decomposition
		L        *matrix.Dense
		next     []float64
		delta    float64
		seen     = make(map[string]struct{})
		loadWarn []string
	)
	for it := 1; it <= opts.MaxIterations; it++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		for i := 0; i < p; i++ {
			_ = work.Set(i, i, h[i])
		}
		dec, err = eigen.Solve(ctx, work, opts.Eigen)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		for _, w := range dec.Warnings {
			if _, dup := seen[w]; !dup {
				seen[w] = struct{}{}
				res.Warnings = append(res.Warnings, w)
			}
		}
		L, loadWarn = loadings(dec, k)
		next = rowSumSquares(L)

		delta = 0
		for i := range next {
			if d := math.Abs(next[i] - h[i]); d > delta {
				delta = d
			}
		}
		h = next
		res.Iterations = it
		if delta < opts.Tolerance {
			res.Converged = true
			break
		}
	}
	res.Warnings = append(res.Warnings, loadWarn...)
	if !res.Converged {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("Principal axis factoring did not converge after %d iterations", res.Iterations))
	}

	for i := 0; i < p; i++ {
		if h[i] <= 1 {
			continue
		}
		scale := 1 / math.Sqrt(h[i])
		row := L.RowView(i)
		for f := range row {
			row[f] *= scale
		}
		h[i] = 1
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("Variable %s has a communality above 1 (Heywood case); clamped to 1", label(opts.Names, i)))
	}

	res.Loadings = L
	res.Communalities = h
	res.ReducedEigenvalues = dec.Values

	return nil
}

// initialCommunalities returns the PAF starting diagonal for R.
func initialCommunalities(R matrix.Matrix, how InitialCommunality) ([]float64, []string) {
	p := R.Rows()
	switch how {
	case Unity:
		return fill(p, 1), nil
	case MaxCorrelation:
		return maxAbsCorrelation(R), nil
	}

	inv, err := matrix.Inverse(R)
	if err != nil {
		return maxAbsCorrelation(R), []string{
			"Correlation matrix is singular; initial communalities use the maximum absolute correlation",
		}
	}
	h := make([]float64, p)
	for i := 0; i < p; i++ {
		d, _ := inv.At(i, i)
		h[i] = clamp01(1 - 1/d)
	}

	return h, nil
}

func maxAbsCorrelation(R matrix.Matrix) []float64 {
	p := R.Rows()
	h := make([]float64, p)
	if p == 1 {
		h[0] = 1
		return h
	}
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i == j {
				continue
			}
			v, _ := R.At(i, j)
			if a := math.Abs(v); a > h[i] {
				h[i] = a
			}
		}
		h[i] = clamp01(h[i])
	}

	return h
}

func rowSumSquares(L *matrix.Dense) []float64 {
	out := make([]float64, L.Rows())
	for i := range out {
		for _, v := range L.RowView(i) {
			out[i] += v * v
		}
	}

	return out
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}

	return v
}

func label(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}

	return fmt.Sprintf("V%d", i+1)
}
