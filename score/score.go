// SPDX-License-Identifier: MIT

package score

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/lvfactor/eigen"
	"github.com/katalvlaran/lvfactor/matrix"
)

var (
	// ErrUnknownMethod is returned for an unrecognized scoring method.
	ErrUnknownMethod = errors.New("score: unknown method")

	// ErrShape is returned when Z, R, L (and Phi) do not agree on p and k.
	ErrShape = fmt.Errorf("score: %w", matrix.ErrDimensionMismatch)
)

// SingularWarning is recorded when R cannot be inverted.
const SingularWarning = "Correlation matrix is singular; factor scores use a pseudo-inverse"

// minUniqueness floors Ψ_i for Bartlett weights.
const minUniqueness = 1e-6

// Method selects the score estimator.
type Method int

const (
	// Regression (Thurstone) weights W = R⁻¹·L·Phi.
	Regression Method = iota
	// Bartlett weights W = Ψ⁻¹L(LᵀΨ⁻¹L)⁻¹.
	Bartlett
)

// String returns the config name of m.
func (m Method) String() string {
	switch m {
	case Regression:
		return "regression"
	case Bartlett:
		return "bartlett"
	}

	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod accepts "regression"/"thurstone" and "bartlett".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "regression", "thurstone":
		return Regression, nil
	case "bartlett":
		return Bartlett, nil
	}

	return Regression, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Options configures Compute.
//   - Phi: k×k factor correlations of an oblique solution; nil means orthogonal.
//   - Communalities: h² used for Bartlett uniquenesses; nil means row sums of
//     squared loadings.
//   - PseudoInverseTolerance: relative eigenvalue cut for the singular-R fallback.
type Options struct {
	Method                 Method
	Phi                    matrix.Matrix
	Communalities          []float64
	PseudoInverseTolerance float64
	Eigen                  eigen.Options
}

// DefaultOptions returns regression scoring.
func DefaultOptions() Options {
	return Options{
		Method:                 Regression,
		PseudoInverseTolerance: eigen.DefaultPseudoInverseTolerance,
		Eigen:                  eigen.DefaultOptions(),
	}
}

// Result holds N×k scores and the p×k weights that produced them.
type Result struct {
	Method        Method
	Scores        *matrix.Dense
	Weights       *matrix.Dense
	Incomplete    int
	PseudoInverse bool
	Warnings      []string
}

// Compute derives factor scores for the standardized N×p data Z from the p×p
// correlation matrix R and the final p×k loadings L.
//
// Implementation:
//   - Stage 1: validate shapes (Z.Cols = R.Rows = L.Rows, Phi k×k).
//   - Stage 2: build weights W (p×k). Regression: S = L·Phi (or L), W = R⁻¹·S,
//     with R⁻¹ replaced by the eigen pseudo-inverse and a warning when R is
//     singular. Bartlett: Ψ = diag(1−h²) floored at 1e-6, W = Ψ⁻¹L(LᵀΨ⁻¹L)⁻¹.
//   - Stage 3: Scores = Z·W row by row; a row with any missing value gets NaN
//     scores and is counted in Incomplete (one summary warning).
//
// Errors:
//   - ErrShape, ErrUnknownMethod, matrix.ErrNilMatrix, eigen errors, ctx.Err().
//
// Complexity:
//   - Time O(p³ + N·p·k), Space O(N·k + p²).
func Compute(ctx context.Context, Z, R, L matrix.Matrix, opts Options) (*Result, error) {
	for _, m := range []matrix.Matrix{Z, R, L} {
		if err := matrix.ValidateNotNil(m); err != nil {
			return nil, fmt.Errorf("score: %w", err)
		}
	}
	p, k := L.Rows(), L.Cols()
	if R.Rows() != p || R.Cols() != p || Z.Cols() != p {
		return nil, ErrShape
	}
	if opts.Phi != nil && (opts.Phi.Rows() != k || opts.Phi.Cols() != k) {
		return nil, ErrShape
	}
	if opts.Communalities != nil && len(opts.Communalities) != p {
		return nil, ErrShape
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Method: opts.Method}
	var err error
	switch opts.Method {
	case Regression:
		res.Weights, err = res.regressionWeights(ctx, R, L, opts)
	case Bartlett:
		res.Weights, err = res.bartlettWeights(ctx, L, opts)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, opts.Method)
	}
	if err != nil {
		return nil, err
	}

	if res.Scores, err = res.apply(ctx, Z); err != nil {
		return nil, err
	}
	if res.Incomplete > 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%d observations have missing values; their factor scores are NaN", res.Incomplete))
	}

	return res, nil
}

func (res *Result) regressionWeights(ctx context.Context, R, L matrix.Matrix, opts Options) (*matrix.Dense, error) {
	S := L
	if opts.Phi != nil {
		lphi, err := matrix.Mul(L, opts.Phi)
		if err != nil {
			return nil, fmt.Errorf("score: %w", err)
		}
		S = lphi
	}

	rinv, err := res.invert(ctx, R, opts)
	if err != nil {
		return nil, err
	}
	W, err := matrix.Mul(rinv, S)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	return W, nil
}

func (res *Result) bartlettWeights(ctx context.Context, L matrix.Matrix, opts Options) (*matrix.Dense, error) {
	p, k := L.Rows(), L.Cols()
	h := opts.Communalities
	if h == nil {
		h = make([]float64, p)
		for i := 0; i < p; i++ {
			for f := 0; f < k; f++ {
				v, _ := L.At(i, f)
				h[i] += v * v
			}
		}
	}

	// Ψ⁻¹L
	pl, err := matrix.NewDense(p, k)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	floored := false
	for i := 0; i < p; i++ {
		psi := 1 - h[i]
		if psi < minUniqueness {
			psi = minUniqueness
			floored = true
		}
		row := pl.RowView(i)
		for f := 0; f < k; f++ {
			v, _ := L.At(i, f)
			row[f] = v / psi
		}
	}
	if floored {
		res.Warnings = append(res.Warnings, "Some uniquenesses are near zero; Bartlett scores floor them at 1e-6")
	}

	Lt, err := matrix.Transpose(L)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	M, err := matrix.Mul(Lt, pl)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	minv, err := res.invert(ctx, M, opts)
	if err != nil {
		return nil, err
	}
	W, err := matrix.Mul(pl, minv)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	return W, nil
}

// invert returns m⁻¹, or its eigen pseudo-inverse (with SingularWarning)
// when m is singular.
func (res *Result) invert(ctx context.Context, m matrix.Matrix, opts Options) (*matrix.Dense, error) {
	inv, err := matrix.Inverse(m)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, matrix.ErrSingular) {
		return nil, fmt.Errorf("score: %w", err)
	}

	dec, err := eigen.Solve(ctx, m, opts.Eigen)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	pinv, _, err := dec.PseudoInverse(opts.PseudoInverseTolerance)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	if !res.PseudoInverse {
		res.PseudoInverse = true
		res.Warnings = append(res.Warnings, SingularWarning)
	}
	res.Warnings = append(res.Warnings, dec.Warnings...)

	return pinv, nil
}

// apply computes Z·W row by row as Wᵀ·z, leaving NaN rows for incomplete observations.
func (res *Result) apply(ctx context.Context, Z matrix.Matrix) (*matrix.Dense, error) {
	n, p, k := Z.Rows(), Z.Cols(), res.Weights.Cols()
	out, err := matrix.NewDense(n, k)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	Wt, err := matrix.Transpose(res.Weights)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	z := make([]float64, p)
	for r := 0; r < n; r++ {
		if r%1024 == 0 {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := out.RowView(r)
		complete := true
		for j := 0; j < p; j++ {
			z[j], _ = Z.At(r, j)
			if math.IsNaN(z[j]) || math.IsInf(z[j], 0) {
				complete = false
			}
		}
		if !complete {
			res.Incomplete++
			for f := range row {
				row[f] = math.NaN()
			}
			continue
		}
		scores, err := matrix.MatVec(Wt, z)
		if err != nil {
			return nil, fmt.Errorf("score: %w", err)
		}
		copy(row, scores)
	}

	return out, nil
}
