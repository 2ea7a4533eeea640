// SPDX-License-Identifier: MIT

package rotate

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/lvfactor/matrix"
)

// Validate checks the option values that do not depend on the loadings.
func (o Options) Validate() error {
	if o.Method < None || o.Method > Promax {
		return fmt.Errorf("%w: %v", ErrUnknownMethod, o.Method)
	}
	if o.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidOptions, o.MaxIterations)
	}
	if !(o.Tolerance > 0) || math.IsInf(o.Tolerance, 0) {
		return fmt.Errorf("%w: tolerance %g", ErrInvalidOptions, o.Tolerance)
	}
	if math.IsNaN(o.Gamma) || math.IsInf(o.Gamma, 0) {
		return fmt.Errorf("%w: gamma %g", ErrInvalidOptions, o.Gamma)
	}
	if o.Method == Promax && (!(o.Kappa >= 1) || math.IsInf(o.Kappa, 0)) {
		return fmt.Errorf("%w: kappa %g", ErrInvalidOptions, o.Kappa)
	}

	return nil
}

// Rotate rotates the p×k loadings L.
//
// Implementation:
//   - Stage 1: validate options and L (non-nil, finite).
//   - Stage 2: None (or k = 1 for a rotating method) returns a copy of L with
//     Transform = I; None is never reflected.
//   - Stage 3: find M with Loadings = L·M: orthomax T (varimax, quartimax),
//     T⁻ᵀ from gradient projection (oblimin), or Tv·U (promax).
//   - Stage 4: reflect every column whose loading sum is negative (and the
//     matching column of M); for oblique methods Phi = (MᵀM)⁻¹ and
//     Structure = Loadings·Phi.
//
// Non-convergence returns the best iterate with a warning.
//
// Errors:
//   - ErrUnknownMethod, ErrInvalidOptions, matrix.ErrNilMatrix,
//     matrix.ErrNaNInf, matrix.ErrSingular (degenerate oblique transform),
//     ctx.Err().
func Rotate(ctx context.Context, L matrix.Matrix, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := matrix.ValidateFinite(L); err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	A, err := dense(L)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}
	k := A.Cols()

	res := &Result{Method: opts.Method}
	var M *matrix.Dense
	switch {
	case opts.Method == None || k == 1:
		if M, err = matrix.NewIdentity(k); err != nil {
			return nil, fmt.Errorf("rotate: %w", err)
		}
		res.Converged = true
	case opts.Method == Varimax || opts.Method == Quartimax:
		gamma := 1.0
		if opts.Method == Quartimax {
			gamma = 0
		}
		M, res.Iterations, res.Converged, res.Criterion, err =
			orthomax(ctx, A, gamma, opts.Normalize, opts.MaxIterations, opts.Tolerance)
	case opts.Method == Oblimin:
		M, res.Iterations, res.Converged, res.Criterion, err =
			oblimin(ctx, A, opts.Gamma, opts.Normalize, opts.MaxIterations, opts.Tolerance)
	case opts.Method == Promax:
		var warns []string
		M, res.Iterations, res.Converged, res.Criterion, warns, err =
			promax(ctx, A, opts.Kappa, opts.Normalize, opts.MaxIterations, opts.Tolerance)
		res.Warnings = append(res.Warnings, warns...)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("rotate: %s: %w", opts.Method, err)
	}
	if !res.Converged {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("Rotation (%s) did not converge after %d iterations", opts.Method, res.Iterations))
	}

	if opts.Method == None {
		res.Loadings = A.Copy()
		res.Structure = A.Copy()
		res.Transform = M

		return res, nil
	}

	if res.Loadings, err = matrix.Mul(A, M); err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}
	reflect(res.Loadings, M)
	res.Transform = M

	if !opts.Method.Oblique() {
		res.Structure = res.Loadings.Copy()

		return res, nil
	}
	if res.Phi, err = factorCorrelations(M); err != nil {
		return nil, fmt.Errorf("rotate: %s: %w", opts.Method, err)
	}
	if res.Structure, err = matrix.Mul(res.Loadings, res.Phi); err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}

	return res, nil
}

// reflect flips every column of L whose sum is negative, together with the
// same column of M, so L = A·M still holds.
func reflect(L, M *matrix.Dense) {
	for j := 0; j < L.Cols(); j++ {
		var sum float64
		for _, v := range L.Col(j) {
			sum += v
		}
		if sum >= 0 {
			continue
		}
		for _, m := range []*matrix.Dense{L, M} {
			for i := 0; i < m.Rows(); i++ {
				m.RowView(i)[j] *= -1
			}
		}
	}
}

// factorCorrelations returns Phi = (MᵀM)⁻¹, symmetrized.
func factorCorrelations(M *matrix.Dense) (*matrix.Dense, error) {
	Mt, err := matrix.Transpose(M)
	if err != nil {
		return nil, err
	}
	MtM, err := matrix.Mul(Mt, M)
	if err != nil {
		return nil, err
	}
	phi, err := matrix.Inverse(MtM)
	if err != nil {
		return nil, err
	}

	return matrix.Symmetrize(phi)
}

// dense returns a fresh *Dense copy of m.
func dense(m matrix.Matrix) (*matrix.Dense, error) {
	if d, ok := m.Clone().(*matrix.Dense); ok {
		return d, nil
	}
	d, err := matrix.NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, err
			}
			_ = d.Set(i, j, v)
		}
	}

	return d, nil
}
