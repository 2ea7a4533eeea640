// SPDX-License-Identifier: MIT

package rotate

import (
	"context"
	"math"

	"github.com/katalvlaran/lvfactor/matrix"
)

const promaxFallback = "Promax target could not be fitted; returning the varimax solution"

// promax runs varimax, builds the target P = Lv ∘ |Lv|^(κ−1), fits
// U = (LvᵀLv)⁻¹·Lvᵀ·P by least squares and rescales U's columns so that
// (UᵀU)⁻¹ has a unit diagonal. It returns M = Tv·U with L = A·M.
//
// A singular fit falls back to the varimax transform with a warning.
func promax(ctx context.Context, A *matrix.Dense, kappa float64, normalize bool, maxIter int, tol float64) (
	M *matrix.Dense, iterations int, converged bool, crit float64, warns []string, err error) {
	Tv, iterations, converged, crit, err := orthomax(ctx, A, 1, normalize, maxIter, tol)
	if err != nil {
		return nil, iterations, false, crit, nil, err
	}
	U, ok := promaxTarget(A, Tv, kappa)
	if !ok {
		return Tv, iterations, converged, crit, []string{promaxFallback}, nil
	}
	M, err = matrix.Mul(Tv, U)
	if err != nil {
		return nil, iterations, converged, crit, nil, err
	}

	return M, iterations, converged, crit, nil, nil
}

func promaxTarget(A, Tv *matrix.Dense, kappa float64) (*matrix.Dense, bool) {
	Lv, err := matrix.Mul(A, Tv)
	if err != nil {
		return nil, false
	}
	P := Lv.Copy()
	for i := 0; i < P.Rows(); i++ {
		row := P.RowView(i)
		for j, v := range row {
			row[j] = v * math.Pow(math.Abs(v), kappa-1)
		}
	}

	Lt, err := matrix.Transpose(Lv)
	if err != nil {
		return nil, false
	}
	LtL, err := matrix.Mul(Lt, Lv)
	if err != nil {
		return nil, false
	}
	invLtL, err := matrix.Inverse(LtL)
	if err != nil {
		return nil, false
	}
	LtP, err := matrix.Mul(Lt, P)
	if err != nil {
		return nil, false
	}
	U, err := matrix.Mul(invLtL, LtP)
	if err != nil {
		return nil, false
	}

	Ut, err := matrix.Transpose(U)
	if err != nil {
		return nil, false
	}
	UtU, err := matrix.Mul(Ut, U)
	if err != nil {
		return nil, false
	}
	invUtU, err := matrix.Inverse(UtU)
	if err != nil {
		return nil, false
	}
	d := invUtU.Diag()
	for j, v := range d {
		if !(v > 0) {
			return nil, false
		}
		d[j] = math.Sqrt(v)
	}
	for i := 0; i < U.Rows(); i++ {
		row := U.RowView(i)
		for j := range row {
			row[j] *= d[j]
		}
	}

	return U, true
}
