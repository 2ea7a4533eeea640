// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on any Matrix implementation:
// multiplication, transpose, scaling, matrix-vector products and LU-based
// inversion. All functions perform strict fail-fast validation and return
// clear errors on dimension mismatches.
//
// Notes:
//   - Every kernel has a *Dense fast-path over the flat buffer and a generic
//     At/Set fallback with the same loop order, so both paths agree bitwise.
//   - Inputs are never mutated; results are freshly allocated *Dense.

package matrix

import (
	"fmt"
	"math"
)

// ZeroSum is the initial value for dot products and substitutions.
const ZeroSum = 0.0

// SingularTol is the relative pivot threshold used by LU/Inverse:
// |U[i,i]| ≤ SingularTol·max|A| is treated as a zero pivot.
const SingularTol = 1e-12

// Operation name constants for unified error wrapping.
const (
	opMul        = "Mul"
	opTranspose  = "Transpose"
	opScale      = "Scale"
	opMatVec     = "MatVec"
	opLU         = "LU"
	opInverse    = "Inverse"
	opSymmetrize = "Symmetrize"
	opTrace      = "Trace"
)

// matrixErrorf wraps err with an operation tag, preserving the sentinel via %w.
// Callers gate with `if err != nil` so a nil cause is never wrapped.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Mul performs standard matrix multiplication C = A × B.
//
// Implementation:
//   - Stage 1: Validate A,B (not nil) and inner dimensions (A.Cols == B.Rows).
//   - Stage 2: If both are *Dense use i→k→j over row-major strides, skipping
//     zero A[i,k]; otherwise i→j→k through At.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	var i, j, k int
	var av, bv, acc float64
	da, okA := a.(*Dense)
	db, okB := b.(*Dense)
	if okA && okB {
		var baseA, baseB, baseR int
		for i = 0; i < aRows; i++ {
			baseA = i * aCols
			baseR = i * bCols
			for k = 0; k < aCols; k++ {
				av = da.data[baseA+k]
				if av == 0 {
					continue
				}
				baseB = k * bCols
				for j = 0; j < bCols; j++ {
					res.data[baseR+j] += av * db.data[baseB+j]
				}
			}
		}
		return res, nil
	}

	for i = 0; i < aRows; i++ {
		for j = 0; j < bCols; j++ {
			acc = ZeroSum
			for k = 0; k < aCols; k++ {
				if av, err = a.At(i, k); err != nil {
					return nil, matrixErrorf(opMul, err)
				}
				if av == 0 {
					continue
				}
				if bv, err = b.At(k, j); err != nil {
					return nil, matrixErrorf(opMul, err)
				}
				acc += av * bv
			}
			res.data[i*bCols+j] = acc
		}
	}

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
// Complexity: Time O(r*c), Space O(r*c).
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(cols, rows)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	var i, j int
	if dm, ok := m.(*Dense); ok {
		var base int
		for i = 0; i < rows; i++ {
			base = i * cols
			for j = 0; j < cols; j++ {
				res.data[j*rows+i] = dm.data[base+j]
			}
		}
		return res, nil
	}

	var v float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opTranspose, err)
			}
			res.data[j*rows+i] = v
		}
	}

	return res, nil
}

// Scale returns a new matrix whose elements are alpha * m[i,j].
// alpha = 0 yields an explicit zero matrix with the same shape.
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	if dm, ok := m.(*Dense); ok {
		for idx, v := range dm.data {
			res.data[idx] = v * alpha
		}
		return res, nil
	}

	var v float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opScale, err)
			}
			res.data[i*cols+j] = v * alpha
		}
	}

	return res, nil
}

// MatVec computes y = m * x for a column vector x.
//
// Contract: m non-nil; len(x) == m.Cols().
// Determinism: fixed i→j loop order.
// Complexity: Time O(r*c), Space O(r) for y.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	rows, cols := m.Rows(), m.Cols()
	y := make([]float64, rows)

	var i, j int
	var acc, v float64
	var err error
	if d, ok := m.(*Dense); ok {
		var base int
		for i = 0; i < rows; i++ {
			acc = ZeroSum
			base = i * cols
			for j = 0; j < cols; j++ {
				acc += d.data[base+j] * x[j]
			}
			y[i] = acc
		}
		return y, nil
	}

	for i = 0; i < rows; i++ {
		acc = ZeroSum
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opMatVec, err)
			}
			acc += v * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// Trace returns Σ m[i,i] of a square matrix.
func Trace(m Matrix) (float64, error) {
	if err := ValidateSquare(m); err != nil {
		return 0, matrixErrorf(opTrace, err)
	}
	var sum float64
	for i := 0; i < m.Rows(); i++ {
		v, err := m.At(i, i)
		if err != nil {
			return 0, matrixErrorf(opTrace, err)
		}
		sum += v
	}

	return sum, nil
}

// Symmetrize returns (m + mᵀ)/2 for a square m. Used to scrub floating-point
// drift before handing products to the symmetric eigen solver.
func Symmetrize(m Matrix) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opSymmetrize, err)
	}
	n := m.Rows()
	res, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opSymmetrize, err)
	}
	var aij, aji float64
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if aij, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opSymmetrize, err)
			}
			if aji, err = m.At(j, i); err != nil {
				return nil, matrixErrorf(opSymmetrize, err)
			}
			avg := 0.5 * (aij + aji)
			res.data[i*n+j], res.data[j*n+i] = avg, avg
		}
	}

	return res, nil
}

// LU computes the Doolittle factorization A = L*U with unit diagonal on L (no pivoting).
//
// Implementation:
//   - Stage 1: Validate m (not nil, square); copy into a Dense work buffer.
//   - Stage 2: For i=0..n-1, build row i of U and column i of L in fixed order.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrSingular (|U[i,i]| ≤ SingularTol·max|A|).
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
//
// Notes:
//   - No pivoting keeps results bit-for-bit reproducible. Correlation matrices
//     are symmetric positive semi-definite, where Doolittle without pivoting only
//     breaks down on (near-)singularity, which is exactly what callers must detect.
func LU(m Matrix) (*Dense, *Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	n := m.Rows()
	a, err := toDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	L, err := NewIdentity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	U, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}

	var scale float64
	for _, v := range a.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, matrixErrorf(opLU, ErrNaNInf)
		}
		if av := math.Abs(v); av > scale {
			scale = av
		}
	}
	if scale == 0 {
		return nil, nil, matrixErrorf(opLU, ErrSingular)
	}
	threshold := SingularTol * scale

	var i, j, k, baseI, baseJ int
	var sum, pivot float64
	for i = 0; i < n; i++ {
		baseI = i * n
		// U[i][j] for j >= i
		for j = i; j < n; j++ {
			sum = ZeroSum
			for k = 0; k < i; k++ {
				sum += L.data[baseI+k] * U.data[k*n+j]
			}
			U.data[baseI+j] = a.data[baseI+j] - sum
		}
		pivot = U.data[baseI+i]
		if math.Abs(pivot) <= threshold {
			return nil, nil, matrixErrorf(opLU, ErrSingular)
		}
		// L[j][i] for j > i
		for j = i + 1; j < n; j++ {
			baseJ = j * n
			sum = ZeroSum
			for k = 0; k < i; k++ {
				sum += L.data[baseJ+k] * U.data[k*n+i]
			}
			L.data[baseJ+i] = (a.data[baseJ+i] - sum) / pivot
		}
	}

	return L, U, nil
}

// Inverse computes A^{-1} by Gauss-Jordan elimination with partial pivoting.
//
// Implementation:
//   - Stage 1: Validate m (not nil, square, finite); copy into an augmented
//     [A | I] work buffer.
//   - Stage 2: For each column pick the largest |pivot| at or below the
//     diagonal (first row wins ties), swap, normalize and eliminate above
//     and below.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrSingular, ErrNaNInf.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
//
// Notes:
//   - Pivoting makes Inverse usable for general rotation matrices, not only
//     for the SPD correlation matrices LU targets.
func Inverse(m Matrix) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	src, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	n := src.r
	w := 2 * n
	aug := make([]float64, n*w)

	var scale float64
	var i, j, k int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			v := src.data[i*n+j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, matrixErrorf(opInverse, ErrNaNInf)
			}
			if av := math.Abs(v); av > scale {
				scale = av
			}
			aug[i*w+j] = v
		}
		aug[i*w+n+i] = 1.0
	}
	if scale == 0 {
		return nil, matrixErrorf(opInverse, ErrSingular)
	}
	threshold := SingularTol * scale

	var best, pivot, factor float64
	var p int
	for k = 0; k < n; k++ {
		p, best = k, math.Abs(aug[k*w+k])
		for i = k + 1; i < n; i++ {
			if av := math.Abs(aug[i*w+k]); av > best {
				p, best = i, av
			}
		}
		if best <= threshold {
			return nil, matrixErrorf(opInverse, ErrSingular)
		}
		if p != k {
			for j = 0; j < w; j++ {
				aug[k*w+j], aug[p*w+j] = aug[p*w+j], aug[k*w+j]
			}
		}
		pivot = aug[k*w+k]
		for j = 0; j < w; j++ {
			aug[k*w+j] /= pivot
		}
		for i = 0; i < n; i++ {
			if i == k {
				continue
			}
			factor = aug[i*w+k]
			if factor == 0 {
				continue
			}
			for j = 0; j < w; j++ {
				aug[i*w+j] -= factor * aug[k*w+j]
			}
		}
	}

	inv := &Dense{r: n, c: n, data: make([]float64, n*n)}
	for i = 0; i < n; i++ {
		copy(inv.data[i*n:(i+1)*n], aug[i*w+n:(i+1)*w])
	}

	return inv, nil
}

// toDense returns m itself when it is a *Dense, else a materialized copy.
func toDense(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d, nil
	}
	r, c := m.Rows(), m.Cols()
	d, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	var v float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, err
			}
			d.data[i*c+j] = v
		}
	}

	return d, nil
}
