// SPDX-License-Identifier: MIT

package eigen

import (
	"math"

	"github.com/katalvlaran/lvfactor/matrix"
)

// Reconstruct returns V·diag(λ)·Vᵀ.
func (d *Decomposition) Reconstruct() (*matrix.Dense, error) {
	return d.spectral(func(lambda float64) float64 { return lambda }, math.Inf(-1))
}

// PseudoInverse returns the Moore-Penrose inverse V·diag(1/λ)·Vᵀ restricted
// to eigenvalues λ > rtol·λmax, and the number of eigenvalues kept (the
// numerical rank). rtol ≤ 0 means DefaultPseudoInverseTolerance. If λmax ≤ 0
// the result is the zero matrix with rank 0.
func (d *Decomposition) PseudoInverse(rtol float64) (*matrix.Dense, int, error) {
	if d == nil || d.Vectors == nil || len(d.Values) == 0 {
		return nil, 0, ErrEmptyDecomposition
	}
	if rtol <= 0 {
		rtol = DefaultPseudoInverseTolerance
	}
	cut := rtol * d.Values[0]
	if d.Values[0] <= 0 {
		cut = math.Inf(1)
	}
	rank := 0
	for _, l := range d.Values {
		if l > cut {
			rank++
		}
	}
	inv, err := d.spectral(func(lambda float64) float64 { return 1 / lambda }, cut)
	if err != nil {
		return nil, 0, err
	}

	return inv, rank, nil
}

// ConditionNumber returns λmax/λmin, or +Inf when λmin ≤ 0.
func (d *Decomposition) ConditionNumber() float64 {
	if d == nil || len(d.Values) == 0 {
		return math.Inf(1)
	}
	lo := d.Values[len(d.Values)-1]
	if lo <= 0 {
		return math.Inf(1)
	}

	return d.Values[0] / lo
}

// Sum returns Σλ, which equals the trace of the decomposed matrix.
func (d *Decomposition) Sum() float64 {
	var s float64
	for _, l := range d.Values {
		s += l
	}

	return s
}

// spectral builds V·diag(f(λ))·Vᵀ, with λ ≤ cut contributing zero.
func (d *Decomposition) spectral(f func(float64) float64, cut float64) (*matrix.Dense, error) {
	if d == nil || d.Vectors == nil || len(d.Values) == 0 {
		return nil, ErrEmptyDecomposition
	}
	w := make([]float64, len(d.Values))
	for k, lambda := range d.Values {
		if lambda > cut {
			w[k] = f(lambda)
		}
	}
	D, err := matrix.NewDiagonal(w)
	if err != nil {
		return nil, err
	}
	VD, err := matrix.Mul(d.Vectors, D)
	if err != nil {
		return nil, err
	}
	Vt, err := matrix.Transpose(d.Vectors)
	if err != nil {
		return nil, err
	}

	return matrix.Mul(VD, Vt)
}
