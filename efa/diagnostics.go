// SPDX-License-Identifier: MIT

package efa

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lvfactor/matrix"
)

// kmo returns the Kaiser-Meyer-Olkin measure and per-variable MSA.
//
// Implementation:
//   - Stage 1: Q = R⁻¹; anti-image partials a_ij = −q_ij/√(q_ii·q_jj).
//   - Stage 2: MSA_i = Σ_j≠i r²_ij / (Σ_j≠i r²_ij + Σ_j≠i a²_ij); KMO pools
//     the same sums over all i.
//
// ok is false when p < 2, R is singular or an anti-image variance is not
// positive.
func kmo(R *matrix.Dense) (total float64, msa []float64, ok bool) {
	p := R.Rows()
	if p < 2 {
		return 0, nil, false
	}
	Q, err := matrix.Inverse(R)
	if err != nil {
		return 0, nil, false
	}
	for i := 0; i < p; i++ {
		if q, _ := Q.At(i, i); !(q > 0) {
			return 0, nil, false
		}
	}

	msa = make([]float64, p)
	var sumR, sumA float64
	for i := 0; i < p; i++ {
		qii, _ := Q.At(i, i)
		var r2, a2 float64
		for j := 0; j < p; j++ {
			if j == i {
				continue
			}
			r, _ := R.At(i, j)
			qij, _ := Q.At(i, j)
			qjj, _ := Q.At(j, j)
			a := -qij / math.Sqrt(qii*qjj)
			r2 += r * r
			a2 += a * a
		}
		if r2+a2 == 0 {
			return 0, nil, false
		}
		msa[i] = r2 / (r2 + a2)
		sumR += r2
		sumA += a2
	}

	return sumR / (sumR + sumA), msa, true
}

// sphericity runs Bartlett's test on a p×p correlation matrix estimated from
// n observations:
//
//	χ² = −(n − 1 − (2p+5)/6)·ln|R|, df = p(p−1)/2.
//
// It also returns |R|. The test is nil when p < 2, |R| ≤ 0 or the sample is
// too small for the correction term.
func sphericity(R *matrix.Dense, n int) (*Sphericity, float64) {
	p := R.Rows()
	det := determinant(R)
	factor := float64(n) - 1 - float64(2*p+5)/6
	if p < 2 || !(det > 0) || factor <= 0 {
		return nil, det
	}

	df := p * (p - 1) / 2
	chi := -factor * math.Log(det)
	if chi < 0 {
		chi = 0
	}

	return &Sphericity{
		ChiSquare:    chi,
		DF:           df,
		PValue:       distuv.ChiSquared{K: float64(df)}.Survival(chi),
		Observations: n,
	}, det
}

// determinant is the product of the LU pivots of R; a singular R yields 0.
func determinant(R *matrix.Dense) float64 {
	_, U, err := matrix.LU(R)
	if err != nil {
		return 0
	}
	det := 1.0
	for _, u := range U.Diag() {
		det *= u
	}

	return det
}

// rmsr is the root mean square of the off-diagonal residuals R − L·Lᵀ of an
// unrotated solution; rotation leaves L·Φ·Lᵀ unchanged.
func rmsr(R, L *matrix.Dense) (float64, error) {
	Lt, err := matrix.Transpose(L)
	if err != nil {
		return 0, err
	}
	fit, err := matrix.Mul(L, Lt)
	if err != nil {
		return 0, err
	}
	if err = matrix.ValidateSameShape(R, fit); err != nil {
		return 0, err
	}
	p := R.Rows()
	if p < 2 {
		return 0, nil
	}
	var sum float64
	for i := 0; i < p; i++ {
		ri, fi := R.RowView(i), fit.RowView(i)
		for j := i + 1; j < p; j++ {
			d := ri[j] - fi[j]
			sum += d * d
		}
	}

	return math.Sqrt(sum / float64(p*(p-1)/2)), nil
}

// minPairCount is the smallest off-diagonal joint observation count; every
// correlation in R rests on at least that many rows.
func minPairCount(counts [][]int) int {
	n := -1
	for i := range counts {
		for j := i + 1; j < len(counts[i]); j++ {
			if n < 0 || counts[i][j] < n {
				n = counts[i][j]
			}
		}
	}
	if n < 0 && len(counts) == 1 {
		n = counts[0][0]
	}

	return n
}

// varianceExplained returns per-factor SS loadings as a percentage of p and
// their running sum.
func varianceExplained(L *matrix.Dense) (per, cum []float64) {
	p, k := L.Rows(), L.Cols()
	per = make([]float64, k)
	cum = make([]float64, k)
	for i := 0; i < p; i++ {
		for f, v := range L.RowView(i) {
			per[f] += v * v
		}
	}
	var run float64
	for f := range per {
		per[f] = per[f] / float64(p) * 100
		run += per[f]
		cum[f] = run
	}

	return per, cum
}
