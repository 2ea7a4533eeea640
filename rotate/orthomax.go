// SPDX-License-Identifier: MIT

package rotate

import (
	"context"
	"math"

	"github.com/katalvlaran/lvfactor/matrix"
)

// orthomax rotates A by pairwise planar rotations maximizing
//
//	f = Σ_j [ Σ_i L⁴_ij − γ/p·(Σ_i L²_ij)² ]
//
// and returns the k×k orthogonal T with L = A·T.
//
// Implementation:
//   - Stage 1: work on a copy (row-normalized when normalize is set).
//   - Stage 2: per pass, for every column pair (a,b) compute
//     u = x²−y², v = 2xy, A = Σu, B = Σv, C = Σ(u²−v²), D = 2Σuv and the
//     optimal angle φ = ¼·atan2(D − 2γAB/p, C − γ(A²−B²)/p); rotate both
//     columns of the work matrix and of T.
//   - Stage 3: stop when |f − f_prev| ≤ tol·max(1,|f|) or after maxIter passes.
//
// Complexity: O(maxIter·k²·p).
func orthomax(ctx context.Context, A *matrix.Dense, gamma float64, normalize bool, maxIter int, tol float64) (
	T *matrix.Dense, iterations int, converged bool, crit float64, err error) {
	p, k := A.Rows(), A.Cols()
	work := A.Copy()
	if normalize {
		kaiserNormalize(work)
	}
	T, err = matrix.NewIdentity(k)
	if err != nil {
		return nil, 0, false, 0, err
	}

	prev := orthomaxCriterion(work, gamma)
	var (
		a, b, i               int
		x, y, u, v            float64
		sA, sB, sC, sD        float64
		num, den, phi, cs, sn float64
	)
	for iterations = 1; iterations <= maxIter; iterations++ {
		if err = ctx.Err(); err != nil {
			return nil, iterations, false, prev, err
		}
		for a = 0; a < k-1; a++ {
			for b = a + 1; b < k; b++ {
				sA, sB, sC, sD = 0, 0, 0, 0
				for i = 0; i < p; i++ {
					row := work.RowView(i)
					x, y = row[a], row[b]
					u, v = x*x-y*y, 2*x*y
					sA += u
					sB += v
					sC += u*u - v*v
					sD += 2 * u * v
				}
				num = sD - 2*gamma*sA*sB/float64(p)
				den = sC - gamma*(sA*sA-sB*sB)/float64(p)
				phi = math.Atan2(num, den) / 4
				if phi == 0 {
					continue
				}
				cs, sn = math.Cos(phi), math.Sin(phi)
				rotatePair(work, a, b, cs, sn)
				rotatePair(T, a, b, cs, sn)
			}
		}
		crit = orthomaxCriterion(work, gamma)
		if math.Abs(crit-prev) <= tol*math.Max(1, math.Abs(crit)) {
			return T, iterations, true, crit, nil
		}
		prev = crit
	}

	return T, maxIter, false, prev, nil
}

// rotatePair applies x' = c·x + s·y, y' = −s·x + c·y to columns a and b.
func rotatePair(m *matrix.Dense, a, b int, c, s float64) {
	var x, y float64
	for i := 0; i < m.Rows(); i++ {
		row := m.RowView(i)
		x, y = row[a], row[b]
		row[a] = c*x + s*y
		row[b] = -s*x + c*y
	}
}

func orthomaxCriterion(L *matrix.Dense, gamma float64) float64 {
	p, k := L.Rows(), L.Cols()
	var f float64
	for j := 0; j < k; j++ {
		var s2, s4 float64
		for i := 0; i < p; i++ {
			v := L.RowView(i)[j]
			v *= v
			s2 += v
			s4 += v * v
		}
		f += s4 - gamma/float64(p)*s2*s2
	}

	return f
}

// kaiserNormalize scales each non-zero row of m to unit length in place.
func kaiserNormalize(m *matrix.Dense) {
	for i := 0; i < m.Rows(); i++ {
		row := m.RowView(i)
		var ss float64
		for _, v := range row {
			ss += v * v
		}
		if ss == 0 {
			continue
		}
		h := math.Sqrt(ss)
		for j := range row {
			row[j] /= h
		}
	}
}
