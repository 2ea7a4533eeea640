// SPDX-License-Identifier: MIT

package rotate

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/lvfactor/matrix"
)

// maxStepHalvings bounds the line search of one gradient-projection step.
const maxStepHalvings = 10

// oblimin minimizes the direct oblimin criterion
//
//	f(L) = ¼·Σ L² ∘ [(I − γ/p·11ᵀ)·L²·(11ᵀ − I)]
//
// over oblique T (unit-length columns) with L = A·T⁻ᵀ, using gradient
// projection with step halving (Bernaards and Jennrich, 2005). It returns
// M = T⁻ᵀ so that L = A·M.
//
// Implementation:
//   - Stage 1: T = I; evaluate f, its gradient Gq in L and G = −(Lᵀ·Gq·T⁻¹)ᵀ.
//   - Stage 2: project Gp = G − T·diag(colsums(T∘G)); stop when ‖Gp‖_F < tol.
//   - Stage 3: double the step α, then halve it until
//     f(X) < f − ½·‖Gp‖²·α for X = normalize(T − α·Gp), at most
//     maxStepHalvings+1 tries; accept the last candidate.
//
// Complexity: O(maxIter·(p·k² + k³)) plus the line search.
func oblimin(ctx context.Context, A *matrix.Dense, gamma float64, normalize bool, maxIter int, tol float64) (
	M *matrix.Dense, iterations int, converged bool, crit float64, err error) {
	work := A.Copy()
	if normalize {
		kaiserNormalize(work)
	}
	k := A.Cols()

	T, err := matrix.NewIdentity(k)
	if err != nil {
		return nil, 0, false, 0, err
	}
	st, err := newGPAState(work, T, gamma)
	if err != nil {
		return nil, 0, false, 0, err
	}

	alpha := 1.0
	var (
		gp   *matrix.Dense
		s    float64
		next *gpaState
	)
	for iterations = 0; ; iterations++ {
		gp = projectGradient(st.T, st.G)
		s = frobenius(gp)
		if s < tol {
			converged = true
			break
		}
		if iterations == maxIter {
			break
		}
		if err = ctx.Err(); err != nil {
			return nil, iterations, false, st.f, err
		}

		alpha *= 2
		next = nil
		for h := 0; h <= maxStepHalvings; h++ {
			cand, cerr := newGPAState(work, stepColumns(st.T, gp, alpha), gamma)
			if cerr == nil {
				next = cand
				if cand.f < st.f-0.5*s*s*alpha {
					break
				}
			}
			alpha /= 2
		}
		if next == nil {
			return nil, iterations, false, st.f, fmt.Errorf("rotate: oblimin step: %w", matrix.ErrSingular)
		}
		st = next
	}

	M, err = matrix.Transpose(st.invT)
	if err != nil {
		return nil, iterations, converged, st.f, err
	}

	return M, iterations, converged, st.f, nil
}

// gpaState is one GPA iterate: T, its inverse, L = A·T⁻ᵀ, f(L) and G.
type gpaState struct {
	T, invT, L, G *matrix.Dense
	f             float64
}

func newGPAState(A, T *matrix.Dense, gamma float64) (*gpaState, error) {
	invT, err := matrix.Inverse(T)
	if err != nil {
		return nil, err
	}
	invTt, err := matrix.Transpose(invT)
	if err != nil {
		return nil, err
	}
	L, err := matrix.Mul(A, invTt)
	if err != nil {
		return nil, err
	}
	f, Gq := obliminCriterion(L, gamma)

	// G = −(Lᵀ·Gq·T⁻¹)ᵀ
	Lt, err := matrix.Transpose(L)
	if err != nil {
		return nil, err
	}
	LtGq, err := matrix.Mul(Lt, Gq)
	if err != nil {
		return nil, err
	}
	prod, err := matrix.Mul(LtGq, invT)
	if err != nil {
		return nil, err
	}
	G, err := matrix.Transpose(prod)
	if err != nil {
		return nil, err
	}
	G, err = matrix.Scale(G, -1)
	if err != nil {
		return nil, err
	}

	return &gpaState{T: T, invT: invT, L: L, G: G, f: f}, nil
}

// obliminCriterion returns f(L) and its gradient Gq = L ∘ X with
// X = (I − γ/p·11ᵀ)·L²·(11ᵀ − I).
func obliminCriterion(L *matrix.Dense, gamma float64) (float64, *matrix.Dense) {
	p, k := L.Rows(), L.Cols()
	X, _ := matrix.NewDense(p, k)
	colSum := make([]float64, k)
	for i := 0; i < p; i++ {
		row, xr := L.RowView(i), X.RowView(i)
		var ss float64
		for _, v := range row {
			ss += v * v
		}
		for j, v := range row {
			xr[j] = ss - v*v
			colSum[j] += xr[j]
		}
	}
	if gamma != 0 {
		w := gamma / float64(p)
		for i := 0; i < p; i++ {
			xr := X.RowView(i)
			for j := range xr {
				xr[j] -= w * colSum[j]
			}
		}
	}

	Gq, _ := matrix.NewDense(p, k)
	var f float64
	for i := 0; i < p; i++ {
		row, xr, gr := L.RowView(i), X.RowView(i), Gq.RowView(i)
		for j, v := range row {
			gr[j] = v * xr[j]
			f += v * v * xr[j]
		}
	}

	return f / 4, Gq
}

// projectGradient returns G − T·diag(colsums(T∘G)).
func projectGradient(T, G *matrix.Dense) *matrix.Dense {
	k := T.Cols()
	d := make([]float64, k)
	for i := 0; i < T.Rows(); i++ {
		tr, gr := T.RowView(i), G.RowView(i)
		for j := range tr {
			d[j] += tr[j] * gr[j]
		}
	}
	out := G.Copy()
	for i := 0; i < T.Rows(); i++ {
		tr, or := T.RowView(i), out.RowView(i)
		for j := range or {
			or[j] -= tr[j] * d[j]
		}
	}

	return out
}

// stepColumns returns T − α·Gp with every column scaled to unit length.
func stepColumns(T, Gp *matrix.Dense, alpha float64) *matrix.Dense {
	X := T.Copy()
	k := X.Cols()
	norms := make([]float64, k)
	for i := 0; i < X.Rows(); i++ {
		xr, gr := X.RowView(i), Gp.RowView(i)
		for j := range xr {
			xr[j] -= alpha * gr[j]
			norms[j] += xr[j] * xr[j]
		}
	}
	for j := range norms {
		norms[j] = math.Sqrt(norms[j])
	}
	for i := 0; i < X.Rows(); i++ {
		xr := X.RowView(i)
		for j := range xr {
			if norms[j] > 0 {
				xr[j] /= norms[j]
			}
		}
	}

	return X
}

func frobenius(m *matrix.Dense) float64 {
	var s float64
	for i := 0; i < m.Rows(); i++ {
		for _, v := range m.RowView(i) {
			s += v * v
		}
	}

	return math.Sqrt(s)
}
