// SPDX-License-Identifier: MIT

package eigen

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/lvfactor/matrix"
)

// Solve computes all eigenpairs of the symmetric matrix m with cyclic Jacobi
// rotations.
//
// Implementation:
//   - Stage 1: validate (square, finite, symmetric within SymmetryTolerance)
//     and copy m into a work buffer A; V = I.
//   - Stage 2: sweep the upper triangle in (p,q) row order, annihilating each
//     A[p,q] with a Jacobi rotation and accumulating V ← V·J. Before every
//     sweep stop if off(A) ≤ Tolerance·‖m‖_F, or if MaxSweeps were done, or
//     if ctx is done.
//   - Stage 3: sort pairs by descending eigenvalue; values equal within
//     tolerance keep their diagonal (original variable) order. Flip each
//     vector so its largest-magnitude component is positive.
//   - Stage 4: record the trace and warn when Σλ drifts from it by more than
//     TraceTolerance (relative).
//
// On hitting MaxSweeps the best approximation is returned with
// Converged=false and a warning; this is not an error.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrDimensionMismatch, matrix.ErrNaNInf,
//     ErrNotSymmetric, ctx.Err().
//
// Complexity:
//   - Time O(n³) per sweep (typically 6-10 sweeps), Space O(n²).
func Solve(ctx context.Context, m matrix.Matrix, opts Options) (*Decomposition, error) {
	opts = opts.normalized()
	if err := matrix.ValidateSquare(m); err != nil {
		return nil, fmt.Errorf("eigen: %w", err)
	}
	if err := matrix.ValidateFinite(m); err != nil {
		return nil, fmt.Errorf("eigen: %w", err)
	}
	if err := matrix.ValidateSymmetric(m, opts.SymmetryTolerance); err != nil {
		return nil, ErrNotSymmetric
	}

	n := m.Rows()
	src, err := matrix.Symmetrize(m)
	if err != nil {
		return nil, fmt.Errorf("eigen: %w", err)
	}
	a := flat(src)
	id, err := matrix.NewIdentity(n)
	if err != nil {
		return nil, fmt.Errorf("eigen: %w", err)
	}
	v := flat(id)

	var norm float64
	for _, x := range a {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	threshold := opts.Tolerance * norm

	dec := &Decomposition{}
	for {
		if offNorm(a, n) <= threshold {
			dec.Converged = true
			break
		}
		if dec.Sweeps == opts.MaxSweeps {
			break
		}
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		sweep(a, v, n)
		dec.Sweeps++
	}
	if !dec.Converged {
		dec.Warnings = append(dec.Warnings,
			fmt.Sprintf("Eigen decomposition did not converge after %d sweeps", dec.Sweeps))
	}

	tieTol := opts.Tolerance * math.Max(1, norm)
	if dec.Values, dec.Vectors, err = sortPairs(a, v, n, tieTol); err != nil {
		return nil, fmt.Errorf("eigen: %w", err)
	}
	if dec.Trace, err = matrix.Trace(src); err != nil {
		return nil, fmt.Errorf("eigen: %w", err)
	}
	if sum := dec.Sum(); math.Abs(sum-dec.Trace) > TraceTolerance*math.Max(1, math.Abs(dec.Trace)) {
		dec.Warnings = append(dec.Warnings,
			fmt.Sprintf("Eigenvalues sum to %g but the trace is %g", sum, dec.Trace))
	}

	return dec, nil
}

// sweep applies one cyclic pass of Jacobi rotations over all p<q.
// a and v are row-major n×n buffers updated in place.
func sweep(a, v []float64, n int) {
	var (
		p, q, r              int
		apq, app, aqq, theta float64
		t, c, s, tau         float64
		arp, arq, vrp, vrq   float64
	)
	for p = 0; p < n-1; p++ {
		for q = p + 1; q < n; q++ {
			apq = a[p*n+q]
			if apq == 0 {
				continue
			}
			app, aqq = a[p*n+p], a[q*n+q]
			// Skip rotations that cannot change the diagonal in float64.
			if math.Abs(apq) < 1e-300 ||
				(math.Abs(app)+100*math.Abs(apq) == math.Abs(app) &&
					math.Abs(aqq)+100*math.Abs(apq) == math.Abs(aqq)) {
				a[p*n+q], a[q*n+p] = 0, 0
				continue
			}
			theta = (aqq - app) / (2 * apq)
			t = 1 / (math.Abs(theta) + math.Sqrt(theta*theta+1))
			if theta < 0 {
				t = -t
			}
			c = 1 / math.Sqrt(t*t+1)
			s = t * c
			tau = s / (1 + c)

			a[p*n+p] = app - t*apq
			a[q*n+q] = aqq + t*apq
			a[p*n+q], a[q*n+p] = 0, 0
			for r = 0; r < n; r++ {
				if r == p || r == q {
					continue
				}
				arp, arq = a[r*n+p], a[r*n+q]
				a[r*n+p] = arp - s*(arq+tau*arp)
				a[r*n+q] = arq + s*(arp-tau*arq)
				a[p*n+r] = a[r*n+p]
				a[q*n+r] = a[r*n+q]
			}
			for r = 0; r < n; r++ {
				vrp, vrq = v[r*n+p], v[r*n+q]
				v[r*n+p] = vrp - s*(vrq+tau*vrp)
				v[r*n+q] = vrq + s*(vrp-tau*vrq)
			}
		}
	}
}

// offNorm returns the Frobenius norm of the off-diagonal part.
func offNorm(a []float64, n int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += 2 * a[i*n+j] * a[i*n+j]
		}
	}

	return math.Sqrt(sum)
}

// sortPairs orders the diagonal of a descending and returns the values with
// their sign-normalized eigenvector columns. Values within tieTol of the
// leading value of their band are ties and keep index order.
func sortPairs(a, v []float64, n int, tieTol float64) ([]float64, *matrix.Dense, error) {
	diag := func(k int) float64 { return a[k*n+k] }
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		if vx, vy := diag(order[x]), diag(order[y]); vx != vy {
			return vx > vy
		}

		return order[x] < order[y]
	})
	for lo := 0; lo < n; {
		hi := lo + 1
		for hi < n && diag(order[lo])-diag(order[hi]) <= tieTol {
			hi++
		}
		sort.Ints(order[lo:hi])
		lo = hi
	}

	values := make([]float64, n)
	buf := make([]float64, n*n)
	var (
		r, big int
		bigAbs float64
	)
	for f, k := range order {
		values[f] = diag(k)
		big, bigAbs = 0, -1
		for r = 0; r < n; r++ {
			if abs := math.Abs(v[r*n+k]); abs > bigAbs {
				big, bigAbs = r, abs
			}
		}
		sign := 1.0
		if v[big*n+k] < 0 {
			sign = -1
		}
		for r = 0; r < n; r++ {
			buf[r*n+f] = sign * v[r*n+k]
		}
	}
	vecs, err := matrix.NewDenseFrom(n, n, buf)
	if err != nil {
		return nil, nil, err
	}

	return values, vecs, nil
}

// flat returns a copy of d's row-major buffer.
func flat(d *matrix.Dense) []float64 {
	out := make([]float64, 0, d.Rows()*d.Cols())
	for i := 0; i < d.Rows(); i++ {
		out = append(out, d.RowView(i)...)
	}

	return out
}
