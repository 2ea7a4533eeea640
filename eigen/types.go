// SPDX-License-Identifier: MIT

package eigen

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lvfactor/matrix"
)

// ErrNotSymmetric is returned when the input fails the symmetry check.
var ErrNotSymmetric = fmt.Errorf("eigen: %w", matrix.ErrAsymmetry)

// ErrEmptyDecomposition is returned by helpers called on a nil Decomposition.
var ErrEmptyDecomposition = errors.New("eigen: empty decomposition")

const (
	// DefaultMaxSweeps caps the number of cyclic Jacobi sweeps.
	DefaultMaxSweeps = 100
	// DefaultTolerance is the relative off-diagonal Frobenius norm at which
	// the iteration stops.
	DefaultTolerance = 1e-12
	// DefaultSymmetryTolerance bounds |A[i,j]-A[j,i]| on input.
	DefaultSymmetryTolerance = 1e-9
	// DefaultPseudoInverseTolerance drops eigenvalues ≤ rtol·λmax.
	DefaultPseudoInverseTolerance = 1e-10
	// TraceTolerance bounds |Σλ − trace| relative to max(1, |trace|).
	TraceTolerance = 1e-6
)

// Options configures Solve. Zero fields take their defaults.
//   - MaxSweeps: cap on full passes over the upper triangle.
//   - Tolerance: stop once off(A) ≤ Tolerance·‖A₀‖_F.
//   - SymmetryTolerance: input symmetry check.
type Options struct {
	MaxSweeps         int
	Tolerance         float64
	SymmetryTolerance float64
}

// DefaultOptions returns the default sweep cap and tolerances.
func DefaultOptions() Options {
	return Options{
		MaxSweeps:         DefaultMaxSweeps,
		Tolerance:         DefaultTolerance,
		SymmetryTolerance: DefaultSymmetryTolerance,
	}
}

func (o Options) normalized() Options {
	if o.MaxSweeps <= 0 {
		o.MaxSweeps = DefaultMaxSweeps
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.SymmetryTolerance <= 0 {
		o.SymmetryTolerance = DefaultSymmetryTolerance
	}

	return o
}

// Decomposition holds eigenpairs sorted by descending eigenvalue.
// Column f of Vectors is the unit eigenvector of Values[f], signed so that
// its largest-magnitude component is positive. Trace is that of the
// decomposed matrix.
type Decomposition struct {
	Values    []float64
	Vectors   *matrix.Dense
	Trace     float64
	Sweeps    int
	Converged bool
	Warnings  []string
}
