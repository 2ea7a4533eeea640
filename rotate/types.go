// SPDX-License-Identifier: MIT

package rotate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/lvfactor/matrix"
)

var (
	// ErrUnknownMethod is returned for an unrecognized rotation name or value.
	ErrUnknownMethod = errors.New("rotate: unknown method")

	// ErrInvalidOptions is returned for a bad cap, tolerance, gamma or kappa.
	ErrInvalidOptions = errors.New("rotate: invalid options")
)

// Method selects the rotation criterion.
type Method int

const (
	// None leaves loadings untouched.
	None Method = iota
	// Varimax is orthomax with γ = 1.
	Varimax
	// Quartimax is orthomax with γ = 0.
	Quartimax
	// Oblimin is direct oblimin (gradient projection) with Options.Gamma.
	Oblimin
	// Promax raises varimax loadings to Options.Kappa and fits an oblique target.
	Promax
)

// String returns the config name of m.
func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case Varimax:
		return "varimax"
	case Quartimax:
		return "quartimax"
	case Oblimin:
		return "oblimin"
	case Promax:
		return "promax"
	}

	return fmt.Sprintf("Method(%d)", int(m))
}

// Oblique reports whether m allows correlated factors.
func (m Method) Oblique() bool { return m == Oblimin || m == Promax }

// ParseMethod maps a case-insensitive name to a Method; "oblique" is Oblimin
// and "" is None.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "varimax", "orthogonal":
		return Varimax, nil
	case "quartimax":
		return Quartimax, nil
	case "oblimin", "oblique", "direct-oblimin":
		return Oblimin, nil
	case "promax":
		return Promax, nil
	}

	return None, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

const (
	// DefaultMaxIterations caps rotation passes.
	DefaultMaxIterations = 1000
	// DefaultTolerance is the criterion change (orthomax) or projected
	// gradient norm (oblimin) at which rotation stops.
	DefaultTolerance = 1e-6
	// DefaultKappa is the promax power.
	DefaultKappa = 4.0
)

// Options configures Rotate.
//   - Gamma: oblimin weight (0 = quartimin, default).
//   - Kappa: promax power, ≥ 1.
//   - Normalize: Kaiser row normalization while searching.
type Options struct {
	Method        Method
	Gamma         float64
	Kappa         float64
	Normalize     bool
	MaxIterations int
	Tolerance     float64
}

// DefaultOptions returns normalized varimax.
func DefaultOptions() Options {
	return Options{
		Method:        Varimax,
		Kappa:         DefaultKappa,
		Normalize:     true,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// Result is a rotated solution.
//
// Loadings = L·Transform (the pattern matrix for oblique methods).
// Phi is the factor correlation matrix, nil for orthogonal methods, and
// Structure = Loadings·Phi (a copy of Loadings when orthogonal).
type Result struct {
	Method     Method
	Loadings   *matrix.Dense
	Structure  *matrix.Dense
	Phi        *matrix.Dense
	Transform  *matrix.Dense
	Iterations int
	Converged  bool
	Criterion  float64
	Warnings   []string
}
