// SPDX-License-Identifier: MIT

package extract

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/lvfactor/eigen"
	"github.com/katalvlaran/lvfactor/matrix"
)

var (
	// ErrInvalidFactorCount is returned when a fixed count is outside 1..p.
	ErrInvalidFactorCount = errors.New("extract: factor count must satisfy 1 <= k <= p")

	// ErrInvalidRule is returned for a malformed factor-count rule.
	ErrInvalidRule = errors.New("extract: invalid factor-count rule")

	// ErrInvalidOptions is returned for a bad iteration cap or tolerance.
	ErrInvalidOptions = errors.New("extract: invalid options")

	// ErrUnknownMethod is returned by the Parse functions.
	ErrUnknownMethod = errors.New("extract: unknown method")
)

// Method selects the extraction algorithm.
type Method int

const (
	// PrincipalComponents takes loadings from the eigenpairs of R.
	PrincipalComponents Method = iota
	// PrincipalAxis iterates on R with communalities on its diagonal.
	PrincipalAxis
)

// String returns the config name of m.
func (m Method) String() string {
	switch m {
	case PrincipalComponents:
		return "principal-components"
	case PrincipalAxis:
		return "principal-axis"
	}

	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod accepts "principal-components"/"pc" and "principal-axis"/"paf".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "principal-components", "pc", "pca":
		return PrincipalComponents, nil
	case "principal-axis", "paf", "pa":
		return PrincipalAxis, nil
	}

	return PrincipalComponents, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// RuleKind selects how many factors are retained.
type RuleKind int

const (
	// EigenvalueThreshold retains factors whose eigenvalue exceeds Value (Kaiser: 1).
	EigenvalueThreshold RuleKind = iota
	// FixedCount retains exactly Value factors.
	FixedCount
	// VarianceThreshold retains the fewest factors whose cumulative explained
	// variance reaches Value percent.
	VarianceThreshold
)

// String returns the config name of k.
func (k RuleKind) String() string {
	switch k {
	case EigenvalueThreshold:
		return "eigenvalue-threshold"
	case FixedCount:
		return "fixed-count"
	case VarianceThreshold:
		return "variance-threshold"
	}

	return fmt.Sprintf("RuleKind(%d)", int(k))
}

// ParseRuleKind accepts the names returned by String plus "kaiser", "fixed"
// and "variance".
func ParseRuleKind(s string) (RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "eigenvalue-threshold", "eigenvalue", "kaiser":
		return EigenvalueThreshold, nil
	case "fixed-count", "fixed":
		return FixedCount, nil
	case "variance-threshold", "variance":
		return VarianceThreshold, nil
	}

	return EigenvalueThreshold, fmt.Errorf("%w: %q", ErrInvalidRule, s)
}

// FactorRule is the single active factor-count rule.
type FactorRule struct {
	Kind  RuleKind
	Value float64
}

// Kaiser returns the eigenvalue > 1 rule.
func Kaiser() FactorRule { return FactorRule{Kind: EigenvalueThreshold, Value: 1} }

// Fixed returns the rule retaining exactly k factors.
func Fixed(k int) FactorRule { return FactorRule{Kind: FixedCount, Value: float64(k)} }

// Variance returns the rule retaining factors up to pct cumulative variance.
func Variance(pct float64) FactorRule { return FactorRule{Kind: VarianceThreshold, Value: pct} }

// String renders the rule as "kind(value)".
func (r FactorRule) String() string { return fmt.Sprintf("%s(%g)", r.Kind, r.Value) }

// InitialCommunality selects the PAF starting diagonal.
type InitialCommunality int

const (
	// SMC is the squared multiple correlation 1 - 1/diag(R⁻¹).
	SMC InitialCommunality = iota
	// MaxCorrelation is max_j≠i |r_ij|.
	MaxCorrelation
	// Unity starts from 1 (equivalent to a PC start).
	Unity
)

// String returns the config name of c.
func (c InitialCommunality) String() string {
	switch c {
	case SMC:
		return "smc"
	case MaxCorrelation:
		return "max-correlation"
	case Unity:
		return "unity"
	}

	return fmt.Sprintf("InitialCommunality(%d)", int(c))
}

// ParseInitialCommunality accepts "smc", "max-correlation" and "unity".
func ParseInitialCommunality(s string) (InitialCommunality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "smc", "squared-multiple-correlation":
		return SMC, nil
	case "max-correlation", "max", "maxr":
		return MaxCorrelation, nil
	case "unity", "one", "ones":
		return Unity, nil
	}

	return SMC, fmt.Errorf("%w: initial communality %q", ErrUnknownMethod, s)
}

const (
	// DefaultMaxIterations caps PAF iterations.
	DefaultMaxIterations = 100
	// DefaultTolerance is the PAF communality convergence threshold.
	DefaultTolerance = 1e-6
)

// Options configures Extract.
//
// Names labels variables in warnings; when shorter than p, "V<i>" is used.
type Options struct {
	Method        Method
	Rule          FactorRule
	Initial       InitialCommunality
	MaxIterations int
	Tolerance     float64
	Eigen         eigen.Options
	Names         []string
}

// DefaultOptions returns principal components with the Kaiser rule.
func DefaultOptions() Options {
	return Options{
		Method:        PrincipalComponents,
		Rule:          Kaiser(),
		Initial:       SMC,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		Eigen:         eigen.DefaultOptions(),
	}
}

// Validate checks o against p variables before any matrix work.
//
// Errors:
//   - ErrInvalidFactorCount: p < 1, or FixedCount outside 1..p or not integral.
//   - ErrInvalidRule: unknown kind, non-finite value, variance outside (0,100].
//   - ErrUnknownMethod, ErrInvalidOptions.
func (o Options) Validate(p int) error {
	if o.Method != PrincipalComponents && o.Method != PrincipalAxis {
		return fmt.Errorf("%w: %v", ErrUnknownMethod, o.Method)
	}
	if o.Initial < SMC || o.Initial > Unity {
		return fmt.Errorf("%w: %v", ErrUnknownMethod, o.Initial)
	}
	if o.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidOptions, o.MaxIterations)
	}
	if !(o.Tolerance > 0) || math.IsInf(o.Tolerance, 0) {
		return fmt.Errorf("%w: tolerance %g", ErrInvalidOptions, o.Tolerance)
	}
	if p < 1 {
		return fmt.Errorf("%w: p = %d", ErrInvalidFactorCount, p)
	}

	v := o.Rule.Value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s", ErrInvalidRule, o.Rule)
	}
	switch o.Rule.Kind {
	case EigenvalueThreshold:
	case FixedCount:
		if v != math.Trunc(v) || v < 1 || v > float64(p) {
			return fmt.Errorf("%w: k = %g, p = %d", ErrInvalidFactorCount, v, p)
		}
	case VarianceThreshold:
		if v <= 0 || v > 100 {
			return fmt.Errorf("%w: %s", ErrInvalidRule, o.Rule)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidRule, o.Rule)
	}

	return nil
}

// Result is the unrotated solution.
//
// Eigenvalues are those of R itself (used for factor-count rules and
// diagnostics); ReducedEigenvalues are those of the final matrix the loadings
// came from (R for PC, R with communalities on the diagonal for PAF).
type Result struct {
	Method               Method
	Loadings             *matrix.Dense
	Communalities        []float64
	InitialCommunalities []float64
	Eigenvalues          []float64
	ReducedEigenvalues   []float64
	Factors              int
	Iterations           int
	Converged            bool
	Warnings             []string
}
