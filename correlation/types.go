// SPDX-License-Identifier: MIT

package correlation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/lvfactor/matrix"
)

var (
	// ErrNilDataset is returned when Compute receives no dataset.
	ErrNilDataset = errors.New("correlation: nil dataset")

	// ErrNoUsableVariables is returned when every variable was dropped.
	ErrNoUsableVariables = errors.New("correlation: no usable variables")

	// ErrUnknownKind is returned by ParseKind.
	ErrUnknownKind = errors.New("correlation: unknown matrix kind")
)

// Kind selects the association matrix Compute produces.
type Kind int

const (
	// Pearson correlation; unit diagonal.
	Correlation Kind = iota
	// Sample covariance (n-1 denominator); diagonal holds variances.
	Covariance
)

// String returns the config name of k.
func (k Kind) String() string {
	switch k {
	case Correlation:
		return "correlation"
	case Covariance:
		return "covariance"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps "correlation"/"covariance" (case-insensitive, "" = correlation).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "correlation", "pearson":
		return Correlation, nil
	case "covariance":
		return Covariance, nil
	}

	return Correlation, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Options configures Compute.
//   - Kind: Correlation (default) or Covariance.
//   - Workers: concurrent row workers; ≤ 0 means runtime.GOMAXPROCS(0).
//   - Epsilon: a variable whose standard deviation is ≤ Epsilon·max(1,|mean|)
//     is treated as constant (default 1e-12).
type Options struct {
	Kind    Kind
	Workers int
	Epsilon float64
}

// DefaultOptions returns Pearson correlation with GOMAXPROCS workers.
func DefaultOptions() Options {
	return Options{Kind: Correlation, Epsilon: DefaultEpsilon}
}

// DefaultEpsilon is the relative zero-variance threshold.
const DefaultEpsilon = 1e-12

// Result holds the association matrix over the retained variables.
//
// Means and StdDevs are taken over each variable's own observed values
// (sample standard deviation) and are what Standardize expects. PairCounts[i][j]
// is the number of jointly observed rows behind Matrix[i,j].
type Result struct {
	Kind       Kind
	Matrix     *matrix.Dense
	Names      []string
	Kept       []int
	Means      []float64
	StdDevs    []float64
	PairCounts [][]int
	Warnings   []string
}
