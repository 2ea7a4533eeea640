// SPDX-License-Identifier: MIT

package efa

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvfactor/correlation"
	"github.com/katalvlaran/lvfactor/eigen"
	"github.com/katalvlaran/lvfactor/extract"
	"github.com/katalvlaran/lvfactor/rotate"
	"github.com/katalvlaran/lvfactor/score"
)

// ErrInvalidConfig is returned by Config.Validate for values no dataset could
// make valid.
var ErrInvalidConfig = errors.New("efa: invalid configuration")

const (
	// DefaultMaxIterations caps both the PAF loop and the rotation passes.
	DefaultMaxIterations = 250
	// DefaultTolerance is shared by PAF and rotation convergence checks.
	DefaultTolerance = 1e-6
)

// Config selects the analysis strategy for one run.
//
// MaxIterations and Tolerance apply to every iterative stage that has its own
// cap (PAF communalities, rotation). Workers bounds the correlation fan-out;
// zero means GOMAXPROCS.
type Config struct {
	Extraction    extract.Method
	Rule          extract.FactorRule
	Initial       extract.InitialCommunality
	Rotation      rotate.Method
	Gamma         float64
	Kappa         float64
	Normalize     bool
	MaxIterations int
	Tolerance     float64
	ComputeScores bool
	Scores        score.Method
	Workers       int
	Eigen         eigen.Options
}

// DefaultConfig returns principal components, Kaiser rule, normalized
// varimax and regression scores.
func DefaultConfig() Config {
	return Config{
		Extraction:    extract.PrincipalComponents,
		Rule:          extract.Kaiser(),
		Initial:       extract.SMC,
		Rotation:      rotate.Varimax,
		Kappa:         rotate.DefaultKappa,
		Normalize:     true,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		ComputeScores: true,
		Scores:        score.Regression,
		Eigen:         eigen.DefaultOptions(),
	}
}

// Validate checks everything that does not depend on the data. The k ≤ p
// bound is checked once the retained variables are known.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	}
	if c.Scores != score.Regression && c.Scores != score.Bartlett {
		return fmt.Errorf("%w: %v", score.ErrUnknownMethod, c.Scores)
	}
	if err := c.rotateOptions().Validate(); err != nil {
		return err
	}
	// A huge p leaves only the data-independent rule checks active.
	if err := c.extractOptions(nil).Validate(math.MaxInt32); err != nil {
		return err
	}

	return nil
}

func (c Config) extractOptions(names []string) extract.Options {
	return extract.Options{
		Method:        c.Extraction,
		Rule:          c.Rule,
		Initial:       c.Initial,
		MaxIterations: c.MaxIterations,
		Tolerance:     c.Tolerance,
		Eigen:         c.Eigen,
		Names:         names,
	}
}

func (c Config) rotateOptions() rotate.Options {
	return rotate.Options{
		Method:        c.Rotation,
		Gamma:         c.Gamma,
		Kappa:         c.Kappa,
		Normalize:     c.Normalize,
		MaxIterations: c.MaxIterations,
		Tolerance:     c.Tolerance,
	}
}

func (c Config) correlationOptions() correlation.Options {
	opts := correlation.DefaultOptions()
	opts.Workers = c.Workers

	return opts
}

func (c Config) scoreOptions(ex *extract.Result, rot *rotate.Result) score.Options {
	opts := score.DefaultOptions()
	opts.Method = c.Scores
	opts.Eigen = c.Eigen
	opts.Communalities = ex.Communalities
	if rot != nil && rot.Phi != nil {
		opts.Phi = rot.Phi
	}

	return opts
}
