// SPDX-License-Identifier: MIT

package extract_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvfactor/extract"
	"github.com/katalvlaran/lvfactor/matrix"
)

func mustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseRows(rows)
	require.NoError(t, err)

	return m
}

// oneFactor returns the exact correlation matrix of a one-factor model.
func oneFactor(t *testing.T, lambda []float64) *matrix.Dense {
	t.Helper()
	p := len(lambda)
	rows := make([][]float64, p)
	for i := range rows {
		rows[i] = make([]float64, p)
		for j := range rows[i] {
			if i == j {
				rows[i][j] = 1
				continue
			}
			rows[i][j] = lambda[i] * lambda[j]
		}
	}

	return mustRows(t, rows)
}

func TestExtract_PrincipalComponents2x2(t *testing.T) {
	t.Parallel()

	R := mustRows(t, [][]float64{{1, 0.6}, {0.6, 1}})
	res, err := extract.Extract(context.Background(), R, extract.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, res.Factors)
	require.InDeltaSlice(t, []float64{1.6, 0.4}, res.Eigenvalues, 1e-12)
	require.InDeltaSlice(t, []float64{math.Sqrt(0.8), math.Sqrt(0.8)}, res.Loadings.Col(0), 1e-12)
	require.InDeltaSlice(t, []float64{0.8, 0.8}, res.Communalities, 1e-12)
	require.Equal(t, []float64{1, 1}, res.InitialCommunalities)
	require.True(t, res.Converged)
	require.Empty(t, res.Warnings)
}

func TestExtract_FactorCountRules(t *testing.T) {
	t.Parallel()

	R := mustRows(t, [][]float64{{1, 0.6}, {0.6, 1}})
	cases := []struct {
		name string
		rule extract.FactorRule
		want int
	}{
		{"kaiser", extract.Kaiser(), 1},
		{"fixed", extract.Fixed(2), 2},
		{"variance-80", extract.Variance(80), 1},
		{"variance-81", extract.Variance(81), 2},
		{"variance-100", extract.Variance(100), 2},
		{"threshold-0.3", extract.FactorRule{Kind: extract.EigenvalueThreshold, Value: 0.3}, 2},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			opts := extract.DefaultOptions()
			opts.Rule = tc.rule
			res, err := extract.Extract(context.Background(), R, opts)
			require.NoError(t, err)
			require.Equal(t, tc.want, res.Factors)
			require.Equal(t, tc.want, res.Loadings.Cols())
		})
	}
}

func TestExtract_KaiserRetainsNothingClampsToOne(t *testing.T) {
	t.Parallel()

	id, err := matrix.NewIdentity(3)
	require.NoError(t, err)
	res, err := extract.Extract(context.Background(), id, extract.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, res.Factors)
	require.Equal(t, []string{"No eigenvalue exceeds 1; retaining 1 factor"}, res.Warnings)
}

func TestValidate_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	opts := extract.DefaultOptions()
	for _, k := range []int{0, -1, 4} {
		opts.Rule = extract.Fixed(k)
		require.ErrorIs(t, opts.Validate(3), extract.ErrInvalidFactorCount, "k=%d", k)
	}
	opts.Rule = extract.FactorRule{Kind: extract.FixedCount, Value: 1.5}
	require.ErrorIs(t, opts.Validate(3), extract.ErrInvalidFactorCount)
	opts.Rule = extract.Variance(0)
	require.ErrorIs(t, opts.Validate(3), extract.ErrInvalidRule)
	opts.Rule = extract.Variance(101)
	require.ErrorIs(t, opts.Validate(3), extract.ErrInvalidRule)
	opts.Rule = extract.FactorRule{Kind: extract.EigenvalueThreshold, Value: math.NaN()}
	require.ErrorIs(t, opts.Validate(3), extract.ErrInvalidRule)

	opts = extract.DefaultOptions()
	opts.MaxIterations = 0
	require.ErrorIs(t, opts.Validate(3), extract.ErrInvalidOptions)
	opts = extract.DefaultOptions()
	opts.Method = extract.Method(9)
	require.ErrorIs(t, opts.Validate(3), extract.ErrUnknownMethod)

	// Extract fails before decomposing anything.
	opts = extract.DefaultOptions()
	opts.Rule = extract.Fixed(5)
	_, err := extract.Extract(context.Background(), mustRows(t, [][]float64{{1, 0}, {0, 1}}), opts)
	require.ErrorIs(t, err, extract.ErrInvalidFactorCount)
}

func TestExtract_PrincipalAxisRecoversOneFactorModel(t *testing.T) {
	t.Parallel()

	lambda := []float64{0.8, 0.7, 0.6, 0.5}
	opts := extract.DefaultOptions()
	opts.Method = extract.PrincipalAxis
	opts.Rule = extract.Fixed(1)
	opts.Tolerance = 1e-10
	opts.MaxIterations = 5000

	res, err := extract.Extract(context.Background(), oneFactor(t, lambda), opts)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Less(t, res.Iterations, 5000)
	require.Empty(t, res.Warnings)
	require.InDeltaSlice(t, lambda, res.Loadings.Col(0), 1e-6)
	require.InDeltaSlice(t, []float64{0.64, 0.49, 0.36, 0.25}, res.Communalities, 1e-6)
	for i, h := range res.InitialCommunalities {
		require.Greater(t, h, 0.0)
		require.Less(t, h, 1.0, "SMC of variable %d", i)
	}
	require.Len(t, res.ReducedEigenvalues, 4)
}

func TestExtract_PrincipalAxisNonConvergenceWarns(t *testing.T) {
	t.Parallel()

	opts := extract.DefaultOptions()
	opts.Method = extract.PrincipalAxis
	opts.Rule = extract.Fixed(1)
	opts.MaxIterations = 1

	res, err := extract.Extract(context.Background(), oneFactor(t, []float64{0.8, 0.7, 0.6, 0.5}), opts)
	require.NoError(t, err)
	require.False(t, res.Converged)
	require.Equal(t, 1, res.Iterations)
	require.Contains(t, res.Warnings, "Principal axis factoring did not converge after 1 iterations")
	require.NotNil(t, res.Loadings)
}

func TestExtract_HeywoodCaseClamped(t *testing.T) {
	t.Parallel()

	// One-factor fit needs λ₁² = .8·.8/.5 = 1.28.
	R := mustRows(t, [][]float64{{1, 0.8, 0.8}, {0.8, 1, 0.5}, {0.8, 0.5, 1}})
	opts := extract.DefaultOptions()
	opts.Method = extract.PrincipalAxis
	opts.Rule = extract.Fixed(1)
	opts.MaxIterations = 500
	opts.Names = []string{"a", "b", "c"}

	res, err := extract.Extract(context.Background(), R, opts)
	require.NoError(t, err)
	require.Contains(t, res.Warnings, "Variable a has a communality above 1 (Heywood case); clamped to 1")
	require.Equal(t, 1.0, res.Communalities[0])
	l0, _ := res.Loadings.At(0, 0)
	require.InDelta(t, 1.0, l0*l0, 1e-12)
	for _, h := range res.Communalities {
		require.LessOrEqual(t, h, 1.0)
	}
}

func TestExtract_SingularSMCFallsBack(t *testing.T) {
	t.Parallel()

	R := mustRows(t, [][]float64{{1, 1, 0.5}, {1, 1, 0.5}, {0.5, 0.5, 1}})
	opts := extract.DefaultOptions()
	opts.Method = extract.PrincipalAxis
	opts.Rule = extract.Fixed(1)

	res, err := extract.Extract(context.Background(), R, opts)
	require.NoError(t, err)
	require.Contains(t, res.Warnings,
		"Correlation matrix is singular; initial communalities use the maximum absolute correlation")
	require.Equal(t, []float64{1, 1, 0.5}, res.InitialCommunalities)
}

func TestExtract_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := extract.DefaultOptions()
	opts.Method = extract.PrincipalAxis
	_, err := extract.Extract(ctx, oneFactor(t, []float64{0.8, 0.7, 0.6}), opts)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParsers(t *testing.T) {
	t.Parallel()

	m, err := extract.ParseMethod("PAF")
	require.NoError(t, err)
	require.Equal(t, extract.PrincipalAxis, m)
	require.Equal(t, "principal-axis", m.String())
	_, err = extract.ParseMethod("ml")
	require.ErrorIs(t, err, extract.ErrUnknownMethod)

	k, err := extract.ParseRuleKind("kaiser")
	require.NoError(t, err)
	require.Equal(t, extract.EigenvalueThreshold, k)
	_, err = extract.ParseRuleKind("scree")
	require.ErrorIs(t, err, extract.ErrInvalidRule)

	c, err := extract.ParseInitialCommunality("max-correlation")
	require.NoError(t, err)
	require.Equal(t, extract.MaxCorrelation, c)
	require.Equal(t, "fixed-count(3)", extract.Fixed(3).String())
}
