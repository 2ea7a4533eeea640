// SPDX-License-Identifier: MIT

package score_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvfactor/matrix"
	"github.com/katalvlaran/lvfactor/score"
)

// requireClose fails unless want and got share a shape and agree within tol.
func requireClose(t require.TestingT, want, got matrix.Matrix, tol float64) {
	require.Equal(t, want.Rows(), got.Rows())
	require.Equal(t, want.Cols(), got.Cols())
	for i := 0; i < want.Rows(); i++ {
		for j := 0; j < want.Cols(); j++ {
			w, err := want.At(i, j)
			require.NoError(t, err)
			g, err := got.At(i, j)
			require.NoError(t, err)
			require.InDelta(t, w, g, tol, "(%d,%d)", i, j)
		}
	}
}

func rows(t *testing.T, r [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseRows(r)
	require.NoError(t, err)

	return m
}

func TestCompute_IdentityRoundTrip(t *testing.T) {
	t.Parallel()

	Z := rows(t, [][]float64{
		{0.5, -1.2, 0.3},
		{-0.7, 0.1, 1.9},
		{math.NaN(), 0.4, 0.2},
		{1.1, 0.9, -0.6},
	})
	id, err := matrix.NewIdentity(3)
	require.NoError(t, err)

	res, err := score.Compute(context.Background(), Z, id, id, score.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, res.Incomplete)
	require.Equal(t, []string{"1 observations have missing values; their factor scores are NaN"}, res.Warnings)
	require.False(t, res.PseudoInverse)

	for r := 0; r < 4; r++ {
		got := res.Scores.RowView(r)
		if r == 2 {
			for _, v := range got {
				require.True(t, math.IsNaN(v))
			}
			continue
		}
		require.InDeltaSlice(t, Z.RowView(r), got, 1e-15)
	}
}

func TestCompute_RegressionKnownWeights(t *testing.T) {
	t.Parallel()

	R := rows(t, [][]float64{{1, 0.5}, {0.5, 1}})
	L := rows(t, [][]float64{{0.8}, {0.6}})
	Z := rows(t, [][]float64{{1, 2}, {0, 0}})

	res, err := score.Compute(context.Background(), Z, R, L, score.DefaultOptions())
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.5 / 0.75, 0.2 / 0.75}, res.Weights.Col(0), 1e-12)
	require.InDelta(t, 1.2, res.Scores.RowView(0)[0], 1e-12)
	require.Equal(t, 0.0, res.Scores.RowView(1)[0])
	require.Empty(t, res.Warnings)
}

func TestCompute_ObliqueUsesStructure(t *testing.T) {
	t.Parallel()

	R := rows(t, [][]float64{{1, 0.3, 0.2}, {0.3, 1, 0.4}, {0.2, 0.4, 1}})
	L := rows(t, [][]float64{{0.7, 0.1}, {0.2, 0.6}, {0.1, 0.5}})
	phi := rows(t, [][]float64{{1, 0.3}, {0.3, 1}})
	Z := rows(t, [][]float64{{0.2, -0.4, 1.0}})

	opts := score.DefaultOptions()
	opts.Phi = phi
	res, err := score.Compute(context.Background(), Z, R, L, opts)
	require.NoError(t, err)

	rinv, err := matrix.Inverse(R)
	require.NoError(t, err)
	S, err := matrix.Mul(L, phi)
	require.NoError(t, err)
	want, err := matrix.Mul(rinv, S)
	require.NoError(t, err)
	requireClose(t, want, res.Weights, 1e-12)
}

func TestCompute_Bartlett(t *testing.T) {
	t.Parallel()

	L := rows(t, [][]float64{{0.8, 0}, {0, 0.8}})
	id, _ := matrix.NewIdentity(2)
	Z := rows(t, [][]float64{{1, -2}})

	opts := score.DefaultOptions()
	opts.Method = score.Bartlett
	res, err := score.Compute(context.Background(), Z, id, L, opts)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1.25, -2.5}, res.Scores.RowView(0), 1e-12)
	require.Empty(t, res.Warnings)

	// Heywood-level communalities are floored, not divided by zero.
	opts.Communalities = []float64{1, 0.64}
	res, err = score.Compute(context.Background(), Z, id, L, opts)
	require.NoError(t, err)
	require.Equal(t, []string{"Some uniquenesses are near zero; Bartlett scores floor them at 1e-6"}, res.Warnings)
	for _, v := range res.Scores.RowView(0) {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestCompute_SingularFallsBackToPseudoInverse(t *testing.T) {
	t.Parallel()

	R := rows(t, [][]float64{{1, 1}, {1, 1}})
	L := rows(t, [][]float64{{0.9}, {0.9}})
	Z := rows(t, [][]float64{{1, 1}})

	res, err := score.Compute(context.Background(), Z, R, L, score.DefaultOptions())
	require.NoError(t, err)
	require.True(t, res.PseudoInverse)
	require.Equal(t, []string{score.SingularWarning}, res.Warnings)
	require.InDeltaSlice(t, []float64{0.45, 0.45}, res.Weights.Col(0), 1e-12)
	require.InDelta(t, 0.9, res.Scores.RowView(0)[0], 1e-12)
}

func TestCompute_Errors(t *testing.T) {
	t.Parallel()

	id2, _ := matrix.NewIdentity(2)
	id3, _ := matrix.NewIdentity(3)
	Z := rows(t, [][]float64{{1, 2}})

	_, err := score.Compute(context.Background(), Z, id3, id2, score.DefaultOptions())
	require.ErrorIs(t, err, score.ErrShape)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	opts := score.DefaultOptions()
	opts.Phi = id3
	_, err = score.Compute(context.Background(), Z, id2, id2, opts)
	require.ErrorIs(t, err, score.ErrShape)

	opts = score.DefaultOptions()
	opts.Method = score.Method(7)
	_, err = score.Compute(context.Background(), Z, id2, id2, opts)
	require.ErrorIs(t, err, score.ErrUnknownMethod)

	_, err = score.Compute(context.Background(), nil, id2, id2, score.DefaultOptions())
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = score.Compute(ctx, Z, id2, id2, score.DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	m, err := score.ParseMethod("Bartlett")
	require.NoError(t, err)
	require.Equal(t, score.Bartlett, m)
	require.Equal(t, "bartlett", m.String())
	_, err = score.ParseMethod("anderson-rubin")
	require.ErrorIs(t, err, score.ErrUnknownMethod)
}
