// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvfactor/matrix"
)

func TestValidators_Table(t *testing.T) {
	t.Parallel()

	sq := NewFilledDense(t, 2, 2, []float64{1, 0.5, 0.5, 1})
	rect := MustDense(t, 2, 3)
	asym := NewFilledDense(t, 2, 2, []float64{1, 0.5, 0.4, 1})
	var typedNil *matrix.Dense

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"NotNil/nil", matrix.ValidateNotNil(nil), matrix.ErrNilMatrix},
		{"NotNil/typed-nil", matrix.ValidateNotNil(typedNil), matrix.ErrNilMatrix},
		{"NotNil/ok", matrix.ValidateNotNil(sq), nil},
		{"Square/rect", matrix.ValidateSquare(rect), matrix.ErrDimensionMismatch},
		{"Square/ok", matrix.ValidateSquare(sq), nil},
		{"SameShape/mismatch", matrix.ValidateSameShape(sq, rect), matrix.ErrDimensionMismatch},
		{"MulCompatible/ok", matrix.ValidateMulCompatible(sq, rect), nil},
		{"MulCompatible/bad", matrix.ValidateMulCompatible(rect, sq), matrix.ErrDimensionMismatch},
		{"VecLen/nil", matrix.ValidateVecLen(nil, 2), matrix.ErrNilMatrix},
		{"VecLen/bad", matrix.ValidateVecLen([]float64{1}, 2), matrix.ErrDimensionMismatch},
		{"Symmetric/ok", matrix.ValidateSymmetric(sq, 0), nil},
		{"Symmetric/asym", matrix.ValidateSymmetric(asym, 1e-3), matrix.ErrAsymmetry},
		{"Symmetric/loose", matrix.ValidateSymmetric(asym, -0.2), nil},
		{"Symmetric/badtol", matrix.ValidateSymmetric(sq, math.NaN()), matrix.ErrNaNInf},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if tc.want == nil {
				require.NoError(t, tc.err)
				return
			}
			require.ErrorIs(t, tc.err, tc.want)
		})
	}
}

func TestValidateFinite(t *testing.T) {
	t.Parallel()

	m := NewFilledDense(t, 1, 2, []float64{1, 2})
	require.NoError(t, matrix.ValidateFinite(m))
	require.NoError(t, matrix.ValidateFinite(hide{m}))

	MustSet(t, m, 0, 1, math.Inf(1))
	require.ErrorIs(t, matrix.ValidateFinite(m), matrix.ErrNaNInf)
	require.ErrorIs(t, matrix.ValidateFinite(hide{m}), matrix.ErrNaNInf)
}
