// SPDX-License-Identifier: MIT

package dataset_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvfactor/dataset"
	"github.com/katalvlaran/lvfactor/matrix"
)

func TestBuild_DropsNonNumericDuplicatesAndRagged(t *testing.T) {
	t.Parallel()

	data := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{1, 1, 2},
		{7, 8, 9},
		{1, 2},
		{math.Inf(1), 2, 3},
	}
	defs := []dataset.Definition{
		{Name: "a"},
		{Name: "group", Type: dataset.Nominal},
		{Name: "a"},
		{Name: "", Type: dataset.Ordinal},
		{Name: "short"},
		{Name: "inf"},
	}

	ds, warnings, err := dataset.Build(data, defs)
	require.NoError(t, err)
	require.Equal(t, 3, ds.N)
	require.Equal(t, []string{"a", "V4", "inf"}, ds.Names())
	require.Equal(t, []string{
		"Variable group is nominal and cannot be correlated",
		"Variable a is defined more than once; later copies are ignored",
		"Variable short has 2 values, expected 3",
		"Variable inf contains infinite values treated as missing",
	}, warnings)
	require.True(t, math.IsNaN(ds.Variables[2].Values[0]))
	require.Equal(t, 2, ds.Variables[2].Observed())

	// Input is not mutated.
	require.True(t, math.IsInf(data[5][0], 1))
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := dataset.Build([][]float64{{1}}, nil)
	require.ErrorIs(t, err, dataset.ErrDefinitionMismatch)

	_, warnings, err := dataset.Build([][]float64{{1, 2}}, []dataset.Definition{{Name: "id", Type: dataset.ID}})
	require.ErrorIs(t, err, dataset.ErrEmptyDataset)
	require.Len(t, warnings, 1)

	_, _, err = dataset.Build([][]float64{{}}, []dataset.Definition{{Name: "x"}})
	require.ErrorIs(t, err, dataset.ErrEmptyDataset)
}

func TestParseSemanticType(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]dataset.SemanticType{
		"":            dataset.Continuous,
		"Scale":       dataset.Continuous,
		"ordinal":     dataset.Ordinal,
		"categorical": dataset.Nominal,
		" ID ":        dataset.ID,
	} {
		got, err := dataset.ParseSemanticType(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := dataset.ParseSemanticType("binary-ish")
	require.ErrorIs(t, err, dataset.ErrUnknownType)

	var st dataset.SemanticType
	require.NoError(t, st.UnmarshalText([]byte("nominal")))
	require.Equal(t, dataset.Nominal, st)
	b, err := st.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "nominal", string(b))
}

func TestStandardizeAndCompleteRows(t *testing.T) {
	t.Parallel()

	ds, _, err := dataset.Build(
		[][]float64{{1, 2, 3, math.NaN()}, {10, 20, 30, 40}},
		[]dataset.Definition{{Name: "x"}, {Name: "y"}},
	)
	require.NoError(t, err)
	require.Equal(t, 3, ds.CompleteRows())

	z, err := ds.Standardize([]float64{2, 25}, []float64{1, 10})
	require.NoError(t, err)
	require.Equal(t, []float64{-1, -1.5}, z.RowView(0))
	require.True(t, math.IsNaN(z.RowView(3)[0]))
	require.Equal(t, 1.5, z.RowView(3)[1])

	_, err = ds.Standardize([]float64{0}, []float64{1, 1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = ds.Standardize([]float64{0, 0}, []float64{1, 0})
	require.ErrorIs(t, err, matrix.ErrNaNInf)

	sub := ds.Subset([]int{1})
	require.Equal(t, []string{"y"}, sub.Names())
	require.Equal(t, 4, sub.CompleteRows())
}
