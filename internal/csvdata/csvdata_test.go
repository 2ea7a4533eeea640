// SPDX-License-Identifier: MIT

package csvdata_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvfactor/dataset"
	"github.com/katalvlaran/lvfactor/internal/csvdata"
)

const sample = `a, b ,group,c
1,2,1,3
4,NA,2,6
.,8,1,
7.5,nan,2,-1e2
`

func TestRead(t *testing.T) {
	t.Parallel()

	f, err := csvdata.Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "group", "c"}, f.Names)
	require.Len(t, f.Columns, 4)
	require.Equal(t, 4, len(f.Columns[0]))

	require.Equal(t, 1.0, f.Columns[0][0])
	require.True(t, math.IsNaN(f.Columns[0][2]))
	require.Equal(t, 7.5, f.Columns[0][3])
	require.True(t, math.IsNaN(f.Columns[1][1]))
	require.True(t, math.IsNaN(f.Columns[1][3]))
	require.True(t, math.IsNaN(f.Columns[3][2]))
	require.Equal(t, -100.0, f.Columns[3][3])
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	_, err := csvdata.Read(strings.NewReader(""))
	require.ErrorIs(t, err, csvdata.ErrNoHeader)

	_, err = csvdata.Read(strings.NewReader("a,b\n1,x\n"))
	require.ErrorIs(t, err, csvdata.ErrNotNumeric)
	require.ErrorContains(t, err, "line 2, column b")

	_, err = csvdata.Read(strings.NewReader("a,b\n1,2,3\n"))
	require.Error(t, err)
}

func TestSplit(t *testing.T) {
	t.Parallel()

	f, err := csvdata.Read(strings.NewReader(sample))
	require.NoError(t, err)

	values := []dataset.Definition{{Name: "group", Type: dataset.Nominal}}
	td, defs, vd, vdefs, err := f.Split(nil, values)
	require.NoError(t, err)
	require.Equal(t, []dataset.Definition{{Name: "a"}, {Name: "b"}, {Name: "c"}}, defs)
	require.Len(t, td, 3)
	require.Equal(t, values, vdefs)
	require.Equal(t, []float64{1, 2, 1, 2}, vd[0])

	targets := []dataset.Definition{{Name: "group", Type: dataset.Ordinal}, {Name: "a"}}
	td, defs, _, _, err = f.Split(targets, nil)
	require.NoError(t, err)
	require.Equal(t, targets, defs)
	require.Equal(t, []float64{1, 2, 1, 2}, td[0])
	require.Equal(t, 7.5, td[1][3])

	_, _, _, _, err = f.Split([]dataset.Definition{{Name: "zzz"}}, nil)
	require.ErrorIs(t, err, csvdata.ErrUnknownColumn)
}
