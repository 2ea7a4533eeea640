// SPDX-License-Identifier: MIT

package dataset

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvfactor/matrix"
)

// Build assembles a Dataset from per-variable value sequences and their
// definitions. Input slices are copied; the caller keeps ownership.
//
// Implementation:
//   - Stage 1: len(data) must equal len(defs), else ErrDefinitionMismatch.
//   - Stage 2: drop nominal/id variables, duplicate names and variables whose
//     length differs from the first retained one, each with a warning.
//   - Stage 3: copy values, turning ±Inf into NaN (one warning per variable).
//
// Errors:
//   - ErrDefinitionMismatch, ErrEmptyDataset (nothing retained or N == 0).
//
// Complexity:
//   - Time O(p·N), Space O(p·N).
func Build(data [][]float64, defs []Definition) (*Dataset, []string, error) {
	if len(data) != len(defs) {
		return nil, nil, fmt.Errorf("%w: %d value sequences, %d definitions", ErrDefinitionMismatch, len(data), len(defs))
	}

	var (
		warnings []string
		seen     = make(map[string]struct{}, len(defs))
		ds       = &Dataset{N: -1}
	)
	for i, def := range defs {
		name := def.Name
		if name == "" {
			name = fmt.Sprintf("V%d", i+1)
		}
		if !def.Type.Numeric() {
			warnings = append(warnings, fmt.Sprintf("Variable %s is %s and cannot be correlated", name, def.Type))
			continue
		}
		if _, dup := seen[name]; dup {
			warnings = append(warnings, fmt.Sprintf("Variable %s is defined more than once; later copies are ignored", name))
			continue
		}
		if ds.N >= 0 && len(data[i]) != ds.N {
			warnings = append(warnings, fmt.Sprintf("Variable %s has %d values, expected %d", name, len(data[i]), ds.N))
			continue
		}
		seen[name] = struct{}{}
		if ds.N < 0 {
			ds.N = len(data[i])
		}

		values := make([]float64, len(data[i]))
		nonFinite := false
		for j, v := range data[i] {
			if math.IsInf(v, 0) {
				v = math.NaN()
				nonFinite = true
			}
			values[j] = v
		}
		if nonFinite {
			warnings = append(warnings, fmt.Sprintf("Variable %s contains infinite values treated as missing", name))
		}
		ds.Variables = append(ds.Variables, Variable{Name: name, Type: def.Type, Values: values})
	}

	if len(ds.Variables) == 0 || ds.N <= 0 {
		return nil, warnings, ErrEmptyDataset
	}

	return ds, warnings, nil
}

// P returns the number of variables.
func (d *Dataset) P() int { return len(d.Variables) }

// Names returns the variable names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.Variables))
	for i, v := range d.Variables {
		out[i] = v.Name
	}

	return out
}

// Subset returns a dataset holding the variables at idx, in that order.
// Value slices are shared with d.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := &Dataset{N: d.N, Variables: make([]Variable, len(idx))}
	for i, k := range idx {
		out.Variables[i] = d.Variables[k]
	}

	return out
}

// CompleteRows returns the number of observations with no missing value.
func (d *Dataset) CompleteRows() int {
	n := 0
	for r := 0; r < d.N; r++ {
		complete := true
		for _, v := range d.Variables {
			if IsMissing(v.Values[r]) {
				complete = false
				break
			}
		}
		if complete {
			n++
		}
	}

	return n
}

// Standardize returns the N×p matrix Z with Z[r,j] = (x[r,j]-means[j])/sds[j].
// Missing values stay NaN so downstream scoring can flag the observation.
//
// Errors:
//   - matrix.ErrDimensionMismatch if means/sds do not have length p.
//   - matrix.ErrNaNInf if any sds[j] is zero or non-finite.
func (d *Dataset) Standardize(means, sds []float64) (*matrix.Dense, error) {
	p := d.P()
	if err := matrix.ValidateVecLen(means, p); err != nil {
		return nil, fmt.Errorf("dataset: Standardize: %w", err)
	}
	if err := matrix.ValidateVecLen(sds, p); err != nil {
		return nil, fmt.Errorf("dataset: Standardize: %w", err)
	}
	for _, s := range sds {
		if s == 0 || IsMissing(s) {
			return nil, fmt.Errorf("dataset: Standardize: %w", matrix.ErrNaNInf)
		}
	}

	rows := make([][]float64, d.N)
	for r := range rows {
		row := make([]float64, p)
		rows[r] = row
		for j, v := range d.Variables {
			x := v.Values[r]
			if IsMissing(x) {
				row[j] = math.NaN()
				continue
			}
			row[j] = (x - means[j]) / sds[j]
		}
	}
	z, err := matrix.NewDenseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("dataset: Standardize: %w", err)
	}

	return z, nil
}
