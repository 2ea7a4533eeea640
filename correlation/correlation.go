// SPDX-License-Identifier: MIT

package correlation

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvfactor/dataset"
	"github.com/katalvlaran/lvfactor/matrix"
)

// Compute builds the correlation (or covariance) matrix of ds under pairwise
// deletion. It is Screen followed by Correlate.
//
// Implementation:
//   - Stage 1: per variable, count observed values and compute mean and
//     sample standard deviation; drop variables with fewer than two
//     observations or (near-)zero variance, recording a warning for each.
//   - Stage 2: fan the upper triangle out by rows over an errgroup bounded by
//     opts.Workers; row i owns cells (i,j) and (j,i) for j ≥ i, so writes
//     never overlap. Each pair uses only its jointly observed rows.
//   - Stage 3: merge per-row warnings in row order for deterministic output.
//
// Errors:
//   - ErrNilDataset, ErrNoUsableVariables, ctx.Err() on cancellation.
//
// Complexity:
//   - Time O(p²·N), Space O(p²) beyond the dataset.
func Compute(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	res, err := Screen(ds, opts)
	if err != nil {
		return nil, err
	}
	if err = res.Correlate(ctx, ds, opts); err != nil {
		return nil, err
	}

	return res, nil
}

// Screen is the per-variable pass of Compute. The returned Result lists the
// kept variables with their moments and drop warnings; Matrix and
// PairCounts stay nil until Correlate.
//
// Errors:
//   - ErrNilDataset, ErrNoUsableVariables.
func Screen(ds *dataset.Dataset, opts Options) (*Result, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultEpsilon
	}

	res := &Result{Kind: opts.Kind}
	for idx, v := range ds.Variables {
		n, mean, sd := moments(v.Values)
		switch {
		case n < 2:
			res.Warnings = append(res.Warnings, fmt.Sprintf("Variable %s has insufficient observations", v.Name))
			continue
		case sd <= opts.Epsilon*math.Max(1, math.Abs(mean)):
			res.Warnings = append(res.Warnings, fmt.Sprintf("Variable %s has zero variance", v.Name))
			continue
		}
		res.Kept = append(res.Kept, idx)
		res.Names = append(res.Names, v.Name)
		res.Means = append(res.Means, mean)
		res.StdDevs = append(res.StdDevs, sd)
	}
	if len(res.Kept) == 0 {
		return nil, ErrNoUsableVariables
	}

	return res, nil
}

// Correlate fills Matrix and PairCounts over the variables Screen kept from
// the same ds, appending pair warnings to Warnings.
//
// Errors:
//   - ErrNilDataset, ErrNoUsableVariables (nothing screened), ctx.Err().
func (res *Result) Correlate(ctx context.Context, ds *dataset.Dataset, opts Options) error {
	if ds == nil {
		return ErrNilDataset
	}
	p := len(res.Kept)
	if p == 0 {
		return ErrNoUsableVariables
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := matrix.NewDense(p, p)
	if err != nil {
		return fmt.Errorf("correlation: %w", err)
	}
	counts := make([][]int, p)
	for i := range counts {
		counts[i] = make([]int, p)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rowWarnings := make([][]string, p)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < p; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			x := ds.Variables[res.Kept[i]]
			for j := i; j < p; j++ {
				y := ds.Variables[res.Kept[j]]
				v, n, warn := res.pair(i, j, x, y)
				counts[i][j], counts[j][i] = n, n
				_ = m.Set(i, j, v)
				_ = m.Set(j, i, v)
				if warn != "" {
					rowWarnings[i] = append(rowWarnings[i], warn)
				}
			}

			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}
	res.Matrix, res.PairCounts = m, counts
	for _, w := range rowWarnings {
		res.Warnings = append(res.Warnings, w...)
	}

	return nil
}

// pair computes cell (i,j) from the jointly observed rows of x and y.
func (res *Result) pair(i, j int, x, y dataset.Variable) (float64, int, string) {
	if i == j {
		n := x.Observed()
		if res.Kind == Covariance {
			return res.StdDevs[i] * res.StdDevs[i], n, ""
		}

		return 1.0, n, ""
	}

	n, sxx, syy, sxy := jointSums(x.Values, y.Values)
	if n < 2 {
		return 0, n, fmt.Sprintf("Variables %s and %s have no jointly observed values", x.Name, y.Name)
	}
	if res.Kind == Covariance {
		return sxy / float64(n-1), n, ""
	}
	if sxx == 0 || syy == 0 {
		return 0, n, fmt.Sprintf("Variables %s and %s do not vary over their jointly observed values", x.Name, y.Name)
	}

	return clamp(sxy / math.Sqrt(sxx*syy)), n, ""
}

// Pearson returns the correlation of x and y over their jointly observed
// positions and the number of such positions. ok is false when fewer than two
// positions remain or either series is constant over them.
func Pearson(x, y []float64) (r float64, n int, ok bool) {
	if len(x) != len(y) {
		return 0, 0, false
	}
	n, sxx, syy, sxy := jointSums(x, y)
	if n < 2 || sxx == 0 || syy == 0 {
		return 0, n, false
	}

	return clamp(sxy / math.Sqrt(sxx*syy)), n, true
}

// moments returns the observed count, mean and sample standard deviation.
func moments(values []float64) (int, float64, float64) {
	var n int
	var sum float64
	for _, v := range values {
		if !dataset.IsMissing(v) {
			n++
			sum += v
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	mean := sum / float64(n)
	if n < 2 {
		return n, mean, 0
	}
	var ss, d float64
	for _, v := range values {
		if !dataset.IsMissing(v) {
			d = v - mean
			ss += d * d
		}
	}

	return n, mean, math.Sqrt(ss / float64(n-1))
}

// jointSums returns the joint count and centered sums of squares/products
// around the pair-local means.
func jointSums(x, y []float64) (n int, sxx, syy, sxy float64) {
	var mx, my float64
	for r := range x {
		if dataset.IsMissing(x[r]) || dataset.IsMissing(y[r]) {
			continue
		}
		n++
		mx += x[r]
		my += y[r]
	}
	if n == 0 {
		return 0, 0, 0, 0
	}
	mx /= float64(n)
	my /= float64(n)

	var dx, dy float64
	for r := range x {
		if dataset.IsMissing(x[r]) || dataset.IsMissing(y[r]) {
			continue
		}
		dx, dy = x[r]-mx, y[r]-my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	return n, sxx, syy, sxy
}

func clamp(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}

	return r
}
