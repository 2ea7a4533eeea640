// Package correlation builds the p×p association matrix an analysis starts
// from.
//
// Missing values are handled by pairwise deletion: every cell uses the rows
// where both variables are observed, with pair-local means. Constant
// variables and variables with fewer than two observations are dropped
// before the matrix is built, each with a warning such as
//
//	Variable height has zero variance
//
// A pair with fewer than two joint observations gets 0 and a warning rather
// than failing the run. The pair loop fans out over rows with errgroup;
// Compute returns only after every worker has finished.
//
// Compute is Screen followed by Result.Correlate. Callers that must check
// the surviving variable count before paying for the matrix call the two
// separately.
//
// Example:
//
//	res, err := correlation.Compute(ctx, ds, correlation.DefaultOptions())
//	if err != nil {
//	    // ErrNoUsableVariables, ctx.Err()
//	}
//	fmt.Println(res.Names, res.Matrix)
package correlation
