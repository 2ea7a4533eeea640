// Package dataset holds the variables an analysis runs on.
//
// Values arrive already sliced out of a larger host dataset: one float64
// sequence per variable plus a Definition (name, semantic type). Build keeps
// the numeric variables that share a common observation count N and reports
// everything it drops as a warning string. Missing observations are NaN.
package dataset
