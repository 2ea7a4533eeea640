// Package extract turns a correlation matrix into unrotated factor loadings.
//
// Two methods are supported:
//
//   - PrincipalComponents: loadings are eigenvectors scaled by √eigenvalue.
//   - PrincipalAxis: communalities are estimated (squared multiple
//     correlation by default), placed on the diagonal, and refined by
//     repeated decomposition until they stop changing.
//
// Exactly one factor-count rule is active: eigenvalue threshold (Kaiser),
// fixed count, or cumulative variance percentage. Options.Validate rejects a
// count outside 1..p before any decomposition runs, so callers can report it
// as a configuration problem.
//
// Numerical trouble (non-convergence, singular R, Heywood cases) never fails
// Extract; it is reported in Result.Warnings.
package extract
