// Package eigen decomposes real symmetric matrices with the cyclic Jacobi
// method.
//
// Solve returns every eigenpair, sorted by descending eigenvalue with ties
// kept in original index order, and eigenvectors signed so their largest
// component is positive. The iteration is capped: when MaxSweeps is reached
// Solve still returns the current approximation, with Converged=false and a
// warning, so callers can carry on with a best-effort result.
//
// The Decomposition helpers rebuild matrices from the spectrum:
// Reconstruct (V·Λ·Vᵀ), PseudoInverse (used when a correlation matrix is
// singular) and ConditionNumber.
//
// Complexity: O(n³) per sweep; correlation matrices typically converge in
// fewer than ten sweeps.
package eigen
