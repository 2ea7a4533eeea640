// Package matrix provides the dense linear-algebra primitives used by the
// factor-analysis pipeline.
//
// The matrix package provides:
//
//   - Matrix, a minimal bounds-checked interface, and Dense, its row-major
//     implementation with O(1) At/Set and cheap row views.
//   - Kernels: Mul, Transpose, Scale, MatVec, Trace, Symmetrize, LU and
//     Inverse (Doolittle LU without pivoting, Gauss-Jordan inverse with
//     partial pivoting, both with a relative singularity guard).
//   - Validators shared by every stage (ValidateSquare, ValidateSymmetric, ...).
//
// All kernels are deterministic (fixed loop orders), never mutate inputs and
// report failures through the sentinel errors in errors.go, wrapped with an
// operation tag so callers match them with errors.Is.
package matrix
