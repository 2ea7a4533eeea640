// Package score estimates per-observation factor scores.
//
// Regression (Thurstone) scores are Z·R⁻¹·L·Phi; Bartlett scores weight
// variables by their inverse uniqueness. When R is singular the inverse is
// replaced by an eigen pseudo-inverse and the result carries a warning rather
// than an error. Observations with a missing standardized value get NaN
// scores.
package score
