// Package rotate turns unrotated loadings into a simpler, more interpretable
// solution.
//
// Orthogonal methods (varimax, quartimax) run the pairwise-angle orthomax
// iteration and keep factors uncorrelated. Oblique methods return a pattern
// matrix together with the structure matrix and the factor correlations Phi:
//
//	oblimin - gradient projection on the direct oblimin criterion
//	promax  - varimax followed by a least-squares fit to a powered target
//
// Factor columns are reflected so that every column sum is non-negative.
//
//	res, err := rotate.Rotate(ctx, loadings, rotate.DefaultOptions())
package rotate
