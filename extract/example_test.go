// SPDX-License-Identifier: MIT

package extract_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvfactor/extract"
	"github.com/katalvlaran/lvfactor/matrix"
)

// //////////////////////////////////////////////////////////////////////////////
// ExampleExtract_principalComponents
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	Two items that correlate at 0.6.
//	  R = [[1.0, 0.6],
//	       [0.6, 1.0]]
//
// Options:
//   - Method = PrincipalComponents
//   - Rule   = Kaiser (eigenvalue > 1)
//
// Eigenvalues are 1.6 and 0.4, so one factor is kept and each item loads
// √0.8 on it.
func ExampleExtract_principalComponents() {
	R, _ := matrix.NewDenseRows([][]float64{
		{1.0, 0.6},
		{0.6, 1.0},
	})

	res, err := extract.Extract(context.Background(), R, extract.DefaultOptions())
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	l0, _ := res.Loadings.At(0, 0)
	l1, _ := res.Loadings.At(1, 0)
	fmt.Printf("factors=%d\n", res.Factors)
	fmt.Printf("eigenvalues=[%.1f %.1f]\n", res.Eigenvalues[0], res.Eigenvalues[1])
	fmt.Printf("loadings=[%.3f %.3f]\n", l0, l1)
	fmt.Printf("communalities=[%.2f %.2f]\n", res.Communalities[0], res.Communalities[1])
	// Output:
	// factors=1
	// eigenvalues=[1.6 0.4]
	// loadings=[0.894 0.894]
	// communalities=[0.80 0.80]
}
