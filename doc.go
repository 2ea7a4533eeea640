// Package lvfactor is an exploratory factor analysis toolkit: from raw
// numeric columns to extracted, rotated and scored latent factors.
//
// What is inside?
//
//	A small set of composable packages, each usable on its own:
//		• dataset/     - variable definitions, column validation, zero-variance drops
//		• correlation/ - pairwise-complete Pearson correlation and covariance
//		• eigen/       - cyclic Jacobi eigen decomposition for symmetric matrices
//		• extract/     - principal components and principal axis factoring
//		• rotate/      - varimax, quartimax, oblimin and promax rotations
//		• score/       - regression, Thurstone and Bartlett factor scores
//		• efa/         - the Engine that runs every stage and assembles a Result
//		• config/      - YAML configuration with environment overrides
//		• matrix/      - the dense row-major primitives underneath it all
//
// Quick example:
//
//	eng := efa.New()
//	res := eng.Analyze(ctx, efa.Request{
//		TargetData: columns,
//		TargetDefs: defs,
//		Config:     efa.DefaultConfig(),
//	})
//	fmt.Println(res.Status, res.Factors, res.VarianceExplained)
//
// The efa command wraps the engine for CSV files:
//
//	go install github.com/katalvlaran/lvfactor/cmd/efa@latest
//	efa analyze --data survey.csv --config efa.yaml
package lvfactor
