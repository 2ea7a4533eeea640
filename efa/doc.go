// Package efa runs a complete exploratory factor analysis and assembles the
// result.
//
// An Engine wires the stages together:
//
//	dataset.Build → correlation.Compute → extract.Extract → rotate.Rotate
//	→ score.Compute → diagnostics
//
// Analyze never returns an error. Every stage reports through the Result:
// non-fatal conditions become Issues mirrored into Warnings, numeric
// degradations also land in Errors, and Status tells the caller whether the
// result is complete (succeeded), best-effort (partial), absent (failed) or
// withdrawn (cancelled).
//
//	eng := efa.New(efa.WithLogger(logger), efa.WithMetrics(efa.NewMetrics(reg)))
//	res := eng.Analyze(ctx, efa.Request{
//		TargetData: columns,
//		TargetDefs: defs,
//		Config:     efa.DefaultConfig(),
//	})
//	if err := res.Err(); err != nil {
//		log.Print(res.ErrorText())
//	}
//
// The Engine keeps no state between calls.
package efa
