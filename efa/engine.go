// SPDX-License-Identifier: MIT

package efa

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/katalvlaran/lvfactor/correlation"
	"github.com/katalvlaran/lvfactor/dataset"
	"github.com/katalvlaran/lvfactor/extract"
	"github.com/katalvlaran/lvfactor/matrix"
	"github.com/katalvlaran/lvfactor/rotate"
	"github.com/katalvlaran/lvfactor/score"
)

const tracerName = "github.com/katalvlaran/lvfactor/efa"

// Engine runs analyses. It holds only a logger, a tracer and metric
// instruments, so one Engine may serve concurrent Analyze calls.
type Engine struct {
	log     *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures an Engine at construction.
type Option func(e *Engine)

// WithLogger sets the structured logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics reports run, stage and iteration metrics to m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer replaces the tracer taken from the global otel provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// New builds an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{log: zap.NewNop(), tracer: otel.Tracer(tracerName)}
	for _, o := range opts {
		o(e)
	}

	return e
}

// Request is one analysis invocation.
//
// TargetData[i] holds the values of TargetDefs[i], aligned by observation;
// NaN marks a missing value. ValueData/ValueDefs are optional auxiliary
// variables correlated with the factor scores.
type Request struct {
	TargetData [][]float64
	TargetDefs []dataset.Definition
	ValueData  [][]float64
	ValueDefs  []dataset.Definition
	Config     Config
}

// run is the per-invocation state of Analyze.
type run struct {
	e   *Engine
	log *zap.Logger
	cfg Config
	res *Result
}

// Analyze performs one analysis and never fails: configuration and data
// errors yield StatusFailed with the issues that caused them, cancellation
// yields StatusCancelled with no matrices, and numeric degradations yield
// StatusPartial alongside the best-effort result.
//
// Implementation:
//   - Stage 1: validate Config; build the dataset from TargetData, drop
//     constant or unobserved variables and check 1 ≤ k ≤ p against the
//     rest, all before any matrix work.
//   - Stage 2: pairwise correlation matrix over the retained variables.
//   - Stage 3: extraction (PC or PAF) and factor-count rule.
//   - Stage 4: rotation; a failure keeps the unrotated loadings.
//   - Stage 5: factor scores, then auxiliary correlations of ValueData with
//     the scores.
//   - Stage 6: diagnostics (KMO, Bartlett sphericity, RMSR) and variance
//     explained from the final loadings.
func (e *Engine) Analyze(ctx context.Context, req Request) *Result {
	cfg := req.Config
	res := &Result{
		RunID:      uuid.NewString(),
		Extraction: cfg.Extraction.String(),
		Rule:       cfg.Rule.String(),
		Rotation:   cfg.Rotation.String(),
		Warnings:   []string{},
		Errors:     []string{},
	}
	ctx, span := e.tracer.Start(ctx, "efa.Analyze", trace.WithAttributes(
		attribute.String("efa.run_id", res.RunID),
		attribute.String("efa.extraction", res.Extraction),
		attribute.String("efa.rotation", res.Rotation),
	))
	defer span.End()

	start := time.Now()
	r := &run{e: e, log: e.log.With(zap.String("run_id", res.RunID)), cfg: cfg, res: res}
	r.analyze(ctx, req)

	res.settle()
	if res.Status == StatusCancelled {
		res.clearMatrices()
	}
	if err := res.Err(); err != nil {
		span.SetStatus(codes.Error, res.Status.String())
	}
	span.SetAttributes(attribute.String("efa.status", res.Status.String()), attribute.Int("efa.factors", res.Factors))
	e.metrics.finish(res)
	r.log.Info("analysis finished",
		zap.Stringer("status", res.Status),
		zap.Int("variables", len(res.Variables)),
		zap.Int("factors", res.Factors),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return res
}

func (r *run) analyze(ctx context.Context, req Request) {
	if err := ctx.Err(); err != nil {
		r.issue(Issue{Kind: Cancelled, Stage: StageConfig, Message: err.Error(), Fatal: true})
		return
	}
	if err := r.cfg.Validate(); err != nil {
		r.issue(Issue{Kind: classify(err), Stage: StageConfig, Message: err.Error(), Fatal: true})
		return
	}

	var ds *dataset.Dataset
	ok := r.stage(ctx, StageData, true, func(context.Context) error {
		d, warns, err := dataset.Build(req.TargetData, req.TargetDefs)
		r.warn(DataError, StageData, warns...)
		if err != nil {
			return err
		}
		ds = d
		r.res.Diagnostics.Observations = d.N
		r.res.Diagnostics.CompleteObservations = d.CompleteRows()

		return nil
	})
	if !ok {
		return
	}
	// k is checked against the variables that survive screening, before any
	// matrix work.
	corr, err := correlation.Screen(ds, r.cfg.correlationOptions())
	if err != nil {
		r.issue(Issue{Kind: classify(err), Stage: StageCorrelation, Message: err.Error(), Fatal: true})
		return
	}
	r.warn(DataError, StageCorrelation, corr.Warnings...)
	if err = r.cfg.extractOptions(nil).Validate(len(corr.Kept)); err != nil {
		r.issue(Issue{Kind: ConfigurationError, Stage: StageConfig, Message: err.Error(), Fatal: true})
		return
	}

	ok = r.stage(ctx, StageCorrelation, true, func(ctx context.Context) error {
		screened := len(corr.Warnings)
		if err := corr.Correlate(ctx, ds, r.cfg.correlationOptions()); err != nil {
			return err
		}
		r.warn(DataError, StageCorrelation, corr.Warnings[screened:]...)
		r.res.Variables = corr.Names
		r.res.Correlations = table(corr.Matrix)

		return nil
	})
	if !ok {
		return
	}

	var ex *extract.Result
	ok = r.stage(ctx, StageExtraction, true, func(ctx context.Context) error {
		x, err := extract.Extract(ctx, corr.Matrix, r.cfg.extractOptions(corr.Names))
		if err != nil {
			return err
		}
		ex = x
		r.warn(NumericError, StageExtraction, x.Warnings...)
		r.res.Factors = x.Factors
		r.res.Eigenvalues = x.Eigenvalues
		if x.Method == extract.PrincipalAxis {
			r.res.ReducedEigenvalues = x.ReducedEigenvalues
			r.res.InitialCommunalities = x.InitialCommunalities
		}
		r.res.Communalities = x.Communalities
		r.res.Loadings = table(x.Loadings)
		r.res.Diagnostics.ExtractionIterations = x.Iterations
		r.res.Diagnostics.ExtractionConverged = x.Converged
		r.e.metrics.observeIterations(StageExtraction, x.Iterations)

		return nil
	})
	if !ok {
		return
	}

	final := ex.Loadings
	var rot *rotate.Result
	ok = r.stage(ctx, StageRotation, false, func(ctx context.Context) error {
		o, err := rotate.Rotate(ctx, ex.Loadings, r.cfg.rotateOptions())
		if err != nil {
			return err
		}
		rot = o
		final = o.Loadings
		r.warn(NumericError, StageRotation, o.Warnings...)
		r.res.RotatedLoadings = table(o.Loadings)
		if o.Method != rotate.None {
			r.res.Structure = table(o.Structure)
			r.res.FactorCorrelations = table(o.Phi)
			r.res.RotationMatrix = table(o.Transform)
		}
		r.res.Diagnostics.RotationIterations = o.Iterations
		r.res.Diagnostics.RotationConverged = o.Converged
		r.e.metrics.observeIterations(StageRotation, o.Iterations)

		return nil
	})
	if !ok {
		return
	}
	r.res.VarianceExplained, r.res.CumulativeVariance = varianceExplained(final)

	if r.cfg.ComputeScores {
		var scores *matrix.Dense
		ok = r.stage(ctx, StageScores, false, func(ctx context.Context) error {
			Z, err := ds.Subset(corr.Kept).Standardize(corr.Means, corr.StdDevs)
			if err != nil {
				return err
			}
			sc, err := score.Compute(ctx, Z, corr.Matrix, final, r.cfg.scoreOptions(ex, rot))
			if err != nil {
				return err
			}
			warns := sc.Warnings
			if sc.Incomplete > 0 {
				// the summary line is appended last
				r.warn(DataError, StageScores, warns[len(warns)-1])
				warns = warns[:len(warns)-1]
			}
			r.warn(NumericError, StageScores, warns...)
			scores = sc.Scores
			r.res.FactorScores = table(sc.Scores)

			return nil
		})
		if !ok {
			return
		}
		if scores != nil && len(req.ValueDefs) > 0 {
			ok = r.stage(ctx, StageAuxiliary, false, func(ctx context.Context) error {
				aux, err := r.auxiliary(ctx, req, ds.N, scores)
				r.res.Auxiliary = aux

				return err
			})
			if !ok {
				return
			}
		}
	}

	r.stage(ctx, StageDiagnostics, false, func(context.Context) error {
		d := &r.res.Diagnostics
		if total, msa, ok := kmo(corr.Matrix); ok {
			d.KMO, d.MSA = &total, msa
		}
		d.Sphericity, d.Determinant = sphericity(corr.Matrix, minPairCount(corr.PairCounts))
		fit, err := rmsr(corr.Matrix, ex.Loadings)
		if err != nil {
			return err
		}
		d.RMSR = fit

		return nil
	})
}

// auxiliary correlates every usable value variable with every score column.
func (r *run) auxiliary(ctx context.Context, req Request, n int, scores *matrix.Dense) (*Auxiliary, error) {
	vds, warns, err := dataset.Build(req.ValueData, req.ValueDefs)
	r.warn(DataError, StageAuxiliary, warns...)
	if err != nil {
		return nil, err
	}
	if vds.N != n {
		r.warn(DataError, StageAuxiliary,
			fmt.Sprintf("Value variables have %d observations, expected %d; auxiliary correlations skipped", vds.N, n))
		return nil, nil
	}

	k := scores.Cols()
	cols := make([][]float64, k)
	for f := range cols {
		cols[f] = scores.Col(f)
	}
	aux := &Auxiliary{Variables: vds.Names(), Correlations: make(Table, vds.P())}
	for i, v := range vds.Variables {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		row := make([]float64, k)
		for f := range row {
			rr, _, ok := correlation.Pearson(v.Values, cols[f])
			if !ok {
				rr = math.NaN()
			}
			row[f] = rr
		}
		aux.Correlations[i] = row
	}

	return aux, nil
}

// stage runs fn inside a span and times it. A returned error becomes an
// issue; the run stops when fatal is set, on cancellation and on
// configuration errors. stage reports whether the run may continue.
func (r *run) stage(ctx context.Context, name string, fatal bool, fn func(context.Context) error) bool {
	ctx, span := r.e.tracer.Start(ctx, "efa."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	r.e.metrics.observeStage(name, elapsed)
	r.log.Debug("stage finished", zap.String("stage", name), zap.Duration("elapsed", elapsed), zap.Error(err))
	if err == nil {
		return true
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	kind := classify(err)
	if ctx.Err() != nil {
		kind = Cancelled
	}
	stop := fatal || kind == Cancelled || kind == ConfigurationError
	r.issue(Issue{Kind: kind, Stage: name, Message: err.Error(), Fatal: stop})

	return !stop
}

func (r *run) warn(k Kind, stage string, msgs ...string) {
	for _, m := range msgs {
		r.issue(Issue{Kind: k, Stage: stage, Message: m})
	}
}

func (r *run) issue(is Issue) {
	r.res.add(is)
	if is.Fatal {
		r.log.Error("analysis stopped", zap.Stringer("kind", is.Kind), zap.String("stage", is.Stage), zap.String("message", is.Message))
		return
	}
	r.log.Warn(is.Message, zap.Stringer("kind", is.Kind), zap.String("stage", is.Stage))
}
