// SPDX-License-Identifier: MIT

package efa

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/lvfactor/correlation"
	"github.com/katalvlaran/lvfactor/dataset"
	"github.com/katalvlaran/lvfactor/extract"
	"github.com/katalvlaran/lvfactor/rotate"
	"github.com/katalvlaran/lvfactor/score"
)

// Kind classifies an Issue.
//
//   - ConfigurationError: invalid factor count or unknown method; always fatal.
//   - DataError: empty or degenerate input, dropped variables; fatal only
//     when nothing usable remains.
//   - NumericError: non-convergence, singular matrices, Heywood cases; the
//     run degrades to a best-effort result.
//   - Cancelled: the caller's context ended the run.
type Kind int

const (
	ConfigurationError Kind = iota
	DataError
	NumericError
	Cancelled
)

var kindNames = [...]string{"configuration", "data", "numeric", "cancelled"}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Stage names used in issues, log fields, span names and metric labels.
const (
	StageConfig      = "config"
	StageData        = "data"
	StageCorrelation = "correlation"
	StageExtraction  = "extraction"
	StageRotation    = "rotation"
	StageScores      = "scores"
	StageAuxiliary   = "auxiliary"
	StageDiagnostics = "diagnostics"
)

// Issue is one warning or error raised while analyzing.
type Issue struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Stage   string `json:"stage" yaml:"stage"`
	Message string `json:"message" yaml:"message"`
	Fatal   bool   `json:"fatal" yaml:"fatal"`
}

// Error implements error as "<stage>: <message>".
func (i Issue) Error() string { return i.Stage + ": " + i.Message }

// reportsError tells whether the issue belongs in Result.Errors: fatal issues
// and every numeric degradation. Dropped variables stay warnings only.
func (i Issue) reportsError() bool { return i.Fatal || i.Kind == NumericError }

// classify maps a stage error onto the issue taxonomy.
func classify(err error) Kind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Cancelled
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, extract.ErrInvalidFactorCount),
		errors.Is(err, extract.ErrInvalidRule),
		errors.Is(err, extract.ErrInvalidOptions),
		errors.Is(err, extract.ErrUnknownMethod),
		errors.Is(err, rotate.ErrUnknownMethod),
		errors.Is(err, rotate.ErrInvalidOptions),
		errors.Is(err, score.ErrUnknownMethod):
		return ConfigurationError
	case errors.Is(err, dataset.ErrEmptyDataset),
		errors.Is(err, dataset.ErrDefinitionMismatch),
		errors.Is(err, correlation.ErrNilDataset),
		errors.Is(err, correlation.ErrNoUsableVariables):
		return DataError
	}

	return NumericError
}
