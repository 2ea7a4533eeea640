// SPDX-License-Identifier: MIT

package efa

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/katalvlaran/lvfactor/matrix"
)

// Status is the outcome of a run.
type Status int

const (
	// StatusSucceeded: every stage finished and nothing degraded.
	StatusSucceeded Status = iota
	// StatusPartial: a usable result with numeric degradations (see Errors).
	StatusPartial
	// StatusFailed: a fatal configuration or data error; only inputs are echoed.
	StatusFailed
	// StatusCancelled: the context ended the run; no matrices are returned.
	StatusCancelled
)

var statusNames = [...]string{"succeeded", "partial", "failed", "cancelled"}

// String returns the lower-case status name.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}

	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Table is a row-major matrix in the output contract. NaN cells (missing
// factor scores) are written as JSON null.
type Table [][]float64

// MarshalJSON implements json.Marshaler.
func (t Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	var b bytes.Buffer
	b.WriteByte('[')
	for i, row := range t {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				b.WriteString("null")
				continue
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')

	return b.Bytes(), nil
}

// table converts m to a Table; nil stays nil.
func table(m *matrix.Dense) Table {
	if m == nil {
		return nil
	}

	return Table(m.ToRows())
}

// Sphericity is Bartlett's test that R is an identity matrix.
type Sphericity struct {
	ChiSquare    float64 `json:"chiSquare" yaml:"chiSquare"`
	DF           int     `json:"df" yaml:"df"`
	PValue       float64 `json:"pValue" yaml:"pValue"`
	Observations int     `json:"observations" yaml:"observations"`
}

// Diagnostics holds fit and adequacy indicators.
//
// KMO and MSA are omitted when R is singular; Sphericity when its
// determinant is not positive or p < 2. RMSR is the root mean square of the
// off-diagonal residuals R − ΛΦΛᵀ.
type Diagnostics struct {
	KMO                  *float64    `json:"kmo,omitempty" yaml:"kmo,omitempty"`
	MSA                  []float64   `json:"msa,omitempty" yaml:"msa,omitempty"`
	Sphericity           *Sphericity `json:"sphericity,omitempty" yaml:"sphericity,omitempty"`
	RMSR                 float64     `json:"rmsr" yaml:"rmsr"`
	Determinant          float64     `json:"determinant" yaml:"determinant"`
	Observations         int         `json:"observations" yaml:"observations"`
	CompleteObservations int         `json:"completeObservations" yaml:"completeObservations"`
	ExtractionIterations int         `json:"extractionIterations" yaml:"extractionIterations"`
	ExtractionConverged  bool        `json:"extractionConverged" yaml:"extractionConverged"`
	RotationIterations   int         `json:"rotationIterations" yaml:"rotationIterations"`
	RotationConverged    bool        `json:"rotationConverged" yaml:"rotationConverged"`
}

// Auxiliary correlates the value variables with the factor scores.
// Correlations[i][f] is Pearson's r of Variables[i] against factor f over
// jointly observed rows; NaN when fewer than two rows overlap.
type Auxiliary struct {
	Variables    []string `json:"variables" yaml:"variables"`
	Correlations Table    `json:"correlations" yaml:"correlations"`
}

// Result is the output contract of one run. Analyze always returns one;
// fields a failed stage could not produce are nil.
type Result struct {
	RunID                string      `json:"runId" yaml:"runId"`
	Status               Status      `json:"status" yaml:"status"`
	Extraction           string      `json:"extraction" yaml:"extraction"`
	Rule                 string      `json:"factorCountRule" yaml:"factorCountRule"`
	Rotation             string      `json:"rotation" yaml:"rotation"`
	Variables            []string    `json:"variables" yaml:"variables"`
	Factors              int         `json:"factors" yaml:"factors"`
	Eigenvalues          []float64   `json:"eigenvalues" yaml:"eigenvalues"`
	ReducedEigenvalues   []float64   `json:"reducedEigenvalues,omitempty" yaml:"reducedEigenvalues,omitempty"`
	VarianceExplained    []float64   `json:"varianceExplained" yaml:"varianceExplained"`
	CumulativeVariance   []float64   `json:"cumulativeVariance" yaml:"cumulativeVariance"`
	InitialCommunalities []float64   `json:"initialCommunalities,omitempty" yaml:"initialCommunalities,omitempty"`
	Communalities        []float64   `json:"communalities" yaml:"communalities"`
	Correlations         Table       `json:"correlations,omitempty" yaml:"correlations,omitempty"`
	Loadings             Table       `json:"loadings" yaml:"loadings"`
	RotatedLoadings      Table       `json:"rotatedLoadings" yaml:"rotatedLoadings"`
	Structure            Table       `json:"structure,omitempty" yaml:"structure,omitempty"`
	FactorCorrelations   Table       `json:"factorCorrelations,omitempty" yaml:"factorCorrelations,omitempty"`
	RotationMatrix       Table       `json:"rotationMatrix,omitempty" yaml:"rotationMatrix,omitempty"`
	FactorScores         Table       `json:"factorScores" yaml:"factorScores"`
	Auxiliary            *Auxiliary  `json:"auxiliary,omitempty" yaml:"auxiliary,omitempty"`
	Diagnostics          Diagnostics `json:"diagnostics" yaml:"diagnostics"`
	Warnings             []string    `json:"warnings" yaml:"warnings"`
	Errors               []string    `json:"errors" yaml:"errors"`
	Issues               []Issue     `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Err combines every issue listed in Errors, or returns nil.
func (r *Result) Err() error {
	var err error
	for _, is := range r.Issues {
		if is.reportsError() {
			err = multierr.Append(err, is)
		}
	}

	return err
}

// ErrorText joins Errors one per line for display.
func (r *Result) ErrorText() string { return strings.Join(r.Errors, "\n") }

// add records an issue and mirrors it into Warnings and Errors.
func (r *Result) add(is Issue) {
	r.Issues = append(r.Issues, is)
	if !is.Fatal {
		r.Warnings = append(r.Warnings, is.Message)
	}
	if is.reportsError() {
		r.Errors = append(r.Errors, is.Message)
	}
}

// settle derives Status from the recorded issues.
func (r *Result) settle() {
	r.Status = StatusSucceeded
	for _, is := range r.Issues {
		switch {
		case is.Kind == Cancelled:
			r.Status = StatusCancelled
			return
		case is.Fatal:
			r.Status = StatusFailed
		case is.Kind == NumericError && r.Status == StatusSucceeded:
			r.Status = StatusPartial
		}
	}
}

// clearMatrices drops everything computed, leaving identity fields and issues.
func (r *Result) clearMatrices() {
	*r = Result{
		RunID:      r.RunID,
		Status:     r.Status,
		Extraction: r.Extraction,
		Rule:       r.Rule,
		Rotation:   r.Rotation,
		Warnings:   r.Warnings,
		Errors:     r.Errors,
		Issues:     r.Issues,
	}
}
