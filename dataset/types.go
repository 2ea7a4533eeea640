// SPDX-License-Identifier: MIT

package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrEmptyDataset is returned when no usable variable or observation remains.
var ErrEmptyDataset = errors.New("dataset: no usable variables")

// ErrDefinitionMismatch is returned when data and definitions are not aligned 1:1.
var ErrDefinitionMismatch = errors.New("dataset: data and definitions differ in length")

// ErrUnknownType is returned by ParseSemanticType for an unrecognized name.
var ErrUnknownType = errors.New("dataset: unknown semantic type")

// SemanticType is the declared measurement level of a variable.
//
//   - Continuous: interval/ratio values; correlated as-is.
//   - Ordinal: ranked codes; correlated as numeric (Pearson on codes).
//   - Nominal: category codes; cannot enter a correlation.
//   - ID: identifiers; cannot enter a correlation.
type SemanticType int

const (
	// Continuous is the zero value so a bare Definition{Name} is numeric.
	Continuous SemanticType = iota
	// Ordinal values are ranked codes.
	Ordinal
	// Nominal values are unordered category codes.
	Nominal
	// ID values identify observations.
	ID
)

var typeNames = [...]string{"continuous", "ordinal", "nominal", "id"}

// String returns the lower-case name used in configs and messages.
func (t SemanticType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("SemanticType(%d)", int(t))
	}

	return typeNames[t]
}

// Numeric reports whether values of this type may be correlated.
func (t SemanticType) Numeric() bool { return t == Continuous || t == Ordinal }

// ParseSemanticType maps a case-insensitive name to a SemanticType.
// "" parses to Continuous; "interval", "ratio" and "scale" are aliases.
func ParseSemanticType(s string) (SemanticType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continuous", "interval", "ratio", "scale":
		return Continuous, nil
	case "ordinal":
		return Ordinal, nil
	case "nominal", "categorical":
		return Nominal, nil
	case "id", "identifier":
		return ID, nil
	}

	return Continuous, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t SemanticType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SemanticType) UnmarshalText(b []byte) error {
	v, err := ParseSemanticType(string(b))
	if err != nil {
		return err
	}
	*t = v

	return nil
}

// Definition is the per-variable metadata supplied alongside raw values.
type Definition struct {
	Name string       `json:"name" yaml:"name"`
	Type SemanticType `json:"type" yaml:"type"`
}

// Variable is one retained column: its name, type and one value per
// observation. Missing observations hold NaN.
type Variable struct {
	Name   string
	Type   SemanticType
	Values []float64
}

// IsMissing reports whether v is a missing marker (NaN or ±Inf).
func IsMissing(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

// Observed returns the number of non-missing values.
func (v Variable) Observed() int {
	n := 0
	for _, x := range v.Values {
		if !IsMissing(x) {
			n++
		}
	}

	return n
}

// Dataset is an ordered set of variables sharing the observation count N.
type Dataset struct {
	Variables []Variable
	N         int
}
