// SPDX-License-Identifier: MIT

// Package csvdata reads a header-first CSV file into numeric columns and
// splits them into target and value variables for an analysis request.
package csvdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvfactor/dataset"
)

var (
	// ErrNoHeader is returned for an empty input.
	ErrNoHeader = errors.New("csvdata: missing header row")

	// ErrNotNumeric is returned for a cell that is neither a number nor a
	// missing marker.
	ErrNotNumeric = errors.New("csvdata: non-numeric value")

	// ErrUnknownColumn is returned when a definition names no CSV column.
	ErrUnknownColumn = errors.New("csvdata: unknown column")
)

// missingTokens are read as NaN (compared case-insensitively).
var missingTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, ".": {}, "null": {},
}

// Frame is a parsed CSV: one column of values per header name.
type Frame struct {
	Names   []string
	Columns [][]float64
}

// Read parses r. Every row must have as many fields as the header.
func Read(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csvdata: %w", err)
	}

	f := &Frame{Names: make([]string, len(header)), Columns: make([][]float64, len(header))}
	for i, h := range header {
		f.Names[i] = strings.TrimSpace(h)
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvdata: %w", err)
		}
		for j, cell := range rec {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column %s: %q", ErrNotNumeric, line, f.Names[j], cell)
			}
			f.Columns[j] = append(f.Columns[j], v)
		}
	}

	return f, nil
}

func parseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return math.NaN(), nil
	}

	return strconv.ParseFloat(s, 64)
}

// Split picks the target and value columns.
//
// Value columns are those named in values. Targets are those named in
// targets, in that order; when targets is empty every column that is not a
// value column becomes a continuous target. Definitions for unknown columns
// fail with ErrUnknownColumn.
func (f *Frame) Split(targets, values []dataset.Definition) (
	targetData [][]float64, targetDefs []dataset.Definition,
	valueData [][]float64, valueDefs []dataset.Definition, err error,
) {
	index := make(map[string]int, len(f.Names))
	for i, n := range f.Names {
		index[n] = i
	}
	pick := func(defs []dataset.Definition) ([][]float64, error) {
		out := make([][]float64, len(defs))
		for i, d := range defs {
			j, ok := index[d.Name]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, d.Name)
			}
			out[i] = f.Columns[j]
		}

		return out, nil
	}

	if valueData, err = pick(values); err != nil {
		return nil, nil, nil, nil, err
	}
	valueDefs = values

	if len(targets) == 0 {
		isValue := make(map[string]bool, len(values))
		for _, d := range values {
			isValue[d.Name] = true
		}
		for _, n := range f.Names {
			if !isValue[n] {
				targets = append(targets, dataset.Definition{Name: n})
			}
		}
	}
	if targetData, err = pick(targets); err != nil {
		return nil, nil, nil, nil, err
	}

	return targetData, targets, valueData, valueDefs, nil
}
