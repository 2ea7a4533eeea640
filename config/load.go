// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvfactor/efa"
	"github.com/katalvlaran/lvfactor/extract"
	"github.com/katalvlaran/lvfactor/rotate"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

var validate = validator.New()

// LoadFromFile reads path, then applies EFA_* environment overrides and
// defaults, and validates the result.
func LoadFromFile(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML (unknown keys are rejected), then applies environment
// overrides and defaults, and validates the result. Empty input yields the
// defaults.
func Parse(data []byte) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := applyEnvOverrides(f); err != nil {
		return nil, err
	}
	applyDefaults(f)
	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

// Default returns the configuration an empty file produces.
func Default() *File {
	f := &File{}
	applyDefaults(f)

	return f
}

// applyDefaults lower-cases method names and fills zero values: principal
// components, Kaiser rule, varimax, SMC, regression scores enabled.
func applyDefaults(f *File) {
	lower := func(s *string, def string) {
		*s = strings.ToLower(strings.TrimSpace(*s))
		if *s == "" {
			*s = def
		}
	}
	lower(&f.Extraction, extract.PrincipalComponents.String())
	lower(&f.FactorRule.Kind, extract.EigenvalueThreshold.String())
	lower(&f.Rotation, rotate.Varimax.String())
	lower(&f.InitialCommunality, extract.SMC.String())
	lower(&f.Scores.Method, "regression")

	if f.FactorRule.Value == nil && isEigenvalueRule(f.FactorRule.Kind) {
		one := 1.0
		f.FactorRule.Value = &one
	}
	if f.MaxIterations == 0 {
		f.MaxIterations = efa.DefaultMaxIterations
	}
	if f.ConvergenceTolerance == 0 {
		f.ConvergenceTolerance = efa.DefaultTolerance
	}
	if f.Kappa == 0 {
		f.Kappa = rotate.DefaultKappa
	}
	if f.Normalize == nil {
		t := true
		f.Normalize = &t
	}
	if f.Scores.Enabled == nil {
		t := true
		f.Scores.Enabled = &t
	}
}

func isEigenvalueRule(kind string) bool {
	k, err := extract.ParseRuleKind(kind)

	return err == nil && k == extract.EigenvalueThreshold
}

// Validate checks struct tags and that the values parse.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := f.EngineConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}
