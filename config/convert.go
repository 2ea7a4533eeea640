// SPDX-License-Identifier: MIT

package config

import (
	"github.com/katalvlaran/lvfactor/efa"
	"github.com/katalvlaran/lvfactor/extract"
	"github.com/katalvlaran/lvfactor/rotate"
	"github.com/katalvlaran/lvfactor/score"
)

// EngineConfig parses the method names and returns the validated engine
// configuration. Call it on a File that went through Parse or LoadFromFile.
func (f *File) EngineConfig() (efa.Config, error) {
	cfg := efa.DefaultConfig()
	var err error
	if cfg.Extraction, err = extract.ParseMethod(f.Extraction); err != nil {
		return cfg, err
	}
	if cfg.Rule.Kind, err = extract.ParseRuleKind(f.FactorRule.Kind); err != nil {
		return cfg, err
	}
	cfg.Rule.Value = 0
	if f.FactorRule.Value != nil {
		cfg.Rule.Value = *f.FactorRule.Value
	}
	if cfg.Initial, err = extract.ParseInitialCommunality(f.InitialCommunality); err != nil {
		return cfg, err
	}
	if cfg.Rotation, err = rotate.ParseMethod(f.Rotation); err != nil {
		return cfg, err
	}
	if cfg.Scores, err = score.ParseMethod(f.Scores.Method); err != nil {
		return cfg, err
	}

	cfg.Gamma = f.Gamma
	cfg.Kappa = f.Kappa
	cfg.MaxIterations = f.MaxIterations
	cfg.Tolerance = f.ConvergenceTolerance
	cfg.Workers = f.Workers
	if f.EigenMaxSweeps > 0 {
		cfg.Eigen.MaxSweeps = f.EigenMaxSweeps
	}
	if f.Normalize != nil {
		cfg.Normalize = *f.Normalize
	}
	if f.Scores.Enabled != nil {
		cfg.ComputeScores = *f.Scores.Enabled
	}

	return cfg, cfg.Validate()
}
