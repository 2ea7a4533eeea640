// SPDX-License-Identifier: MIT

package config

import (
	"github.com/katalvlaran/lvfactor/dataset"
)

// File is the YAML form of an analysis configuration.
//
//	extraction: principal-axis
//	factorCountRule: {kind: fixed-count, value: 3}
//	rotation: oblimin
//	gamma: 0
//	maxIterations: 500
//	convergenceTolerance: 1e-6
//	scores: {enabled: true, method: regression}
//	variables:
//	  - {name: q1, type: ordinal}
//	  - {name: id, type: id}
//
// Method names are validated here and parsed by EngineConfig; zero values
// are filled by applyDefaults.
type File struct {
	Extraction           string               `yaml:"extraction" validate:"oneof=principal-components pc pca principal-axis paf pa"`
	FactorRule           FactorRule           `yaml:"factorCountRule"`
	Rotation             string               `yaml:"rotation" validate:"oneof=none varimax orthogonal quartimax oblimin oblique direct-oblimin promax"`
	InitialCommunality   string               `yaml:"initialCommunality" validate:"oneof=smc squared-multiple-correlation max-correlation max maxr unity one ones"`
	MaxIterations        int                  `yaml:"maxIterations" validate:"gte=1,lte=1000000"`
	ConvergenceTolerance float64              `yaml:"convergenceTolerance" validate:"gt=0,lt=1"`
	Gamma                float64              `yaml:"gamma"`
	Kappa                float64              `yaml:"kappa" validate:"gte=1"`
	Normalize            *bool                `yaml:"normalize"`
	Scores               Scores               `yaml:"scores"`
	Workers              int                  `yaml:"workers" validate:"gte=0"`
	EigenMaxSweeps       int                  `yaml:"eigenMaxSweeps" validate:"gte=0"`
	Variables            []dataset.Definition `yaml:"variables" validate:"dive"`
	ValueVariables       []dataset.Definition `yaml:"valueVariables" validate:"dive"`
}

// FactorRule selects the single active factor-count rule. A nil Value on an
// eigenvalue threshold means the Kaiser cut of 1; an explicit 0 is kept.
type FactorRule struct {
	Kind  string   `yaml:"kind" validate:"oneof=eigenvalue-threshold eigenvalue kaiser fixed-count fixed variance-threshold variance"`
	Value *float64 `yaml:"value" validate:"omitempty,gte=0"`
}

// Scores controls factor score estimation.
type Scores struct {
	Enabled *bool  `yaml:"enabled"`
	Method  string `yaml:"method" validate:"oneof=regression thurstone bartlett"`
}
