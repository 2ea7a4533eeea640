// SPDX-License-Identifier: MIT

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvfactor/config"
	"github.com/katalvlaran/lvfactor/dataset"
	"github.com/katalvlaran/lvfactor/efa"
	"github.com/katalvlaran/lvfactor/extract"
	"github.com/katalvlaran/lvfactor/rotate"
	"github.com/katalvlaran/lvfactor/score"
)

const full = `
extraction: PAF
factorCountRule:
  kind: fixed-count
  value: 3
rotation: oblique
initialCommunality: max-correlation
gamma: 0.25
maxIterations: 500
convergenceTolerance: 1e-8
normalize: false
scores:
  method: bartlett
workers: 2
variables:
  - {name: q1, type: ordinal}
  - {name: id, type: id}
valueVariables:
  - {name: age}
`

func TestParse_Empty(t *testing.T) {
	f, err := config.Parse(nil)
	require.NoError(t, err)
	require.Equal(t, config.Default(), f)

	cfg, err := f.EngineConfig()
	require.NoError(t, err)
	require.Equal(t, efa.DefaultConfig(), cfg)
}

func TestParse_Full(t *testing.T) {
	f, err := config.Parse([]byte(full))
	require.NoError(t, err)
	require.Equal(t, "paf", f.Extraction)
	require.Equal(t, []dataset.Definition{{Name: "q1", Type: dataset.Ordinal}, {Name: "id", Type: dataset.ID}}, f.Variables)
	require.Equal(t, []dataset.Definition{{Name: "age"}}, f.ValueVariables)

	cfg, err := f.EngineConfig()
	require.NoError(t, err)
	require.Equal(t, extract.PrincipalAxis, cfg.Extraction)
	require.Equal(t, extract.Fixed(3), cfg.Rule)
	require.Equal(t, extract.MaxCorrelation, cfg.Initial)
	require.Equal(t, rotate.Oblimin, cfg.Rotation)
	require.Equal(t, 0.25, cfg.Gamma)
	require.Equal(t, 500, cfg.MaxIterations)
	require.Equal(t, 1e-8, cfg.Tolerance)
	require.False(t, cfg.Normalize)
	require.True(t, cfg.ComputeScores)
	require.Equal(t, score.Bartlett, cfg.Scores)
	require.Equal(t, 2, cfg.Workers)
}

func TestParse_EigenvalueThreshold(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want float64
	}{
		"omitted":  {"factorCountRule: {kind: kaiser}\n", 1},
		"explicit": {"factorCountRule: {kind: eigenvalue-threshold, value: 0}\n", 0},
		"custom":   {"factorCountRule: {kind: eigenvalue, value: 0.7}\n", 0.7},
	}
	for name, tc := range cases {
		f, err := config.Parse([]byte(tc.doc))
		require.NoError(t, err, name)
		require.NotNil(t, f.FactorRule.Value, name)
		require.Equal(t, tc.want, *f.FactorRule.Value, name)

		cfg, err := f.EngineConfig()
		require.NoError(t, err, name)
		require.Equal(t, extract.FactorRule{Kind: extract.EigenvalueThreshold, Value: tc.want}, cfg.Rule, name)
	}

	t.Setenv("EFA_FACTOR_VALUE", "0")
	f, err := config.Parse([]byte("factorCountRule: {kind: kaiser}\n"))
	require.NoError(t, err)
	cfg, err := f.EngineConfig()
	require.NoError(t, err)
	require.Equal(t, extract.FactorRule{Kind: extract.EigenvalueThreshold, Value: 0}, cfg.Rule)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "rotaton: varimax\n",
		"bad rotation":   "rotation: geomin\n",
		"bad extraction": "extraction: ml\n",
		"zero k":         "factorCountRule: {kind: fixed, value: 0}\n",
		"fractional k":   "factorCountRule: {kind: fixed, value: 2.5}\n",
		"variance":       "factorCountRule: {kind: variance, value: 120}\n",
		"negative":       "factorCountRule: {kind: kaiser, value: -1}\n",
		"fixed no value": "factorCountRule: {kind: fixed}\n",
		"tolerance":      "convergenceTolerance: -1\n",
		"kappa":          "kappa: 0.5\n",
		"type":           "variables: [{name: x, type: fuzzy}]\n",
	}
	for name, doc := range cases {
		_, err := config.Parse([]byte(doc))
		require.Error(t, err, name)
	}

	_, err := config.Parse([]byte("factorCountRule: {kind: fixed, value: 0}\n"))
	require.ErrorIs(t, err, config.ErrInvalid)
	require.ErrorIs(t, err, extract.ErrInvalidFactorCount)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("EFA_ROTATION", "promax")
	t.Setenv("EFA_MAX_ITERATIONS", "12")
	t.Setenv("EFA_SCORES", "false")
	t.Setenv("EFA_FACTOR_RULE", "variance")
	t.Setenv("EFA_FACTOR_VALUE", "75")

	f, err := config.Parse([]byte(full))
	require.NoError(t, err)
	cfg, err := f.EngineConfig()
	require.NoError(t, err)
	require.Equal(t, rotate.Promax, cfg.Rotation)
	require.Equal(t, 12, cfg.MaxIterations)
	require.False(t, cfg.ComputeScores)
	require.Equal(t, extract.Variance(75), cfg.Rule)

	t.Setenv("EFA_WORKERS", "many")
	_, err = config.Parse(nil)
	require.ErrorContains(t, err, "invalid EFA_WORKERS")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "efa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(full), 0o600))

	f, err := config.LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "oblique", f.Rotation)

	_, err = config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
	require.ErrorContains(t, err, "read config file")
}
