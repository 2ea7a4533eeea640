// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnvOverrides replaces file values with EFA_* environment variables
// when set. Malformed numbers fail fast.
func applyEnvOverrides(f *File) error {
	strs := []struct {
		env string
		dst *string
	}{
		{"EFA_EXTRACTION", &f.Extraction},
		{"EFA_FACTOR_RULE", &f.FactorRule.Kind},
		{"EFA_ROTATION", &f.Rotation},
		{"EFA_INITIAL_COMMUNALITY", &f.InitialCommunality},
		{"EFA_SCORE_METHOD", &f.Scores.Method},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	floats := []struct {
		env string
		dst *float64
	}{
		{"EFA_TOLERANCE", &f.ConvergenceTolerance},
		{"EFA_GAMMA", &f.Gamma},
		{"EFA_KAPPA", &f.Kappa},
	}
	for _, fl := range floats {
		v := os.Getenv(fl.env)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", fl.env, v, err)
		}
		*fl.dst = x
	}
	if v := os.Getenv("EFA_FACTOR_VALUE"); v != "" {
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid EFA_FACTOR_VALUE %q: %w", v, err)
		}
		f.FactorRule.Value = &x
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"EFA_MAX_ITERATIONS", &f.MaxIterations},
		{"EFA_WORKERS", &f.Workers},
	}
	for _, in := range ints {
		v := os.Getenv(in.env)
		if v == "" {
			continue
		}
		x, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", in.env, v, err)
		}
		*in.dst = x
	}

	bools := []struct {
		env string
		dst **bool
	}{
		{"EFA_NORMALIZE", &f.Normalize},
		{"EFA_SCORES", &f.Scores.Enabled},
	}
	for _, b := range bools {
		v := os.Getenv(b.env)
		if v == "" {
			continue
		}
		x, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", b.env, v, err)
		}
		*b.dst = &x
	}

	return nil
}
