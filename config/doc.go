// Package config loads analysis settings from YAML.
//
// LoadFromFile reads the file, lets EFA_* environment variables override it
// (EFA_EXTRACTION, EFA_FACTOR_RULE, EFA_FACTOR_VALUE, EFA_ROTATION,
// EFA_MAX_ITERATIONS, EFA_TOLERANCE, ...), fills defaults and validates.
// EngineConfig converts the result into an efa.Config.
package config
