// Package config loads and validates the rigd daemon configuration from
// defaults, an optional YAML file and RIGD_* environment overrides, in
// that order of precedence.
package config
