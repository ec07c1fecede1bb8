// Package config loads, normalizes, and validates runout configuration from
// TOML. Defaults live in defaults.go, path expansion and env fallbacks in
// normalize.go, and usability checks in validate.go. The embedded
// sample_config.toml documents every key and is written by 'runout config init'.
package config
