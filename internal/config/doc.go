// Package config loads emc's operator configuration.
//
// Settings come from an optional YAML file under the XDG config directory,
// decoded through mapstructure so durations and port strings can be
// written naturally. Secrets are taken from the environment only. Hetzner
// API timeouts keep their own environment knobs, see [LoadTimeouts].
package config
