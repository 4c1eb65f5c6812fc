// Package config loads, validates, and defaults the TOML configuration for
// the switchboard daemon and CLI.
package config
