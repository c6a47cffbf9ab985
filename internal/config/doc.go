// Package config loads, normalizes, and validates hopper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files found via --config, HOPPER_CONFIG or the
// default locations, and honours the HOPPER_DATA_DIR environment
// fallback. The daemon and the CLI share one Config so both agree on where
// task logs and the daemon socket live.
package config
