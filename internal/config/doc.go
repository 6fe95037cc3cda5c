// Package config loads, normalizes, and validates enasubmit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// WEBIN_USER and WEBIN_PASS. The Config value is sourced once at the command
// boundary and passed explicitly to every component; nothing reads the
// environment after Load returns.
//
// The production endpoint is opt-in: Default leaves webin.production off so a
// missing or partial config file can only ever reach the sandbox.
package config
