// Package main hosts the enasubmit CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into submission chains
// against the archive drop-box, dry-run manifest rendering, direct releases,
// checksum and readiness checks, and journal queries. It centralizes
// configuration resolution and logger setup so subcommands can focus on
// their own flags and output.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first and is surfaced here through dedicated commands or flags.
package main
