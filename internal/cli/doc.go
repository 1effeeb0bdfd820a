// Package cli wires together the Cobra command tree for the gitguard binary.
//
// It defines the root command and all subcommands (commit, scan, patterns,
// hook, config, models, cache, version), binds flags, reads configuration, runs the
// secret gate ahead of every commit, and returns deterministic exit codes for
// hooks and CI.
package cli
