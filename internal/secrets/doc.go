// Package secrets detects credentials introduced by a staged change set.
//
// A unified diff is split into per-file sections ([SplitSections]), each
// section is walked by a hunk tracker ([Track]) that recovers the line number
// every added or context line occupies in the resulting file, and every added
// line is tested against the [Registry] of named secret shapes. Matches that
// look like placeholders, repeated characters, common test passwords, or that
// sit in example env files are dropped before a [Finding] is produced.
//
// [Scanner.Scan] fans sections out across a bounded worker pool and returns
// findings sorted by file path and line number, independent of scheduling.
// Malformed sections are skipped and logged; scanning never fails on input.
package secrets
