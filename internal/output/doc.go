// Package output formats secret scan reports for display or machine
// consumption.
//
// Four formats are supported:
//   - text     human-readable terminal output (default)
//   - json     full structured JSON report
//   - markdown PR-comment-friendly summary with a collapsible findings table
//   - sarif    SARIF v2.1.0 for upload to code scanning dashboards
//
// Use [GetWriter] to obtain a [Writer] for a format string, or [WriteReport]
// to also select the destination. Matched text in every format is the
// truncated display form; full source lines only appear, masked, in text
// output with context enabled.
package output
