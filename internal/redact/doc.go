// Package redact removes secrets from diff content before it is sent to an
// LLM provider.
//
// Detection reuses the secret scanner's pattern registry, so every shape the
// scan reports (cloud keys, source-control tokens, vendor API keys, private
// key headers, bearer tokens, JWTs, connection URLs, generic assignments and
// any rules-file patterns) is also withheld from the commit-message prompt.
//
// Path-based redaction is also supported: files whose paths match configured
// glob patterns have their entire content replaced with [REDACTED] rather than
// being scanned line by line.
package redact
