// Package cache stores generated commit messages on disk so that retrying
// an aborted commit does not call the provider again for the same change set.
//
// Entries are keyed by a SHA-256 hash of the provider, model and prompt. The
// prompt is built from the redacted diff, so neither keys nor messages carry
// detected secrets. Entries older than the TTL are ignored on read and can be
// pruned.
//
// The default directory is $XDG_CACHE_HOME/gitguard (or the OS-appropriate
// equivalent).
package cache
