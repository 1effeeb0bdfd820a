// Package message drafts a commit message for a staged change set.
//
// The diff handed to the provider is a reduced copy of the one that was
// scanned: excluded paths are dropped, credentials and policy-listed files
// are redacted, and the result is truncated at a byte budget. The scanned
// diff itself is never altered.
package message
