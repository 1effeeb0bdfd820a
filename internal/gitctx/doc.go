// Package gitctx reads and mutates the staged change set of a git repository.
//
// It shells out to git for the staged diff, unstaging and committing, and
// reads the list of staged paths from the index with go-git. The staged diff
// is returned whole: path filters and size limits belong to consumers that
// forward it elsewhere, never to the secret scan.
package gitctx
