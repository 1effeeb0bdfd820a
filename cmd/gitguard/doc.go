// Gitguard is a local CLI that commits the staged change set only after
// scanning it for credentials.
//
// Findings are shown before anything is committed, and the commit can be
// aborted, continued as an explicit override, or retried after the affected
// files are unstaged. The commit message is taken from -m or generated by an
// LLM provider from a redacted copy of the diff.
//
// Usage:
//
//	gitguard commit                   # scan, resolve findings, generate message, commit
//	gitguard commit -m "fix: typo"    # scan and commit with a given message
//	gitguard scan                     # scan the staged diff, exit 1 on findings
//	git diff | gitguard scan --stdin  # scan any unified diff
//	gitguard hook install             # run the scan from the pre-commit hook
//	gitguard patterns                 # list the secret patterns in effect
package main
