// Package remediate decides what happens to a commit attempt once the secret
// scan has produced findings.
//
// A [Workflow] displays the findings, asks a [DecisionSource] for one of Abort,
// Continue or Remove, and applies the choice. Remove unstages exactly the files
// that carry findings through an [Unstager]. Every outcome is recorded with an
// audit ID so that an explicit override is distinguishable from a clean scan.
//
// [Gate] drives the full loop for the commit flow: scan the staged diff,
// resolve, and after a removal fetch and scan the staged set again.
package remediate
