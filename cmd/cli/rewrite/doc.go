// Package rewrite provides the repo, account and bootstrap commands that
// rewrite author identity across git history.
package rewrite
