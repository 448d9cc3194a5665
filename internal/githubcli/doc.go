// Package githubcli wraps the GitHub CLI so account listings can be resolved
// with the operator's existing gh authentication instead of a token.
package githubcli
