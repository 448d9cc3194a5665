// Package identity models commit author identities and parses the authorship
// summaries produced by git shortlog.
//
// Parsing is deliberately lossy: lines that do not carry a "name <email>"
// pair are dropped instead of reported.
package identity
