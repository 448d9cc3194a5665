// Package gitrepo parses git clone URLs. reauthor uses it to derive a working
// copy name when the operator supplies only a clone URL.
package gitrepo
