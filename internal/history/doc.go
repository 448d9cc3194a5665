// Package history drives git and git-filter-repo against a staged working copy
// of a repository: cloning, listing authorship, rewriting author names and
// emails, keeping the origin remote intact and force-pushing the result.
//
// Every mutating call reports failures as typed errors; callers decide whether
// a rewrite took effect by listing authorship again.
package history
