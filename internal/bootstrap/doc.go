// Package bootstrap locates the git-filter-repo executable and, with the
// operator's consent, downloads it or marks it executable.
package bootstrap
