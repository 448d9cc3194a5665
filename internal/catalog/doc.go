// Package catalog resolves a GitHub account into the repository handles
// reauthor clones in all-repositories mode. Listings come either from the
// GitHub REST API or from the GitHub CLI.
package catalog
