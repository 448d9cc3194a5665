// Package githubauth resolves the GitHub API token used for account listings.
package githubauth

import (
	"os"
	"strings"
)

// Environment variable names consulted for a GitHub token, in preference order.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup reports the value of an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// ResolveToken returns the first non-empty token found in the process environment.
func ResolveToken() (string, bool) {
	return ResolveTokenFrom(os.LookupEnv)
}

// ResolveTokenFrom returns the first non-empty token reported by lookup.
// Surrounding whitespace is ignored so tokens pasted with a newline still work.
func ResolveTokenFrom(lookup EnvironmentLookup) (string, bool) {
	if lookup == nil {
		return "", false
	}
	for _, key := range tokenPreference {
		value, exists := lookup(key)
		if !exists {
			continue
		}
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) > 0 {
			return trimmedValue, true
		}
	}
	return "", false
}

// MapLookup adapts a static map to an EnvironmentLookup.
func MapLookup(environment map[string]string) EnvironmentLookup {
	return func(key string) (string, bool) {
		value, exists := environment[key]
		return value, exists
	}
}
