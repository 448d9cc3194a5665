package gitrepo

import (
	"fmt"
	"path"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	gitProtocolPrefixConstant           = "git://"
	fileProtocolPrefixConstant          = "file://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	windowsPathSeparatorConstant        = "\\"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "invalid remote url"
)

// RemoteProtocol enumerates recognised git remote protocols.
type RemoteProtocol string

// Recognised remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
	RemoteProtocolFile  RemoteProtocol = RemoteProtocol("file")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a clone URL into a structured representation.
// Accepted forms: scp-like (git@host:owner/repo.git), ssh://, https://, http://,
// git://, file:// and plain local paths. Owner may contain nested groups.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseHostedRemote(RemoteProtocolSSH, stripUser(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant)), remote)
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHostedRemote(RemoteProtocolHTTPS, stripUser(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant)), remote)
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHostedRemote(RemoteProtocolHTTPS, stripUser(strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant)), remote)
	case strings.HasPrefix(trimmedRemote, gitProtocolPrefixConstant):
		return parseHostedRemote(RemoteProtocolGit, strings.TrimPrefix(trimmedRemote, gitProtocolPrefixConstant), remote)
	case strings.HasPrefix(trimmedRemote, fileProtocolPrefixConstant):
		return parseLocalRemote(strings.TrimPrefix(trimmedRemote, fileProtocolPrefixConstant), remote)
	case isScpLike(trimmedRemote):
		userAndHost, repositoryPath, _ := strings.Cut(trimmedRemote, sshPathDelimiterConstant)
		return parseHostedRemote(RemoteProtocolSSH, stripUser(userAndHost)+pathSeparatorConstant+repositoryPath, remote)
	default:
		return parseLocalRemote(trimmedRemote, remote)
	}
}

// RepositoryName derives the working copy name from a clone URL, e.g.
// "git@github.com:octocat/demo.git" yields "demo".
func RepositoryName(cloneURL string) (string, error) {
	parsedRemote, parseError := ParseRemoteURL(cloneURL)
	if parseError != nil {
		return "", parseError
	}
	return parsedRemote.Repository, nil
}

func isScpLike(remote string) bool {
	colonIndex := strings.Index(remote, sshPathDelimiterConstant)
	if colonIndex <= 0 {
		return false
	}
	hostPart := remote[:colonIndex]
	return !strings.ContainsAny(hostPart, pathSeparatorConstant+windowsPathSeparatorConstant) && len(hostPart) > 1
}

func stripUser(hostAndPath string) string {
	slashIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	userIndex := strings.Index(hostAndPath, sshUserDelimiterConstant)
	if userIndex >= 0 && (slashIndex == -1 || userIndex < slashIndex) {
		return hostAndPath[userIndex+1:]
	}
	return hostAndPath
}

func parseHostedRemote(protocol RemoteProtocol, hostAndPath string, original string) (RemoteURL, error) {
	host, repositoryPath, found := strings.Cut(hostAndPath, pathSeparatorConstant)
	if !found || len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	segments := splitPath(repositoryPath)
	if len(segments) < 2 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	repository := normalizeRepositoryName(segments[len(segments)-1])
	if len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	return RemoteURL{
		Protocol:   protocol,
		Host:       host,
		Owner:      strings.Join(segments[:len(segments)-1], pathSeparatorConstant),
		Repository: repository,
	}, nil
}

func parseLocalRemote(localPath string, original string) (RemoteURL, error) {
	normalizedPath := strings.ReplaceAll(localPath, windowsPathSeparatorConstant, pathSeparatorConstant)
	repository := normalizeRepositoryName(path.Base(path.Clean(normalizedPath)))
	if len(repository) == 0 || repository == "." || repository == pathSeparatorConstant {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Protocol: RemoteProtocolFile, Repository: repository}, nil
}

func splitPath(repositoryPath string) []string {
	rawSegments := strings.Split(repositoryPath, pathSeparatorConstant)
	segments := make([]string, 0, len(rawSegments))
	for _, segment := range rawSegments {
		if len(segment) > 0 {
			segments = append(segments, segment)
		}
	}
	return segments
}

func normalizeRepositoryName(repository string) string {
	return strings.TrimSuffix(strings.TrimSpace(repository), gitSuffixConstant)
}
