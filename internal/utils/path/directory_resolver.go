package pathutils

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrEmptyDirectory indicates that a configured directory resolved to an empty value.
var ErrEmptyDirectory = errors.New("directory path is empty")

// WorkingDirectoryProvider resolves the directory relative paths are anchored to.
type WorkingDirectoryProvider func() (string, error)

// DirectoryResolver turns configured directory settings into clean absolute paths.
type DirectoryResolver struct {
	homeExpander             *HomeExpander
	workingDirectoryProvider WorkingDirectoryProvider
}

// NewDirectoryResolver constructs a DirectoryResolver. Nil collaborators fall
// back to the operating system lookups.
func NewDirectoryResolver(homeExpander *HomeExpander, workingDirectoryProvider WorkingDirectoryProvider) *DirectoryResolver {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	if workingDirectoryProvider == nil {
		workingDirectoryProvider = func() (string, error) { return filepath.Abs(".") }
	}
	return &DirectoryResolver{homeExpander: homeExpander, workingDirectoryProvider: workingDirectoryProvider}
}

// Resolve trims, expands "~" and anchors relative values at the working directory.
func (resolver *DirectoryResolver) Resolve(configuredPath string) (string, error) {
	trimmedPath := strings.TrimSpace(configuredPath)
	if len(trimmedPath) == 0 {
		return "", ErrEmptyDirectory
	}

	expandedPath := resolver.homeExpander.Expand(trimmedPath)
	if filepath.IsAbs(expandedPath) {
		return filepath.Clean(expandedPath), nil
	}

	workingDirectory, workingDirectoryError := resolver.workingDirectoryProvider()
	if workingDirectoryError != nil {
		return "", workingDirectoryError
	}
	return filepath.Join(workingDirectory, expandedPath), nil
}
