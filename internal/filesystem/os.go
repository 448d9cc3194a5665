// Package filesystem exposes the operating system file primitives used by the
// history client and the rewrite tool installer behind a small interface.
package filesystem

import (
	"io/fs"
	"os"
)

// OSFileSystem implements the filesystem contracts using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// RemoveAll deletes path and everything beneath it.
func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// WriteFile writes data to a file with the supplied permissions.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

// Chmod changes the permission bits of path.
func (OSFileSystem) Chmod(path string, permissions fs.FileMode) error {
	return os.Chmod(path, permissions)
}
