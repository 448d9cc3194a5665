// Package repository describes the remote repositories whose history is rewritten.
package repository

import (
	"fmt"
	"strings"
)

const (
	nameFieldNameConstant              = "name"
	cloneURLFieldNameConstant          = "clone_url"
	requiredValueMessageConstant       = "value required"
	multilineValueMessageConstant      = "value must be a single line"
	pathSeparatorMessageConstant       = "value must not contain path separators"
	invalidHandleErrorTemplateConstant = "invalid repository %s: %s"
)

// InvalidHandleError reports a handle that cannot be constructed from the supplied input.
type InvalidHandleError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (handleError InvalidHandleError) Error() string {
	return fmt.Sprintf(invalidHandleErrorTemplateConstant, handleError.FieldName, handleError.Message)
}

// Handle references a remote repository and remembers the origin to restore
// after a destructive rewrite.
type Handle struct {
	name          string
	cloneURL      string
	originURL     string
	renamedNames  []string
	renamedEmails []string
}

// NewHandle validates the name and clone URL and fixes the origin URL to the clone URL.
func NewHandle(name string, cloneURL string) (*Handle, error) {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return nil, InvalidHandleError{FieldName: nameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if strings.ContainsAny(trimmedName, "\r\n") {
		return nil, InvalidHandleError{FieldName: nameFieldNameConstant, Message: multilineValueMessageConstant}
	}
	if strings.ContainsAny(trimmedName, `/\`) || trimmedName == "." || trimmedName == ".." {
		return nil, InvalidHandleError{FieldName: nameFieldNameConstant, Message: pathSeparatorMessageConstant}
	}

	trimmedCloneURL := strings.TrimSpace(cloneURL)
	if len(trimmedCloneURL) == 0 {
		return nil, InvalidHandleError{FieldName: cloneURLFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if strings.ContainsAny(trimmedCloneURL, "\r\n") {
		return nil, InvalidHandleError{FieldName: cloneURLFieldNameConstant, Message: multilineValueMessageConstant}
	}

	return &Handle{
		name:      trimmedName,
		cloneURL:  trimmedCloneURL,
		originURL: trimmedCloneURL,
	}, nil
}

// Name returns the repository name, which is also its working copy directory name.
func (handle *Handle) Name() string {
	return handle.name
}

// CloneURL returns the URL the repository is cloned from.
func (handle *Handle) CloneURL() string {
	return handle.cloneURL
}

// OriginURL returns the origin recorded at construction time.
func (handle *Handle) OriginURL() string {
	return handle.originURL
}

// RecordRenamedName appends a new name value to the audit log.
func (handle *Handle) RecordRenamedName(newName string) {
	handle.renamedNames = append(handle.renamedNames, newName)
}

// RecordRenamedEmail appends a new email value to the audit log.
func (handle *Handle) RecordRenamedEmail(newEmail string) {
	handle.renamedEmails = append(handle.renamedEmails, newEmail)
}

// RenamedNames returns a copy of the name audit log in insertion order.
func (handle *Handle) RenamedNames() []string {
	return append([]string{}, handle.renamedNames...)
}

// RenamedEmails returns a copy of the email audit log in insertion order.
func (handle *Handle) RenamedEmails() []string {
	return append([]string{}, handle.renamedEmails...)
}
