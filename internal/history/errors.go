package history

import (
	"errors"
	"fmt"
)

const (
	executorNotConfiguredMessageConstant     = "git executor not configured"
	fileSystemNotConfiguredMessageConstant   = "filesystem not configured"
	stagingDirectoryRequiredMessageConstant  = "staging directory required"
	rewriteToolPathRequiredMessageConstant   = "rewrite tool path required"
	handleRequiredMessageConstant            = "repository handle required"
	operationErrorTemplateConstant           = "%s failed for %s: %v"
	pushRejectedErrorTemplateConstant        = "push rejected for %s: %v"
	workingCopyConflictErrorTemplateConstant = "working copy for %s already exists at %s"
	invalidRenameValueErrorTemplateConstant  = "%s: %s"
	renameValueRequiredMessageConstant       = "value required"
	renameValueMultilineMessageConstant      = "value must be a single line"
	renameOldValueFieldNameTemplateConstant  = "old %s"
	renameNewValueFieldNameTemplateConstant  = "new %s"
)

var (
	// ErrExecutorNotConfigured indicates the client was constructed without a git executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrFileSystemNotConfigured indicates the client was constructed without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrStagingDirectoryRequired indicates an empty staging directory setting.
	ErrStagingDirectoryRequired = errors.New(stagingDirectoryRequiredMessageConstant)
	// ErrRewriteToolPathRequired indicates the rewrite tool location is unknown.
	ErrRewriteToolPathRequired = errors.New(rewriteToolPathRequiredMessageConstant)
	// ErrHandleRequired indicates a nil repository handle.
	ErrHandleRequired = errors.New(handleRequiredMessageConstant)
)

// OperationName identifies a history client operation in errors and logs.
type OperationName string

// Operation names reported by OperationError.
const (
	OperationClone          OperationName = "Clone"
	OperationListAuthors    OperationName = "ListAuthors"
	OperationGetOriginURL   OperationName = "GetOriginURL"
	OperationSetOriginURL   OperationName = "SetOriginURL"
	OperationRenameAuthor   OperationName = "RenameAuthor"
	OperationRenameEmail    OperationName = "RenameEmail"
	OperationPush           OperationName = "Push"
	OperationPrepareStaging OperationName = "PrepareStaging"
)

// OperationError wraps a failed subprocess or filesystem call with the operation and repository it served.
type OperationError struct {
	Operation  OperationName
	Repository string
	Cause      error
}

// Error describes the failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Repository, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// PushRejectedError reports that the remote refused or failed the force push.
type PushRejectedError struct {
	Repository string
	Cause      error
}

// Error describes the rejection.
func (rejectedError PushRejectedError) Error() string {
	return fmt.Sprintf(pushRejectedErrorTemplateConstant, rejectedError.Repository, rejectedError.Cause)
}

// Unwrap exposes the underlying cause.
func (rejectedError PushRejectedError) Unwrap() error {
	return rejectedError.Cause
}

// WorkingCopyConflictError reports a stale working copy that could not be
// resolved because no prompter was available to ask about it.
type WorkingCopyConflictError struct {
	Repository string
	Path       string
}

// Error describes the conflict.
func (conflictError WorkingCopyConflictError) Error() string {
	return fmt.Sprintf(workingCopyConflictErrorTemplateConstant, conflictError.Repository, conflictError.Path)
}

// InvalidRenameValueError reports an unusable old or new value for a rename.
type InvalidRenameValueError struct {
	FieldName string
	Message   string
}

// Error describes the invalid value.
func (valueError InvalidRenameValueError) Error() string {
	return fmt.Sprintf(invalidRenameValueErrorTemplateConstant, valueError.FieldName, valueError.Message)
}
