package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/reauthor/internal/execshell"
	"github.com/temirov/reauthor/internal/identity"
	"github.com/temirov/reauthor/internal/repository"
)

const (
	gitCloneSubcommandConstant                = "clone"
	gitShortlogSubcommandConstant             = "shortlog"
	gitShortlogSummaryFlagConstant            = "-sne"
	gitAllFlagConstant                        = "--all"
	gitRemoteSubcommandConstant               = "remote"
	gitRemoteGetURLSubcommandConstant         = "get-url"
	gitRemoteSetURLSubcommandConstant         = "set-url"
	gitRemoteAddSubcommandConstant            = "add"
	gitPushSubcommandConstant                 = "push"
	gitForceFlagConstant                      = "--force"
	originRemoteNameConstant                  = "origin"
	missingRemoteExitCodeConstant             = 2
	stagingDirectoryPermissionsConstant       = fs.FileMode(0o755)
	workingCopyConflictPromptTemplateConstant = "Working copy %s already exists. Delete it and clone again?"
	logMessageCloningConstant                 = "cloning repository"
	logMessageKeepingWorkingCopyConstant      = "keeping existing working copy"
	logMessageReplacingWorkingCopyConstant    = "replacing existing working copy"
	logMessageRewritingConstant               = "rewriting history"
	logMessageRewriteSkippedConstant          = "rewrite skipped, values are identical"
	logMessageOriginRestoredConstant          = "origin remote restored"
	logMessagePushingConstant                 = "force pushing rewritten history"
	logFieldRepositoryConstant                = "repository"
	logFieldPathConstant                      = "path"
	logFieldFieldConstant                     = "field"
	logFieldOldValueConstant                  = "old_value"
	logFieldNewValueConstant                  = "new_value"
	logFieldOriginConstant                    = "origin"
)

// CloneOutcome reports what Clone did with the working copy.
type CloneOutcome int

// Clone outcomes.
const (
	// CloneOutcomeCloned indicates a fresh clone into an empty location.
	CloneOutcomeCloned CloneOutcome = iota
	// CloneOutcomeRecloned indicates a stale working copy was deleted and cloned again.
	CloneOutcomeRecloned
	// CloneOutcomeKeptExisting indicates the operator chose to keep a stale working copy.
	CloneOutcomeKeptExisting
)

// String returns a lowercase label for logs.
func (outcome CloneOutcome) String() string {
	switch outcome {
	case CloneOutcomeRecloned:
		return "recloned"
	case CloneOutcomeKeptExisting:
		return "kept_existing"
	default:
		return "cloned"
	}
}

// Configuration holds the explicit settings of a Client.
type Configuration struct {
	StagingDirectory string
	RewriteToolPath  string
}

// GitExecutor is the subset of execshell.ShellExecutor the client needs.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteRewriteTool(executionContext context.Context, toolPath string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FileSystem exposes the filesystem operations used to manage working copies.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	RemoveAll(path string) error
}

// ConfirmationPrompter asks the operator a yes/no question.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// Dependencies supplies the collaborators of a Client.
type Dependencies struct {
	Executor   GitExecutor
	FileSystem FileSystem
	Prompter   ConfirmationPrompter
	Logger     *zap.Logger
}

// Client performs history operations on working copies under the staging directory.
type Client struct {
	configuration Configuration
	executor      GitExecutor
	fileSystem    FileSystem
	prompter      ConfirmationPrompter
	logger        *zap.Logger
}

// NewClient validates the configuration and dependencies and constructs a Client.
func NewClient(configuration Configuration, dependencies Dependencies) (*Client, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	configuration.StagingDirectory = strings.TrimSpace(configuration.StagingDirectory)
	if len(configuration.StagingDirectory) == 0 {
		return nil, ErrStagingDirectoryRequired
	}
	configuration.RewriteToolPath = strings.TrimSpace(configuration.RewriteToolPath)
	if len(configuration.RewriteToolPath) == 0 {
		return nil, ErrRewriteToolPathRequired
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		configuration: configuration,
		executor:      dependencies.Executor,
		fileSystem:    dependencies.FileSystem,
		prompter:      dependencies.Prompter,
		logger:        logger,
	}, nil
}

// WorkingCopyPath returns the location of the handle's working copy.
func (client *Client) WorkingCopyPath(handle *repository.Handle) string {
	return filepath.Join(client.configuration.StagingDirectory, handle.Name())
}

// Clone places a working copy of handle under the staging directory. An
// existing copy is replaced only when the operator agrees to it.
func (client *Client) Clone(executionContext context.Context, handle *repository.Handle) (CloneOutcome, error) {
	if handle == nil {
		return CloneOutcomeCloned, ErrHandleRequired
	}

	if mkdirError := client.fileSystem.MkdirAll(client.configuration.StagingDirectory, stagingDirectoryPermissionsConstant); mkdirError != nil {
		return CloneOutcomeCloned, OperationError{Operation: OperationPrepareStaging, Repository: handle.Name(), Cause: mkdirError}
	}

	workingCopyPath := client.WorkingCopyPath(handle)
	outcome := CloneOutcomeCloned

	_, statError := client.fileSystem.Stat(workingCopyPath)
	switch {
	case statError == nil:
		replace, resolveError := client.resolveWorkingCopyConflict(handle, workingCopyPath)
		if resolveError != nil {
			return CloneOutcomeKeptExisting, resolveError
		}
		if !replace {
			client.logger.Info(logMessageKeepingWorkingCopyConstant, zap.String(logFieldRepositoryConstant, handle.Name()), zap.String(logFieldPathConstant, workingCopyPath))
			return CloneOutcomeKeptExisting, nil
		}
		client.logger.Info(logMessageReplacingWorkingCopyConstant, zap.String(logFieldRepositoryConstant, handle.Name()), zap.String(logFieldPathConstant, workingCopyPath))
		if removeError := client.fileSystem.RemoveAll(workingCopyPath); removeError != nil {
			return CloneOutcomeKeptExisting, OperationError{Operation: OperationClone, Repository: handle.Name(), Cause: removeError}
		}
		outcome = CloneOutcomeRecloned
	case !errors.Is(statError, fs.ErrNotExist):
		return CloneOutcomeCloned, OperationError{Operation: OperationClone, Repository: handle.Name(), Cause: statError}
	}

	client.logger.Info(logMessageCloningConstant, zap.String(logFieldRepositoryConstant, handle.Name()), zap.String(logFieldPathConstant, workingCopyPath))
	_, cloneError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCloneSubcommandConstant, handle.CloneURL(), handle.Name()},
		WorkingDirectory: client.configuration.StagingDirectory,
	})
	if cloneError != nil {
		return outcome, OperationError{Operation: OperationClone, Repository: handle.Name(), Cause: cloneError}
	}
	return outcome, nil
}

func (client *Client) resolveWorkingCopyConflict(handle *repository.Handle, workingCopyPath string) (bool, error) {
	if client.prompter == nil {
		return false, WorkingCopyConflictError{Repository: handle.Name(), Path: workingCopyPath}
	}
	confirmed, promptError := client.prompter.Confirm(fmt.Sprintf(workingCopyConflictPromptTemplateConstant, workingCopyPath))
	if promptError != nil {
		return false, OperationError{Operation: OperationClone, Repository: handle.Name(), Cause: promptError}
	}
	return confirmed, nil
}

// ListAuthors returns the authorship summary across every ref of the working copy.
func (client *Client) ListAuthors(executionContext context.Context, handle *repository.Handle) ([]identity.Authorship, error) {
	if handle == nil {
		return nil, ErrHandleRequired
	}
	executionResult, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitShortlogSubcommandConstant, gitShortlogSummaryFlagConstant, gitAllFlagConstant},
		WorkingDirectory: client.WorkingCopyPath(handle),
	})
	if executionError != nil {
		return nil, OperationError{Operation: OperationListAuthors, Repository: handle.Name(), Cause: executionError}
	}
	return identity.ParseSummary(executionResult.StandardOutput), nil
}

// GetOriginURL returns the configured origin URL, or an empty string when the
// working copy has no origin remote.
func (client *Client) GetOriginURL(executionContext context.Context, handle *repository.Handle) (string, error) {
	if handle == nil {
		return "", ErrHandleRequired
	}
	executionResult, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, gitAllFlagConstant, originRemoteNameConstant},
		WorkingDirectory: client.WorkingCopyPath(handle),
	})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) && failedError.Result.ExitCode == missingRemoteExitCodeConstant {
			return "", nil
		}
		return "", OperationError{Operation: OperationGetOriginURL, Repository: handle.Name(), Cause: executionError}
	}

	firstLine, _, _ := strings.Cut(executionResult.StandardOutput, "\n")
	return strings.TrimSpace(firstLine), nil
}

// SetOriginURL points origin at remoteURL, adding the remote when it is missing.
func (client *Client) SetOriginURL(executionContext context.Context, handle *repository.Handle, remoteURL string) error {
	if handle == nil {
		return ErrHandleRequired
	}
	currentURL, currentError := client.GetOriginURL(executionContext, handle)
	if currentError != nil {
		return OperationError{Operation: OperationSetOriginURL, Repository: handle.Name(), Cause: currentError}
	}
	if currentURL == remoteURL {
		return nil
	}

	remoteSubcommand := gitRemoteSetURLSubcommandConstant
	if len(currentURL) == 0 {
		remoteSubcommand = gitRemoteAddSubcommandConstant
	}
	_, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, remoteSubcommand, originRemoteNameConstant, remoteURL},
		WorkingDirectory: client.WorkingCopyPath(handle),
	})
	if executionError != nil {
		return OperationError{Operation: OperationSetOriginURL, Repository: handle.Name(), Cause: executionError}
	}
	return nil
}

// RenameAuthor rewrites every commit authored as oldName to newName.
func (client *Client) RenameAuthor(executionContext context.Context, handle *repository.Handle, oldName string, newName string) error {
	return client.rewrite(executionContext, handle, identity.FieldName, OperationRenameAuthor, oldName, newName)
}

// RenameEmail rewrites every commit authored with oldEmail to newEmail.
func (client *Client) RenameEmail(executionContext context.Context, handle *repository.Handle, oldEmail string, newEmail string) error {
	return client.rewrite(executionContext, handle, identity.FieldEmail, OperationRenameEmail, oldEmail, newEmail)
}

// rewrite runs the rewrite tool and then restores origin, which the tool
// removes. The restore runs even when the rewrite fails.
func (client *Client) rewrite(executionContext context.Context, handle *repository.Handle, field identity.Field, operation OperationName, oldValue string, newValue string) error {
	if handle == nil {
		return ErrHandleRequired
	}
	if validationError := validateRenameValues(field, oldValue, newValue); validationError != nil {
		return validationError
	}

	logFields := []zap.Field{
		zap.String(logFieldRepositoryConstant, handle.Name()),
		zap.String(logFieldFieldConstant, string(field)),
		zap.String(logFieldOldValueConstant, oldValue),
		zap.String(logFieldNewValueConstant, newValue),
	}
	if oldValue == newValue {
		client.logger.Debug(logMessageRewriteSkippedConstant, logFields...)
		return nil
	}

	client.logger.Info(logMessageRewritingConstant, logFields...)
	_, rewriteError := client.executor.ExecuteRewriteTool(executionContext, client.configuration.RewriteToolPath, execshell.CommandDetails{
		Arguments:        []string{gitForceFlagConstant, callbackFlag(field), buildCallback(field, oldValue, newValue)},
		WorkingDirectory: client.WorkingCopyPath(handle),
	})

	restoreError := client.SetOriginURL(executionContext, handle, handle.OriginURL())
	if restoreError == nil {
		client.logger.Debug(logMessageOriginRestoredConstant, zap.String(logFieldRepositoryConstant, handle.Name()), zap.String(logFieldOriginConstant, handle.OriginURL()))
	}

	if combinedError := errors.Join(rewriteError, restoreError); combinedError != nil {
		return OperationError{Operation: operation, Repository: handle.Name(), Cause: combinedError}
	}
	return nil
}

func validateRenameValues(field identity.Field, oldValue string, newValue string) error {
	valueChecks := []struct {
		fieldName string
		value     string
	}{
		{fieldName: fmt.Sprintf(renameOldValueFieldNameTemplateConstant, field), value: oldValue},
		{fieldName: fmt.Sprintf(renameNewValueFieldNameTemplateConstant, field), value: newValue},
	}
	for _, valueCheck := range valueChecks {
		if len(strings.TrimSpace(valueCheck.value)) == 0 {
			return InvalidRenameValueError{FieldName: valueCheck.fieldName, Message: renameValueRequiredMessageConstant}
		}
		if strings.ContainsAny(valueCheck.value, "\r\n") {
			return InvalidRenameValueError{FieldName: valueCheck.fieldName, Message: renameValueMultilineMessageConstant}
		}
	}
	return nil
}

// Push restores origin and force pushes every branch.
func (client *Client) Push(executionContext context.Context, handle *repository.Handle) error {
	if handle == nil {
		return ErrHandleRequired
	}
	if restoreError := client.SetOriginURL(executionContext, handle, handle.OriginURL()); restoreError != nil {
		return PushRejectedError{Repository: handle.Name(), Cause: restoreError}
	}

	client.logger.Info(logMessagePushingConstant, zap.String(logFieldRepositoryConstant, handle.Name()), zap.String(logFieldOriginConstant, handle.OriginURL()))
	_, pushError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, gitAllFlagConstant, gitForceFlagConstant, originRemoteNameConstant},
		WorkingDirectory: client.WorkingCopyPath(handle),
	})
	if pushError != nil {
		return PushRejectedError{Repository: handle.Name(), Cause: pushError}
	}
	return nil
}
