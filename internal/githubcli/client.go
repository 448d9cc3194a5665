package githubcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/reauthor/internal/execshell"
)

const (
	apiSubcommandConstant                     = "api"
	paginateFlagConstant                      = "--paginate"
	acceptHeaderFlagConstant                  = "-H"
	acceptHeaderValueConstant                 = "Accept: application/vnd.github+json"
	userRepositoriesEndpointTemplateConstant  = "users/%s/repos"
	accountFieldNameConstant                  = "account"
	requiredValueMessageConstant              = "value required"
	executorNotConfiguredMessageConstant      = "github cli executor not configured"
	operationErrorMessageTemplateConstant     = "%s operation failed"
	operationErrorWithCauseTemplateConstant   = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant     = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant         = "%s: %s"
	listUserRepositoriesOperationNameConstant = OperationName("ListUserRepositories")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RemoteRepository is the subset of repository fields reauthor consumes.
type RemoteRepository struct {
	Name     string `json:"name"`
	SSHURL   string `json:"ssh_url"`
	CloneURL string `json:"clone_url"`
	Fork     bool   `json:"fork"`
	Archived bool   `json:"archived"`
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// ListUserRepositories returns every public repository of account using
// gh api --paginate. gh prints one JSON array per page, so the output is
// decoded as a stream of arrays.
func (client *Client) ListUserRepositories(executionContext context.Context, account string) ([]RemoteRepository, error) {
	trimmedAccount := strings.TrimSpace(account)
	if len(trimmedAccount) == 0 {
		return nil, InvalidInputError{FieldName: accountFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			paginateFlagConstant,
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
			fmt.Sprintf(userRepositoriesEndpointTemplateConstant, trimmedAccount),
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listUserRepositoriesOperationNameConstant, Cause: executionError}
	}

	repositories := []RemoteRepository{}
	decoder := json.NewDecoder(bytes.NewBufferString(executionResult.StandardOutput))
	for {
		var page []RemoteRepository
		decodingError := decoder.Decode(&page)
		if errors.Is(decodingError, io.EOF) {
			break
		}
		if decodingError != nil {
			return nil, ResponseDecodingError{Operation: listUserRepositoriesOperationNameConstant, Cause: decodingError}
		}
		repositories = append(repositories, page...)
	}

	return repositories, nil
}
