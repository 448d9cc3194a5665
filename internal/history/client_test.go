package history_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/reauthor/internal/execshell"
	"github.com/temirov/reauthor/internal/filesystem"
	"github.com/temirov/reauthor/internal/history"
	"github.com/temirov/reauthor/internal/history/historytest"
	"github.com/temirov/reauthor/internal/identity"
	"github.com/temirov/reauthor/internal/repository"
)

const (
	testRepositoryNameConstant  = "demo"
	testCloneURLConstant        = "git@github.com:octocat/demo.git"
	testRewriteToolPathConstant = "/opt/tools/git-filter-repo"
	testOldNameConstant         = "Jane Smith"
	testNewNameConstant         = "Jane Doe"
	testOldEmailConstant        = "jane@old.com"
	testNewEmailConstant        = "jane@new.com"
)

type stubPrompter struct {
	answer  bool
	err     error
	prompts []string
}

func (prompter *stubPrompter) Confirm(prompt string) (bool, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	return prompter.answer, prompter.err
}

type clientFixture struct {
	client           *history.Client
	executor         *historytest.FakeGitExecutor
	handle           *repository.Handle
	stagingDirectory string
}

func newClientFixture(testInstance *testing.T, prompter history.ConfirmationPrompter) clientFixture {
	testInstance.Helper()

	executor := historytest.NewFakeGitExecutor()
	executor.AddRemote(testCloneURLConstant,
		identity.Authorship{Identity: identity.Record{Name: testOldNameConstant, Email: testOldEmailConstant}, Commits: 5},
		identity.Authorship{Identity: identity.Record{Name: "John Roe", Email: "john@example.com"}, Commits: 2},
	)

	stagingDirectory := filepath.Join(testInstance.TempDir(), "fresh-repos", "repo-update-working_dir")
	client, creationError := history.NewClient(
		history.Configuration{StagingDirectory: stagingDirectory, RewriteToolPath: testRewriteToolPathConstant},
		history.Dependencies{Executor: executor, FileSystem: filesystem.OSFileSystem{}, Prompter: prompter, Logger: zap.NewNop()},
	)
	require.NoError(testInstance, creationError)

	handle, handleError := repository.NewHandle(testRepositoryNameConstant, testCloneURLConstant)
	require.NoError(testInstance, handleError)

	return clientFixture{client: client, executor: executor, handle: handle, stagingDirectory: stagingDirectory}
}

func TestNewClientValidation(testInstance *testing.T) {
	validConfiguration := history.Configuration{StagingDirectory: "/tmp/staging", RewriteToolPath: testRewriteToolPathConstant}
	validDependencies := history.Dependencies{Executor: historytest.NewFakeGitExecutor(), FileSystem: filesystem.OSFileSystem{}}

	testCases := []struct {
		name          string
		configuration history.Configuration
		dependencies  history.Dependencies
		expectedError error
	}{
		{name: "missing_executor", configuration: validConfiguration, dependencies: history.Dependencies{FileSystem: filesystem.OSFileSystem{}}, expectedError: history.ErrExecutorNotConfigured},
		{name: "missing_filesystem", configuration: validConfiguration, dependencies: history.Dependencies{Executor: historytest.NewFakeGitExecutor()}, expectedError: history.ErrFileSystemNotConfigured},
		{name: "missing_staging", configuration: history.Configuration{StagingDirectory: "  ", RewriteToolPath: testRewriteToolPathConstant}, dependencies: validDependencies, expectedError: history.ErrStagingDirectoryRequired},
		{name: "missing_tool", configuration: history.Configuration{StagingDirectory: "/tmp/staging"}, dependencies: validDependencies, expectedError: history.ErrRewriteToolPathRequired},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := history.NewClient(testCase.configuration, testCase.dependencies)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, client)
		})
	}
}

func TestCloneCreatesStagingDirectoryAndWorkingCopy(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)

	outcome, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.NoError(testInstance, cloneError)
	require.Equal(testInstance, history.CloneOutcomeCloned, outcome)

	workingCopy, exists := fixture.executor.WorkingCopy(filepath.Join(fixture.stagingDirectory, testRepositoryNameConstant))
	require.True(testInstance, exists)
	require.Equal(testInstance, testCloneURLConstant, workingCopy.Origin)
	require.Equal(testInstance, fixture.stagingDirectory, fixture.executor.Commands[0].Details.WorkingDirectory)
}

func TestCloneResolvesExistingWorkingCopy(testInstance *testing.T) {
	testCases := []struct {
		name              string
		prompter          *stubPrompter
		expectedOutcome   history.CloneOutcome
		expectedClones    int
		expectMarkerFile  bool
		expectedErrorType any
	}{
		{name: "operator_replaces", prompter: &stubPrompter{answer: true}, expectedOutcome: history.CloneOutcomeRecloned, expectedClones: 2},
		{name: "operator_keeps", prompter: &stubPrompter{answer: false}, expectedOutcome: history.CloneOutcomeKeptExisting, expectedClones: 1, expectMarkerFile: true},
		{name: "prompt_failure", prompter: &stubPrompter{err: errors.New("stdin closed")}, expectedOutcome: history.CloneOutcomeKeptExisting, expectedClones: 1, expectMarkerFile: true, expectedErrorType: history.OperationError{}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newClientFixture(testInstance, testCase.prompter)
			_, firstCloneError := fixture.client.Clone(context.Background(), fixture.handle)
			require.NoError(testInstance, firstCloneError)

			markerPath := filepath.Join(fixture.client.WorkingCopyPath(fixture.handle), "marker")
			require.NoError(testInstance, os.WriteFile(markerPath, []byte("stale"), 0o600))

			outcome, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
			if testCase.expectedErrorType != nil {
				require.IsType(testInstance, testCase.expectedErrorType, cloneError)
			} else {
				require.NoError(testInstance, cloneError)
			}
			require.Equal(testInstance, testCase.expectedOutcome, outcome)
			require.Equal(testInstance, testCase.expectedClones, fixture.executor.CountCommands("clone"))
			require.Len(testInstance, testCase.prompter.prompts, 1)

			_, markerError := os.Stat(markerPath)
			require.Equal(testInstance, testCase.expectMarkerFile, markerError == nil)
		})
	}
}

func TestCloneWithoutPrompterReportsConflict(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	require.NoError(testInstance, os.MkdirAll(fixture.client.WorkingCopyPath(fixture.handle), 0o755))

	outcome, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.Equal(testInstance, history.CloneOutcomeKeptExisting, outcome)

	var conflictError history.WorkingCopyConflictError
	require.ErrorAs(testInstance, cloneError, &conflictError)
	require.Equal(testInstance, testRepositoryNameConstant, conflictError.Repository)
}

func TestCloneFailureIsWrapped(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	unknownHandle, handleError := repository.NewHandle("missing", "git@github.com:octocat/missing.git")
	require.NoError(testInstance, handleError)

	_, cloneError := fixture.client.Clone(context.Background(), unknownHandle)

	var operationError history.OperationError
	require.ErrorAs(testInstance, cloneError, &operationError)
	require.Equal(testInstance, history.OperationClone, operationError.Operation)
	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, cloneError, &failedError)
}

func TestRenameAuthorRewritesAndRestoresOrigin(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	_, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.NoError(testInstance, cloneError)

	require.NoError(testInstance, fixture.client.RenameAuthor(context.Background(), fixture.handle, testOldNameConstant, testNewNameConstant))

	authorships, listError := fixture.client.ListAuthors(context.Background(), fixture.handle)
	require.NoError(testInstance, listError)
	require.True(testInstance, identity.Contains(authorships, identity.FieldName, testNewNameConstant))
	require.False(testInstance, identity.Contains(authorships, identity.FieldName, testOldNameConstant))

	originURL, originError := fixture.client.GetOriginURL(context.Background(), fixture.handle)
	require.NoError(testInstance, originError)
	require.Equal(testInstance, testCloneURLConstant, originURL)
	require.Equal(testInstance, testCloneURLConstant, fixture.handle.OriginURL())
}

func TestRenameEmailOfAbsentValueIsNoOp(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	_, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.NoError(testInstance, cloneError)

	before, beforeError := fixture.client.ListAuthors(context.Background(), fixture.handle)
	require.NoError(testInstance, beforeError)

	require.NoError(testInstance, fixture.client.RenameEmail(context.Background(), fixture.handle, "nobody@example.com", testNewEmailConstant))

	after, afterError := fixture.client.ListAuthors(context.Background(), fixture.handle)
	require.NoError(testInstance, afterError)
	require.ElementsMatch(testInstance, before, after)
}

func TestRenameWithIdenticalValuesSkipsRewrite(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	_, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.NoError(testInstance, cloneError)

	require.NoError(testInstance, fixture.client.RenameEmail(context.Background(), fixture.handle, testOldEmailConstant, testOldEmailConstant))
	require.Equal(testInstance, 0, fixture.executor.CountCommands("--force"))
}

func TestRenameRejectsInvalidValues(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)

	for _, values := range [][2]string{{"", testNewNameConstant}, {testOldNameConstant, "   "}, {testOldNameConstant, "Jane\nDoe"}} {
		renameError := fixture.client.RenameAuthor(context.Background(), fixture.handle, values[0], values[1])
		require.IsType(testInstance, history.InvalidRenameValueError{}, renameError)
	}
	require.Empty(testInstance, fixture.executor.Commands)
}

func TestRewriteFailureStillRestoresOrigin(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	_, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.NoError(testInstance, cloneError)

	fixture.executor.RewriteFailure = errors.New("filter-repo crashed")
	renameError := fixture.client.RenameAuthor(context.Background(), fixture.handle, testOldNameConstant, testNewNameConstant)

	var operationError history.OperationError
	require.ErrorAs(testInstance, renameError, &operationError)
	require.Equal(testInstance, history.OperationRenameAuthor, operationError.Operation)

	workingCopy, exists := fixture.executor.WorkingCopy(fixture.client.WorkingCopyPath(fixture.handle))
	require.True(testInstance, exists)
	require.Equal(testInstance, testCloneURLConstant, workingCopy.Origin)
}

func TestRewriteInvokesToolWithCallback(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	_, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.NoError(testInstance, cloneError)

	require.NoError(testInstance, fixture.client.RenameEmail(context.Background(), fixture.handle, testOldEmailConstant, testNewEmailConstant))

	var rewriteCommand *execshell.ShellCommand
	for index := range fixture.executor.Commands {
		if fixture.executor.Commands[index].Name == execshell.CommandName(testRewriteToolPathConstant) {
			rewriteCommand = &fixture.executor.Commands[index]
		}
	}
	require.NotNil(testInstance, rewriteCommand)
	require.Equal(testInstance, []string{
		"--force",
		"--email-callback",
		`return email if email != b"jane@old.com" else b"jane@new.com"`,
	}, rewriteCommand.Details.Arguments)
	require.Equal(testInstance, fixture.client.WorkingCopyPath(fixture.handle), rewriteCommand.Details.WorkingDirectory)
}

func TestSetOriginURLAddsMissingRemote(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	_, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.NoError(testInstance, cloneError)

	workingCopy, _ := fixture.executor.WorkingCopy(fixture.client.WorkingCopyPath(fixture.handle))
	workingCopy.Origin = ""

	emptyOrigin, emptyError := fixture.client.GetOriginURL(context.Background(), fixture.handle)
	require.NoError(testInstance, emptyError)
	require.Empty(testInstance, emptyOrigin)

	require.NoError(testInstance, fixture.client.SetOriginURL(context.Background(), fixture.handle, "git@example.com:mirror/demo.git"))
	require.Equal(testInstance, "git@example.com:mirror/demo.git", workingCopy.Origin)

	require.NoError(testInstance, fixture.client.SetOriginURL(context.Background(), fixture.handle, testCloneURLConstant))
	require.Equal(testInstance, testCloneURLConstant, workingCopy.Origin)
}

func TestPushRestoresOriginAndPushes(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	_, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.NoError(testInstance, cloneError)
	require.NoError(testInstance, fixture.client.RenameAuthor(context.Background(), fixture.handle, testOldNameConstant, testNewNameConstant))

	workingCopy, _ := fixture.executor.WorkingCopy(fixture.client.WorkingCopyPath(fixture.handle))
	workingCopy.Origin = ""

	require.NoError(testInstance, fixture.client.Push(context.Background(), fixture.handle))
	require.Equal(testInstance, []string{testCloneURLConstant}, fixture.executor.PushedURLs)
	require.True(testInstance, identity.Contains(fixture.executor.RemoteAuthorships(testCloneURLConstant), identity.FieldName, testNewNameConstant))
}

func TestPushRejection(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)
	_, cloneError := fixture.client.Clone(context.Background(), fixture.handle)
	require.NoError(testInstance, cloneError)
	fixture.executor.FailPushTo(testCloneURLConstant, errors.New("protected branch hook declined"))

	pushError := fixture.client.Push(context.Background(), fixture.handle)

	var rejectedError history.PushRejectedError
	require.ErrorAs(testInstance, pushError, &rejectedError)
	require.Equal(testInstance, testRepositoryNameConstant, rejectedError.Repository)
	require.Empty(testInstance, fixture.executor.PushedURLs)
}

func TestOperationsRejectNilHandle(testInstance *testing.T) {
	fixture := newClientFixture(testInstance, nil)

	_, cloneError := fixture.client.Clone(context.Background(), nil)
	require.ErrorIs(testInstance, cloneError, history.ErrHandleRequired)
	_, listError := fixture.client.ListAuthors(context.Background(), nil)
	require.ErrorIs(testInstance, listError, history.ErrHandleRequired)
	require.ErrorIs(testInstance, fixture.client.Push(context.Background(), nil), history.ErrHandleRequired)
}
