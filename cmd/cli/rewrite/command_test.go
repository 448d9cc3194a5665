package rewrite_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/reauthor/cmd/cli/rewrite"
	"github.com/temirov/reauthor/internal/bootstrap"
	"github.com/temirov/reauthor/internal/history/historytest"
	"github.com/temirov/reauthor/internal/identity"
	"github.com/temirov/reauthor/internal/repository"
)

const (
	testDemoURLConstant         = "git@github.com:octocat/demo.git"
	testAlphaURLConstant        = "git@github.com:octocat/alpha.git"
	testBetaURLConstant         = "git@github.com:octocat/beta.git"
	testStagingSuffixConstant   = "fresh-repos/repo-update-working_dir"
	testRewriteToolNameConstant = "git-filter-repo"
	testEmailRenamePlanConstant = "emails:\n  - from: jane@old.com\n    to: jane@new.com\npush: true\n"
	testNameRenamePlanConstant  = "names:\n  - from: A\n    to: C\n"
)

type staticCatalog struct {
	handles []*repository.Handle
}

func (static staticCatalog) ListRepositories(context.Context, string) ([]*repository.Handle, error) {
	return static.handles, nil
}

type commandFixture struct {
	workingDirectory string
	toolPath         string
	executor         *historytest.FakeGitExecutor
	dependencies     rewrite.Dependencies
}

func newCommandFixture(testInstance *testing.T) commandFixture {
	testInstance.Helper()

	workingDirectory := testInstance.TempDir()
	toolPath := filepath.Join(workingDirectory, testRewriteToolNameConstant)
	require.NoError(testInstance, os.WriteFile(toolPath, []byte("#!/usr/bin/env python3\n"), 0o755))

	executor := historytest.NewFakeGitExecutor()
	return commandFixture{
		workingDirectory: workingDirectory,
		toolPath:         toolPath,
		executor:         executor,
		dependencies: rewrite.Dependencies{
			Executor:         executor,
			WorkingDirectory: func() (string, error) { return workingDirectory, nil },
		},
	}
}

func (fixture commandFixture) writePlan(testInstance *testing.T, content string) string {
	testInstance.Helper()
	planPath := filepath.Join(fixture.workingDirectory, "renames.yaml")
	require.NoError(testInstance, os.WriteFile(planPath, []byte(content), 0o600))
	return planPath
}

func (fixture commandFixture) workingCopy(testInstance *testing.T, repositoryName string) *historytest.WorkingCopy {
	testInstance.Helper()
	workingCopy, exists := fixture.executor.WorkingCopy(filepath.Join(fixture.workingDirectory, testStagingSuffixConstant, repositoryName))
	require.True(testInstance, exists)
	return workingCopy
}

func executeCommand(testInstance *testing.T, command *cobra.Command, input string, arguments ...string) (string, error) {
	testInstance.Helper()
	var output bytes.Buffer
	command.SetIn(strings.NewReader(input))
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetArgs(arguments)
	command.SilenceUsage = true
	command.SilenceErrors = true
	executionError := command.ExecuteContext(context.Background())
	return output.String(), executionError
}

func authorship(name string, email string, commits int) identity.Authorship {
	return identity.Authorship{Identity: identity.Record{Name: name, Email: email}, Commits: commits}
}

func TestRepositoryCommandRewritesInteractively(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.executor.AddRemote(testDemoURLConstant, authorship("Jane Doe", "jane@old.com", 3))

	builder := rewrite.RepositoryCommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		Dependencies:   fixture.dependencies,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	answers := strings.Join([]string{"2", "1", "1", "jane@new.com", "2"}, "\n") + "\n"
	output, executionError := executeCommand(testInstance, command, answers, "demo", testDemoURLConstant, "--push", "--rewrite-tool", fixture.toolPath)
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, []identity.Authorship{authorship("Jane Doe", "jane@new.com", 3)}, fixture.executor.RemoteAuthorships(testDemoURLConstant))
	require.Equal(testInstance, testDemoURLConstant, fixture.workingCopy(testInstance, "demo").Origin)
	require.Contains(testInstance, output, "Change one more name in demo?")
	require.Contains(testInstance, output, "Pushed rewritten history of demo")
}

func TestRepositoryCommandDerivesNameAndFollowsPlan(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.executor.AddRemote(testDemoURLConstant, authorship("Jane Doe", "jane@old.com", 3))
	planPath := fixture.writePlan(testInstance, testEmailRenamePlanConstant)

	builder := rewrite.RepositoryCommandBuilder{Dependencies: fixture.dependencies}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, "", testDemoURLConstant, "--plan", planPath, "--rewrite-tool", fixture.toolPath)
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, []identity.Authorship{authorship("Jane Doe", "jane@new.com", 3)}, fixture.workingCopy(testInstance, "demo").Authorships)
	require.Equal(testInstance, []string{testDemoURLConstant}, fixture.executor.PushedURLs)
}

func TestRepositoryCommandPromptsForMissingCloneURL(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.executor.AddRemote(testDemoURLConstant, authorship("Jane Doe", "jane@old.com", 3))

	builder := rewrite.RepositoryCommandBuilder{Dependencies: fixture.dependencies}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	answers := strings.Join([]string{testDemoURLConstant, "", "2", "2", "2"}, "\n") + "\n"
	output, executionError := executeCommand(testInstance, command, answers, "--rewrite-tool", fixture.toolPath)
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, output, "Clone URL of the repository:")
	require.Contains(testInstance, output, "Repository name: [demo]")
	require.Contains(testInstance, output, "History of demo was not pushed")
	require.Empty(testInstance, fixture.executor.PushedURLs)
}

func TestRepositoryCommandUsesOverriddenName(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.executor.AddRemote(testDemoURLConstant, authorship("Jane Doe", "jane@old.com", 3))

	builder := rewrite.RepositoryCommandBuilder{Dependencies: fixture.dependencies}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	answers := strings.Join([]string{"demo-copy", "2", "2", "2"}, "\n") + "\n"
	output, executionError := executeCommand(testInstance, command, answers, testDemoURLConstant, "--rewrite-tool", fixture.toolPath)
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, output, "Repository name: [demo]")
	require.Contains(testInstance, output, "History of demo-copy was not pushed")
	require.Equal(testInstance, testDemoURLConstant, fixture.workingCopy(testInstance, "demo-copy").Origin)
}

func TestRepositoryCommandRejectsInvalidPlan(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	planPath := fixture.writePlan(testInstance, "names: []\n")

	builder := rewrite.RepositoryCommandBuilder{Dependencies: fixture.dependencies}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, "", "demo", testDemoURLConstant, "--plan", planPath, "--rewrite-tool", fixture.toolPath)
	require.ErrorContains(testInstance, executionError, "unable to use plan")
}

func TestAccountCommandAppliesPlanAcrossCatalog(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.executor.AddRemote(testAlphaURLConstant, authorship("A", "a@x", 1))
	fixture.executor.AddRemote(testBetaURLConstant, authorship("B", "b@x", 2))
	alpha, alphaError := repository.NewHandle("alpha", testAlphaURLConstant)
	require.NoError(testInstance, alphaError)
	beta, betaError := repository.NewHandle("beta", testBetaURLConstant)
	require.NoError(testInstance, betaError)
	fixture.dependencies.Catalog = staticCatalog{handles: []*repository.Handle{alpha, beta}}
	planPath := fixture.writePlan(testInstance, testNameRenamePlanConstant)

	builder := rewrite.AccountCommandBuilder{Dependencies: fixture.dependencies}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, "", "octocat", "--plan", planPath, "--rewrite-tool", fixture.toolPath)
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, []identity.Authorship{authorship("C", "a@x", 1)}, fixture.workingCopy(testInstance, "alpha").Authorships)
	require.Equal(testInstance, []identity.Authorship{authorship("B", "b@x", 2)}, fixture.workingCopy(testInstance, "beta").Authorships)
	require.Empty(testInstance, fixture.executor.PushedURLs)
	require.Contains(testInstance, output, "Current authors on alpha")
	require.Contains(testInstance, output, "Current authors on beta")
	require.Contains(testInstance, output, "No names updated on beta")
}

func TestAccountCommandRejectsUnknownCatalogSource(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)

	builder := rewrite.AccountCommandBuilder{Dependencies: fixture.dependencies}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, "", "octocat", "--catalog", "svn")
	require.ErrorContains(testInstance, executionError, `unsupported catalog source "svn"`)
}

func TestAccountCommandRequiresGitHubCLIExecutorForGhCatalog(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)

	builder := rewrite.AccountCommandBuilder{Dependencies: fixture.dependencies}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, "", "octocat", "--catalog", "gh")
	require.ErrorContains(testInstance, executionError, "gh catalog requires an executor")
}

func TestBootstrapCommand(testInstance *testing.T) {
	testCases := []struct {
		name            string
		lookPath        bootstrap.PathLookup
		input           string
		expectedOutput  string
		expectedMissing bool
	}{
		{
			name:           "found_on_path",
			lookPath:       func(string) (string, error) { return "/usr/local/bin/git-filter-repo", nil },
			expectedOutput: "git-filter-repo ready at /usr/local/bin/git-filter-repo",
		},
		{
			name:            "download_declined",
			lookPath:        func(string) (string, error) { return "", errors.New("not found") },
			input:           "2\n",
			expectedMissing: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			workingDirectory := testInstance.TempDir()
			builder := rewrite.BootstrapCommandBuilder{
				Dependencies: rewrite.Dependencies{
					LookPath:         testCase.lookPath,
					WorkingDirectory: func() (string, error) { return workingDirectory, nil },
				},
			}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			output, executionError := executeCommand(testInstance, command, testCase.input)
			if testCase.expectedMissing {
				var missingError bootstrap.RewriteToolMissingError
				require.ErrorAs(testInstance, executionError, &missingError)
				return
			}
			require.NoError(testInstance, executionError)
			require.Contains(testInstance, output, testCase.expectedOutput)
		})
	}
}
