package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/reauthor/internal/execshell"
	"github.com/temirov/reauthor/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant     = "/tmp/staging/demo"
	testCommandNameFieldExpectationConstant = "authorship summary (in /tmp/staging/demo)"
	testExecutionFailureReasonConstant      = "execution failed"
	testStandardErrorMessageConstant        = "fatal: not a git repository"
	testStartMessageExpectationConstant     = "Running " + testCommandNameFieldExpectationConstant
	testSuccessMessageExpectationConstant   = "Completed " + testCommandNameFieldExpectationConstant
	testFailureMessageExpectationConstant   = testCommandNameFieldExpectationConstant + " failed with exit code 1: " + testStandardErrorMessageConstant
	testExecutionFailureMessageExpectation  = testCommandNameFieldExpectationConstant + " failed: " + testExecutionFailureReasonConstant
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"shortlog", "-sne", "--all"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(command)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			consoleLogger := zap.New(observerCore)
			eventLogger := ui.NewConsoleCommandEventLogger(consoleLogger)

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestCommandEventFormatterDescribesCommands(testInstance *testing.T) {
	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedMessage string
	}{
		{
			name: "clone",
			command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{
				Arguments: []string{"clone", "git@github.com:octocat/demo.git", "demo"},
			}},
			expectedMessage: "Running clone of git@github.com:octocat/demo.git",
		},
		{
			name: "remote",
			command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{
				Arguments: []string{"remote", "set-url", "origin", "git@github.com:octocat/demo.git"},
			}},
			expectedMessage: "Running origin remote set-url",
		},
		{
			name: "push",
			command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{
				Arguments: []string{"push", "--all", "--force", "origin"},
			}},
			expectedMessage: "Running force push of all branches",
		},
		{
			name: "rewrite",
			command: execshell.ShellCommand{Name: execshell.CommandName("/usr/local/bin/git-filter-repo"), Details: execshell.CommandDetails{
				Arguments: []string{"--force", "--email-callback", `return email`},
			}},
			expectedMessage: "Running history rewrite (email)",
		},
		{
			name: "github_api",
			command: execshell.ShellCommand{Name: execshell.CommandGitHub, Details: execshell.CommandDetails{
				Arguments: []string{"api", "--paginate", "users/octocat/repos"},
			}},
			expectedMessage: "Running GitHub API request users/octocat/repos",
		},
		{
			name: "generic_git",
			command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{
				Arguments: []string{"--version"},
			}},
			expectedMessage: "Running git --version",
		},
	}

	formatter := ui.CommandEventFormatter{}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, formatter.BuildStartedMessage(testCase.command))
		})
	}
}
