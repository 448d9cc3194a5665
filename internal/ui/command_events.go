package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/reauthor/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "Running %s"
	commandCompletedMessageTemplateConstant        = "Completed %s"
	commandFailedExitCodeMessageTemplateConstant   = "%s failed with exit code %d"
	commandExecutionFailureMessageTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant                   = "%s%s"
	workingDirectorySuffixTemplateConstant         = " (in %s)"
	commandArgumentsJoinSeparatorConstant          = " "
	standardErrorSuffixTemplateConstant            = ": %s"
	unknownFailureMessageConstant                  = "unknown error"
	gitCloneDescriptionTemplateConstant            = "clone of %s"
	gitShortlogDescriptionConstant                 = "authorship summary"
	gitRemoteDescriptionTemplateConstant           = "origin remote %s"
	gitPushDescriptionConstant                     = "force push of all branches"
	rewriteDescriptionTemplateConstant             = "history rewrite (%s)"
	githubAPIDescriptionTemplateConstant           = "GitHub API request %s"
	gitCloneSubcommandConstant                     = "clone"
	gitShortlogSubcommandConstant                  = "shortlog"
	gitRemoteSubcommandConstant                    = "remote"
	gitPushSubcommandConstant                      = "push"
	githubAPISubcommandConstant                    = "api"
	callbackFlagPrefixConstant                     = "--"
	callbackFlagSuffixConstant                     = "-callback"
)

// CommandEventFormatter builds human-readable messages for command lifecycle events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandCompletedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	baseMessage := fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode)
	return baseMessage + formatter.formatStandardErrorSuffix(result.StandardError)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), failureMessage)
}

func (formatter CommandEventFormatter) formatCommandLabel(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandLabelTemplateConstant, formatter.describeCommand(command), formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandEventFormatter) describeCommand(command execshell.ShellCommand) string {
	arguments := command.Details.Arguments
	switch command.Name {
	case execshell.CommandGit:
		if len(arguments) == 0 {
			break
		}
		switch arguments[0] {
		case gitCloneSubcommandConstant:
			if len(arguments) > 1 {
				return fmt.Sprintf(gitCloneDescriptionTemplateConstant, arguments[1])
			}
		case gitShortlogSubcommandConstant:
			return gitShortlogDescriptionConstant
		case gitRemoteSubcommandConstant:
			if len(arguments) > 1 {
				return fmt.Sprintf(gitRemoteDescriptionTemplateConstant, arguments[1])
			}
		case gitPushSubcommandConstant:
			return gitPushDescriptionConstant
		}
	case execshell.CommandGitHub:
		if len(arguments) > 0 && arguments[0] == githubAPISubcommandConstant {
			return fmt.Sprintf(githubAPIDescriptionTemplateConstant, arguments[len(arguments)-1])
		}
	default:
		for _, argument := range arguments {
			if strings.HasPrefix(argument, callbackFlagPrefixConstant) && strings.HasSuffix(argument, callbackFlagSuffixConstant) {
				field := strings.TrimSuffix(strings.TrimPrefix(argument, callbackFlagPrefixConstant), callbackFlagSuffixConstant)
				return fmt.Sprintf(rewriteDescriptionTemplateConstant, field)
			}
		}
		return filepath.Base(string(command.Name))
	}

	commandParts := []string{string(command.Name)}
	if len(arguments) > 0 {
		commandParts = append(commandParts, strings.Join(arguments, commandArgumentsJoinSeparatorConstant))
	}
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}

func (formatter CommandEventFormatter) formatWorkingDirectorySuffix(command execshell.ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandEventFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger configured for human-readable output.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver by logging command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver by logging command completion notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver by logging unexpected execution failures.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
