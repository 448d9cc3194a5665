package execshell

const (
	commandStartedLogMessageConstant         = "command started"
	commandCompletedLogMessageConstant       = "command completed"
	commandFailedLogMessageConstant          = "command failed"
	commandExecutionFailedLogMessageConstant = "command execution failed"
)

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that the process finished, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that prevented an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}
