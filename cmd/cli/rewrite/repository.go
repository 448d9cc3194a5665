package rewrite

import (
	"github.com/spf13/cobra"
)

const (
	repositoryUseConstant              = "repo [name] [clone-url]"
	repositoryShortDescriptionConstant = "Rewrite author names and emails in one repository"
	repositoryLongDescriptionConstant  = "repo clones a repository into the staging directory, lets you replace author names and then emails across its whole history, and optionally force pushes the result. A single argument that looks like a URL is taken as the clone URL; the name is then derived from it."
	repositoryMaximumArgumentsConstant = 2
)

// RepositoryCommandBuilder assembles the repo command.
type RepositoryCommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	ConfigurationProvider        ConfigurationProvider
	Dependencies                 Dependencies
}

// Build constructs the repo command.
func (builder *RepositoryCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   repositoryUseConstant,
		Short: repositoryShortDescriptionConstant,
		Long:  repositoryLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(repositoryMaximumArgumentsConstant),
		RunE:  builder.run,
	}
	registerWorkflowFlags(command)
	return command, nil
}

func (builder *RepositoryCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := applyFlagOverrides(command, resolveConfiguration(builder.ConfigurationProvider))
	commandSession, sessionError := newSession(
		command,
		configuration,
		resolveLogger(builder.LoggerProvider),
		resolveHumanReadableLogging(builder.HumanReadableLoggingProvider),
		builder.Dependencies,
	)
	if sessionError != nil {
		return sessionError
	}

	handle, handleError := commandSession.resolveHandle(arguments)
	if handleError != nil {
		return handleError
	}

	workflow, workflowError := commandSession.newWorkflow(command.Context(), nil)
	if workflowError != nil {
		return workflowError
	}

	_, runError := workflow.RunSingle(command.Context(), handle)
	return runError
}
