package rewrite

import (
	"github.com/spf13/cobra"
)

const (
	accountUseConstant              = "account [account]"
	accountShortDescriptionConstant = "Rewrite author names and emails across every repository of an account"
	accountLongDescriptionConstant  = "account lists the repositories of a GitHub account, clones them all, and offers every distinct author name and email found across them. Each replacement you pick is applied to every repository; afterwards each repository can be force pushed."
	accountMaximumArgumentsConstant = 1
)

// AccountCommandBuilder assembles the account command.
type AccountCommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	ConfigurationProvider        ConfigurationProvider
	Dependencies                 Dependencies
}

// Build constructs the account command.
func (builder *AccountCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   accountUseConstant,
		Short: accountShortDescriptionConstant,
		Long:  accountLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(accountMaximumArgumentsConstant),
		RunE:  builder.run,
	}
	registerWorkflowFlags(command)
	command.Flags().String(catalogFlagNameConstant, "", catalogFlagUsageConstant)
	command.Flags().String(apiURLFlagNameConstant, "", apiURLFlagUsageConstant)
	return command, nil
}

func (builder *AccountCommandBuilder) run(command *cobra.Command, arguments []string) error {
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

	account, accountError := commandSession.resolveAccount(arguments)
	if accountError != nil {
		return accountError
	}

	repositoryCatalog, catalogError := commandSession.newCatalog()
	if catalogError != nil {
		return catalogError
	}

	workflow, workflowError := commandSession.newWorkflow(command.Context(), repositoryCatalog)
	if workflowError != nil {
		return workflowError
	}

	_, runError := workflow.RunAll(command.Context(), account)
	return runError
}
