package rewrite

import (
	"github.com/spf13/cobra"
)

const (
	bootstrapUseConstant              = "bootstrap"
	bootstrapShortDescriptionConstant = "Locate or install git-filter-repo"
	bootstrapLongDescriptionConstant  = "bootstrap checks that git-filter-repo is available, offering to download it next to the working directory and to make it executable."
	bootstrapReadyTemplateConstant    = "git-filter-repo ready at %s"
)

// BootstrapCommandBuilder assembles the bootstrap command.
type BootstrapCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Dependencies          Dependencies
}

// Build constructs the bootstrap command.
func (builder *BootstrapCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   bootstrapUseConstant,
		Short: bootstrapShortDescriptionConstant,
		Long:  bootstrapLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	registerRewriteToolFlag(command)
	return command, nil
}

func (builder *BootstrapCommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := applyFlagOverrides(command, resolveConfiguration(builder.ConfigurationProvider))
	commandSession, sessionError := newSession(command, configuration, resolveLogger(builder.LoggerProvider), false, builder.Dependencies)
	if sessionError != nil {
		return sessionError
	}

	toolPath, ensureError := commandSession.ensureRewriteTool(command.Context())
	if ensureError != nil {
		return ensureError
	}
	commandSession.notifier.Success(bootstrapReadyTemplateConstant, toolPath)
	return nil
}
