package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reauthor/internal/bootstrap"
	"github.com/temirov/reauthor/internal/catalog"
	"github.com/temirov/reauthor/internal/execshell"
	"github.com/temirov/reauthor/internal/filesystem"
	"github.com/temirov/reauthor/internal/githubauth"
	"github.com/temirov/reauthor/internal/githubcli"
	"github.com/temirov/reauthor/internal/gitrepo"
	"github.com/temirov/reauthor/internal/history"
	"github.com/temirov/reauthor/internal/prompt"
	"github.com/temirov/reauthor/internal/reconcile"
	"github.com/temirov/reauthor/internal/repository"
	"github.com/temirov/reauthor/internal/ui"
	pathutils "github.com/temirov/reauthor/internal/utils/path"
)

const (
	pushFlagNameConstant                      = "push"
	pushFlagUsageConstant                     = "Force push rewritten history without asking"
	stagingDirectoryFlagNameConstant          = "staging-dir"
	stagingDirectoryFlagUsageConstant         = "Directory that holds fresh clones"
	rewriteToolFlagNameConstant               = "rewrite-tool"
	rewriteToolFlagUsageConstant              = "Path to git-filter-repo"
	planFlagNameConstant                      = "plan"
	planFlagUsageConstant                     = "YAML plan of renames to apply without prompting"
	catalogFlagNameConstant                   = "catalog"
	catalogFlagUsageConstant                  = "Repository listing source (api or gh)"
	apiURLFlagNameConstant                    = "api-url"
	apiURLFlagUsageConstant                   = "GitHub REST API base URL"
	cloneURLPromptConstant                    = "Clone URL of the repository:"
	repositoryNamePromptConstant              = "Repository name:"
	accountPromptConstant                     = "GitHub account whose repositories should be rewritten:"
	unsupportedCatalogSourceTemplateConstant  = "unsupported catalog source %q (expected %s or %s)"
	catalogExecutorUnavailableMessageConstant = "gh catalog requires an executor that runs the GitHub CLI"
	stagingDirectoryErrorTemplateConstant     = "unable to resolve staging directory: %w"
	installDirectoryErrorTemplateConstant     = "unable to resolve rewrite tool directory: %w"
	planLoadErrorTemplateConstant             = "unable to use plan: %w"
	urlSchemeSeparatorConstant                = ":"
	urlPathSeparatorConstant                  = "/"
	logMessageRewriteToolResolvedConstant     = "rewrite tool resolved"
	logMessageTokenMissingConstant            = "no GitHub token found; listing anonymously"
	logFieldPathConstant                      = "path"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current rewrite configuration.
type ConfigurationProvider func() Configuration

// HumanReadableLoggingProvider reports whether console logging is enabled.
type HumanReadableLoggingProvider func() bool

// Dependencies overrides collaborators the commands otherwise build themselves.
type Dependencies struct {
	// Executor replaces the os/exec backed shell executor.
	Executor history.GitExecutor
	// Catalog replaces the configured repository catalog.
	Catalog          catalog.Catalog
	LookPath         bootstrap.PathLookup
	HTTPClient       *http.Client
	TokenLookup      githubauth.EnvironmentLookup
	WorkingDirectory pathutils.WorkingDirectoryProvider
}

// session holds everything one command invocation shares.
type session struct {
	configuration     Configuration
	logger            *zap.Logger
	console           *prompt.Console
	notifier          *ui.Notifier
	executor          history.GitExecutor
	directoryResolver *pathutils.DirectoryResolver
	dependencies      Dependencies
}

func newSession(command *cobra.Command, configuration Configuration, logger *zap.Logger, humanReadableLogging bool, dependencies Dependencies) (*session, error) {
	executor := dependencies.Executor
	if executor == nil {
		var observers []execshell.CommandEventObserver
		var progressWriter io.Writer
		if humanReadableLogging {
			observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
			progressWriter = command.ErrOrStderr()
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(progressWriter), observers...)
		if executorError != nil {
			return nil, executorError
		}
		executor = shellExecutor
	}

	output := command.OutOrStdout()
	return &session{
		configuration:     configuration,
		logger:            logger,
		console:           prompt.NewConsole(command.InOrStdin(), output),
		notifier:          ui.NewNotifier(output, isTerminal(output)),
		executor:          executor,
		directoryResolver: pathutils.NewDirectoryResolver(pathutils.NewHomeExpander(), dependencies.WorkingDirectory),
		dependencies:      dependencies,
	}, nil
}

func (session *session) ensureRewriteTool(executionContext context.Context) (string, error) {
	installDirectory, installDirectoryError := session.directoryResolver.Resolve(session.configuration.RewriteTool.InstallDirectory)
	if installDirectoryError != nil {
		return "", fmt.Errorf(installDirectoryErrorTemplateConstant, installDirectoryError)
	}

	explicitPath := session.configuration.RewriteTool.Path
	if len(explicitPath) > 0 {
		resolvedPath, resolveError := session.directoryResolver.Resolve(explicitPath)
		if resolveError != nil {
			return "", resolveError
		}
		explicitPath = resolvedPath
	}

	httpClient := session.dependencies.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: session.configuration.RewriteTool.DownloadTimeout}
	}

	installer := bootstrap.NewInstaller(
		bootstrap.Configuration{
			ExplicitPath:     explicitPath,
			InstallDirectory: installDirectory,
			DownloadURL:      session.configuration.RewriteTool.DownloadURL,
		},
		bootstrap.Dependencies{
			FileSystem: filesystem.OSFileSystem{},
			Prompter:   session.console,
			HTTPClient: httpClient,
			LookPath:   session.dependencies.LookPath,
			Logger:     session.logger,
		},
	)

	toolPath, ensureError := installer.Ensure(executionContext)
	if ensureError != nil {
		return "", ensureError
	}
	session.logger.Debug(logMessageRewriteToolResolvedConstant, zap.String(logFieldPathConstant, toolPath))
	return toolPath, nil
}

func (session *session) newWorkflow(executionContext context.Context, repositoryCatalog catalog.Catalog) (*reconcile.Workflow, error) {
	toolPath, toolError := session.ensureRewriteTool(executionContext)
	if toolError != nil {
		return nil, toolError
	}

	stagingDirectory, stagingError := session.directoryResolver.Resolve(session.configuration.StagingDirectory)
	if stagingError != nil {
		return nil, fmt.Errorf(stagingDirectoryErrorTemplateConstant, stagingError)
	}

	historyClient, historyError := history.NewClient(
		history.Configuration{StagingDirectory: stagingDirectory, RewriteToolPath: toolPath},
		history.Dependencies{
			Executor:   session.executor,
			FileSystem: filesystem.OSFileSystem{},
			Prompter:   session.console,
			Logger:     session.logger,
		},
	)
	if historyError != nil {
		return nil, historyError
	}

	operator, operatorError := session.newOperator()
	if operatorError != nil {
		return nil, operatorError
	}

	return reconcile.NewWorkflow(
		reconcile.Configuration{AutoPush: session.configuration.Push},
		reconcile.Dependencies{
			History:  historyClient,
			Catalog:  repositoryCatalog,
			Operator: operator,
			Reporter: reconcile.NewConsoleReporter(session.notifier),
			Logger:   session.logger,
		},
	)
}

func (session *session) newOperator() (reconcile.Operator, error) {
	if len(session.configuration.Plan) == 0 {
		return reconcile.NewConsoleOperator(session.console), nil
	}
	planPath, resolveError := session.directoryResolver.Resolve(session.configuration.Plan)
	if resolveError != nil {
		return nil, fmt.Errorf(planLoadErrorTemplateConstant, resolveError)
	}
	plan, planError := reconcile.LoadPlan(planPath)
	if planError != nil {
		return nil, fmt.Errorf(planLoadErrorTemplateConstant, planError)
	}
	return reconcile.NewPlanOperator(plan), nil
}

func (session *session) newCatalog() (catalog.Catalog, error) {
	if session.dependencies.Catalog != nil {
		return session.dependencies.Catalog, nil
	}

	catalogConfiguration := session.configuration.Catalog
	filter := catalog.Filter{SkipForks: catalogConfiguration.SkipForks, SkipArchived: catalogConfiguration.SkipArchived}

	switch catalogConfiguration.Source {
	case CatalogSourceAPI:
		tokenLookup := session.dependencies.TokenLookup
		if tokenLookup == nil {
			tokenLookup = os.LookupEnv
		}
		token, tokenFound := githubauth.ResolveTokenFrom(tokenLookup)
		if !tokenFound {
			session.logger.Info(logMessageTokenMissingConstant)
		}
		return catalog.NewAPICatalog(catalog.APIConfiguration{
			BaseURL:  catalogConfiguration.APIURL,
			Token:    token,
			PageSize: catalogConfiguration.PageSize,
			Filter:   filter,
		}, session.logger)
	case CatalogSourceGitHubCLI:
		githubExecutor, supportsGitHubCLI := session.executor.(githubcli.GitHubCommandExecutor)
		if !supportsGitHubCLI {
			return nil, errors.New(catalogExecutorUnavailableMessageConstant)
		}
		githubClient, clientError := githubcli.NewClient(githubExecutor)
		if clientError != nil {
			return nil, clientError
		}
		return catalog.NewGitHubCLICatalog(githubClient, filter, session.logger), nil
	default:
		return nil, fmt.Errorf(unsupportedCatalogSourceTemplateConstant, catalogConfiguration.Source, CatalogSourceAPI, CatalogSourceGitHubCLI)
	}
}

// resolveHandle builds the handle from [name] [clone-url] arguments. A
// single argument that looks like a URL or path is taken as the clone URL.
// Missing clone URLs are asked for. Missing names are derived from the URL;
// without a plan the operator may override the derived name, and the name is
// asked for outright when derivation fails.
func (session *session) resolveHandle(arguments []string) (*repository.Handle, error) {
	var repositoryName, cloneURL string
	switch {
	case len(arguments) >= 2:
		repositoryName, cloneURL = strings.TrimSpace(arguments[0]), strings.TrimSpace(arguments[1])
	case len(arguments) == 1 && looksLikeCloneURL(arguments[0]):
		cloneURL = strings.TrimSpace(arguments[0])
	case len(arguments) == 1:
		repositoryName = strings.TrimSpace(arguments[0])
	}

	if len(cloneURL) == 0 {
		answer, askError := session.console.Ask(cloneURLPromptConstant)
		if askError != nil {
			return nil, askError
		}
		cloneURL = strings.TrimSpace(answer)
	}

	if len(repositoryName) == 0 {
		derivedName, deriveError := session.deriveRepositoryName(cloneURL)
		if deriveError != nil {
			return nil, deriveError
		}
		repositoryName = derivedName
	}

	return repository.NewHandle(repositoryName, cloneURL)
}

func (session *session) deriveRepositoryName(cloneURL string) (string, error) {
	derivedName, deriveError := gitrepo.RepositoryName(cloneURL)
	if deriveError != nil {
		answer, askError := session.console.Ask(repositoryNamePromptConstant)
		if askError != nil {
			return "", askError
		}
		return strings.TrimSpace(answer), nil
	}
	if len(session.configuration.Plan) > 0 {
		return derivedName, nil
	}
	return session.console.AskWithDefault(repositoryNamePromptConstant, derivedName)
}

func (session *session) resolveAccount(arguments []string) (string, error) {
	if len(arguments) > 0 {
		if account := strings.TrimSpace(arguments[0]); len(account) > 0 {
			return account, nil
		}
	}
	answer, askError := session.console.Ask(accountPromptConstant)
	if askError != nil {
		return "", askError
	}
	return strings.TrimSpace(answer), nil
}

func looksLikeCloneURL(argument string) bool {
	return strings.Contains(argument, urlSchemeSeparatorConstant) || strings.Contains(argument, urlPathSeparatorConstant)
}

func isTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveHumanReadableLogging(provider HumanReadableLoggingProvider) bool {
	return provider != nil && provider()
}

func resolveConfiguration(provider ConfigurationProvider) Configuration {
	if provider == nil {
		return DefaultConfiguration()
	}
	return provider()
}

// applyFlagOverrides lets explicitly set flags win over configuration.
func applyFlagOverrides(command *cobra.Command, configuration Configuration) Configuration {
	flags := command.Flags()
	if flag := flags.Lookup(pushFlagNameConstant); flag != nil && flag.Changed {
		configuration.Push, _ = flags.GetBool(pushFlagNameConstant)
	}
	stringOverrides := map[string]*string{
		stagingDirectoryFlagNameConstant: &configuration.StagingDirectory,
		rewriteToolFlagNameConstant:      &configuration.RewriteTool.Path,
		planFlagNameConstant:             &configuration.Plan,
		apiURLFlagNameConstant:           &configuration.Catalog.APIURL,
	}
	for flagName, target := range stringOverrides {
		if flag := flags.Lookup(flagName); flag != nil && flag.Changed {
			*target, _ = flags.GetString(flagName)
		}
	}
	if flag := flags.Lookup(catalogFlagNameConstant); flag != nil && flag.Changed {
		catalogSource, _ := flags.GetString(catalogFlagNameConstant)
		configuration.Catalog.Source = CatalogSource(catalogSource)
	}
	return configuration.sanitize()
}

func registerWorkflowFlags(command *cobra.Command) {
	command.Flags().Bool(pushFlagNameConstant, false, pushFlagUsageConstant)
	command.Flags().String(stagingDirectoryFlagNameConstant, "", stagingDirectoryFlagUsageConstant)
	command.Flags().String(planFlagNameConstant, "", planFlagUsageConstant)
	registerRewriteToolFlag(command)
}

func registerRewriteToolFlag(command *cobra.Command) {
	command.Flags().String(rewriteToolFlagNameConstant, "", rewriteToolFlagUsageConstant)
}
