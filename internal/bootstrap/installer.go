package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultToolName is the executable name searched on PATH.
	DefaultToolName = "git-filter-repo"
	// DefaultDownloadURL is the upstream location of the single-file tool.
	DefaultDownloadURL = "https://raw.githubusercontent.com/newren/git-filter-repo/main/git-filter-repo"

	executablePermissionsConstant      = fs.FileMode(0o755)
	executableBitsMaskConstant         = fs.FileMode(0o111)
	maximumDownloadSizeBytesConstant   = 8 << 20
	useLocalCopyPromptTemplateConstant = "Use %s found at %s?"
	downloadPromptTemplateConstant     = "%s was not found. Download it from %s to %s?"
	chmodPromptTemplateConstant        = "%s is not executable. Make it executable?"
	missingToolTemplateConstant        = "%s unavailable: %s"
	unexpectedStatusTemplateConstant   = "unexpected download status %s"
	emptyDownloadMessageConstant       = "downloaded file is empty"
	reasonExplicitPathMissingConstant  = "configured path does not exist"
	reasonDeclinedLocalConstant        = "operator declined the local copy"
	reasonDeclinedDownloadConstant     = "operator declined the download"
	reasonDeclinedChmodConstant        = "operator declined to make it executable"
	reasonNoPrompterConstant           = "not found on PATH and no operator to confirm installation"
	reasonDownloadFailedConstant       = "download failed"
	reasonChmodFailedConstant          = "could not make it executable"
	reasonPromptFailedConstant         = "confirmation failed"
	logMessageFoundOnPathConstant      = "rewrite tool found on PATH"
	logMessageUsingLocalConstant       = "using local rewrite tool"
	logMessageDownloadingConstant      = "downloading rewrite tool"
	logMessageMadeExecutableConstant   = "rewrite tool made executable"
	logFieldPathConstant               = "path"
	logFieldURLConstant                = "url"
)

// RewriteToolMissingError reports that no usable rewrite tool could be provided.
type RewriteToolMissingError struct {
	ToolName string
	Reason   string
	Cause    error
}

// Error describes the missing tool.
func (missingError RewriteToolMissingError) Error() string {
	message := fmt.Sprintf(missingToolTemplateConstant, missingError.ToolName, missingError.Reason)
	if missingError.Cause != nil {
		return message + ": " + missingError.Cause.Error()
	}
	return message
}

// Unwrap exposes the underlying cause.
func (missingError RewriteToolMissingError) Unwrap() error {
	return missingError.Cause
}

// Configuration controls where the installer looks and what it downloads.
type Configuration struct {
	ToolName string
	// ExplicitPath, when set, is the only location considered.
	ExplicitPath string
	// InstallDirectory receives downloaded copies and is searched after PATH.
	InstallDirectory string
	DownloadURL      string
}

// FileSystem exposes the file operations used by the installer.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Chmod(path string, permissions fs.FileMode) error
}

// ConfirmationPrompter asks the operator a yes/no question.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// PathLookup resolves an executable name on PATH.
type PathLookup func(name string) (string, error)

// Dependencies supplies the collaborators of an Installer.
type Dependencies struct {
	FileSystem FileSystem
	Prompter   ConfirmationPrompter
	HTTPClient *http.Client
	LookPath   PathLookup
	Logger     *zap.Logger
}

// Installer resolves the rewrite tool path.
type Installer struct {
	configuration Configuration
	dependencies  Dependencies
}

// NewInstaller applies defaults and constructs an Installer.
func NewInstaller(configuration Configuration, dependencies Dependencies) *Installer {
	if len(strings.TrimSpace(configuration.ToolName)) == 0 {
		configuration.ToolName = DefaultToolName
	}
	if len(strings.TrimSpace(configuration.DownloadURL)) == 0 {
		configuration.DownloadURL = DefaultDownloadURL
	}
	if dependencies.HTTPClient == nil {
		dependencies.HTTPClient = http.DefaultClient
	}
	if dependencies.LookPath == nil {
		dependencies.LookPath = exec.LookPath
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Installer{configuration: configuration, dependencies: dependencies}
}

// Ensure returns the path of a usable rewrite tool.
func (installer *Installer) Ensure(executionContext context.Context) (string, error) {
	if explicitPath := strings.TrimSpace(installer.configuration.ExplicitPath); len(explicitPath) > 0 {
		return installer.ensureExplicit(explicitPath)
	}

	if resolvedPath, lookupError := installer.dependencies.LookPath(installer.configuration.ToolName); lookupError == nil {
		installer.dependencies.Logger.Debug(logMessageFoundOnPathConstant, zap.String(logFieldPathConstant, resolvedPath))
		return resolvedPath, nil
	}

	if installer.dependencies.Prompter == nil {
		return "", installer.missing(reasonNoPrompterConstant, nil)
	}

	localPath := filepath.Join(installer.configuration.InstallDirectory, installer.configuration.ToolName)
	localInfo, statError := installer.dependencies.FileSystem.Stat(localPath)
	switch {
	case statError == nil:
		confirmed, promptError := installer.dependencies.Prompter.Confirm(fmt.Sprintf(useLocalCopyPromptTemplateConstant, installer.configuration.ToolName, localPath))
		if promptError != nil {
			return "", installer.missing(reasonPromptFailedConstant, promptError)
		}
		if !confirmed {
			return "", installer.missing(reasonDeclinedLocalConstant, nil)
		}
		installer.dependencies.Logger.Info(logMessageUsingLocalConstant, zap.String(logFieldPathConstant, localPath))
		return installer.ensureExecutable(localPath, localInfo)
	case errors.Is(statError, fs.ErrNotExist):
		return installer.download(executionContext, localPath)
	default:
		return "", installer.missing(reasonDownloadFailedConstant, statError)
	}
}

func (installer *Installer) ensureExplicit(explicitPath string) (string, error) {
	explicitInfo, statError := installer.dependencies.FileSystem.Stat(explicitPath)
	if statError != nil {
		return "", installer.missing(reasonExplicitPathMissingConstant, statError)
	}
	return installer.ensureExecutable(explicitPath, explicitInfo)
}

func (installer *Installer) ensureExecutable(toolPath string, toolInfo fs.FileInfo) (string, error) {
	if toolInfo.Mode().Perm()&executableBitsMaskConstant != 0 {
		return toolPath, nil
	}
	if installer.dependencies.Prompter == nil {
		return "", installer.missing(reasonDeclinedChmodConstant, nil)
	}

	confirmed, promptError := installer.dependencies.Prompter.Confirm(fmt.Sprintf(chmodPromptTemplateConstant, toolPath))
	if promptError != nil {
		return "", installer.missing(reasonPromptFailedConstant, promptError)
	}
	if !confirmed {
		return "", installer.missing(reasonDeclinedChmodConstant, nil)
	}
	if chmodError := installer.dependencies.FileSystem.Chmod(toolPath, toolInfo.Mode().Perm()|executableBitsMaskConstant); chmodError != nil {
		return "", installer.missing(reasonChmodFailedConstant, chmodError)
	}
	installer.dependencies.Logger.Info(logMessageMadeExecutableConstant, zap.String(logFieldPathConstant, toolPath))
	return toolPath, nil
}

func (installer *Installer) download(executionContext context.Context, localPath string) (string, error) {
	confirmed, promptError := installer.dependencies.Prompter.Confirm(fmt.Sprintf(downloadPromptTemplateConstant, installer.configuration.ToolName, installer.configuration.DownloadURL, localPath))
	if promptError != nil {
		return "", installer.missing(reasonPromptFailedConstant, promptError)
	}
	if !confirmed {
		return "", installer.missing(reasonDeclinedDownloadConstant, nil)
	}

	installer.dependencies.Logger.Info(logMessageDownloadingConstant, zap.String(logFieldURLConstant, installer.configuration.DownloadURL), zap.String(logFieldPathConstant, localPath))
	content, fetchError := installer.fetch(executionContext)
	if fetchError != nil {
		return "", installer.missing(reasonDownloadFailedConstant, fetchError)
	}
	if writeError := installer.dependencies.FileSystem.WriteFile(localPath, content, executablePermissionsConstant); writeError != nil {
		return "", installer.missing(reasonDownloadFailedConstant, writeError)
	}
	// WriteFile honours the umask; chmod guarantees the execute bits.
	if chmodError := installer.dependencies.FileSystem.Chmod(localPath, executablePermissionsConstant); chmodError != nil {
		return "", installer.missing(reasonChmodFailedConstant, chmodError)
	}
	return localPath, nil
}

func (installer *Installer) fetch(executionContext context.Context) ([]byte, error) {
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, installer.configuration.DownloadURL, nil)
	if requestError != nil {
		return nil, requestError
	}
	response, responseError := installer.dependencies.HTTPClient.Do(request)
	if responseError != nil {
		return nil, responseError
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(unexpectedStatusTemplateConstant, response.Status)
	}
	content, readError := io.ReadAll(io.LimitReader(response.Body, maximumDownloadSizeBytesConstant))
	if readError != nil {
		return nil, readError
	}
	if len(content) == 0 {
		return nil, errors.New(emptyDownloadMessageConstant)
	}
	return content, nil
}

func (installer *Installer) missing(reason string, cause error) RewriteToolMissingError {
	return RewriteToolMissingError{ToolName: installer.configuration.ToolName, Reason: reason, Cause: cause}
}
